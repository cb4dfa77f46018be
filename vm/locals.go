package vm

import (
	"bytes"
	"fmt"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// LocalsTable is the symbolic mirror of a frame's local variable array.
// A double-word value stored at slot i also occupies slot i+1.
type LocalsTable struct {
	slots []Operand
}

// NewLocalsTable returns a table with n empty slots.
func NewLocalsTable(n int) *LocalsTable {
	assert(n >= 0, "negative locals size: %d", n)
	return &LocalsTable{slots: make([]Operand, n)}
}

// Len returns the number of slots.
func (t *LocalsTable) Len() int { return len(t.slots) }

// Get returns the operand at slot i. Panic if the slot is empty or is the
// upper half of a double-word value.
func (t *LocalsTable) Get(i int) Operand {
	assert(i >= 0 && i < len(t.slots), "local %d out of range [0,%d)", i, len(t.slots))
	op := t.slots[i]
	assert(op != nil, "read of uninitialized local %d", i)
	return op
}

// Set stores op at slot i.
func (t *LocalsTable) Set(i int, op Operand) {
	assert(op != nil, "store of nil operand to local %d", i)
	assert(i >= 0 && i < len(t.slots), "local %d out of range [0,%d)", i, len(t.slots))

	// Overwriting the upper half of a double-word value destroys it.
	if i > 0 {
		if prev := t.slots[i-1]; prev != nil && prev.Width().Category() == 2 {
			t.slots[i-1] = nil
		}
	}

	t.slots[i] = op
	if op.Width().Category() == 2 {
		assert(i+1 < len(t.slots), "double-word local %d overflows table of %d", i, len(t.slots))
		t.slots[i+1] = nil
	}
}

func (t *LocalsTable) get(i int, w Width) Operand {
	op := t.Get(i)
	assert(op.Width() == w, "local %d: expected %s, got %s", i, w, op.Width())
	return op
}

func (t *LocalsTable) GetBv32(i int) symbolic.IntegerValue { return t.get(i, WidthBv32).(*Bv32Operand).Value }
func (t *LocalsTable) GetBv64(i int) symbolic.IntegerValue { return t.get(i, WidthBv64).(*Bv64Operand).Value }
func (t *LocalsTable) GetFp32(i int) symbolic.RealValue    { return t.get(i, WidthFp32).(*Fp32Operand).Value }
func (t *LocalsTable) GetFp64(i int) symbolic.RealValue    { return t.get(i, WidthFp64).(*Fp64Operand).Value }
func (t *LocalsTable) GetRef(i int) symbolic.ReferenceExpr { return t.get(i, WidthRef).(*RefOperand).Value }

func (t *LocalsTable) SetBv32(i int, v symbolic.IntegerValue) { t.Set(i, NewOperand(WidthBv32, v)) }
func (t *LocalsTable) SetBv64(i int, v symbolic.IntegerValue) { t.Set(i, NewOperand(WidthBv64, v)) }
func (t *LocalsTable) SetFp32(i int, v symbolic.RealValue)    { t.Set(i, NewOperand(WidthFp32, v)) }
func (t *LocalsTable) SetFp64(i int, v symbolic.RealValue)    { t.Set(i, NewOperand(WidthFp64, v)) }
func (t *LocalsTable) SetRef(i int, v symbolic.ReferenceExpr) { t.Set(i, NewOperand(WidthRef, v)) }

// String returns a human-readable listing of the occupied slots.
func (t *LocalsTable) String() string {
	var buf bytes.Buffer
	buf.WriteRune('{')
	first := true
	for i, op := range t.slots {
		if op == nil {
			continue
		}
		if !first {
			buf.WriteRune(' ')
		}
		first = false
		fmt.Fprintf(&buf, "%d=%s", i, op)
	}
	buf.WriteRune('}')
	return buf.String()
}
