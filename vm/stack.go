package vm

import (
	"bytes"
	"fmt"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// OperandStack is the symbolic mirror of a frame's operand stack.
type OperandStack struct {
	operands []Operand
}

// NewOperandStack returns an empty operand stack.
func NewOperandStack() *OperandStack {
	return &OperandStack{}
}

// Len returns the number of operands on the stack. A double-word operand
// counts once.
func (s *OperandStack) Len() int { return len(s.operands) }

// PushOperand pushes op onto the stack.
func (s *OperandStack) PushOperand(op Operand) {
	assert(op != nil, "push of nil operand")
	s.operands = append(s.operands, op)
}

// PopOperand removes and returns the top operand.
func (s *OperandStack) PopOperand() Operand {
	assert(len(s.operands) > 0, "pop from empty operand stack")
	op := s.operands[len(s.operands)-1]
	s.operands[len(s.operands)-1] = nil
	s.operands = s.operands[:len(s.operands)-1]
	return op
}

// PeekOperand returns the operand i positions below the top without removing
// it. PeekOperand(0) is the top.
func (s *OperandStack) PeekOperand(i int) Operand {
	assert(i >= 0 && i < len(s.operands), "peek at %d on stack of %d", i, len(s.operands))
	return s.operands[len(s.operands)-1-i]
}

// Operands returns the operands from bottom to top.
func (s *OperandStack) Operands() []Operand {
	other := make([]Operand, len(s.operands))
	copy(other, s.operands)
	return other
}

// Clear removes every operand.
func (s *OperandStack) Clear() {
	s.operands = s.operands[:0]
}

func (s *OperandStack) PushBv32(v symbolic.IntegerValue) { s.PushOperand(NewOperand(WidthBv32, v)) }
func (s *OperandStack) PushBv64(v symbolic.IntegerValue) { s.PushOperand(NewOperand(WidthBv64, v)) }
func (s *OperandStack) PushFp32(v symbolic.RealValue)    { s.PushOperand(NewOperand(WidthFp32, v)) }
func (s *OperandStack) PushFp64(v symbolic.RealValue)    { s.PushOperand(NewOperand(WidthFp64, v)) }
func (s *OperandStack) PushRef(v symbolic.ReferenceExpr) { s.PushOperand(NewOperand(WidthRef, v)) }

// PopBv32 pops an int-like value. Panic if the top is of another width.
func (s *OperandStack) PopBv32() symbolic.IntegerValue {
	op := s.PopOperand()
	o, ok := op.(*Bv32Operand)
	assert(ok, "expected bv32 operand, got %s", op.Width())
	return o.Value
}

// PopBv64 pops a long. Panic if the top is of another width.
func (s *OperandStack) PopBv64() symbolic.IntegerValue {
	op := s.PopOperand()
	o, ok := op.(*Bv64Operand)
	assert(ok, "expected bv64 operand, got %s", op.Width())
	return o.Value
}

// PopFp32 pops a float. Panic if the top is of another width.
func (s *OperandStack) PopFp32() symbolic.RealValue {
	op := s.PopOperand()
	o, ok := op.(*Fp32Operand)
	assert(ok, "expected fp32 operand, got %s", op.Width())
	return o.Value
}

// PopFp64 pops a double. Panic if the top is of another width.
func (s *OperandStack) PopFp64() symbolic.RealValue {
	op := s.PopOperand()
	o, ok := op.(*Fp64Operand)
	assert(ok, "expected fp64 operand, got %s", op.Width())
	return o.Value
}

// PopRef pops a reference. Panic if the top is of another width.
func (s *OperandStack) PopRef() symbolic.ReferenceExpr {
	op := s.PopOperand()
	o, ok := op.(*RefOperand)
	assert(ok, "expected ref operand, got %s", op.Width())
	return o.Value
}

// popCategory1 pops an operand that must be single-word.
func (s *OperandStack) popCategory1() Operand {
	op := s.PopOperand()
	assert(op.Width().Category() == 1, "expected category 1 operand, got %s", op.Width())
	return op
}

// popCategory2 pops an operand that must be double-word.
func (s *OperandStack) popCategory2() Operand {
	op := s.PopOperand()
	assert(op.Width().Category() == 2, "expected category 2 operand, got %s", op.Width())
	return op
}

// topCategory returns the category of the operand i positions below the top.
func (s *OperandStack) topCategory(i int) int {
	return s.PeekOperand(i).Width().Category()
}

// Pop discards a single-word operand.
//
//	..., value1 -> ...
func (s *OperandStack) Pop() {
	s.popCategory1()
}

// Pop2 discards one double-word or two single-word operands.
func (s *OperandStack) Pop2() {
	if s.topCategory(0) == 2 {
		// Form 2: ..., value1 -> ...
		s.popCategory2()
		return
	}

	// Form 1: ..., value2, value1 -> ...
	s.popCategory1()
	s.popCategory1()
}

// Dup duplicates the top single-word operand.
//
//	..., value1 -> ..., value1, value1
func (s *OperandStack) Dup() {
	value1 := s.popCategory1()
	s.PushOperand(value1)
	s.PushOperand(value1)
}

// DupX1 inserts a copy of the top operand beneath the second.
//
//	..., value2, value1 -> ..., value1, value2, value1
func (s *OperandStack) DupX1() {
	value1 := s.popCategory1()
	value2 := s.popCategory1()
	s.PushOperand(value1)
	s.PushOperand(value2)
	s.PushOperand(value1)
}

// DupX2 inserts a copy of the top operand two or three values down.
func (s *OperandStack) DupX2() {
	value1 := s.popCategory1()

	if s.topCategory(0) == 2 {
		// Form 2: ..., value2, value1 -> ..., value1, value2, value1
		value2 := s.popCategory2()
		s.PushOperand(value1)
		s.PushOperand(value2)
		s.PushOperand(value1)
		return
	}

	// Form 1: ..., value3, value2, value1 -> ..., value1, value3, value2, value1
	value2 := s.popCategory1()
	value3 := s.popCategory1()
	s.PushOperand(value1)
	s.PushOperand(value3)
	s.PushOperand(value2)
	s.PushOperand(value1)
}

// Dup2 duplicates the top double-word operand or the top two single-word
// operands.
func (s *OperandStack) Dup2() {
	if s.topCategory(0) == 2 {
		// Form 2: ..., value1 -> ..., value1, value1
		value1 := s.popCategory2()
		s.PushOperand(value1)
		s.PushOperand(value1)
		return
	}

	// Form 1: ..., value2, value1 -> ..., value2, value1, value2, value1
	value1 := s.popCategory1()
	value2 := s.popCategory1()
	s.PushOperand(value2)
	s.PushOperand(value1)
	s.PushOperand(value2)
	s.PushOperand(value1)
}

// Dup2X1 inserts a copy of the top one or two operands beneath the next
// single-word operand.
func (s *OperandStack) Dup2X1() {
	if s.topCategory(0) == 2 {
		// Form 2: ..., value2, value1 -> ..., value1, value2, value1
		value1 := s.popCategory2()
		value2 := s.popCategory1()
		s.PushOperand(value1)
		s.PushOperand(value2)
		s.PushOperand(value1)
		return
	}

	// Form 1: ..., value3, value2, value1 -> ..., value2, value1, value3, value2, value1
	value1 := s.popCategory1()
	value2 := s.popCategory1()
	value3 := s.popCategory1()
	s.PushOperand(value2)
	s.PushOperand(value1)
	s.PushOperand(value3)
	s.PushOperand(value2)
	s.PushOperand(value1)
}

// Dup2X2 inserts a copy of the top one or two operands beneath the next one
// or two operands.
func (s *OperandStack) Dup2X2() {
	if s.topCategory(0) == 2 {
		value1 := s.popCategory2()

		if s.topCategory(0) == 2 {
			// Form 4: ..., value2, value1 -> ..., value1, value2, value1
			value2 := s.popCategory2()
			s.PushOperand(value1)
			s.PushOperand(value2)
			s.PushOperand(value1)
			return
		}

		// Form 2: ..., value3, value2, value1 -> ..., value1, value3, value2, value1
		value2 := s.popCategory1()
		value3 := s.popCategory1()
		s.PushOperand(value1)
		s.PushOperand(value3)
		s.PushOperand(value2)
		s.PushOperand(value1)
		return
	}

	value1 := s.popCategory1()
	value2 := s.popCategory1()

	if s.topCategory(0) == 2 {
		// Form 3: ..., value3, value2, value1 -> ..., value2, value1, value3, value2, value1
		value3 := s.popCategory2()
		s.PushOperand(value2)
		s.PushOperand(value1)
		s.PushOperand(value3)
		s.PushOperand(value2)
		s.PushOperand(value1)
		return
	}

	// Form 1: ..., value4, value3, value2, value1 -> ..., value2, value1, value4, value3, value2, value1
	value3 := s.popCategory1()
	value4 := s.popCategory1()
	s.PushOperand(value2)
	s.PushOperand(value1)
	s.PushOperand(value4)
	s.PushOperand(value3)
	s.PushOperand(value2)
	s.PushOperand(value1)
}

// Swap exchanges the top two single-word operands.
//
//	..., value2, value1 -> ..., value1, value2
func (s *OperandStack) Swap() {
	value1 := s.popCategory1()
	value2 := s.popCategory1()
	s.PushOperand(value1)
	s.PushOperand(value2)
}

// String returns the operands from bottom to top.
func (s *OperandStack) String() string {
	var buf bytes.Buffer
	buf.WriteRune('[')
	for i, op := range s.operands {
		if i > 0 {
			buf.WriteRune(' ')
		}
		fmt.Fprint(&buf, op)
	}
	buf.WriteRune(']')
	return buf.String()
}
