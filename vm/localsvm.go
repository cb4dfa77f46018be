package vm

import (
	"fmt"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// LocalsVM shadows constant pushes and local variable loads and stores.
type LocalsVM struct {
	env *Env
}

// NewLocalsVM returns a locals VM operating on env.
func NewLocalsVM(env *Env) *LocalsVM {
	return &LocalsVM{env: env}
}

func (m *LocalsVM) frame() *Frame { return m.env.TopFrame() }

func (m *LocalsVM) ACONST_NULL() { m.frame().Operands.PushRef(symbolic.Null) }

// ICONST pushes an int constant. It covers ICONST_M1 through ICONST_5.
func (m *LocalsVM) ICONST(value int32) {
	m.frame().Operands.PushBv32(symbolic.NewIntegerConstant(int64(value)))
}

// LCONST pushes a long constant. It covers LCONST_0 and LCONST_1.
func (m *LocalsVM) LCONST(value int64) {
	m.frame().Operands.PushBv64(symbolic.NewIntegerConstant(value))
}

// FCONST pushes a float constant. It covers FCONST_0 through FCONST_2.
func (m *LocalsVM) FCONST(value float32) {
	m.frame().Operands.PushFp32(symbolic.NewRealConstant(float64(value)))
}

// DCONST pushes a double constant. It covers DCONST_0 and DCONST_1.
func (m *LocalsVM) DCONST(value float64) {
	m.frame().Operands.PushFp64(symbolic.NewRealConstant(value))
}

func (m *LocalsVM) BIPUSH(value int8)  { m.ICONST(int32(value)) }
func (m *LocalsVM) SIPUSH(value int16) { m.ICONST(int32(value)) }

// LDC pushes a constant pool entry: int32, int64, float32, float64 or a
// string. Strings are pushed as references to the concrete string.
func (m *LocalsVM) LDC(value interface{}) {
	switch v := value.(type) {
	case int32:
		m.ICONST(v)
	case int64:
		m.LCONST(v)
	case float32:
		m.FCONST(v)
	case float64:
		m.DCONST(v)
	case string:
		m.frame().Operands.PushRef(m.env.Heap.Reference(v))
	default:
		panic(fmt.Sprintf("vm: unsupported LDC constant: %T", value))
	}
}

func (m *LocalsVM) ILOAD(i int) { m.load(WidthBv32, i) }
func (m *LocalsVM) LLOAD(i int) { m.load(WidthBv64, i) }
func (m *LocalsVM) FLOAD(i int) { m.load(WidthFp32, i) }
func (m *LocalsVM) DLOAD(i int) { m.load(WidthFp64, i) }
func (m *LocalsVM) ALOAD(i int) { m.load(WidthRef, i) }

func (m *LocalsVM) ISTORE(i int) { m.store(WidthBv32, i) }
func (m *LocalsVM) LSTORE(i int) { m.store(WidthBv64, i) }
func (m *LocalsVM) FSTORE(i int) { m.store(WidthFp32, i) }
func (m *LocalsVM) DSTORE(i int) { m.store(WidthFp64, i) }
func (m *LocalsVM) ASTORE(i int) { m.store(WidthRef, i) }

func (m *LocalsVM) load(w Width, i int) {
	f := m.frame()
	op := f.Locals.Get(i)
	assert(op.Width() == w, "load of local %d: expected %s, got %s", i, w, op.Width())
	f.Operands.PushOperand(op)
}

func (m *LocalsVM) store(w Width, i int) {
	f := m.frame()
	op := f.Operands.PopOperand()
	assert(op.Width() == w, "store to local %d: expected %s, got %s", i, w, op.Width())
	f.Locals.Set(i, op)
}
