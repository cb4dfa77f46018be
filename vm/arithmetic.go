package vm

import (
	"log"
	"math"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// ArithmeticVM shadows arithmetic, bitwise, comparison, conversion and
// stack manipulation instructions.
type ArithmeticVM struct {
	env *Env
	pc  PathConditionCollector
}

// NewArithmeticVM returns an arithmetic VM operating on env.
func NewArithmeticVM(env *Env, pc PathConditionCollector) *ArithmeticVM {
	return &ArithmeticVM{env: env, pc: pc}
}

func (m *ArithmeticVM) stack() *OperandStack {
	return m.env.TopFrame().Operands
}

func (m *ArithmeticVM) bv32Binary(op symbolic.Operator, fn func(a, b int32) int32) {
	s := m.stack()
	rhs, lhs := s.PopBv32(), s.PopBv32()
	c := fn(int32(lhs.ConcreteValue()), int32(rhs.ConcreteValue()))
	s.PushBv32(symbolic.NewIntegerBinaryExpr(lhs, op, rhs, int64(c)))
}

func (m *ArithmeticVM) bv64Binary(op symbolic.Operator, fn func(a, b int64) int64) {
	s := m.stack()
	rhs, lhs := s.PopBv64(), s.PopBv64()
	c := fn(lhs.ConcreteValue(), rhs.ConcreteValue())
	s.PushBv64(symbolic.NewIntegerBinaryExpr(lhs, op, rhs, c))
}

// bv64Shift pops an int shift distance and a long value.
func (m *ArithmeticVM) bv64Shift(op symbolic.Operator, fn func(a int64, n uint) int64) {
	s := m.stack()
	rhs, lhs := s.PopBv32(), s.PopBv64()
	c := fn(lhs.ConcreteValue(), uint(rhs.ConcreteValue()&0x3F))
	s.PushBv64(symbolic.NewIntegerBinaryExpr(lhs, op, rhs, c))
}

func (m *ArithmeticVM) fp32Binary(op symbolic.Operator, fn func(a, b float32) float32) {
	s := m.stack()
	rhs, lhs := s.PopFp32(), s.PopFp32()
	c := fn(float32(lhs.ConcreteValue()), float32(rhs.ConcreteValue()))
	s.PushFp32(symbolic.NewRealBinaryExpr(lhs, op, rhs, float64(c)))
}

func (m *ArithmeticVM) fp64Binary(op symbolic.Operator, fn func(a, b float64) float64) {
	s := m.stack()
	rhs, lhs := s.PopFp64(), s.PopFp64()
	c := fn(lhs.ConcreteValue(), rhs.ConcreteValue())
	s.PushFp64(symbolic.NewRealBinaryExpr(lhs, op, rhs, c))
}

func (m *ArithmeticVM) IADD() { m.bv32Binary(symbolic.ADD, func(a, b int32) int32 { return a + b }) }
func (m *ArithmeticVM) ISUB() { m.bv32Binary(symbolic.SUB, func(a, b int32) int32 { return a - b }) }
func (m *ArithmeticVM) IMUL() { m.bv32Binary(symbolic.MUL, func(a, b int32) int32 { return a * b }) }
func (m *ArithmeticVM) IAND() { m.bv32Binary(symbolic.AND, func(a, b int32) int32 { return a & b }) }
func (m *ArithmeticVM) IOR()  { m.bv32Binary(symbolic.OR, func(a, b int32) int32 { return a | b }) }
func (m *ArithmeticVM) IXOR() { m.bv32Binary(symbolic.XOR, func(a, b int32) int32 { return a ^ b }) }
func (m *ArithmeticVM) ISHL() { m.bv32Binary(symbolic.SHL, func(a, b int32) int32 { return a << uint(b&0x1F) }) }
func (m *ArithmeticVM) ISHR() { m.bv32Binary(symbolic.SHR, func(a, b int32) int32 { return a >> uint(b&0x1F) }) }
func (m *ArithmeticVM) IUSHR() {
	m.bv32Binary(symbolic.USHR, func(a, b int32) int32 { return int32(uint32(a) >> uint(b&0x1F)) })
}

func (m *ArithmeticVM) LADD() { m.bv64Binary(symbolic.ADD, func(a, b int64) int64 { return a + b }) }
func (m *ArithmeticVM) LSUB() { m.bv64Binary(symbolic.SUB, func(a, b int64) int64 { return a - b }) }
func (m *ArithmeticVM) LMUL() { m.bv64Binary(symbolic.MUL, func(a, b int64) int64 { return a * b }) }
func (m *ArithmeticVM) LAND() { m.bv64Binary(symbolic.AND, func(a, b int64) int64 { return a & b }) }
func (m *ArithmeticVM) LOR()  { m.bv64Binary(symbolic.OR, func(a, b int64) int64 { return a | b }) }
func (m *ArithmeticVM) LXOR() { m.bv64Binary(symbolic.XOR, func(a, b int64) int64 { return a ^ b }) }
func (m *ArithmeticVM) LSHL() { m.bv64Shift(symbolic.SHL, func(a int64, n uint) int64 { return a << n }) }
func (m *ArithmeticVM) LSHR() { m.bv64Shift(symbolic.SHR, func(a int64, n uint) int64 { return a >> n }) }
func (m *ArithmeticVM) LUSHR() {
	m.bv64Shift(symbolic.USHR, func(a int64, n uint) int64 { return int64(uint64(a) >> n) })
}

func (m *ArithmeticVM) FADD() { m.fp32Binary(symbolic.ADD, func(a, b float32) float32 { return a + b }) }
func (m *ArithmeticVM) FSUB() { m.fp32Binary(symbolic.SUB, func(a, b float32) float32 { return a - b }) }
func (m *ArithmeticVM) FMUL() { m.fp32Binary(symbolic.MUL, func(a, b float32) float32 { return a * b }) }
func (m *ArithmeticVM) FDIV() { m.fp32Binary(symbolic.DIV, func(a, b float32) float32 { return a / b }) }
func (m *ArithmeticVM) FREM() {
	m.fp32Binary(symbolic.REM, func(a, b float32) float32 { return float32(math.Mod(float64(a), float64(b))) })
}

func (m *ArithmeticVM) DADD() { m.fp64Binary(symbolic.ADD, func(a, b float64) float64 { return a + b }) }
func (m *ArithmeticVM) DSUB() { m.fp64Binary(symbolic.SUB, func(a, b float64) float64 { return a - b }) }
func (m *ArithmeticVM) DMUL() { m.fp64Binary(symbolic.MUL, func(a, b float64) float64 { return a * b }) }
func (m *ArithmeticVM) DDIV() { m.fp64Binary(symbolic.DIV, func(a, b float64) float64 { return a / b }) }
func (m *ArithmeticVM) DREM() { m.fp64Binary(symbolic.REM, math.Mod) }

// IDIV divides the top two ints. The host passes the concrete divisor.
// Returns true if the division faults, in which case nothing is pushed.
func (m *ArithmeticVM) IDIV(divisor int32) bool {
	return m.bv32DivRem(symbolic.DIV, divisor, func(a, b int32) int32 { return a / b })
}

// IREM is the int remainder counterpart of IDIV.
func (m *ArithmeticVM) IREM(divisor int32) bool {
	return m.bv32DivRem(symbolic.REM, divisor, func(a, b int32) int32 { return a % b })
}

// LDIV divides the top two longs. Returns true on a zero divisor.
func (m *ArithmeticVM) LDIV(divisor int64) bool {
	return m.bv64DivRem(symbolic.DIV, divisor, func(a, b int64) int64 { return a / b })
}

// LREM is the long remainder counterpart of LDIV.
func (m *ArithmeticVM) LREM(divisor int64) bool {
	return m.bv64DivRem(symbolic.REM, divisor, func(a, b int64) int64 { return a % b })
}

func (m *ArithmeticVM) bv32DivRem(op symbolic.Operator, divisor int32, fn func(a, b int32) int32) bool {
	s := m.stack()
	rhs, lhs := s.PopBv32(), s.PopBv32()
	if m.zeroViolation(rhs, int64(divisor)) {
		return true
	}
	c := fn(int32(lhs.ConcreteValue()), divisor)
	s.PushBv32(symbolic.NewIntegerBinaryExpr(lhs, op, rhs, int64(c)))
	return false
}

func (m *ArithmeticVM) bv64DivRem(op symbolic.Operator, divisor int64, fn func(a, b int64) int64) bool {
	s := m.stack()
	rhs, lhs := s.PopBv64(), s.PopBv64()
	if m.zeroViolation(rhs, divisor) {
		return true
	}
	c := fn(lhs.ConcreteValue(), divisor)
	s.PushBv64(symbolic.NewIntegerBinaryExpr(lhs, op, rhs, c))
	return false
}

// zeroViolation records whether the divisor is zero on this path and
// returns true if it is.
func (m *ArithmeticVM) zeroViolation(divisor symbolic.IntegerValue, concrete int64) bool {
	zero := symbolic.NewIntegerConstant(0)

	var c *symbolic.IntegerConstraint
	if concrete == 0 {
		c = symbolic.Eq(divisor, zero)
	} else {
		c = symbolic.Ne(divisor, zero)
	}
	if symbolic.IsSymbolic(c) {
		m.pc.AppendSupportingConstraint(c)
	}

	if concrete == 0 {
		log.Printf("[fault] division by zero in %s", m.env.TopFrame().Method)
		return true
	}
	return false
}

func (m *ArithmeticVM) INEG() {
	s := m.stack()
	v := s.PopBv32()
	s.PushBv32(symbolic.NewIntegerUnaryExpr(symbolic.NEG, v, int64(-int32(v.ConcreteValue()))))
}

func (m *ArithmeticVM) LNEG() {
	s := m.stack()
	v := s.PopBv64()
	s.PushBv64(symbolic.NewIntegerUnaryExpr(symbolic.NEG, v, -v.ConcreteValue()))
}

func (m *ArithmeticVM) FNEG() {
	s := m.stack()
	v := s.PopFp32()
	s.PushFp32(symbolic.NewRealUnaryExpr(symbolic.NEG, v, -v.ConcreteValue()))
}

func (m *ArithmeticVM) DNEG() {
	s := m.stack()
	v := s.PopFp64()
	s.PushFp64(symbolic.NewRealUnaryExpr(symbolic.NEG, v, -v.ConcreteValue()))
}

// LCMP pushes -1, 0 or 1 as the comparison of the top two longs.
func (m *ArithmeticVM) LCMP() {
	s := m.stack()
	rhs, lhs := s.PopBv64(), s.PopBv64()
	s.PushBv32(symbolic.NewIntegerComparison(lhs, rhs, compare(lhs.ConcreteValue(), rhs.ConcreteValue())))
}

// FCMPL pushes the comparison of the top two floats. NaN yields 1.
func (m *ArithmeticVM) FCMPL() {
	s := m.stack()
	rhs, lhs := s.PopFp32(), s.PopFp32()
	s.PushBv32(symbolic.NewRealComparison(lhs, rhs, compareFloat(lhs.ConcreteValue(), rhs.ConcreteValue())))
}

// FCMPG behaves like FCMPL.
func (m *ArithmeticVM) FCMPG() { m.FCMPL() }

// DCMPL pushes the comparison of the top two doubles. NaN yields 1.
func (m *ArithmeticVM) DCMPL() {
	s := m.stack()
	rhs, lhs := s.PopFp64(), s.PopFp64()
	s.PushBv32(symbolic.NewRealComparison(lhs, rhs, compareFloat(lhs.ConcreteValue(), rhs.ConcreteValue())))
}

// DCMPG behaves like DCMPL.
func (m *ArithmeticVM) DCMPG() { m.DCMPL() }

func compare(a, b int64) int64 {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return 1
	} else if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// I2L widens an int to a long. The expression is unchanged.
func (m *ArithmeticVM) I2L() {
	s := m.stack()
	s.PushBv64(s.PopBv32())
}

// F2D widens a float to a double. The expression is unchanged.
func (m *ArithmeticVM) F2D() {
	s := m.stack()
	s.PushFp64(s.PopFp32())
}

func (m *ArithmeticVM) I2F() {
	s := m.stack()
	v := s.PopBv32()
	s.PushFp32(symbolic.NewIntegerToRealCast(v, float64(float32(int32(v.ConcreteValue())))))
}

func (m *ArithmeticVM) I2D() {
	s := m.stack()
	v := s.PopBv32()
	s.PushFp64(symbolic.NewIntegerToRealCast(v, float64(int32(v.ConcreteValue()))))
}

func (m *ArithmeticVM) L2F() {
	s := m.stack()
	v := s.PopBv64()
	s.PushFp32(symbolic.NewIntegerToRealCast(v, float64(float32(v.ConcreteValue()))))
}

func (m *ArithmeticVM) L2D() {
	s := m.stack()
	v := s.PopBv64()
	s.PushFp64(symbolic.NewIntegerToRealCast(v, float64(v.ConcreteValue())))
}

func (m *ArithmeticVM) F2I() {
	s := m.stack()
	v := s.PopFp32()
	s.PushBv32(symbolic.NewRealToIntegerCast(v, int64(floatToInt32(v.ConcreteValue()))))
}

func (m *ArithmeticVM) F2L() {
	s := m.stack()
	v := s.PopFp32()
	s.PushBv64(symbolic.NewRealToIntegerCast(v, floatToInt64(v.ConcreteValue())))
}

func (m *ArithmeticVM) D2I() {
	s := m.stack()
	v := s.PopFp64()
	s.PushBv32(symbolic.NewRealToIntegerCast(v, int64(floatToInt32(v.ConcreteValue()))))
}

func (m *ArithmeticVM) D2L() {
	s := m.stack()
	v := s.PopFp64()
	s.PushBv64(symbolic.NewRealToIntegerCast(v, floatToInt64(v.ConcreteValue())))
}

// L2I truncates a long to an int.
func (m *ArithmeticVM) L2I() {
	s := m.stack()
	v := s.PopBv64()
	s.PushBv32(symbolic.NewIntegerUnaryExpr(symbolic.NARROW, v, int64(int32(v.ConcreteValue()))))
}

// D2F rounds a double to a float.
func (m *ArithmeticVM) D2F() {
	s := m.stack()
	v := s.PopFp64()
	s.PushFp32(symbolic.NewRealUnaryExpr(symbolic.NARROW, v, float64(float32(v.ConcreteValue()))))
}

// I2B, I2C and I2S leave the operand unchanged. Sub-int truncation is not
// tracked.
func (m *ArithmeticVM) I2B() { m.checkBv32() }
func (m *ArithmeticVM) I2C() { m.checkBv32() }
func (m *ArithmeticVM) I2S() { m.checkBv32() }

func (m *ArithmeticVM) checkBv32() {
	op := m.stack().PeekOperand(0)
	assert(op.Width() == WidthBv32, "expected bv32 operand, got %s", op.Width())
}

// IINC adds a constant to an int local.
func (m *ArithmeticVM) IINC(index int, increment int32) {
	locals := m.env.TopFrame().Locals
	v := locals.GetBv32(index)
	c := int32(v.ConcreteValue()) + increment
	locals.SetBv32(index, symbolic.NewIntegerBinaryExpr(v, symbolic.ADD, symbolic.NewIntegerConstant(int64(increment)), int64(c)))
}

func (m *ArithmeticVM) POP()     { m.stack().Pop() }
func (m *ArithmeticVM) POP2()    { m.stack().Pop2() }
func (m *ArithmeticVM) DUP()     { m.stack().Dup() }
func (m *ArithmeticVM) DUP_X1()  { m.stack().DupX1() }
func (m *ArithmeticVM) DUP_X2()  { m.stack().DupX2() }
func (m *ArithmeticVM) DUP2()    { m.stack().Dup2() }
func (m *ArithmeticVM) DUP2_X1() { m.stack().Dup2X1() }
func (m *ArithmeticVM) DUP2_X2() { m.stack().Dup2X2() }
func (m *ArithmeticVM) SWAP()    { m.stack().Swap() }
