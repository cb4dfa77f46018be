package vm

import (
	"github.com/gofraser/evosuite-sub000/symbolic"
)

// JumpVM shadows conditional branches and switches. Each method takes the
// host's branch index so conditions can be mapped back to the bytecode.
type JumpVM struct {
	env *Env
	pc  PathConditionCollector
}

// NewJumpVM returns a jump VM operating on env.
func NewJumpVM(env *Env, pc PathConditionCollector) *JumpVM {
	return &JumpVM{env: env, pc: pc}
}

func (m *JumpVM) stack() *OperandStack {
	return m.env.TopFrame().Operands
}

func (m *JumpVM) IFEQ(branch int) { m.zeroBranch(branch, symbolic.EQ) }
func (m *JumpVM) IFNE(branch int) { m.zeroBranch(branch, symbolic.NE) }
func (m *JumpVM) IFLT(branch int) { m.zeroBranch(branch, symbolic.LT) }
func (m *JumpVM) IFGE(branch int) { m.zeroBranch(branch, symbolic.GE) }
func (m *JumpVM) IFGT(branch int) { m.zeroBranch(branch, symbolic.GT) }
func (m *JumpVM) IFLE(branch int) { m.zeroBranch(branch, symbolic.LE) }

func (m *JumpVM) IF_ICMPEQ(branch int) { m.binaryBranch(branch, symbolic.EQ) }
func (m *JumpVM) IF_ICMPNE(branch int) { m.binaryBranch(branch, symbolic.NE) }
func (m *JumpVM) IF_ICMPLT(branch int) { m.binaryBranch(branch, symbolic.LT) }
func (m *JumpVM) IF_ICMPGE(branch int) { m.binaryBranch(branch, symbolic.GE) }
func (m *JumpVM) IF_ICMPGT(branch int) { m.binaryBranch(branch, symbolic.GT) }
func (m *JumpVM) IF_ICMPLE(branch int) { m.binaryBranch(branch, symbolic.LE) }

// Reference comparisons carry no constraint.
func (m *JumpVM) IF_ACMPEQ(branch int) { m.popRefs(2) }
func (m *JumpVM) IF_ACMPNE(branch int) { m.popRefs(2) }
func (m *JumpVM) IFNULL(branch int)    { m.popRefs(1) }
func (m *JumpVM) IFNONNULL(branch int) { m.popRefs(1) }

func (m *JumpVM) popRefs(n int) {
	for i := 0; i < n; i++ {
		m.stack().PopRef()
	}
}

func (m *JumpVM) zeroBranch(branch int, cmp symbolic.Comparator) {
	v := m.stack().PopBv32()
	m.branch(branch, v, cmp, symbolic.NewIntegerConstant(0))
}

func (m *JumpVM) binaryBranch(branch int, cmp symbolic.Comparator) {
	s := m.stack()
	rhs, lhs := s.PopBv32(), s.PopBv32()
	m.branch(branch, lhs, cmp, rhs)
}

// branch records lhs cmp rhs, negated if it does not hold concretely.
func (m *JumpVM) branch(branch int, lhs symbolic.IntegerValue, cmp symbolic.Comparator, rhs symbolic.IntegerValue) {
	var c symbolic.Constraint = symbolic.NewIntegerConstraint(lhs, cmp, rhs)
	if !holds(cmp, lhs.ConcreteValue(), rhs.ConcreteValue()) {
		c = c.Negate()
	}
	m.appendBranchCondition(c, branch)
}

func (m *JumpVM) appendBranchCondition(c symbolic.Constraint, branch int) {
	if !symbolic.IsSymbolic(c) {
		return
	}
	method := m.env.TopFrame().Method
	m.pc.AppendBranchCondition(c, method.Owner, method.Name, branch)
}

// TABLESWITCH records whether the selector fell inside [low, high].
func (m *JumpVM) TABLESWITCH(branch int, low, high int32) {
	v := m.stack().PopBv32()
	concrete := v.ConcreteValue()

	switch {
	case concrete < int64(low):
		m.appendBranchCondition(symbolic.Lt(v, symbolic.NewIntegerConstant(int64(low))), branch)
	case concrete > int64(high):
		m.appendBranchCondition(symbolic.Gt(v, symbolic.NewIntegerConstant(int64(high))), branch)
	default:
		m.appendBranchCondition(symbolic.Eq(v, symbolic.NewIntegerConstant(concrete)), branch)
	}
}

// LOOKUPSWITCH records the matched key, or the selector's disequality with
// every key when the default target is taken.
func (m *JumpVM) LOOKUPSWITCH(branch int, keys []int32) {
	v := m.stack().PopBv32()
	concrete := v.ConcreteValue()

	for _, key := range keys {
		if int64(key) == concrete {
			m.appendBranchCondition(symbolic.Eq(v, symbolic.NewIntegerConstant(concrete)), branch)
			return
		}
	}
	for _, key := range keys {
		m.appendBranchCondition(symbolic.Ne(v, symbolic.NewIntegerConstant(int64(key))), branch)
	}
}

// holds evaluates a comparison on concrete values.
func holds(cmp symbolic.Comparator, a, b int64) bool {
	switch cmp {
	case symbolic.EQ:
		return a == b
	case symbolic.NE:
		return a != b
	case symbolic.LT:
		return a < b
	case symbolic.LE:
		return a <= b
	case symbolic.GT:
		return a > b
	case symbolic.GE:
		return a >= b
	default:
		panic("vm: invalid comparator: " + cmp.String())
	}
}
