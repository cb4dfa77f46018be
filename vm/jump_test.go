package vm_test

import (
	"testing"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/google/go-cmp/cmp"
)

func TestJumpVM_IF(t *testing.T) {
	t.Run("Taken", func(t *testing.T) {
		x := newVar("x", 0)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Jump.IFEQ(1)

		expected := []symbolic.Constraint{symbolic.Eq(x, symbolic.NewIntegerConstant(0))}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NotTaken", func(t *testing.T) {
		x := newVar("x", 5)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Jump.IFLE(1)

		expected := []symbolic.Constraint{symbolic.Gt(x, symbolic.NewIntegerConstant(0))}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Concrete", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(1))
		m.Jump.IFNE(1)
		if m.PathCondition.Len() != 0 {
			t.Fatalf("unexpected constraints: %s", m.PathCondition)
		}
	})
	t.Run("AfterLCMP", func(t *testing.T) {
		x, y := newLongVar("x", 3), newLongVar("y", 2)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv64(x)
		m.Stack().PushBv64(y)
		m.Arithmetic.LCMP()
		m.Jump.IFGE(7)

		expected := []symbolic.Constraint{symbolic.Ge(x, y)}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("AfterDCMPL", func(t *testing.T) {
		d := newRealVar("d", 0.5)
		m := NewMachine(nil, "()V")
		m.Stack().PushFp64(d)
		m.Stack().PushFp64(symbolic.NewRealConstant(1))
		m.Arithmetic.DCMPL()
		m.Jump.IFGE(7)

		expected := []symbolic.Constraint{symbolic.NewRealConstraint(d, symbolic.LT, symbolic.NewRealConstant(1))}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestJumpVM_IF_ICMP(t *testing.T) {
	x, y := newVar("x", 1), newVar("y", 2)
	m := NewMachine(nil, "()V")
	m.Stack().PushBv32(x)
	m.Stack().PushBv32(y)
	m.Jump.IF_ICMPGE(2)

	conds := m.PathCondition.Conditions()
	if len(conds) != 1 {
		t.Fatalf("unexpected conditions: %s", m.PathCondition)
	} else if diff := cmp.Diff(symbolic.Constraint(symbolic.Lt(x, y)), conds[0].Constraint); diff != "" {
		t.Fatal(diff)
	} else if conds[0].ClassName != "T" || conds[0].MethodName != "m" || conds[0].BranchIndex != 2 {
		t.Fatalf("unexpected condition: %+v", conds[0])
	}
}

func TestJumpVM_IF_ACMP(t *testing.T) {
	m := NewMachine(nil, "()V")
	m.Stack().PushRef(symbolic.Null)
	m.Stack().PushRef(symbolic.Null)
	m.Jump.IF_ACMPEQ(0)
	m.Stack().PushRef(symbolic.Null)
	m.Jump.IFNULL(1)
	if m.Stack().Len() != 0 || m.PathCondition.Len() != 0 {
		t.Fatalf("unexpected state: %s %s", m.Stack(), m.PathCondition)
	}
}

func TestJumpVM_TABLESWITCH(t *testing.T) {
	t.Run("Case", func(t *testing.T) {
		x := newVar("x", 2)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Jump.TABLESWITCH(0, 1, 3)

		expected := []symbolic.Constraint{symbolic.Eq(x, symbolic.NewIntegerConstant(2))}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Default", func(t *testing.T) {
		x := newVar("x", 9)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Jump.TABLESWITCH(0, 1, 3)

		expected := []symbolic.Constraint{symbolic.Gt(x, symbolic.NewIntegerConstant(3))}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestJumpVM_LOOKUPSWITCH(t *testing.T) {
	t.Run("Case", func(t *testing.T) {
		x := newVar("x", 20)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Jump.LOOKUPSWITCH(0, []int32{10, 20})

		expected := []symbolic.Constraint{symbolic.Eq(x, symbolic.NewIntegerConstant(20))}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Default", func(t *testing.T) {
		x := newVar("x", 0)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Jump.LOOKUPSWITCH(0, []int32{10, 20})

		expected := []symbolic.Constraint{
			symbolic.Ne(x, symbolic.NewIntegerConstant(10)),
			symbolic.Ne(x, symbolic.NewIntegerConstant(20)),
		}
		if diff := cmp.Diff(expected, m.PathCondition.Constraints()); diff != "" {
			t.Fatal(diff)
		}
	})
}
