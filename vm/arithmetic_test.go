package vm_test

import (
	"math"
	"testing"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/gofraser/evosuite-sub000/vm"
	"github.com/google/go-cmp/cmp"
)

func TestArithmeticVM_IADD(t *testing.T) {
	t.Run("Symbolic", func(t *testing.T) {
		x := newVar("x", 2)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Stack().PushBv32(symbolic.NewIntegerConstant(3))
		m.Arithmetic.IADD()

		expected := &symbolic.IntegerBinaryExpr{LHS: symbolic.NewIntegerConstant(3), Op: symbolic.ADD, RHS: x, Concrete: 5}
		if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Stack().PopBv32()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Overflow", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(math.MaxInt32))
		m.Stack().PushBv32(symbolic.NewIntegerConstant(1))
		m.Arithmetic.IADD()
		if v := m.Stack().PopBv32(); v.ConcreteValue() != math.MinInt32 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
}

func TestArithmeticVM_IDIV(t *testing.T) {
	t.Run("ConstantDivisor", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(17))
		m.Stack().PushBv32(symbolic.NewIntegerConstant(5))
		if m.Arithmetic.IDIV(5) {
			t.Fatal("unexpected fault")
		} else if v := m.Stack().PopBv32(); v != symbolic.IntegerValue(symbolic.NewIntegerConstant(3)) {
			t.Fatalf("unexpected value: %s", v)
		} else if len(m.PathCondition.Constraints()) != 0 {
			t.Fatalf("unexpected constraints: %s", m.PathCondition)
		}
	})
	t.Run("SymbolicDividend", func(t *testing.T) {
		x := newVar("x", 10)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Stack().PushBv32(symbolic.NewIntegerConstant(5))
		if m.Arithmetic.IDIV(5) {
			t.Fatal("unexpected fault")
		}

		expected := &symbolic.IntegerBinaryExpr{LHS: x, Op: symbolic.DIV, RHS: symbolic.NewIntegerConstant(5), Concrete: 2}
		if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Stack().PopBv32()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ZeroConstant", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(newVar("x", 10))
		m.Stack().PushBv32(symbolic.NewIntegerConstant(0))
		if !m.Arithmetic.IDIV(0) {
			t.Fatal("expected fault")
		} else if m.Stack().Len() != 0 {
			t.Fatalf("unexpected stack: %s", m.Stack())
		} else if len(m.PathCondition.Constraints()) != 0 {
			t.Fatalf("unexpected constraints: %s", m.PathCondition)
		}
	})
	t.Run("ZeroSymbolic", func(t *testing.T) {
		y := newVar("y", 0)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(10))
		m.Stack().PushBv32(y)
		if !m.Arithmetic.IDIV(0) {
			t.Fatal("expected fault")
		}

		expected := []symbolic.Constraint{symbolic.Eq(y, symbolic.NewIntegerConstant(0))}
		if diff := cmp.Diff(expected, m.PathCondition.Pending()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("NonZeroSymbolic", func(t *testing.T) {
		y := newVar("y", 4)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(10))
		m.Stack().PushBv32(y)
		if m.Arithmetic.IREM(4) {
			t.Fatal("unexpected fault")
		} else if v := m.Stack().PopBv32(); v.ConcreteValue() != 2 {
			t.Fatalf("unexpected value: %s", v)
		}

		expected := []symbolic.Constraint{symbolic.Ne(y, symbolic.NewIntegerConstant(0))}
		if diff := cmp.Diff(expected, m.PathCondition.Pending()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("MinIntByMinusOne", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(newVar("x", math.MinInt32))
		m.Stack().PushBv32(symbolic.NewIntegerConstant(-1))
		if m.Arithmetic.IDIV(-1) {
			t.Fatal("unexpected fault")
		} else if v := m.Stack().PopBv32(); v.ConcreteValue() != math.MinInt32 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
}

func TestArithmeticVM_LDIV(t *testing.T) {
	m := NewMachine(nil, "()V")
	m.Stack().PushBv64(symbolic.NewIntegerConstant(1))
	m.Stack().PushBv64(newLongVar("y", 0))
	if !m.Arithmetic.LDIV(0) {
		t.Fatal("expected fault")
	} else if m.PathCondition.Len() != 0 || len(m.PathCondition.Pending()) != 1 {
		t.Fatalf("unexpected constraints: %s", m.PathCondition)
	}
}

func TestArithmeticVM_Shift(t *testing.T) {
	t.Run("ISHL", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(1))
		m.Stack().PushBv32(symbolic.NewIntegerConstant(33))
		m.Arithmetic.ISHL()
		if v := m.Stack().PopBv32(); v.ConcreteValue() != 2 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("IUSHR", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(-1))
		m.Stack().PushBv32(symbolic.NewIntegerConstant(28))
		m.Arithmetic.IUSHR()
		if v := m.Stack().PopBv32(); v.ConcreteValue() != 15 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("LSHL", func(t *testing.T) {
		x := newLongVar("x", 1)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv64(x)
		m.Stack().PushBv32(symbolic.NewIntegerConstant(40))
		m.Arithmetic.LSHL()

		expected := &symbolic.IntegerBinaryExpr{LHS: x, Op: symbolic.SHL, RHS: symbolic.NewIntegerConstant(40), Concrete: 1 << 40}
		if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Stack().PopBv64()); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestArithmeticVM_Compare(t *testing.T) {
	t.Run("LCMP", func(t *testing.T) {
		x, y := newLongVar("x", 1), newLongVar("y", 2)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv64(x)
		m.Stack().PushBv64(y)
		m.Arithmetic.LCMP()

		expected := &symbolic.IntegerComparison{LHS: x, RHS: y, Concrete: -1}
		if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Stack().PopBv32()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("LCMP/Constant", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv64(symbolic.NewIntegerConstant(3))
		m.Stack().PushBv64(symbolic.NewIntegerConstant(3))
		m.Arithmetic.LCMP()
		if v := m.Stack().PopBv32(); v != symbolic.IntegerValue(symbolic.NewIntegerConstant(0)) {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("FCMPL/NaN", func(t *testing.T) {
		f := newRealVar("f", math.NaN())
		m := NewMachine(nil, "()V")
		m.Stack().PushFp32(f)
		m.Stack().PushFp32(symbolic.NewRealConstant(1))
		m.Arithmetic.FCMPL()
		if v := m.Stack().PopBv32(); v.ConcreteValue() != 1 {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("DCMPG", func(t *testing.T) {
		d := newRealVar("d", -2)
		m := NewMachine(nil, "()V")
		m.Stack().PushFp64(d)
		m.Stack().PushFp64(symbolic.NewRealConstant(1))
		m.Arithmetic.DCMPG()

		expected := &symbolic.RealComparison{LHS: d, RHS: symbolic.NewRealConstant(1), Concrete: -1}
		if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Stack().PopBv32()); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestArithmeticVM_Convert(t *testing.T) {
	t.Run("I2L", func(t *testing.T) {
		x := newVar("x", 7)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Arithmetic.I2L()
		if v := m.Stack().PopBv64(); v != symbolic.IntegerValue(x) {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("I2D", func(t *testing.T) {
		x := newVar("x", 7)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Arithmetic.I2D()

		expected := &symbolic.IntegerToRealCast{Src: x, Concrete: 7}
		if diff := cmp.Diff(symbolic.RealValue(expected), m.Stack().PopFp64()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("I2D/Constant", func(t *testing.T) {
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(symbolic.NewIntegerConstant(2))
		m.Arithmetic.I2D()
		if v := m.Stack().PopFp64(); v != symbolic.RealValue(symbolic.NewRealConstant(2)) {
			t.Fatalf("unexpected value: %s", v)
		}
	})
	t.Run("L2I", func(t *testing.T) {
		x := newLongVar("x", 1<<32+5)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv64(x)
		m.Arithmetic.L2I()

		expected := &symbolic.IntegerUnaryExpr{Op: symbolic.NARROW, Expr: x, Concrete: 5}
		if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Stack().PopBv32()); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("D2I/Saturate", func(t *testing.T) {
		for _, tt := range []struct {
			in  float64
			out int64
		}{
			{math.NaN(), 0},
			{math.Inf(1), math.MaxInt32},
			{-1e20, math.MinInt32},
			{-3.9, -3},
		} {
			m := NewMachine(nil, "()V")
			m.Stack().PushFp64(symbolic.NewRealConstant(tt.in))
			m.Arithmetic.D2I()
			if v := m.Stack().PopBv32(); v.ConcreteValue() != tt.out {
				t.Fatalf("D2I(%v): got %s, expected %d", tt.in, v, tt.out)
			}
		}
	})
	t.Run("I2B", func(t *testing.T) {
		x := newVar("x", 300)
		m := NewMachine(nil, "()V")
		m.Stack().PushBv32(x)
		m.Arithmetic.I2B()
		if v := m.Stack().PopBv32(); v != symbolic.IntegerValue(x) {
			t.Fatalf("unexpected value: %s", v)
		}
	})
}

func TestArithmeticVM_IINC(t *testing.T) {
	x := newVar("x", 4)
	m := NewMachine(nil, "(I)V", &vm.Bv32Operand{Value: x})
	m.Arithmetic.IINC(0, 3)

	expected := &symbolic.IntegerBinaryExpr{LHS: symbolic.NewIntegerConstant(3), Op: symbolic.ADD, RHS: x, Concrete: 7}
	if diff := cmp.Diff(symbolic.IntegerValue(expected), m.Env.TopFrame().Locals.GetBv32(0)); diff != "" {
		t.Fatal(diff)
	}
}

func TestArithmeticVM_DUP_X1(t *testing.T) {
	m := NewMachine(nil, "()V")
	m.Stack().PushBv32(symbolic.NewIntegerConstant(1))
	m.Stack().PushBv32(symbolic.NewIntegerConstant(2))
	m.Arithmetic.DUP_X1()
	if diff := cmp.Diff([]vm.Operand{bv32(2), bv32(1), bv32(2)}, m.Stack().Operands()); diff != "" {
		t.Fatal(diff)
	}
}
