package symbolic_test

import (
	"math"
	"testing"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/google/go-cmp/cmp"
)

func newVar(name string, concrete int64) *symbolic.IntegerVariable {
	return symbolic.NewIntegerVariable(name, concrete, math.MinInt32, math.MaxInt32)
}

func newRealVar(name string, concrete float64) *symbolic.RealVariable {
	return symbolic.NewRealVariable(name, concrete, -math.MaxFloat64, math.MaxFloat64)
}

func TestNewIntegerBinaryExpr_Fold(t *testing.T) {
	for _, tt := range []struct {
		op       symbolic.Operator
		a, b     int64
		concrete int64
	}{
		{symbolic.ADD, 40, 2, 42},
		{symbolic.SUB, 40, 2, 38},
		{symbolic.MUL, 40, 2, 80},
		{symbolic.DIV, 40, 3, 13},
		{symbolic.REM, 40, 3, 1},
		{symbolic.DIV, -7, 2, -3},
		{symbolic.REM, -7, 2, -1},
		{symbolic.AND, 12, 10, 8},
		{symbolic.SHL, 1, 4, 16},
	} {
		t.Run(tt.op.String(), func(t *testing.T) {
			got := symbolic.NewIntegerBinaryExpr(symbolic.NewIntegerConstant(tt.a), tt.op, symbolic.NewIntegerConstant(tt.b), tt.concrete)
			if diff := cmp.Diff(symbolic.NewIntegerConstant(tt.concrete), got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestNewIntegerBinaryExpr_ADD(t *testing.T) {
	t.Run("ZeroIdentity", func(t *testing.T) {
		x := newVar("x", 9)
		if got := symbolic.NewIntegerBinaryExpr(symbolic.NewIntegerConstant(0), symbolic.ADD, x, 9); got != x {
			t.Fatalf("expected same node, got %s", got)
		}
	})
	t.Run("ZeroIdentityRHS", func(t *testing.T) {
		x := newVar("x", 9)
		if got := symbolic.NewIntegerBinaryExpr(x, symbolic.ADD, symbolic.NewIntegerConstant(0), 9); got != x {
			t.Fatalf("expected same node, got %s", got)
		}
	})
	t.Run("ConstantMovedLeft", func(t *testing.T) {
		x := newVar("x", 9)
		if diff := cmp.Diff(
			&symbolic.IntegerBinaryExpr{LHS: symbolic.NewIntegerConstant(3), Op: symbolic.ADD, RHS: x, Concrete: 12},
			symbolic.NewIntegerBinaryExpr(x, symbolic.ADD, symbolic.NewIntegerConstant(3), 12),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OrderPreserved", func(t *testing.T) {
		x, y := newVar("x", 1), newVar("y", 2)
		if diff := cmp.Diff(
			&symbolic.IntegerBinaryExpr{LHS: y, Op: symbolic.ADD, RHS: x, Concrete: 3},
			symbolic.NewIntegerBinaryExpr(y, symbolic.ADD, x, 3),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Associative", func(t *testing.T) {
		x := newVar("x", 1)
		inner := symbolic.NewIntegerBinaryExpr(symbolic.NewIntegerConstant(10), symbolic.ADD, x, 11)
		if diff := cmp.Diff(
			&symbolic.IntegerBinaryExpr{LHS: symbolic.NewIntegerConstant(30), Op: symbolic.ADD, RHS: x, Concrete: 31},
			symbolic.NewIntegerBinaryExpr(symbolic.NewIntegerConstant(20), symbolic.ADD, inner, 31),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ConcreteOperandRenormalized", func(t *testing.T) {
		// A subtree without variables collapses to a constant leaf.
		x := newVar("x", 1)
		concrete := &symbolic.IntegerBinaryExpr{
			LHS:      symbolic.NewIntegerConstant(6),
			Op:       symbolic.MUL,
			RHS:      symbolic.NewIntegerConstant(7),
			Concrete: 42,
		}
		if diff := cmp.Diff(
			&symbolic.IntegerBinaryExpr{LHS: symbolic.NewIntegerConstant(42), Op: symbolic.ADD, RHS: x, Concrete: 43},
			symbolic.NewIntegerBinaryExpr(x, symbolic.ADD, concrete, 43),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewIntegerBinaryExpr_SUB(t *testing.T) {
	x := newVar("x", 5)
	if diff := cmp.Diff(
		&symbolic.IntegerBinaryExpr{LHS: x, Op: symbolic.SUB, RHS: symbolic.NewIntegerConstant(1), Concrete: 4},
		symbolic.NewIntegerBinaryExpr(x, symbolic.SUB, symbolic.NewIntegerConstant(1), 4),
	); diff != "" {
		t.Fatal(diff)
	}
}

func TestNewIntegerBinaryExpr_MUL(t *testing.T) {
	t.Run("ZeroAbsorbs", func(t *testing.T) {
		x := newVar("x", 5)
		if got := symbolic.NewIntegerBinaryExpr(symbolic.NewIntegerConstant(0), symbolic.MUL, x, 0); got != symbolic.NewIntegerConstant(0) {
			t.Fatalf("expected interned zero, got %s", got)
		}
		if got := symbolic.NewIntegerBinaryExpr(x, symbolic.MUL, symbolic.NewIntegerConstant(0), 0); got != symbolic.NewIntegerConstant(0) {
			t.Fatalf("expected interned zero, got %s", got)
		}
	})
	t.Run("OneIdentity", func(t *testing.T) {
		x := newVar("x", 5)
		if got := symbolic.NewIntegerBinaryExpr(x, symbolic.MUL, symbolic.NewIntegerConstant(1), 5); got != x {
			t.Fatalf("expected same node, got %s", got)
		}
	})
	t.Run("Symbolic", func(t *testing.T) {
		x, y := newVar("x", 2), newVar("y", 3)
		if diff := cmp.Diff(
			&symbolic.IntegerBinaryExpr{LHS: x, Op: symbolic.MUL, RHS: y, Concrete: 6},
			symbolic.NewIntegerBinaryExpr(x, symbolic.MUL, y, 6),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewIntegerBinaryExpr_DIV(t *testing.T) {
	t.Run("ZeroDividend", func(t *testing.T) {
		x := newVar("x", 5)
		for _, op := range []symbolic.Operator{symbolic.DIV, symbolic.REM} {
			if got := symbolic.NewIntegerBinaryExpr(symbolic.NewIntegerConstant(0), op, x, 0); got != symbolic.NewIntegerConstant(0) {
				t.Fatalf("%s: expected interned zero, got %s", op, got)
			}
		}
	})
	t.Run("NotCommuted", func(t *testing.T) {
		x := newVar("x", 10)
		if diff := cmp.Diff(
			&symbolic.IntegerBinaryExpr{LHS: x, Op: symbolic.DIV, RHS: symbolic.NewIntegerConstant(5), Concrete: 2},
			symbolic.NewIntegerBinaryExpr(x, symbolic.DIV, symbolic.NewIntegerConstant(5), 2),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewIntegerBinaryExpr_InvalidOperator(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	symbolic.NewIntegerBinaryExpr(newVar("x", 1), symbolic.NEG, newVar("y", 1), 0)
}

func TestNewIntegerUnaryExpr(t *testing.T) {
	t.Run("Constant", func(t *testing.T) {
		if diff := cmp.Diff(
			symbolic.NewIntegerConstant(-7),
			symbolic.NewIntegerUnaryExpr(symbolic.NEG, symbolic.NewIntegerConstant(7), -7),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("Symbolic", func(t *testing.T) {
		x := newVar("x", 7)
		if diff := cmp.Diff(
			&symbolic.IntegerUnaryExpr{Op: symbolic.NEG, Expr: x, Concrete: -7},
			symbolic.NewIntegerUnaryExpr(symbolic.NEG, x, -7),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewIntegerComparison(t *testing.T) {
	t.Run("Constant", func(t *testing.T) {
		if got := symbolic.NewIntegerComparison(symbolic.NewIntegerConstant(1), symbolic.NewIntegerConstant(2), -1); got != symbolic.NewIntegerConstant(-1) {
			t.Fatalf("unexpected expr: %s", got)
		}
	})
	t.Run("Symbolic", func(t *testing.T) {
		x := newVar("x", 3)
		if diff := cmp.Diff(
			&symbolic.IntegerComparison{LHS: x, RHS: symbolic.NewIntegerConstant(3), Concrete: 0},
			symbolic.NewIntegerComparison(x, symbolic.NewIntegerConstant(3), 0),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestNewRealBinaryExpr(t *testing.T) {
	t.Run("Fold", func(t *testing.T) {
		if diff := cmp.Diff(
			symbolic.NewRealConstant(3.75),
			symbolic.NewRealBinaryExpr(symbolic.NewRealConstant(1.5), symbolic.MUL, symbolic.NewRealConstant(2.5), 3.75),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("ZeroIdentity", func(t *testing.T) {
		x := newRealVar("x", 1.5)
		if got := symbolic.NewRealBinaryExpr(x, symbolic.ADD, symbolic.NewRealConstant(0), 1.5); got != x {
			t.Fatalf("expected same node, got %s", got)
		}
	})
	t.Run("ZeroNotAbsorbing", func(t *testing.T) {
		x := newRealVar("x", 1.5)
		if diff := cmp.Diff(
			&symbolic.RealBinaryExpr{LHS: symbolic.NewRealConstant(0), Op: symbolic.MUL, RHS: x, Concrete: 0},
			symbolic.NewRealBinaryExpr(x, symbolic.MUL, symbolic.NewRealConstant(0), 0),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("OneIdentity", func(t *testing.T) {
		x := newRealVar("x", 1.5)
		if got := symbolic.NewRealBinaryExpr(symbolic.NewRealConstant(1), symbolic.MUL, x, 1.5); got != x {
			t.Fatalf("expected same node, got %s", got)
		}
	})
}

func TestCasts(t *testing.T) {
	t.Run("ConstantIntegerToReal", func(t *testing.T) {
		if diff := cmp.Diff(
			symbolic.NewRealConstant(3),
			symbolic.NewIntegerToRealCast(symbolic.NewIntegerConstant(3), 3),
		); diff != "" {
			t.Fatal(diff)
		}
	})
	t.Run("SymbolicRealToInteger", func(t *testing.T) {
		x := newRealVar("x", 3.9)
		if diff := cmp.Diff(
			&symbolic.RealToIntegerCast{Src: x, Concrete: 3},
			symbolic.NewRealToIntegerCast(x, 3),
		); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestExpr_String(t *testing.T) {
	x := newVar("x", 1)
	expr := symbolic.NewIntegerBinaryExpr(x, symbolic.ADD, symbolic.NewIntegerConstant(10), 11)
	if s := expr.String(); s != "(add (int 10) x)" {
		t.Fatalf("unexpected string: %s", s)
	}
}
