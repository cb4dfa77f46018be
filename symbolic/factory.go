package symbolic

import (
	"fmt"
)

// NewIntegerBinaryExpr returns an expression for lhs op rhs whose concrete
// value is concrete. The result is folded and simplified where possible.
func NewIntegerBinaryExpr(lhs IntegerValue, op Operator, rhs IntegerValue, concrete int64) IntegerValue {
	assert(lhs != nil && rhs != nil, "nil operand for %s", op)
	assert(op.IsArithmetic() || op.IsBitwise(), "invalid integer binary operator: %s", op)

	lhs, rhs = concretizeInteger(lhs), concretizeInteger(rhs)

	switch op {
	case ADD:
		return newIntegerAdd(lhs, rhs, concrete)
	case SUB:
		return newIntegerSub(lhs, rhs, concrete)
	case MUL:
		return newIntegerMul(lhs, rhs, concrete)
	case DIV, REM:
		return newIntegerDivRem(op, lhs, rhs, concrete)
	case AND, OR, XOR, SHL, SHR, USHR:
		return newIntegerBitwise(op, lhs, rhs, concrete)
	default:
		panic(fmt.Sprintf("symbolic: invalid integer binary operator: %s", op))
	}
}

// concretizeInteger replaces an expression without variables by a constant
// of its concrete value.
func concretizeInteger(e IntegerValue) IntegerValue {
	if _, ok := e.(*IntegerConstant); ok || e.ContainsSymbolicVariable() {
		return e
	}
	return NewIntegerConstant(e.ConcreteValue())
}

// newIntegerAdd returns the expression representing the sum of lhs & rhs.
func newIntegerAdd(lhs, rhs IntegerValue, concrete int64) IntegerValue {
	// Move constant expression to left hand side.
	if !IsIntegerConstant(lhs) && IsIntegerConstant(rhs) {
		lhs, rhs = rhs, lhs
	}

	if lhs, ok := lhs.(*IntegerConstant); ok {
		if lhs.Value == 0 {
			return rhs
		} else if IsIntegerConstant(rhs) {
			return NewIntegerConstant(concrete)
		}

		// Merge constant LHS with constant in RHS addition: X + (Y+z) == (X+Y) + z
		if rhs, ok := rhs.(*IntegerBinaryExpr); ok && rhs.Op == ADD {
			if k, ok := rhs.LHS.(*IntegerConstant); ok {
				return newIntegerAdd(NewIntegerConstant(lhs.Value+k.Value), rhs.RHS, concrete)
			}
		}
	}
	return &IntegerBinaryExpr{LHS: lhs, Op: ADD, RHS: rhs, Concrete: concrete}
}

// newIntegerSub returns an expression representing the difference of lhs & rhs.
func newIntegerSub(lhs, rhs IntegerValue, concrete int64) IntegerValue {
	if IsIntegerConstant(lhs) && IsIntegerConstant(rhs) {
		return NewIntegerConstant(concrete)
	}
	return &IntegerBinaryExpr{LHS: lhs, Op: SUB, RHS: rhs, Concrete: concrete}
}

// newIntegerMul returns an expression that represents the product of lhs & rhs.
func newIntegerMul(lhs, rhs IntegerValue, concrete int64) IntegerValue {
	// If constant is on right side, swap to left side.
	if !IsIntegerConstant(lhs) && IsIntegerConstant(rhs) {
		lhs, rhs = rhs, lhs
	}

	if lhs, ok := lhs.(*IntegerConstant); ok {
		switch {
		case lhs.Value == 0:
			return NewIntegerConstant(0)
		case lhs.Value == 1:
			return rhs
		case IsIntegerConstant(rhs):
			return NewIntegerConstant(concrete)
		}
	}
	return &IntegerBinaryExpr{LHS: lhs, Op: MUL, RHS: rhs, Concrete: concrete}
}

// newIntegerDivRem returns an expression that represents the quotient or
// remainder of lhs divided by rhs. A zero divisor is rejected before the
// expression is built, so zero divided by anything is zero.
func newIntegerDivRem(op Operator, lhs, rhs IntegerValue, concrete int64) IntegerValue {
	if lhs, ok := lhs.(*IntegerConstant); ok {
		if lhs.Value == 0 {
			return NewIntegerConstant(0)
		} else if IsIntegerConstant(rhs) {
			return NewIntegerConstant(concrete)
		}
	}
	return &IntegerBinaryExpr{LHS: lhs, Op: op, RHS: rhs, Concrete: concrete}
}

// newIntegerBitwise returns a bitwise or shift expression, folded if both
// sides are constant.
func newIntegerBitwise(op Operator, lhs, rhs IntegerValue, concrete int64) IntegerValue {
	if IsIntegerConstant(lhs) && IsIntegerConstant(rhs) {
		return NewIntegerConstant(concrete)
	}
	return &IntegerBinaryExpr{LHS: lhs, Op: op, RHS: rhs, Concrete: concrete}
}

// NewIntegerUnaryExpr returns an expression for op applied to x.
func NewIntegerUnaryExpr(op Operator, x IntegerValue, concrete int64) IntegerValue {
	assert(x != nil, "nil operand for %s", op)
	assert(op.IsUnary(), "invalid integer unary operator: %s", op)

	if !x.ContainsSymbolicVariable() {
		return NewIntegerConstant(concrete)
	}
	return &IntegerUnaryExpr{Op: op, Expr: x, Concrete: concrete}
}

// NewIntegerComparison returns the three-way comparison of lhs & rhs.
func NewIntegerComparison(lhs, rhs IntegerValue, concrete int64) IntegerValue {
	assert(lhs != nil && rhs != nil, "nil operand for integer comparison")
	assert(concrete >= -1 && concrete <= 1, "invalid comparison result: %d", concrete)

	lhs, rhs = concretizeInteger(lhs), concretizeInteger(rhs)
	if IsIntegerConstant(lhs) && IsIntegerConstant(rhs) {
		return NewIntegerConstant(concrete)
	}
	return &IntegerComparison{LHS: lhs, RHS: rhs, Concrete: concrete}
}

// NewRealToIntegerCast returns x converted to an integer.
func NewRealToIntegerCast(x RealValue, concrete int64) IntegerValue {
	assert(x != nil, "nil operand for real to integer cast")

	if !x.ContainsSymbolicVariable() {
		return NewIntegerConstant(concrete)
	}
	return &RealToIntegerCast{Src: x, Concrete: concrete}
}

// NewRealBinaryExpr returns an expression for lhs op rhs whose concrete value
// is concrete.
//
// Only the rules that hold under IEEE 754 are applied: 0+x and 1*x reduce to
// x, but 0*x and 0/x are kept because x may be NaN, infinite or negative.
// NewIntegerBinaryExpr, by contrast, folds 0*x and 0/x to 0.
func NewRealBinaryExpr(lhs RealValue, op Operator, rhs RealValue, concrete float64) RealValue {
	assert(lhs != nil && rhs != nil, "nil operand for %s", op)
	assert(op.IsArithmetic(), "invalid real binary operator: %s", op)

	lhs, rhs = concretizeReal(lhs), concretizeReal(rhs)

	if IsRealConstant(lhs) && IsRealConstant(rhs) {
		return NewRealConstant(concrete)
	}

	if op.IsCommutative() && !IsRealConstant(lhs) && IsRealConstant(rhs) {
		lhs, rhs = rhs, lhs
	}

	if k, ok := lhs.(*RealConstant); ok {
		switch {
		case op == ADD && sameFloat(k.Value, 0):
			return rhs
		case op == MUL && k.Value == 1:
			return rhs
		}
	}
	return &RealBinaryExpr{LHS: lhs, Op: op, RHS: rhs, Concrete: concrete}
}

// concretizeReal replaces an expression without variables by a constant of
// its concrete value.
func concretizeReal(e RealValue) RealValue {
	if _, ok := e.(*RealConstant); ok || e.ContainsSymbolicVariable() {
		return e
	}
	return NewRealConstant(e.ConcreteValue())
}

// NewRealUnaryExpr returns an expression for op applied to x.
func NewRealUnaryExpr(op Operator, x RealValue, concrete float64) RealValue {
	assert(x != nil, "nil operand for %s", op)
	assert(op.IsUnary(), "invalid real unary operator: %s", op)

	if !x.ContainsSymbolicVariable() {
		return NewRealConstant(concrete)
	}
	return &RealUnaryExpr{Op: op, Expr: x, Concrete: concrete}
}

// NewRealComparison returns the three-way comparison of lhs & rhs.
func NewRealComparison(lhs, rhs RealValue, concrete int64) IntegerValue {
	assert(lhs != nil && rhs != nil, "nil operand for real comparison")
	assert(concrete >= -1 && concrete <= 1, "invalid comparison result: %d", concrete)

	lhs, rhs = concretizeReal(lhs), concretizeReal(rhs)
	if IsRealConstant(lhs) && IsRealConstant(rhs) {
		return NewIntegerConstant(concrete)
	}
	return &RealComparison{LHS: lhs, RHS: rhs, Concrete: concrete}
}

// NewIntegerToRealCast returns x converted to a real.
func NewIntegerToRealCast(x IntegerValue, concrete float64) RealValue {
	assert(x != nil, "nil operand for integer to real cast")

	if !x.ContainsSymbolicVariable() {
		return NewRealConstant(concrete)
	}
	return &IntegerToRealCast{Src: x, Concrete: concrete}
}
