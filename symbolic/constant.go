package symbolic

import (
	"math"
)

// Interned constants. These are never mutated and are safe to share between
// executions.
var (
	smallIntegers = [...]*IntegerConstant{
		{Value: -1},
		{Value: 0},
		{Value: 1},
		{Value: 2},
		{Value: 3},
		{Value: 4},
		{Value: 5},
	}

	smallReals = [...]*RealConstant{
		{Value: 0},
		{Value: 1},
		{Value: 2},
	}
)

// NewIntegerConstant returns a constant for value. Values in [-1, 5] return a
// shared instance; all others are freshly allocated.
func NewIntegerConstant(value int64) *IntegerConstant {
	if value >= -1 && value <= 5 {
		return smallIntegers[value+1]
	}
	return &IntegerConstant{Value: value}
}

// NewRealConstant returns a constant for value. The values 0, 1 and 2 return
// a shared instance; all others, including -0, are freshly allocated.
func NewRealConstant(value float64) *RealConstant {
	for _, c := range smallReals {
		if sameFloat(c.Value, value) {
			return c
		}
	}
	return &RealConstant{Value: value}
}

// NewBoolConstant returns the integer constant 1 for true and 0 for false.
func NewBoolConstant(value bool) *IntegerConstant {
	if value {
		return NewIntegerConstant(1)
	}
	return NewIntegerConstant(0)
}

// NewStringConstant returns a constant for value.
func NewStringConstant(value string) *StringConstant {
	return &StringConstant{Value: value}
}

// IsIntegerConstant returns true if expr is an instance of IntegerConstant.
func IsIntegerConstant(expr Expr) bool {
	_, ok := expr.(*IntegerConstant)
	return ok
}

// IsRealConstant returns true if expr is an instance of RealConstant.
func IsRealConstant(expr Expr) bool {
	_, ok := expr.(*RealConstant)
	return ok
}

// sameFloat compares the bit patterns of a and b.
func sameFloat(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
