package symbolic

import (
	"fmt"
)

// Comparator represents the relation of a constraint.
type Comparator int

// Constraint comparators.
const (
	EQ Comparator = iota + 1
	NE
	LT
	LE
	GT
	GE
)

var comparators = [...]string{
	EQ: "==",
	NE: "!=",
	LT: "<",
	LE: "<=",
	GT: ">",
	GE: ">=",
}

// String returns the string representation of the comparator.
func (c Comparator) String() string {
	if c >= 0 && c < Comparator(len(comparators)) && comparators[c] != "" {
		return comparators[c]
	}
	return fmt.Sprintf("Comparator<%d>", c)
}

// Swap returns the comparator obtained by exchanging the operands:
// a < b holds exactly when b > a.
func (c Comparator) Swap() Comparator {
	switch c {
	case EQ, NE:
		return c
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	default:
		panic(fmt.Sprintf("symbolic: invalid comparator: %s", c))
	}
}

// Not returns the comparator that holds exactly when c does not.
func (c Comparator) Not() Comparator {
	switch c {
	case EQ:
		return NE
	case NE:
		return EQ
	case LT:
		return GE
	case LE:
		return GT
	case GT:
		return LE
	case GE:
		return LT
	default:
		panic(fmt.Sprintf("symbolic: invalid comparator: %s", c))
	}
}

// Constraint represents a relation between two expressions.
type Constraint interface {
	Left() Expr
	Comparator() Comparator
	Right() Expr
	String() string

	// Negate returns the constraint with the opposite comparator.
	Negate() Constraint

	constraint()
}

func (*IntegerConstraint) constraint() {}
func (*RealConstraint) constraint()    {}
func (*StringConstraint) constraint()  {}

// IntegerConstraint relates two integer expressions.
type IntegerConstraint struct {
	LHS IntegerValue
	Cmp Comparator
	RHS IntegerValue
}

// NewIntegerConstraint returns a new constraint lhs cmp rhs.
func NewIntegerConstraint(lhs IntegerValue, cmp Comparator, rhs IntegerValue) *IntegerConstraint {
	assert(lhs != nil && rhs != nil, "nil operand for integer constraint")
	return &IntegerConstraint{LHS: lhs, Cmp: cmp, RHS: rhs}
}

func (c *IntegerConstraint) Left() Expr             { return c.LHS }
func (c *IntegerConstraint) Comparator() Comparator { return c.Cmp }
func (c *IntegerConstraint) Right() Expr            { return c.RHS }
func (c *IntegerConstraint) Negate() Constraint     { return NewIntegerConstraint(c.LHS, c.Cmp.Not(), c.RHS) }
func (c *IntegerConstraint) String() string         { return fmt.Sprintf("%s %s %s", c.LHS, c.Cmp, c.RHS) }

// RealConstraint relates two real expressions.
type RealConstraint struct {
	LHS RealValue
	Cmp Comparator
	RHS RealValue
}

// NewRealConstraint returns a new constraint lhs cmp rhs.
func NewRealConstraint(lhs RealValue, cmp Comparator, rhs RealValue) *RealConstraint {
	assert(lhs != nil && rhs != nil, "nil operand for real constraint")
	return &RealConstraint{LHS: lhs, Cmp: cmp, RHS: rhs}
}

func (c *RealConstraint) Left() Expr             { return c.LHS }
func (c *RealConstraint) Comparator() Comparator { return c.Cmp }
func (c *RealConstraint) Right() Expr            { return c.RHS }
func (c *RealConstraint) Negate() Constraint     { return NewRealConstraint(c.LHS, c.Cmp.Not(), c.RHS) }
func (c *RealConstraint) String() string         { return fmt.Sprintf("%s %s %s", c.LHS, c.Cmp, c.RHS) }

// StringConstraint relates two string expressions. String operations are
// not modeled further; the constraint is passed through untouched.
type StringConstraint struct {
	LHS StringValue
	Cmp Comparator
	RHS StringValue
}

// NewStringConstraint returns a new constraint lhs cmp rhs.
func NewStringConstraint(lhs StringValue, cmp Comparator, rhs StringValue) *StringConstraint {
	assert(lhs != nil && rhs != nil, "nil operand for string constraint")
	return &StringConstraint{LHS: lhs, Cmp: cmp, RHS: rhs}
}

func (c *StringConstraint) Left() Expr             { return c.LHS }
func (c *StringConstraint) Comparator() Comparator { return c.Cmp }
func (c *StringConstraint) Right() Expr            { return c.RHS }
func (c *StringConstraint) Negate() Constraint     { return NewStringConstraint(c.LHS, c.Cmp.Not(), c.RHS) }
func (c *StringConstraint) String() string         { return fmt.Sprintf("%s %s %s", c.LHS, c.Cmp, c.RHS) }

// IsSymbolic returns true if either side of c contains a symbolic variable.
func IsSymbolic(c Constraint) bool {
	return c.Left().ContainsSymbolicVariable() || c.Right().ContainsSymbolicVariable()
}

// Eq returns the constraint lhs == rhs.
func Eq(lhs, rhs IntegerValue) *IntegerConstraint { return NewIntegerConstraint(lhs, EQ, rhs) }

// Ne returns the constraint lhs != rhs.
func Ne(lhs, rhs IntegerValue) *IntegerConstraint { return NewIntegerConstraint(lhs, NE, rhs) }

// Lt returns the constraint lhs < rhs.
func Lt(lhs, rhs IntegerValue) *IntegerConstraint { return NewIntegerConstraint(lhs, LT, rhs) }

// Le returns the constraint lhs <= rhs.
func Le(lhs, rhs IntegerValue) *IntegerConstraint { return NewIntegerConstraint(lhs, LE, rhs) }

// Gt returns the constraint lhs > rhs.
func Gt(lhs, rhs IntegerValue) *IntegerConstraint { return NewIntegerConstraint(lhs, GT, rhs) }

// Ge returns the constraint lhs >= rhs.
func Ge(lhs, rhs IntegerValue) *IntegerConstraint { return NewIntegerConstraint(lhs, GE, rhs) }
