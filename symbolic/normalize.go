package symbolic

import (
	"fmt"
)

// Normalize rewrites a constraint over a three-way comparison and a constant
// threshold, such as cmp(x, y) == 0, into a direct relation between the
// compared operands, x == y. Constraints of any other shape are returned
// unchanged.
func Normalize(c Constraint) Constraint {
	switch c := c.(type) {
	case *IntegerConstraint:
		return normalizeIntegerConstraint(c)
	default:
		return c
	}
}

func normalizeIntegerConstraint(c *IntegerConstraint) Constraint {
	// Comparison on the left: cmp(x, y) op k
	if k, ok := c.RHS.(*IntegerConstant); ok {
		switch cmp := c.LHS.(type) {
		case *IntegerComparison:
			return NewIntegerConstraint(cmp.LHS, normalizeComparator(c.Cmp, k.Value), cmp.RHS)
		case *RealComparison:
			return NewRealConstraint(cmp.LHS, normalizeComparator(c.Cmp, k.Value), cmp.RHS)
		}
	}

	// Comparison on the right: k op cmp(x, y)
	if k, ok := c.LHS.(*IntegerConstant); ok {
		switch cmp := c.RHS.(type) {
		case *IntegerComparison:
			return NewIntegerConstraint(cmp.LHS, normalizeComparator(c.Cmp.Swap(), -k.Value), cmp.RHS)
		case *RealComparison:
			return NewRealConstraint(cmp.LHS, normalizeComparator(c.Cmp.Swap(), -k.Value), cmp.RHS)
		}
	}
	return c
}

// normalizeComparator returns the relation between the operands of a
// three-way comparison that "comparison op value" implies.
func normalizeComparator(op Comparator, value int64) Comparator {
	switch op {
	case EQ:
		if value < 0 {
			return LT
		} else if value == 0 {
			return EQ
		}
		return GT
	case NE:
		if value < 0 {
			return GE
		} else if value == 0 {
			return NE
		}
		return LE
	case LT:
		if value <= 0 {
			return LT
		}
		return LE
	case LE:
		if value < 0 {
			return LT
		}
		return LE
	case GT:
		if value < 0 {
			return GE
		}
		return GT
	case GE:
		if value <= 0 {
			return GE
		}
		return GT
	default:
		panic(fmt.Sprintf("symbolic: cannot normalize comparator: %s", op))
	}
}
