package symbolic

import (
	"sort"
)

// Visitor represents a visitor that can be passed to Walk().
type Visitor interface {
	// Executed for every visited node. Return nil to skip the children.
	Visit(expr Expr) Visitor
}

// Walk traverses expr depth-first, calling v.Visit for every node.
func Walk(v Visitor, expr Expr) {
	if v = v.Visit(expr); v == nil {
		return
	}

	switch expr := expr.(type) {
	case *IntegerBinaryExpr:
		Walk(v, expr.LHS)
		Walk(v, expr.RHS)
	case *IntegerUnaryExpr:
		Walk(v, expr.Expr)
	case *IntegerComparison:
		Walk(v, expr.LHS)
		Walk(v, expr.RHS)
	case *RealComparison:
		Walk(v, expr.LHS)
		Walk(v, expr.RHS)
	case *RealToIntegerCast:
		Walk(v, expr.Src)
	case *RealBinaryExpr:
		Walk(v, expr.LHS)
		Walk(v, expr.RHS)
	case *RealUnaryExpr:
		Walk(v, expr.Expr)
	case *IntegerToRealCast:
		Walk(v, expr.Src)
	case *IntegerConstant, *IntegerVariable, *RealConstant, *RealVariable,
		*StringConstant, *StringVariable, *NullReference, *ReferenceConstant:
		// leaf
	default:
		panic("unreachable")
	}
}

// Variables returns the distinct variables referenced by the given
// constraints, sorted by name.
func Variables(constraints ...Constraint) []Expr {
	v := newVariableVisitor()
	for _, c := range constraints {
		Walk(v, c.Left())
		Walk(v, c.Right())
	}

	a := make([]Expr, 0, len(v.m))
	for _, expr := range v.m {
		a = append(a, expr)
	}
	sort.Slice(a, func(i, j int) bool { return a[i].String() < a[j].String() })
	return a
}

// variableVisitor collects every variable leaf by name.
type variableVisitor struct {
	m map[string]Expr
}

func newVariableVisitor() *variableVisitor {
	return &variableVisitor{m: make(map[string]Expr)}
}

func (v *variableVisitor) Visit(expr Expr) Visitor {
	if !expr.ContainsSymbolicVariable() {
		return nil
	}

	switch expr := expr.(type) {
	case *IntegerVariable:
		v.m[expr.Name] = expr
	case *RealVariable:
		v.m[expr.Name] = expr
	case *StringVariable:
		v.m[expr.Name] = expr
	}
	return v
}
