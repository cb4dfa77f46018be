package symbolic

import (
	"fmt"
	"strconv"
)

// Expr represents a node in the symbolic expression graph. Expressions are
// immutable once built and carry the concrete value observed when they were
// created.
type Expr interface {
	String() string

	// ContainsSymbolicVariable returns true if any leaf below the node is a
	// variable. Expressions without variables are the same on every
	// execution and are never worth a constraint.
	ContainsSymbolicVariable() bool

	expr()
}

// IntegerValue is an expression with an integral concrete value. Whether it
// is 32 or 64 bits wide is decided by the slot that holds it.
type IntegerValue interface {
	Expr
	ConcreteValue() int64
	integerValue()
}

// RealValue is an expression with a floating-point concrete value. Single and
// double precision share the representation.
type RealValue interface {
	Expr
	ConcreteValue() float64
	realValue()
}

// StringValue is an expression with a string concrete value.
type StringValue interface {
	Expr
	ConcreteValue() string
	stringValue()
}

// ReferenceExpr is an expression standing for a heap object.
type ReferenceExpr interface {
	Expr
	referenceExpr()
}

func (*IntegerConstant) expr()   {}
func (*IntegerVariable) expr()   {}
func (*IntegerBinaryExpr) expr() {}
func (*IntegerUnaryExpr) expr()  {}
func (*IntegerComparison) expr() {}
func (*RealComparison) expr()    {}
func (*RealToIntegerCast) expr() {}
func (*RealConstant) expr()      {}
func (*RealVariable) expr()      {}
func (*RealBinaryExpr) expr()    {}
func (*RealUnaryExpr) expr()     {}
func (*IntegerToRealCast) expr() {}
func (*StringConstant) expr()    {}
func (*StringVariable) expr()    {}
func (*NullReference) expr()     {}
func (*ReferenceConstant) expr() {}

func (*IntegerConstant) integerValue()   {}
func (*IntegerVariable) integerValue()   {}
func (*IntegerBinaryExpr) integerValue() {}
func (*IntegerUnaryExpr) integerValue()  {}
func (*IntegerComparison) integerValue() {}
func (*RealComparison) integerValue()    {}
func (*RealToIntegerCast) integerValue() {}

func (*RealConstant) realValue()      {}
func (*RealVariable) realValue()      {}
func (*RealBinaryExpr) realValue()    {}
func (*RealUnaryExpr) realValue()     {}
func (*IntegerToRealCast) realValue() {}

func (*StringConstant) stringValue() {}
func (*StringVariable) stringValue() {}

func (*NullReference) referenceExpr()     {}
func (*ReferenceConstant) referenceExpr() {}

// IntegerConstant represents a concrete integer leaf.
type IntegerConstant struct {
	Value int64
}

func (e *IntegerConstant) ConcreteValue() int64           { return e.Value }
func (e *IntegerConstant) ContainsSymbolicVariable() bool { return false }
func (e *IntegerConstant) String() string                 { return fmt.Sprintf("(int %d)", e.Value) }

// IntegerVariable represents a symbolic integer input.
type IntegerVariable struct {
	Name     string
	Concrete int64
	Min      int64
	Max      int64
}

// NewIntegerVariable returns a variable bounded by [min, max].
func NewIntegerVariable(name string, concrete, min, max int64) *IntegerVariable {
	assert(name != "", "integer variable requires a name")
	return &IntegerVariable{Name: name, Concrete: concrete, Min: min, Max: max}
}

func (e *IntegerVariable) ConcreteValue() int64           { return e.Concrete }
func (e *IntegerVariable) ContainsSymbolicVariable() bool { return true }
func (e *IntegerVariable) String() string                 { return e.Name }

// IntegerBinaryExpr represents an operation on two integer expressions.
type IntegerBinaryExpr struct {
	LHS      IntegerValue
	Op       Operator
	RHS      IntegerValue
	Concrete int64
}

func (e *IntegerBinaryExpr) ConcreteValue() int64 { return e.Concrete }

func (e *IntegerBinaryExpr) ContainsSymbolicVariable() bool {
	return e.LHS.ContainsSymbolicVariable() || e.RHS.ContainsSymbolicVariable()
}

func (e *IntegerBinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.LHS, e.RHS)
}

// IntegerUnaryExpr represents an operation on a single integer expression.
type IntegerUnaryExpr struct {
	Op       Operator
	Expr     IntegerValue
	Concrete int64
}

func (e *IntegerUnaryExpr) ConcreteValue() int64           { return e.Concrete }
func (e *IntegerUnaryExpr) ContainsSymbolicVariable() bool { return e.Expr.ContainsSymbolicVariable() }
func (e *IntegerUnaryExpr) String() string                 { return fmt.Sprintf("(%s %s)", e.Op, e.Expr) }

// IntegerComparison represents the three-way comparison of two integers.
// Its concrete value is -1, 0 or 1.
type IntegerComparison struct {
	LHS      IntegerValue
	RHS      IntegerValue
	Concrete int64
}

func (e *IntegerComparison) ConcreteValue() int64 { return e.Concrete }

func (e *IntegerComparison) ContainsSymbolicVariable() bool {
	return e.LHS.ContainsSymbolicVariable() || e.RHS.ContainsSymbolicVariable()
}

func (e *IntegerComparison) String() string {
	return fmt.Sprintf("(cmp %s %s)", e.LHS, e.RHS)
}

// RealComparison represents the three-way comparison of two reals.
// Its concrete value is -1, 0 or 1.
type RealComparison struct {
	LHS      RealValue
	RHS      RealValue
	Concrete int64
}

func (e *RealComparison) ConcreteValue() int64 { return e.Concrete }

func (e *RealComparison) ContainsSymbolicVariable() bool {
	return e.LHS.ContainsSymbolicVariable() || e.RHS.ContainsSymbolicVariable()
}

func (e *RealComparison) String() string {
	return fmt.Sprintf("(fcmp %s %s)", e.LHS, e.RHS)
}

// RealToIntegerCast represents the conversion of a real to an integer.
type RealToIntegerCast struct {
	Src      RealValue
	Concrete int64
}

func (e *RealToIntegerCast) ConcreteValue() int64           { return e.Concrete }
func (e *RealToIntegerCast) ContainsSymbolicVariable() bool { return e.Src.ContainsSymbolicVariable() }
func (e *RealToIntegerCast) String() string                 { return fmt.Sprintf("(r2i %s)", e.Src) }

// RealConstant represents a concrete floating-point leaf.
type RealConstant struct {
	Value float64
}

func (e *RealConstant) ConcreteValue() float64         { return e.Value }
func (e *RealConstant) ContainsSymbolicVariable() bool { return false }

func (e *RealConstant) String() string {
	return fmt.Sprintf("(real %s)", strconv.FormatFloat(e.Value, 'g', -1, 64))
}

// RealVariable represents a symbolic floating-point input.
type RealVariable struct {
	Name     string
	Concrete float64
	Min      float64
	Max      float64
}

// NewRealVariable returns a variable bounded by [min, max].
func NewRealVariable(name string, concrete, min, max float64) *RealVariable {
	assert(name != "", "real variable requires a name")
	return &RealVariable{Name: name, Concrete: concrete, Min: min, Max: max}
}

func (e *RealVariable) ConcreteValue() float64         { return e.Concrete }
func (e *RealVariable) ContainsSymbolicVariable() bool { return true }
func (e *RealVariable) String() string                 { return e.Name }

// RealBinaryExpr represents an operation on two real expressions.
type RealBinaryExpr struct {
	LHS      RealValue
	Op       Operator
	RHS      RealValue
	Concrete float64
}

func (e *RealBinaryExpr) ConcreteValue() float64 { return e.Concrete }

func (e *RealBinaryExpr) ContainsSymbolicVariable() bool {
	return e.LHS.ContainsSymbolicVariable() || e.RHS.ContainsSymbolicVariable()
}

func (e *RealBinaryExpr) String() string {
	return fmt.Sprintf("(f%s %s %s)", e.Op, e.LHS, e.RHS)
}

// RealUnaryExpr represents an operation on a single real expression.
type RealUnaryExpr struct {
	Op       Operator
	Expr     RealValue
	Concrete float64
}

func (e *RealUnaryExpr) ConcreteValue() float64         { return e.Concrete }
func (e *RealUnaryExpr) ContainsSymbolicVariable() bool { return e.Expr.ContainsSymbolicVariable() }
func (e *RealUnaryExpr) String() string                 { return fmt.Sprintf("(f%s %s)", e.Op, e.Expr) }

// IntegerToRealCast represents the conversion of an integer to a real.
type IntegerToRealCast struct {
	Src      IntegerValue
	Concrete float64
}

func (e *IntegerToRealCast) ConcreteValue() float64         { return e.Concrete }
func (e *IntegerToRealCast) ContainsSymbolicVariable() bool { return e.Src.ContainsSymbolicVariable() }
func (e *IntegerToRealCast) String() string                 { return fmt.Sprintf("(i2r %s)", e.Src) }

// StringConstant represents a concrete string leaf.
type StringConstant struct {
	Value string
}

func (e *StringConstant) ConcreteValue() string          { return e.Value }
func (e *StringConstant) ContainsSymbolicVariable() bool { return false }
func (e *StringConstant) String() string                 { return fmt.Sprintf("(str %q)", e.Value) }

// StringVariable represents a symbolic string input.
type StringVariable struct {
	Name     string
	Concrete string
}

func (e *StringVariable) ConcreteValue() string          { return e.Concrete }
func (e *StringVariable) ContainsSymbolicVariable() bool { return true }
func (e *StringVariable) String() string                 { return e.Name }

// NullReference represents the null reference. Use the Null singleton.
type NullReference struct{}

// Null is the only null reference expression.
var Null = &NullReference{}

func (e *NullReference) ContainsSymbolicVariable() bool { return false }
func (e *NullReference) String() string                 { return "null" }

// ReferenceConstant represents an object or array allocated on the symbolic
// heap. Type holds the internal JVM name, e.g. "java/lang/String" or "[I".
type ReferenceConstant struct {
	ID   uint64
	Type string
}

func (e *ReferenceConstant) ContainsSymbolicVariable() bool { return false }
func (e *ReferenceConstant) String() string                 { return fmt.Sprintf("(ref %d %s)", e.ID, e.Type) }

// IsArray returns true if the reference points to an array.
func (e *ReferenceConstant) IsArray() bool {
	return len(e.Type) > 0 && e.Type[0] == '['
}

// IsConstant returns true if expr is a constant leaf of any kind.
func IsConstant(expr Expr) bool {
	switch expr.(type) {
	case *IntegerConstant, *RealConstant, *StringConstant, *NullReference, *ReferenceConstant:
		return true
	default:
		return false
	}
}

// ConcreteEqual returns true if a and b carry the same concrete value.
// Reals are compared bitwise so that NaN matches NaN.
func ConcreteEqual(a, b Expr) bool {
	switch a := a.(type) {
	case IntegerValue:
		b, ok := b.(IntegerValue)
		return ok && a.ConcreteValue() == b.ConcreteValue()
	case RealValue:
		b, ok := b.(RealValue)
		return ok && sameFloat(a.ConcreteValue(), b.ConcreteValue())
	case StringValue:
		b, ok := b.(StringValue)
		return ok && a.ConcreteValue() == b.ConcreteValue()
	case *NullReference:
		_, ok := b.(*NullReference)
		return ok
	case *ReferenceConstant:
		b, ok := b.(*ReferenceConstant)
		return ok && a.ID == b.ID
	default:
		panic(fmt.Sprintf("symbolic: unexpected expression: %T", a))
	}
}
