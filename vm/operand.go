package vm

import (
	"fmt"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// Width is the storage kind of a stack or local slot.
type Width int

// Operand widths.
const (
	WidthBv32 Width = iota + 1
	WidthBv64
	WidthFp32
	WidthFp64
	WidthRef
)

var widths = [...]string{
	WidthBv32: "bv32",
	WidthBv64: "bv64",
	WidthFp32: "fp32",
	WidthFp64: "fp64",
	WidthRef:  "ref",
}

// String returns the string representation of the width.
func (w Width) String() string {
	if w >= 0 && w < Width(len(widths)) && widths[w] != "" {
		return widths[w]
	}
	return fmt.Sprintf("Width<%d>", w)
}

// Category returns 2 for double-word values (long, double) and 1 otherwise.
func (w Width) Category() int {
	if w == WidthBv64 || w == WidthFp64 {
		return 2
	}
	return 1
}

// Operand is a width-tagged cell of the operand stack or locals table.
type Operand interface {
	Width() Width
	Expr() symbolic.Expr
	String() string
}

// Bv32Operand holds an int, short, char, byte or boolean.
type Bv32Operand struct {
	Value symbolic.IntegerValue
}

func (o *Bv32Operand) Width() Width        { return WidthBv32 }
func (o *Bv32Operand) Expr() symbolic.Expr { return o.Value }
func (o *Bv32Operand) String() string      { return fmt.Sprintf("bv32:%s", o.Value) }

// Bv64Operand holds a long.
type Bv64Operand struct {
	Value symbolic.IntegerValue
}

func (o *Bv64Operand) Width() Width        { return WidthBv64 }
func (o *Bv64Operand) Expr() symbolic.Expr { return o.Value }
func (o *Bv64Operand) String() string      { return fmt.Sprintf("bv64:%s", o.Value) }

// Fp32Operand holds a float.
type Fp32Operand struct {
	Value symbolic.RealValue
}

func (o *Fp32Operand) Width() Width        { return WidthFp32 }
func (o *Fp32Operand) Expr() symbolic.Expr { return o.Value }
func (o *Fp32Operand) String() string      { return fmt.Sprintf("fp32:%s", o.Value) }

// Fp64Operand holds a double.
type Fp64Operand struct {
	Value symbolic.RealValue
}

func (o *Fp64Operand) Width() Width        { return WidthFp64 }
func (o *Fp64Operand) Expr() symbolic.Expr { return o.Value }
func (o *Fp64Operand) String() string      { return fmt.Sprintf("fp64:%s", o.Value) }

// RefOperand holds an object or array reference.
type RefOperand struct {
	Value symbolic.ReferenceExpr
}

func (o *RefOperand) Width() Width        { return WidthRef }
func (o *RefOperand) Expr() symbolic.Expr { return o.Value }
func (o *RefOperand) String() string      { return fmt.Sprintf("ref:%s", o.Value) }

// NewOperand wraps expr in the operand of width w. Panic if the expression
// kind does not fit the width.
func NewOperand(w Width, expr symbolic.Expr) Operand {
	assert(expr != nil, "nil expression for %s operand", w)

	switch w {
	case WidthBv32, WidthBv64:
		v, ok := expr.(symbolic.IntegerValue)
		assert(ok, "%s operand requires an integer expression: %T", w, expr)
		if w == WidthBv32 {
			return &Bv32Operand{Value: v}
		}
		return &Bv64Operand{Value: v}
	case WidthFp32, WidthFp64:
		v, ok := expr.(symbolic.RealValue)
		assert(ok, "%s operand requires a real expression: %T", w, expr)
		if w == WidthFp32 {
			return &Fp32Operand{Value: v}
		}
		return &Fp64Operand{Value: v}
	case WidthRef:
		v, ok := expr.(symbolic.ReferenceExpr)
		assert(ok, "ref operand requires a reference expression: %T", expr)
		return &RefOperand{Value: v}
	default:
		panic(fmt.Sprintf("vm: invalid operand width: %s", w))
	}
}
