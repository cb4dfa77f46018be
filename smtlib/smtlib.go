// Package smtlib renders path conditions as SMT-LIB v2 scripts so they can
// be handed to an external solver.
package smtlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// ErrUnsupported is returned for expressions that have no counterpart in
// the integer and real theories, such as bitwise operators.
var ErrUnsupported = errors.New("unsupported expression")

// Error represents an expression that could not be encoded.
type Error struct {
	Op   string
	Expr symbolic.Expr
	Err  error
}

// Error returns the error as a string.
func (e *Error) Error() string {
	return fmt.Sprintf("smtlib.%s: %s: %s", e.Op, e.Expr, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Stats holds encoder statistics.
type Stats struct {
	EncodeN    int
	AssertN    int
	EncodeTime time.Duration
}

// Encoder writes constraint sets as SMT-LIB v2 scripts.
type Encoder struct {
	w     io.Writer
	stats Stats
}

// NewEncoder returns an encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Stats returns statistics for the encoder.
func (enc *Encoder) Stats() Stats {
	return enc.stats
}

// Encode is a convenience function for encoding a single script to w.
func Encode(w io.Writer, constraints []symbolic.Constraint) error {
	return NewEncoder(w).Encode(constraints)
}

// Encode writes a script declaring every variable of constraints together
// with its bounds, asserting each constraint and checking satisfiability.
// Nothing is written if any constraint cannot be encoded.
func (enc *Encoder) Encode(constraints []symbolic.Constraint) error {
	t := time.Now()
	defer func() {
		enc.stats.EncodeN++
		enc.stats.EncodeTime += time.Since(t)
	}()

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "(set-option :produce-models true)")

	for _, v := range symbolic.Variables(constraints...) {
		if err := writeDeclaration(&buf, v); err != nil {
			return err
		}
	}

	for _, c := range constraints {
		s, err := toConstraint(c)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "(assert %s)\n", s)
		enc.stats.AssertN++
	}

	fmt.Fprintln(&buf, "(check-sat)")
	fmt.Fprintln(&buf, "(get-model)")

	_, err := enc.w.Write(buf.Bytes())
	return err
}

func writeDeclaration(buf *bytes.Buffer, v symbolic.Expr) error {
	switch v := v.(type) {
	case *symbolic.IntegerVariable:
		name := symbol(v.Name)
		fmt.Fprintf(buf, "(declare-const %s Int)\n", name)
		fmt.Fprintf(buf, "(assert (and (>= %s %s) (<= %s %s)))\n", name, intLiteral(v.Min), name, intLiteral(v.Max))
	case *symbolic.RealVariable:
		name := symbol(v.Name)
		fmt.Fprintf(buf, "(declare-const %s Real)\n", name)
		if min, err := realLiteral(v.Min); err == nil && v.Min > -math.MaxFloat64 {
			fmt.Fprintf(buf, "(assert (>= %s %s))\n", name, min)
		}
		if max, err := realLiteral(v.Max); err == nil && v.Max < math.MaxFloat64 {
			fmt.Fprintf(buf, "(assert (<= %s %s))\n", name, max)
		}
	case *symbolic.StringVariable:
		fmt.Fprintf(buf, "(declare-const %s String)\n", symbol(v.Name))
	default:
		return &Error{Op: "writeDeclaration", Expr: v, Err: ErrUnsupported}
	}
	return nil
}

// toConstraint returns the boolean term for c.
func toConstraint(c symbolic.Constraint) (string, error) {
	lhs, err := toTerm(c.Left())
	if err != nil {
		return "", err
	}
	rhs, err := toTerm(c.Right())
	if err != nil {
		return "", err
	}

	if _, ok := c.(*symbolic.StringConstraint); ok {
		return toStringComparison(c.Comparator(), lhs, rhs)
	}

	switch c.Comparator() {
	case symbolic.EQ:
		return fmt.Sprintf("(= %s %s)", lhs, rhs), nil
	case symbolic.NE:
		return fmt.Sprintf("(not (= %s %s))", lhs, rhs), nil
	case symbolic.LT:
		return fmt.Sprintf("(< %s %s)", lhs, rhs), nil
	case symbolic.LE:
		return fmt.Sprintf("(<= %s %s)", lhs, rhs), nil
	case symbolic.GT:
		return fmt.Sprintf("(> %s %s)", lhs, rhs), nil
	case symbolic.GE:
		return fmt.Sprintf("(>= %s %s)", lhs, rhs), nil
	default:
		return "", fmt.Errorf("smtlib.toConstraint: invalid comparator: %s", c.Comparator())
	}
}

func toStringComparison(cmp symbolic.Comparator, lhs, rhs string) (string, error) {
	switch cmp {
	case symbolic.EQ:
		return fmt.Sprintf("(= %s %s)", lhs, rhs), nil
	case symbolic.NE:
		return fmt.Sprintf("(not (= %s %s))", lhs, rhs), nil
	case symbolic.LT:
		return fmt.Sprintf("(str.< %s %s)", lhs, rhs), nil
	case symbolic.LE:
		return fmt.Sprintf("(str.<= %s %s)", lhs, rhs), nil
	case symbolic.GT:
		return fmt.Sprintf("(str.< %s %s)", rhs, lhs), nil
	case symbolic.GE:
		return fmt.Sprintf("(str.<= %s %s)", rhs, lhs), nil
	default:
		return "", fmt.Errorf("smtlib.toStringComparison: invalid comparator: %s", cmp)
	}
}

// toTerm returns the SMT-LIB term for expr.
func toTerm(expr symbolic.Expr) (string, error) {
	switch expr := expr.(type) {
	case *symbolic.IntegerConstant:
		return intLiteral(expr.Value), nil
	case *symbolic.IntegerVariable:
		return symbol(expr.Name), nil
	case *symbolic.IntegerBinaryExpr:
		return toIntegerBinaryTerm(expr)
	case *symbolic.IntegerUnaryExpr:
		return toUnaryTerm(expr, expr.Op, expr.Expr)
	case *symbolic.IntegerComparison:
		return toComparisonTerm(expr.LHS, expr.RHS)
	case *symbolic.RealComparison:
		return toComparisonTerm(expr.LHS, expr.RHS)
	case *symbolic.RealToIntegerCast:
		return toRealToIntegerTerm(expr)
	case *symbolic.RealConstant:
		s, err := realLiteral(expr.Value)
		if err != nil {
			return "", &Error{Op: "toTerm", Expr: expr, Err: err}
		}
		return s, nil
	case *symbolic.RealVariable:
		return symbol(expr.Name), nil
	case *symbolic.RealBinaryExpr:
		return toRealBinaryTerm(expr)
	case *symbolic.RealUnaryExpr:
		return toUnaryTerm(expr, expr.Op, expr.Expr)
	case *symbolic.IntegerToRealCast:
		src, err := toTerm(expr.Src)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(to_real %s)", src), nil
	case *symbolic.StringConstant:
		return stringLiteral(expr.Value), nil
	case *symbolic.StringVariable:
		return symbol(expr.Name), nil
	default:
		return "", &Error{Op: "toTerm", Expr: expr, Err: ErrUnsupported}
	}
}

func toIntegerBinaryTerm(expr *symbolic.IntegerBinaryExpr) (string, error) {
	lhs, err := toTerm(expr.LHS)
	if err != nil {
		return "", err
	}
	rhs, err := toTerm(expr.RHS)
	if err != nil {
		return "", err
	}

	switch expr.Op {
	case symbolic.ADD:
		return fmt.Sprintf("(+ %s %s)", lhs, rhs), nil
	case symbolic.SUB:
		return fmt.Sprintf("(- %s %s)", lhs, rhs), nil
	case symbolic.MUL:
		return fmt.Sprintf("(* %s %s)", lhs, rhs), nil
	case symbolic.DIV:
		return truncatedDiv(lhs, rhs), nil
	case symbolic.REM:
		return fmt.Sprintf("(- %s (* %s %s))", lhs, rhs, truncatedDiv(lhs, rhs)), nil
	default:
		return "", &Error{Op: "toIntegerBinaryTerm", Expr: expr, Err: ErrUnsupported}
	}
}

// truncatedDiv rounds the quotient toward zero. SMT-LIB div is Euclidean.
func truncatedDiv(lhs, rhs string) string {
	return fmt.Sprintf("(ite (>= %s 0) (div %s %s) (- (div (- %s) %s)))", lhs, lhs, rhs, lhs, rhs)
}

func toRealBinaryTerm(expr *symbolic.RealBinaryExpr) (string, error) {
	lhs, err := toTerm(expr.LHS)
	if err != nil {
		return "", err
	}
	rhs, err := toTerm(expr.RHS)
	if err != nil {
		return "", err
	}

	switch expr.Op {
	case symbolic.ADD:
		return fmt.Sprintf("(+ %s %s)", lhs, rhs), nil
	case symbolic.SUB:
		return fmt.Sprintf("(- %s %s)", lhs, rhs), nil
	case symbolic.MUL:
		return fmt.Sprintf("(* %s %s)", lhs, rhs), nil
	case symbolic.DIV:
		return fmt.Sprintf("(/ %s %s)", lhs, rhs), nil
	default:
		return "", &Error{Op: "toRealBinaryTerm", Expr: expr, Err: ErrUnsupported}
	}
}

func toUnaryTerm(expr symbolic.Expr, op symbolic.Operator, x symbolic.Expr) (string, error) {
	if op != symbolic.NEG {
		return "", &Error{Op: "toUnaryTerm", Expr: expr, Err: ErrUnsupported}
	}
	src, err := toTerm(x)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(- %s)", src), nil
}

// toComparisonTerm returns -1, 0 or 1 as lhs is less than, equal to or
// greater than rhs.
func toComparisonTerm(lhs, rhs symbolic.Expr) (string, error) {
	l, err := toTerm(lhs)
	if err != nil {
		return "", err
	}
	r, err := toTerm(rhs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(ite (< %s %s) (- 1) (ite (> %s %s) 1 0))", l, r, l, r), nil
}

// toRealToIntegerTerm truncates toward zero. SMT-LIB to_int is the floor.
func toRealToIntegerTerm(expr *symbolic.RealToIntegerCast) (string, error) {
	src, err := toTerm(expr.Src)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(ite (>= %s 0.0) (to_int %s) (- (to_int (- %s))))", src, src, src), nil
}

func intLiteral(v int64) string {
	if v >= 0 {
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("(- %s)", strconv.FormatUint(uint64(-(v+1))+1, 10))
}

// realLiteral returns v as a decimal. NaN and infinities have no literal.
func realLiteral(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", ErrUnsupported
	}

	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	if math.Signbit(v) && v != 0 {
		return fmt.Sprintf("(- %s)", s), nil
	}
	return s, nil
}

func stringLiteral(s string) string {
	return `"` + strings.Replace(s, `"`, `""`, -1) + `"`
}

// symbol returns name as a simple symbol if possible, otherwise quoted.
func symbol(name string) string {
	if name == "" {
		return "||"
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$', r == '.':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return "|" + strings.Replace(name, "|", "_", -1) + "|"
		}
	}
	return name
}
