package vm

import (
	"fmt"
	"math"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// widthOf returns the operand width of a field descriptor. The void
// descriptor "V" returns zero.
func widthOf(desc string) Width {
	assert(desc != "", "empty type descriptor")
	switch desc[0] {
	case 'B', 'C', 'I', 'S', 'Z':
		return WidthBv32
	case 'J':
		return WidthBv64
	case 'F':
		return WidthFp32
	case 'D':
		return WidthFp64
	case 'L', '[':
		return WidthRef
	case 'V':
		return 0
	default:
		panic(fmt.Sprintf("vm: invalid type descriptor: %q", desc))
	}
}

// parseMethodDescriptor returns the argument widths and the return width of
// a method descriptor such as "(IJLjava/lang/String;)V". Void returns zero.
func parseMethodDescriptor(desc string) (args []Width, ret Width) {
	assert(len(desc) > 2 && desc[0] == '(', "invalid method descriptor: %q", desc)

	i := 1
	for desc[i] != ')' {
		n := descriptorLen(desc[i:])
		args = append(args, widthOf(desc[i:i+n]))
		i += n
		assert(i < len(desc), "invalid method descriptor: %q", desc)
	}
	return args, widthOf(desc[i+1:])
}

// descriptorLen returns the length of the field descriptor at the start of s.
func descriptorLen(s string) int {
	n := 0
	for n < len(s) && s[n] == '[' {
		n++
	}
	assert(n < len(s), "invalid type descriptor: %q", s)

	if s[n] != 'L' {
		return n + 1
	}
	for i := n; i < len(s); i++ {
		if s[i] == ';' {
			return i + 1
		}
	}
	panic(fmt.Sprintf("vm: unterminated class descriptor: %q", s))
}

// arrayType returns the internal name of an array whose components have the
// given type. Class names are wrapped as "Lname;", primitive and array
// descriptors are kept as is.
func arrayType(component string) string {
	if len(component) == 1 || component[0] == '[' {
		return "[" + component
	}
	return "[L" + component + ";"
}

// constantOf returns a constant expression of width w for a concrete value
// supplied by the host. References are looked up in heap.
func constantOf(heap *Heap, w Width, value interface{}) symbolic.Expr {
	switch w {
	case WidthBv32:
		return symbolic.NewIntegerConstant(int64(toInt32(value)))
	case WidthBv64:
		return symbolic.NewIntegerConstant(toInt64(value))
	case WidthFp32:
		return symbolic.NewRealConstant(float64(float32(toFloat64(value))))
	case WidthFp64:
		return symbolic.NewRealConstant(toFloat64(value))
	case WidthRef:
		return heap.Reference(value)
	default:
		panic(fmt.Sprintf("vm: invalid operand width: %s", w))
	}
}

func toInt32(value interface{}) int32 {
	switch v := value.(type) {
	case int32:
		return v
	case int8:
		return int32(v)
	case int16:
		return int32(v)
	case uint16:
		return int32(v)
	case uint8:
		return int32(v)
	case int:
		return int32(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("vm: expected int-like value, got %T", value))
	}
}

func toInt64(value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	default:
		panic(fmt.Sprintf("vm: expected long value, got %T", value))
	}
}

func toFloat64(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		panic(fmt.Sprintf("vm: expected floating-point value, got %T", value))
	}
}

// floatToInt32 converts with the saturating semantics of F2I and D2I.
func floatToInt32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

// floatToInt64 converts with the saturating semantics of F2L and D2L.
func floatToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
