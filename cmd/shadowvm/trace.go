package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/gofraser/evosuite-sub000/vm"
	"gopkg.in/yaml.v3"
)

// Trace is a recorded execution of one method: its symbolic inputs, the
// host objects it touches and the instructions it executed.
type Trace struct {
	Method       TraceMethod            `yaml:"method"`
	Args         []TraceArg             `yaml:"args"`
	Classes      map[string]string      `yaml:"classes"`
	Objects      map[string]TraceObject `yaml:"objects"`
	Arrays       map[string]TraceArray  `yaml:"arrays"`
	Instructions []string               `yaml:"instructions"`
}

// TraceMethod identifies the method under test.
type TraceMethod struct {
	Owner     string `yaml:"owner"`
	Name      string `yaml:"name"`
	Desc      string `yaml:"desc"`
	Static    bool   `yaml:"static"`
	MaxLocals int    `yaml:"maxLocals"`
}

// TraceArg is one argument of the method under test. Named primitive
// arguments are symbolic. Reference arguments name a host object.
type TraceArg struct {
	Type  string `yaml:"type"`
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Min   string `yaml:"min"`
	Max   string `yaml:"max"`
	Ref   string `yaml:"ref"`
}

// TraceObject describes a host object.
type TraceObject struct {
	Class string `yaml:"class"`
}

// TraceArray describes a host array. Reference elements name host objects.
type TraceArray struct {
	Type  string   `yaml:"type"`
	Elems []string `yaml:"elems"`
}

// ReadTrace decodes a trace from r.
func ReadTrace(r io.Reader) (*Trace, error) {
	var t Trace
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	} else if t.Method.Owner == "" || t.Method.Name == "" || t.Method.Desc == "" {
		return nil, fmt.Errorf("trace method requires owner, name & desc")
	}
	return &t, nil
}

// object is a host object of a replayed trace.
type object struct {
	class string
}

func (o *object) ClassName() string { return o.class }

// array is a host array of a replayed trace. Implements vm.ConcreteArray.
type array struct {
	typ   string
	elems []interface{}
}

func (a *array) ClassName() string      { return a.typ }
func (a *array) Len() int               { return len(a.elems) }
func (a *array) Load(i int) interface{} { return a.elems[i] }

// Store writes a concrete value into the array.
func (a *array) Store(i int, v interface{}) { a.elems[i] = v }

// Host holds the host objects of a trace by name.
type Host struct {
	values  map[string]interface{}
	classes map[string]string
}

// NewHost builds the host objects and arrays described by t.
func NewHost(t *Trace) (*Host, error) {
	h := &Host{
		values:  make(map[string]interface{}),
		classes: t.Classes,
	}

	for name, obj := range t.Objects {
		if obj.Class == "" {
			return nil, fmt.Errorf("object %q: class required", name)
		}
		h.values[name] = &object{class: obj.Class}
	}

	// Arrays are allocated first so that reference arrays may hold arrays.
	arrays := make(map[string]*array)
	for name, a := range t.Arrays {
		if !strings.HasPrefix(a.Type, "[") {
			return nil, fmt.Errorf("array %q: invalid type %q", name, a.Type)
		} else if _, ok := h.values[name]; ok {
			return nil, fmt.Errorf("array %q: name already used by an object", name)
		}
		arrays[name] = &array{typ: a.Type, elems: make([]interface{}, len(a.Elems))}
		h.values[name] = arrays[name]
	}

	for name, a := range t.Arrays {
		component := a.Type[1:]
		for i, s := range a.Elems {
			v, err := h.Value(component, s)
			if err != nil {
				return nil, fmt.Errorf("array %q[%d]: %w", name, i, err)
			}
			arrays[name].elems[i] = v
		}
	}
	return h, nil
}

// Lookup returns the named host object. The name "null" returns nil.
func (h *Host) Lookup(name string) (interface{}, error) {
	if name == "" || name == "null" {
		return nil, nil
	} else if v, ok := h.values[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unknown object: %q", name)
}

// Array returns the named host array. The name "null" returns a nil
// interface.
func (h *Host) Array(name string) (vm.ConcreteArray, error) {
	v, err := h.Lookup(name)
	if err != nil {
		return nil, err
	} else if v == nil {
		return nil, nil
	}

	a, ok := v.(*array)
	if !ok {
		return nil, fmt.Errorf("not an array: %q", name)
	}
	return a, nil
}

// Value parses s as a concrete value of the field descriptor desc.
func (h *Host) Value(desc, s string) (interface{}, error) {
	switch desc {
	case "Z":
		return strconv.ParseBool(s)
	case "B":
		v, err := strconv.ParseInt(s, 0, 8)
		return int8(v), err
	case "C":
		v, err := strconv.ParseUint(s, 0, 16)
		return uint16(v), err
	case "S":
		v, err := strconv.ParseInt(s, 0, 16)
		return int16(v), err
	case "I":
		v, err := strconv.ParseInt(s, 0, 32)
		return int32(v), err
	case "J":
		return strconv.ParseInt(s, 0, 64)
	case "F":
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case "D":
		return strconv.ParseFloat(s, 64)
	case "Ljava/lang/String;":
		if strings.HasPrefix(s, `"`) {
			return strconv.Unquote(s)
		}
		return h.Lookup(s)
	default:
		if strings.HasPrefix(desc, "L") || strings.HasPrefix(desc, "[") {
			return h.Lookup(s)
		}
		return nil, fmt.Errorf("invalid descriptor: %q", desc)
	}
}

// Superclass returns the superclass recorded in the trace. Classes that
// are not listed extend java/lang/Object. Implements vm.ClassResolver.
func (h *Host) Superclass(className string) (string, error) {
	if className == "java/lang/Object" {
		return "", nil
	} else if parent, ok := h.classes[className]; ok {
		return parent, nil
	}
	return "java/lang/Object", nil
}

// IsInstance walks the superclass chain of obj. Arrays are instances of
// their own type and java/lang/Object only.
func (h *Host) IsInstance(obj interface{}, typeName string) (bool, error) {
	if typeName == "java/lang/Object" {
		return true, nil
	}

	switch obj := obj.(type) {
	case *array:
		return obj.typ == typeName, nil
	case string:
		return typeName == "java/lang/String", nil
	case *object:
		for class := obj.class; class != ""; {
			if class == typeName {
				return true, nil
			}
			parent, err := h.Superclass(class)
			if err != nil {
				return false, err
			}
			class = parent
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown host object: %T", obj)
	}
}

// Operand returns the operand passed for arg. Named primitives become
// bounded symbolic variables, unnamed ones constants. References are bound
// in heap.
func (h *Host) Operand(heap *vm.Heap, arg TraceArg) (vm.Operand, error) {
	switch arg.Type {
	case "Z", "B", "C", "S", "I", "J":
		return h.integerOperand(arg)
	case "F", "D":
		return h.realOperand(arg)
	}

	if !strings.HasPrefix(arg.Type, "L") && !strings.HasPrefix(arg.Type, "[") {
		return nil, fmt.Errorf("argument %q: invalid type %q", arg.Name, arg.Type)
	}

	s := arg.Ref
	if s == "" {
		s = arg.Value
	}
	obj, err := h.Value(arg.Type, s)
	if err != nil {
		return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
	}
	return &vm.RefOperand{Value: heap.Reference(obj)}, nil
}

func (h *Host) integerOperand(arg TraceArg) (vm.Operand, error) {
	min, max := integerBounds(arg.Type)
	if arg.Type == "Z" {
		arg.Value = boolToInt(arg.Value)
	}

	concrete, err := parseBoundedInt(arg.Value, 0, min, max)
	if err != nil {
		return nil, fmt.Errorf("argument %q: value: %w", arg.Name, err)
	}
	lo, err := parseBoundedInt(arg.Min, min, min, max)
	if err != nil {
		return nil, fmt.Errorf("argument %q: min: %w", arg.Name, err)
	}
	hi, err := parseBoundedInt(arg.Max, max, min, max)
	if err != nil {
		return nil, fmt.Errorf("argument %q: max: %w", arg.Name, err)
	} else if concrete < lo || concrete > hi {
		return nil, fmt.Errorf("argument %q: value %d outside [%d, %d]", arg.Name, concrete, lo, hi)
	}

	var value symbolic.IntegerValue = symbolic.NewIntegerConstant(concrete)
	if arg.Name != "" {
		value = symbolic.NewIntegerVariable(arg.Name, concrete, lo, hi)
	}
	if arg.Type == "J" {
		return &vm.Bv64Operand{Value: value}, nil
	}
	return &vm.Bv32Operand{Value: value}, nil
}

func (h *Host) realOperand(arg TraceArg) (vm.Operand, error) {
	bitSize, limit := 64, math.MaxFloat64
	if arg.Type == "F" {
		bitSize, limit = 32, math.MaxFloat32
	}

	concrete, err := parseFloat(arg.Value, 0, bitSize)
	if err != nil {
		return nil, fmt.Errorf("argument %q: value: %w", arg.Name, err)
	}
	lo, err := parseFloat(arg.Min, -limit, bitSize)
	if err != nil {
		return nil, fmt.Errorf("argument %q: min: %w", arg.Name, err)
	}
	hi, err := parseFloat(arg.Max, limit, bitSize)
	if err != nil {
		return nil, fmt.Errorf("argument %q: max: %w", arg.Name, err)
	}

	var value symbolic.RealValue = symbolic.NewRealConstant(concrete)
	if arg.Name != "" {
		value = symbolic.NewRealVariable(arg.Name, concrete, lo, hi)
	}
	if arg.Type == "F" {
		return &vm.Fp32Operand{Value: value}, nil
	}
	return &vm.Fp64Operand{Value: value}, nil
}

// integerBounds returns the value range of a primitive integer descriptor.
func integerBounds(desc string) (min, max int64) {
	switch desc {
	case "Z":
		return 0, 1
	case "B":
		return math.MinInt8, math.MaxInt8
	case "C":
		return 0, math.MaxUint16
	case "S":
		return math.MinInt16, math.MaxInt16
	case "J":
		return math.MinInt64, math.MaxInt64
	default:
		return math.MinInt32, math.MaxInt32
	}
}

func boolToInt(s string) string {
	switch s {
	case "true":
		return "1"
	case "false":
		return "0"
	default:
		return s
	}
}

func parseBoundedInt(s string, def, min, max int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	} else if v < min || v > max {
		return 0, fmt.Errorf("%d out of range [%d, %d]", v, min, max)
	}
	return v, nil
}

func parseFloat(s string, def float64, bitSize int) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, bitSize)
}
