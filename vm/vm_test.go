package vm_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/gofraser/evosuite-sub000/vm"
)

// Machine is a test wrapper for vm.Machine.
type Machine struct {
	*vm.Machine
}

// NewMachine returns a machine executing the static method T.m with the
// given descriptor and arguments.
func NewMachine(classes vm.ClassResolver, desc string, args ...vm.Operand) *Machine {
	m := &Machine{Machine: vm.NewMachine(classes)}
	m.Start(vm.MethodRef{Owner: "T", Name: "m", Desc: desc}, true, 8, args)
	return m
}

// Stack returns the operand stack of the executing method.
func (m *Machine) Stack() *vm.OperandStack {
	return m.Env.TopFrame().Operands
}

// ClassResolver is a mock implementation of vm.ClassResolver.
type ClassResolver struct {
	SuperclassFn func(className string) (string, error)
	IsInstanceFn func(obj interface{}, typeName string) (bool, error)
}

func (r *ClassResolver) Superclass(className string) (string, error) {
	return r.SuperclassFn(className)
}

func (r *ClassResolver) IsInstance(obj interface{}, typeName string) (bool, error) {
	return r.IsInstanceFn(obj, typeName)
}

// NewClassResolver returns a resolver backed by a child -> parent map.
// Classes missing from the map are reported as unknown.
func NewClassResolver(parents map[string]string) *ClassResolver {
	return &ClassResolver{
		SuperclassFn: func(className string) (string, error) {
			if className == "java/lang/Object" {
				return "", nil
			} else if parent, ok := parents[className]; ok {
				return parent, nil
			}
			return "", fmt.Errorf("unknown class: %s", className)
		},
		IsInstanceFn: func(obj interface{}, typeName string) (bool, error) {
			return true, nil
		},
	}
}

// IntArray is a concrete int[].
type IntArray struct {
	Elems []int32
}

func (a *IntArray) ClassName() string      { return "[I" }
func (a *IntArray) Len() int               { return len(a.Elems) }
func (a *IntArray) Load(i int) interface{} { return a.Elems[i] }

// Object is a concrete object with a class name.
type Object struct {
	Class string
}

func (o *Object) ClassName() string { return o.Class }

// newVar returns an int variable with the given concrete value.
func newVar(name string, concrete int64) *symbolic.IntegerVariable {
	return symbolic.NewIntegerVariable(name, concrete, math.MinInt32, math.MaxInt32)
}

// newLongVar returns a long variable with the given concrete value.
func newLongVar(name string, concrete int64) *symbolic.IntegerVariable {
	return symbolic.NewIntegerVariable(name, concrete, math.MinInt64, math.MaxInt64)
}

// newRealVar returns a real variable with the given concrete value.
func newRealVar(name string, concrete float64) *symbolic.RealVariable {
	return symbolic.NewRealVariable(name, concrete, -math.MaxFloat64, math.MaxFloat64)
}

func bv32(v int64) *vm.Bv32Operand {
	return &vm.Bv32Operand{Value: symbolic.NewIntegerConstant(v)}
}

func bv64(v int64) *vm.Bv64Operand {
	return &vm.Bv64Operand{Value: symbolic.NewIntegerConstant(v)}
}

func fp64(v float64) *vm.Fp64Operand {
	return &vm.Fp64Operand{Value: symbolic.NewRealConstant(v)}
}

// MustPanic fails the test if fn does not panic.
func MustPanic(tb testing.TB, fn func()) {
	tb.Helper()
	defer func() {
		if r := recover(); r == nil {
			tb.Fatal("expected panic")
		}
	}()
	fn()
}
