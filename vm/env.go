package vm

import (
	"bytes"
	"fmt"
	"log"
	"strings"
)

// ClassResolver answers class hierarchy questions on behalf of the host.
type ClassResolver interface {
	// Superclass returns the internal name of the superclass of className,
	// or an empty string for the root class.
	Superclass(className string) (string, error)

	// IsInstance returns true if the concrete object is an instance of
	// typeName.
	IsInstance(obj interface{}, typeName string) (bool, error)
}

// ConcreteArray is a host array observed by the shadow machine.
type ConcreteArray interface {
	// ClassName returns the internal array type, e.g. "[I".
	ClassName() string

	// Len returns the number of elements.
	Len() int

	// Load returns the element at i as one of int32, int8, int16, uint16,
	// bool, int64, float32, float64 or a reference value.
	Load(i int) interface{}
}

// Env is the symbolic environment of one execution: the frame stack, the
// symbolic heap and the set of prepared classes.
type Env struct {
	frames   []*Frame
	prepared map[string]struct{}

	// Heap holds symbolic field and array values.
	Heap *Heap

	// Classes resolves superclasses and instanceof checks. Required for
	// class preparation and INSTANCEOF.
	Classes ClassResolver
}

// NewEnv returns an environment with an empty heap and no frames.
func NewEnv(classes ClassResolver) *Env {
	return &Env{
		prepared: make(map[string]struct{}),
		Heap:     NewHeap(),
		Classes:  classes,
	}
}

// Depth returns the number of frames on the stack.
func (env *Env) Depth() int { return len(env.frames) }

// PushFrame pushes f onto the frame stack.
func (env *Env) PushFrame(f *Frame) {
	assert(f != nil, "push of nil frame")
	env.frames = append(env.frames, f)
	log.Printf("[frame] push %s", f.Method)
}

// PopFrame removes and returns the top frame.
func (env *Env) PopFrame() *Frame {
	assert(len(env.frames) > 0, "pop from empty frame stack")
	f := env.frames[len(env.frames)-1]
	env.frames[len(env.frames)-1] = nil
	env.frames = env.frames[:len(env.frames)-1]
	log.Printf("[frame] pop %s", f.Method)
	return f
}

// TopFrame returns the frame of the executing method.
func (env *Env) TopFrame() *Frame {
	assert(len(env.frames) > 0, "no frame")
	return env.frames[len(env.frames)-1]
}

// CallerFrame returns the frame beneath the top frame.
func (env *Env) CallerFrame() *Frame {
	assert(len(env.frames) > 1, "no caller frame")
	return env.frames[len(env.frames)-2]
}

// PrepareStack resets the frame stack for a new execution of the method
// under test. A fake bottom frame and a fake caller frame holding args are
// pushed; the method's own frame is pushed by its MethodBegin.
func (env *Env) PrepareStack(args []Operand) {
	env.frames = env.frames[:0]
	env.PushFrame(newFakeFrame("<bottom>"))

	caller := newFakeFrame("<main>")
	for _, arg := range args {
		caller.Operands.PushOperand(arg)
	}
	env.PushFrame(caller)
}

// IsPrepared returns true if className has been prepared.
func (env *Env) IsPrepared(className string) bool {
	_, ok := env.prepared[className]
	return ok
}

// EnsurePrepared marks className and all of its superclasses as prepared.
// Superclasses are prepared first. Calling it again for the same class has
// no effect.
func (env *Env) EnsurePrepared(className string) error {
	if env.IsPrepared(className) {
		return nil
	}

	// Array classes have no hierarchy of interest.
	if !strings.HasPrefix(className, "[") {
		if env.Classes == nil {
			return ErrNoClassResolver
		}

		super, err := env.Classes.Superclass(className)
		if err != nil {
			return fmt.Errorf("vm.Env: prepare %s: %w", className, err)
		} else if super != "" {
			if err := env.EnsurePrepared(super); err != nil {
				return err
			}
		}
	}

	env.prepared[className] = struct{}{}
	log.Printf("[prepare] %s", className)
	return nil
}

// Dump returns the frames and heap as a string.
func (env *Env) Dump() string {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "SYMBOLIC ENVIRONMENT")
	fmt.Fprintln(&buf, "====================")
	for i := len(env.frames) - 1; i >= 0; i-- {
		fmt.Fprintf(&buf, "== FRAME #%d\n", i)
		fmt.Fprintln(&buf, env.frames[i])
	}
	fmt.Fprintln(&buf, "")

	fmt.Fprintln(&buf, "== HEAP")
	fmt.Fprint(&buf, env.Heap.Dump())
	return buf.String()
}
