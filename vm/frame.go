package vm

import (
	"fmt"
)

// MethodRef identifies a method by owner class, name and descriptor.
type MethodRef struct {
	Owner string
	Name  string
	Desc  string
}

// String returns the method in "owner.name desc" form.
func (m MethodRef) String() string {
	return fmt.Sprintf("%s.%s%s", m.Owner, m.Name, m.Desc)
}

// Frame holds the symbolic operand stack and locals of one invocation.
type Frame struct {
	Method   MethodRef
	Operands *OperandStack
	Locals   *LocalsTable

	// Set for the synthetic frames pushed beneath the method under test.
	Fake bool
}

// NewFrame returns a frame for method with maxLocals local slots.
func NewFrame(method MethodRef, maxLocals int) *Frame {
	return &Frame{
		Method:   method,
		Operands: NewOperandStack(),
		Locals:   NewLocalsTable(maxLocals),
	}
}

// newFakeFrame returns a synthetic frame with no locals.
func newFakeFrame(name string) *Frame {
	f := NewFrame(MethodRef{Name: name}, 0)
	f.Fake = true
	return f
}

// String returns the method and the frame contents.
func (f *Frame) String() string {
	return fmt.Sprintf("%s stack=%s locals=%s", f.Method, f.Operands, f.Locals)
}
