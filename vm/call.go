package vm

// CallVM shadows method entry, return and calls into uninstrumented code.
type CallVM struct {
	env *Env
}

// NewCallVM returns a call VM operating on env.
func NewCallVM(env *Env) *CallVM {
	return &CallVM{env: env}
}

// MethodBegin pushes a frame for method. The receiver, unless static, and
// the arguments are moved from the caller's operand stack into the new
// frame's locals.
func (m *CallVM) MethodBegin(method MethodRef, static bool, maxLocals int) {
	caller := m.env.TopFrame()
	args := m.popArguments(caller.Operands, method.Desc)

	frame := NewFrame(method, maxLocals)
	slot := 0
	if !static {
		frame.Locals.SetRef(0, caller.Operands.PopRef())
		slot = 1
	}
	for _, arg := range args {
		frame.Locals.Set(slot, arg)
		slot += arg.Width().Category()
	}
	m.env.PushFrame(frame)
}

// popArguments pops the arguments of desc, returning them in declaration
// order.
func (m *CallVM) popArguments(s *OperandStack, desc string) []Operand {
	widths, _ := parseMethodDescriptor(desc)
	args := make([]Operand, len(widths))
	for i := len(widths) - 1; i >= 0; i-- {
		args[i] = s.PopOperand()
		assert(args[i].Width() == widths[i], "argument %d of %s: expected %s, got %s", i, desc, widths[i], args[i].Width())
	}
	return args
}

func (m *CallVM) IRETURN() { m.returnValue(WidthBv32) }
func (m *CallVM) LRETURN() { m.returnValue(WidthBv64) }
func (m *CallVM) FRETURN() { m.returnValue(WidthFp32) }
func (m *CallVM) DRETURN() { m.returnValue(WidthFp64) }
func (m *CallVM) ARETURN() { m.returnValue(WidthRef) }

// RETURN pops the frame of a void method.
func (m *CallVM) RETURN() {
	m.env.PopFrame()
}

func (m *CallVM) returnValue(w Width) {
	op := m.env.PopFrame().Operands.PopOperand()
	assert(op.Width() == w, "return: expected %s, got %s", w, op.Width())
	m.env.TopFrame().Operands.PushOperand(op)
}

// UninstrumentedCall pops the arguments of a call whose callee is not
// shadowed and pushes a constant of the concrete result, if any.
func (m *CallVM) UninstrumentedCall(desc string, static bool, result interface{}) {
	s := m.env.TopFrame().Operands
	m.popArguments(s, desc)
	if !static {
		s.PopRef()
	}

	_, ret := parseMethodDescriptor(desc)
	if ret == 0 {
		return
	}
	s.PushOperand(NewOperand(ret, constantOf(m.env.Heap, ret, result)))
}

// ExceptionThrown unwinds frames until depth frames remain, discarding the
// operands of the handling frame. The host calls it when an exception is
// caught, passing the depth of the frame that handles it.
func (m *CallVM) ExceptionThrown(depth int, exception interface{}) {
	assert(depth > 0 && depth <= m.env.Depth(), "invalid handler depth %d of %d", depth, m.env.Depth())
	for m.env.Depth() > depth {
		m.env.PopFrame()
	}

	s := m.env.TopFrame().Operands
	s.Clear()
	s.PushRef(m.env.Heap.Reference(exception))
}
