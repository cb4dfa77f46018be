package vm

// Machine bundles the environment, the path condition and the instruction
// VMs of a single execution. It is not safe for concurrent use.
type Machine struct {
	Env *Env

	// Collector receives every constraint produced by the VMs. It is fixed
	// at construction.
	Collector PathConditionCollector

	// PathCondition is the collector created by NewMachine. It is nil when
	// the machine was built with NewMachineWithCollector.
	PathCondition *PathCondition

	Arithmetic *ArithmeticVM
	Heap       *HeapVM
	Locals     *LocalsVM
	Jump       *JumpVM
	Call       *CallVM
}

// NewMachine returns a machine with an empty environment that collects
// into a new PathCondition.
func NewMachine(classes ClassResolver) *Machine {
	pc := NewPathCondition()
	m := NewMachineWithCollector(classes, pc)
	m.PathCondition = pc
	return m
}

// NewMachineWithCollector returns a machine with an empty environment whose
// VMs report to pc.
func NewMachineWithCollector(classes ClassResolver, pc PathConditionCollector) *Machine {
	env := NewEnv(classes)
	return &Machine{
		Env:        env,
		Collector:  pc,
		Arithmetic: NewArithmeticVM(env, pc),
		Heap:       NewHeapVM(env, pc),
		Locals:     NewLocalsVM(env),
		Jump:       NewJumpVM(env, pc),
		Call:       NewCallVM(env),
	}
}

// Start prepares the stack for the method under test and enters it. For an
// instance method the first argument is the receiver.
func (m *Machine) Start(method MethodRef, static bool, maxLocals int, args []Operand) {
	m.Env.PrepareStack(args)
	m.Call.MethodBegin(method, static, maxLocals)
}
