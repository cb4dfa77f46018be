package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gofraser/evosuite-sub000/symbolic"
	"github.com/gofraser/evosuite-sub000/vm"
)

// Replayer executes trace instructions against a machine.
type Replayer struct {
	Machine *vm.Machine
	Host    *Host

	// Faults counts instructions that raised a fault in the program under
	// test.
	Faults int
}

// NewReplayer returns a replayer for t that has entered the method under
// test.
func NewReplayer(t *Trace) (*Replayer, error) {
	host, err := NewHost(t)
	if err != nil {
		return nil, err
	}

	m := vm.NewMachine(host)
	args := make([]vm.Operand, 0, len(t.Args))
	for _, arg := range t.Args {
		op, err := host.Operand(m.Env.Heap, arg)
		if err != nil {
			return nil, err
		}
		args = append(args, op)
	}

	method := vm.MethodRef{Owner: t.Method.Owner, Name: t.Method.Name, Desc: t.Method.Desc}
	if err := start(m, method, t.Method.Static, t.Method.MaxLocals, args); err != nil {
		return nil, err
	}
	return &Replayer{Machine: m, Host: host}, nil
}

// start enters method, reporting arguments that do not match its
// descriptor as an error.
func start(m *vm.Machine, method vm.MethodRef, static bool, maxLocals int, args []vm.Operand) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("start %s: %v", method, p)
		}
	}()
	m.Start(method, static, maxLocals, args)
	return nil
}

// Exec executes a single instruction line, e.g. "ILOAD 0". An instruction
// that does not fit the shadow state, such as a pop from an empty stack,
// returns an error.
func (r *Replayer) Exec(line string) (err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	op, args := strings.ToUpper(fields[0]), fields[1:]
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s: %v", op, p)
		}
	}()

	h, ok := handlers[op]
	if !ok {
		return fmt.Errorf("unknown instruction: %s", op)
	} else if h.nargs >= 0 && len(args) != h.nargs {
		return fmt.Errorf("%s: expected %d arguments, got %d", op, h.nargs, len(args))
	}

	fault, err := h.fn(r, args)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	} else if fault {
		log.Printf("[fault] %s", line)
		r.Faults++
	}
	return nil
}

func (r *Replayer) stack() *vm.OperandStack {
	return r.Machine.Env.TopFrame().Operands
}

// peekInt returns the concrete value of the integer operand at depth i.
func (r *Replayer) peekInt(i int) int64 {
	return r.stack().PeekOperand(i).Expr().(symbolic.IntegerValue).ConcreteValue()
}

// peekReal returns the concrete value of the floating-point operand at
// depth i.
func (r *Replayer) peekReal(i int) float64 {
	return r.stack().PeekOperand(i).Expr().(symbolic.RealValue).ConcreteValue()
}

// handler executes one opcode. It returns true if the instruction faulted.
type handler struct {
	nargs int // -1 for variadic
	fn    func(r *Replayer, args []string) (bool, error)
}

// simple wraps an instruction without arguments that cannot fault.
func simple(fn func(m *vm.Machine)) handler {
	return handler{fn: func(r *Replayer, args []string) (bool, error) {
		fn(r.Machine)
		return false, nil
	}}
}

// intArg wraps an instruction taking a single integer immediate.
func intArg(fn func(m *vm.Machine, v int)) handler {
	return handler{nargs: 1, fn: func(r *Replayer, args []string) (bool, error) {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return false, err
		}
		fn(r.Machine, v)
		return false, nil
	}}
}

// arrayLoad wraps an array load. The index is read from the stack.
func arrayLoad(fn func(m *vm.HeapVM, a vm.ConcreteArray, index int32) bool) handler {
	return handler{nargs: 1, fn: func(r *Replayer, args []string) (bool, error) {
		a, err := r.Host.Array(args[0])
		if err != nil {
			return false, err
		}
		return fn(r.Machine.Heap, a, int32(r.peekInt(0))), nil
	}}
}

// arrayStore wraps an array store and mirrors a successful store into the
// host array. Reference stores name the stored object as a second argument.
func arrayStore(w vm.Width, fn func(m *vm.HeapVM, a vm.ConcreteArray, index int32) bool) handler {
	nargs := 1
	if w == vm.WidthRef {
		nargs = 2
	}

	return handler{nargs: nargs, fn: func(r *Replayer, args []string) (bool, error) {
		a, err := r.Host.Array(args[0])
		if err != nil {
			return false, err
		}

		var value interface{}
		switch w {
		case vm.WidthFp32, vm.WidthFp64:
			value = r.peekReal(0)
		case vm.WidthRef:
			if value, err = r.Host.Lookup(args[1]); err != nil {
				return false, err
			}
		default:
			value = r.peekInt(0)
		}
		index := int32(r.peekInt(1))

		if fault := fn(r.Machine.Heap, a, index); fault {
			return true, nil
		}
		a.(*array).Store(int(index), convertElem(a.ClassName()[1:], value))
		return false, nil
	}}
}

// convertElem converts a stack value to the element type of an array.
func convertElem(component string, v interface{}) interface{} {
	switch component {
	case "Z":
		return v.(int64) != 0
	case "B":
		return int8(v.(int64))
	case "C":
		return uint16(v.(int64))
	case "S":
		return int16(v.(int64))
	case "I":
		return int32(v.(int64))
	case "F":
		return float32(v.(float64))
	default:
		return v
	}
}

// branch wraps a conditional jump taking a branch index.
func branch(fn func(m *vm.JumpVM, branch int)) handler {
	return intArg(func(m *vm.Machine, v int) { fn(m.Jump, v) })
}

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		// Constants & locals
		"ACONST_NULL": simple(func(m *vm.Machine) { m.Locals.ACONST_NULL() }),
		"ICONST":      intArg(func(m *vm.Machine, v int) { m.Locals.ICONST(int32(v)) }),
		"BIPUSH":      intArg(func(m *vm.Machine, v int) { m.Locals.BIPUSH(int8(v)) }),
		"SIPUSH":      intArg(func(m *vm.Machine, v int) { m.Locals.SIPUSH(int16(v)) }),
		"LCONST":      {nargs: 1, fn: execLCONST},
		"FCONST":      {nargs: 1, fn: execFCONST},
		"DCONST":      {nargs: 1, fn: execDCONST},
		"LDC":         {nargs: 2, fn: execLDC},
		"ILOAD":       intArg(func(m *vm.Machine, i int) { m.Locals.ILOAD(i) }),
		"LLOAD":       intArg(func(m *vm.Machine, i int) { m.Locals.LLOAD(i) }),
		"FLOAD":       intArg(func(m *vm.Machine, i int) { m.Locals.FLOAD(i) }),
		"DLOAD":       intArg(func(m *vm.Machine, i int) { m.Locals.DLOAD(i) }),
		"ALOAD":       intArg(func(m *vm.Machine, i int) { m.Locals.ALOAD(i) }),
		"ISTORE":      intArg(func(m *vm.Machine, i int) { m.Locals.ISTORE(i) }),
		"LSTORE":      intArg(func(m *vm.Machine, i int) { m.Locals.LSTORE(i) }),
		"FSTORE":      intArg(func(m *vm.Machine, i int) { m.Locals.FSTORE(i) }),
		"DSTORE":      intArg(func(m *vm.Machine, i int) { m.Locals.DSTORE(i) }),
		"ASTORE":      intArg(func(m *vm.Machine, i int) { m.Locals.ASTORE(i) }),
		"IINC":        {nargs: 2, fn: execIINC},

		// Arithmetic
		"IADD":  simple(func(m *vm.Machine) { m.Arithmetic.IADD() }),
		"ISUB":  simple(func(m *vm.Machine) { m.Arithmetic.ISUB() }),
		"IMUL":  simple(func(m *vm.Machine) { m.Arithmetic.IMUL() }),
		"IAND":  simple(func(m *vm.Machine) { m.Arithmetic.IAND() }),
		"IOR":   simple(func(m *vm.Machine) { m.Arithmetic.IOR() }),
		"IXOR":  simple(func(m *vm.Machine) { m.Arithmetic.IXOR() }),
		"ISHL":  simple(func(m *vm.Machine) { m.Arithmetic.ISHL() }),
		"ISHR":  simple(func(m *vm.Machine) { m.Arithmetic.ISHR() }),
		"IUSHR": simple(func(m *vm.Machine) { m.Arithmetic.IUSHR() }),
		"LADD":  simple(func(m *vm.Machine) { m.Arithmetic.LADD() }),
		"LSUB":  simple(func(m *vm.Machine) { m.Arithmetic.LSUB() }),
		"LMUL":  simple(func(m *vm.Machine) { m.Arithmetic.LMUL() }),
		"LAND":  simple(func(m *vm.Machine) { m.Arithmetic.LAND() }),
		"LOR":   simple(func(m *vm.Machine) { m.Arithmetic.LOR() }),
		"LXOR":  simple(func(m *vm.Machine) { m.Arithmetic.LXOR() }),
		"LSHL":  simple(func(m *vm.Machine) { m.Arithmetic.LSHL() }),
		"LSHR":  simple(func(m *vm.Machine) { m.Arithmetic.LSHR() }),
		"LUSHR": simple(func(m *vm.Machine) { m.Arithmetic.LUSHR() }),
		"FADD":  simple(func(m *vm.Machine) { m.Arithmetic.FADD() }),
		"FSUB":  simple(func(m *vm.Machine) { m.Arithmetic.FSUB() }),
		"FMUL":  simple(func(m *vm.Machine) { m.Arithmetic.FMUL() }),
		"FDIV":  simple(func(m *vm.Machine) { m.Arithmetic.FDIV() }),
		"FREM":  simple(func(m *vm.Machine) { m.Arithmetic.FREM() }),
		"DADD":  simple(func(m *vm.Machine) { m.Arithmetic.DADD() }),
		"DSUB":  simple(func(m *vm.Machine) { m.Arithmetic.DSUB() }),
		"DMUL":  simple(func(m *vm.Machine) { m.Arithmetic.DMUL() }),
		"DDIV":  simple(func(m *vm.Machine) { m.Arithmetic.DDIV() }),
		"DREM":  simple(func(m *vm.Machine) { m.Arithmetic.DREM() }),
		"IDIV":  {fn: func(r *Replayer, _ []string) (bool, error) { return r.Machine.Arithmetic.IDIV(int32(r.peekInt(0))), nil }},
		"IREM":  {fn: func(r *Replayer, _ []string) (bool, error) { return r.Machine.Arithmetic.IREM(int32(r.peekInt(0))), nil }},
		"LDIV":  {fn: func(r *Replayer, _ []string) (bool, error) { return r.Machine.Arithmetic.LDIV(r.peekInt(0)), nil }},
		"LREM":  {fn: func(r *Replayer, _ []string) (bool, error) { return r.Machine.Arithmetic.LREM(r.peekInt(0)), nil }},
		"INEG":  simple(func(m *vm.Machine) { m.Arithmetic.INEG() }),
		"LNEG":  simple(func(m *vm.Machine) { m.Arithmetic.LNEG() }),
		"FNEG":  simple(func(m *vm.Machine) { m.Arithmetic.FNEG() }),
		"DNEG":  simple(func(m *vm.Machine) { m.Arithmetic.DNEG() }),
		"LCMP":  simple(func(m *vm.Machine) { m.Arithmetic.LCMP() }),
		"FCMPL": simple(func(m *vm.Machine) { m.Arithmetic.FCMPL() }),
		"FCMPG": simple(func(m *vm.Machine) { m.Arithmetic.FCMPG() }),
		"DCMPL": simple(func(m *vm.Machine) { m.Arithmetic.DCMPL() }),
		"DCMPG": simple(func(m *vm.Machine) { m.Arithmetic.DCMPG() }),

		// Conversions
		"I2L": simple(func(m *vm.Machine) { m.Arithmetic.I2L() }),
		"I2F": simple(func(m *vm.Machine) { m.Arithmetic.I2F() }),
		"I2D": simple(func(m *vm.Machine) { m.Arithmetic.I2D() }),
		"L2I": simple(func(m *vm.Machine) { m.Arithmetic.L2I() }),
		"L2F": simple(func(m *vm.Machine) { m.Arithmetic.L2F() }),
		"L2D": simple(func(m *vm.Machine) { m.Arithmetic.L2D() }),
		"F2I": simple(func(m *vm.Machine) { m.Arithmetic.F2I() }),
		"F2L": simple(func(m *vm.Machine) { m.Arithmetic.F2L() }),
		"F2D": simple(func(m *vm.Machine) { m.Arithmetic.F2D() }),
		"D2I": simple(func(m *vm.Machine) { m.Arithmetic.D2I() }),
		"D2L": simple(func(m *vm.Machine) { m.Arithmetic.D2L() }),
		"D2F": simple(func(m *vm.Machine) { m.Arithmetic.D2F() }),
		"I2B": simple(func(m *vm.Machine) { m.Arithmetic.I2B() }),
		"I2C": simple(func(m *vm.Machine) { m.Arithmetic.I2C() }),
		"I2S": simple(func(m *vm.Machine) { m.Arithmetic.I2S() }),

		// Stack
		"POP":     simple(func(m *vm.Machine) { m.Arithmetic.POP() }),
		"POP2":    simple(func(m *vm.Machine) { m.Arithmetic.POP2() }),
		"DUP":     simple(func(m *vm.Machine) { m.Arithmetic.DUP() }),
		"DUP_X1":  simple(func(m *vm.Machine) { m.Arithmetic.DUP_X1() }),
		"DUP_X2":  simple(func(m *vm.Machine) { m.Arithmetic.DUP_X2() }),
		"DUP2":    simple(func(m *vm.Machine) { m.Arithmetic.DUP2() }),
		"DUP2_X1": simple(func(m *vm.Machine) { m.Arithmetic.DUP2_X1() }),
		"DUP2_X2": simple(func(m *vm.Machine) { m.Arithmetic.DUP2_X2() }),
		"SWAP":    simple(func(m *vm.Machine) { m.Arithmetic.SWAP() }),

		// Jumps
		"IFEQ":         branch((*vm.JumpVM).IFEQ),
		"IFNE":         branch((*vm.JumpVM).IFNE),
		"IFLT":         branch((*vm.JumpVM).IFLT),
		"IFGE":         branch((*vm.JumpVM).IFGE),
		"IFGT":         branch((*vm.JumpVM).IFGT),
		"IFLE":         branch((*vm.JumpVM).IFLE),
		"IF_ICMPEQ":    branch((*vm.JumpVM).IF_ICMPEQ),
		"IF_ICMPNE":    branch((*vm.JumpVM).IF_ICMPNE),
		"IF_ICMPLT":    branch((*vm.JumpVM).IF_ICMPLT),
		"IF_ICMPGE":    branch((*vm.JumpVM).IF_ICMPGE),
		"IF_ICMPGT":    branch((*vm.JumpVM).IF_ICMPGT),
		"IF_ICMPLE":    branch((*vm.JumpVM).IF_ICMPLE),
		"IF_ACMPEQ":    branch((*vm.JumpVM).IF_ACMPEQ),
		"IF_ACMPNE":    branch((*vm.JumpVM).IF_ACMPNE),
		"IFNULL":       branch((*vm.JumpVM).IFNULL),
		"IFNONNULL":    branch((*vm.JumpVM).IFNONNULL),
		"TABLESWITCH":  {nargs: 3, fn: execTABLESWITCH},
		"LOOKUPSWITCH": {nargs: -1, fn: execLOOKUPSWITCH},

		// Heap
		"NEW":            {nargs: 1, fn: func(r *Replayer, args []string) (bool, error) { return false, r.Machine.Heap.NEW(args[0]) }},
		"NEWARRAY":       {nargs: 1, fn: execNEWARRAY((*vm.HeapVM).NEWARRAY)},
		"ANEWARRAY":      {nargs: 1, fn: execNEWARRAY((*vm.HeapVM).ANEWARRAY)},
		"MULTIANEWARRAY": {nargs: 2, fn: execMULTIANEWARRAY},
		"ARRAYLENGTH":    {nargs: 1, fn: execARRAYLENGTH},
		"IALOAD":         arrayLoad((*vm.HeapVM).IALOAD),
		"LALOAD":         arrayLoad((*vm.HeapVM).LALOAD),
		"FALOAD":         arrayLoad((*vm.HeapVM).FALOAD),
		"DALOAD":         arrayLoad((*vm.HeapVM).DALOAD),
		"AALOAD":         arrayLoad((*vm.HeapVM).AALOAD),
		"BALOAD":         arrayLoad((*vm.HeapVM).BALOAD),
		"CALOAD":         arrayLoad((*vm.HeapVM).CALOAD),
		"SALOAD":         arrayLoad((*vm.HeapVM).SALOAD),
		"IASTORE":        arrayStore(vm.WidthBv32, (*vm.HeapVM).IASTORE),
		"LASTORE":        arrayStore(vm.WidthBv64, (*vm.HeapVM).LASTORE),
		"FASTORE":        arrayStore(vm.WidthFp32, (*vm.HeapVM).FASTORE),
		"DASTORE":        arrayStore(vm.WidthFp64, (*vm.HeapVM).DASTORE),
		"AASTORE":        arrayStore(vm.WidthRef, (*vm.HeapVM).AASTORE),
		"BASTORE":        arrayStore(vm.WidthBv32, (*vm.HeapVM).BASTORE),
		"CASTORE":        arrayStore(vm.WidthBv32, (*vm.HeapVM).CASTORE),
		"SASTORE":        arrayStore(vm.WidthBv32, (*vm.HeapVM).SASTORE),
		"GETFIELD":       {nargs: 5, fn: execGETFIELD},
		"PUTFIELD":       {nargs: 4, fn: execPUTFIELD},
		"GETSTATIC":      {nargs: 4, fn: execGETSTATIC},
		"PUTSTATIC":      {nargs: 3, fn: func(r *Replayer, args []string) (bool, error) { return false, r.Machine.Heap.PUTSTATIC(args[0], args[1], args[2]) }},
		"CHECKCAST":      {nargs: 1, fn: func(r *Replayer, args []string) (bool, error) { r.Machine.Heap.CHECKCAST(args[0]); return false, nil }},
		"INSTANCEOF":     {nargs: 2, fn: execINSTANCEOF},
		"MONITORENTER":   {nargs: 1, fn: execMonitor((*vm.HeapVM).MONITORENTER)},
		"MONITOREXIT":    {nargs: 1, fn: execMonitor((*vm.HeapVM).MONITOREXIT)},

		// Calls
		"INVOKE":    {nargs: 5, fn: execINVOKE},
		"CALL":      {nargs: -1, fn: execCALL},
		"IRETURN":   simple(func(m *vm.Machine) { m.Call.IRETURN() }),
		"LRETURN":   simple(func(m *vm.Machine) { m.Call.LRETURN() }),
		"FRETURN":   simple(func(m *vm.Machine) { m.Call.FRETURN() }),
		"DRETURN":   simple(func(m *vm.Machine) { m.Call.DRETURN() }),
		"ARETURN":   simple(func(m *vm.Machine) { m.Call.ARETURN() }),
		"RETURN":    simple(func(m *vm.Machine) { m.Call.RETURN() }),
		"EXCEPTION": {nargs: 2, fn: execEXCEPTION},
	}
}

func execLCONST(r *Replayer, args []string) (bool, error) {
	v, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		return false, err
	}
	r.Machine.Locals.LCONST(v)
	return false, nil
}

func execFCONST(r *Replayer, args []string) (bool, error) {
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return false, err
	}
	r.Machine.Locals.FCONST(float32(v))
	return false, nil
}

func execDCONST(r *Replayer, args []string) (bool, error) {
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return false, err
	}
	r.Machine.Locals.DCONST(v)
	return false, nil
}

// execLDC pushes a typed constant, e.g. "LDC J 42" or `LDC Ljava/lang/String; "hi"`.
func execLDC(r *Replayer, args []string) (bool, error) {
	v, err := r.Host.Value(args[0], args[1])
	if err != nil {
		return false, err
	}
	r.Machine.Locals.LDC(v)
	return false, nil
}

func execIINC(r *Replayer, args []string) (bool, error) {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return false, err
	}
	inc, err := strconv.ParseInt(args[1], 0, 32)
	if err != nil {
		return false, err
	}
	r.Machine.Arithmetic.IINC(index, int32(inc))
	return false, nil
}

func execTABLESWITCH(r *Replayer, args []string) (bool, error) {
	ints, err := parseInts(args)
	if err != nil {
		return false, err
	}
	r.Machine.Jump.TABLESWITCH(int(ints[0]), ints[1], ints[2])
	return false, nil
}

// execLOOKUPSWITCH takes the branch index followed by the case keys.
func execLOOKUPSWITCH(r *Replayer, args []string) (bool, error) {
	if len(args) == 0 {
		return false, fmt.Errorf("branch index required")
	}
	ints, err := parseInts(args)
	if err != nil {
		return false, err
	}
	r.Machine.Jump.LOOKUPSWITCH(int(ints[0]), ints[1:])
	return false, nil
}

func execNEWARRAY(fn func(m *vm.HeapVM, length int32, componentType string) bool) func(r *Replayer, args []string) (bool, error) {
	return func(r *Replayer, args []string) (bool, error) {
		return fn(r.Machine.Heap, int32(r.peekInt(0)), args[0]), nil
	}
}

// execMULTIANEWARRAY takes the array type and the dimension count. The
// dimensions are read from the stack.
func execMULTIANEWARRAY(r *Replayer, args []string) (bool, error) {
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return false, err
	} else if n <= 0 || n > r.stack().Len() {
		return false, fmt.Errorf("invalid dimension count: %d", n)
	}

	dims := make([]int32, n)
	for i := range dims {
		dims[i] = int32(r.peekInt(n - 1 - i))
	}
	return r.Machine.Heap.MULTIANEWARRAY(args[0], dims), nil
}

func execARRAYLENGTH(r *Replayer, args []string) (bool, error) {
	a, err := r.Host.Array(args[0])
	if err != nil {
		return false, err
	}
	return r.Machine.Heap.ARRAYLENGTH(a), nil
}

// execGETFIELD takes the receiver, owner, name, descriptor & concrete value.
func execGETFIELD(r *Replayer, args []string) (bool, error) {
	receiver, err := r.Host.Lookup(args[0])
	if err != nil {
		return false, err
	}
	value, err := r.Host.Value(args[3], args[4])
	if err != nil {
		return false, err
	}
	return r.Machine.Heap.GETFIELD(receiver, args[1], args[2], args[3], value), nil
}

func execPUTFIELD(r *Replayer, args []string) (bool, error) {
	receiver, err := r.Host.Lookup(args[0])
	if err != nil {
		return false, err
	}
	return r.Machine.Heap.PUTFIELD(receiver, args[1], args[2], args[3]), nil
}

// execGETSTATIC takes the owner, name, descriptor & concrete value.
func execGETSTATIC(r *Replayer, args []string) (bool, error) {
	value, err := r.Host.Value(args[2], args[3])
	if err != nil {
		return false, err
	}
	return false, r.Machine.Heap.GETSTATIC(args[0], args[1], args[2], value)
}

// execINSTANCEOF takes the tested object & the type name.
func execINSTANCEOF(r *Replayer, args []string) (bool, error) {
	obj, err := r.Host.Lookup(args[0])
	if err != nil {
		return false, err
	}
	return false, r.Machine.Heap.INSTANCEOF(obj, args[1])
}

func execMonitor(fn func(m *vm.HeapVM, obj interface{}) bool) func(r *Replayer, args []string) (bool, error) {
	return func(r *Replayer, args []string) (bool, error) {
		obj, err := r.Host.Lookup(args[0])
		if err != nil {
			return false, err
		}
		return fn(r.Machine.Heap, obj), nil
	}
}

// execINVOKE enters an instrumented callee:
// "INVOKE owner name desc static|virtual maxLocals".
func execINVOKE(r *Replayer, args []string) (bool, error) {
	static, err := parseDispatch(args[3])
	if err != nil {
		return false, err
	}
	maxLocals, err := strconv.Atoi(args[4])
	if err != nil {
		return false, err
	}
	r.Machine.Call.MethodBegin(vm.MethodRef{Owner: args[0], Name: args[1], Desc: args[2]}, static, maxLocals)
	return false, nil
}

// execCALL replaces an uninstrumented call by its concrete result:
// "CALL desc static|virtual [result]".
func execCALL(r *Replayer, args []string) (bool, error) {
	if len(args) < 2 || len(args) > 3 {
		return false, fmt.Errorf("expected 2 or 3 arguments, got %d", len(args))
	}
	static, err := parseDispatch(args[1])
	if err != nil {
		return false, err
	}

	var result interface{}
	if len(args) == 3 {
		ret := args[0][strings.LastIndex(args[0], ")")+1:]
		if result, err = r.Host.Value(ret, args[2]); err != nil {
			return false, err
		}
	}
	r.Machine.Call.UninstrumentedCall(args[0], static, result)
	return false, nil
}

// execEXCEPTION unwinds to the handling frame: "EXCEPTION depth object".
func execEXCEPTION(r *Replayer, args []string) (bool, error) {
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		return false, err
	}
	exception, err := r.Host.Lookup(args[1])
	if err != nil {
		return false, err
	}
	r.Machine.Call.ExceptionThrown(depth, exception)
	return false, nil
}

func parseDispatch(s string) (static bool, err error) {
	switch s {
	case "static":
		return true, nil
	case "virtual":
		return false, nil
	default:
		return false, fmt.Errorf("invalid dispatch %q, expected static or virtual", s)
	}
}

func parseInts(args []string) ([]int32, error) {
	a := make([]int32, len(args))
	for i, s := range args {
		v, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return nil, err
		}
		a[i] = int32(v)
	}
	return a, nil
}
