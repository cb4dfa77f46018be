package vm

import (
	"fmt"
	"log"

	"github.com/gofraser/evosuite-sub000/symbolic"
)

// HeapVM shadows object, field and array instructions.
//
// Instructions that may fault return true when the concrete execution
// raised an exception. In that case the instruction's operands have been
// popped and no result is pushed.
type HeapVM struct {
	env *Env
	pc  PathConditionCollector
}

// NewHeapVM returns a heap VM operating on env.
func NewHeapVM(env *Env, pc PathConditionCollector) *HeapVM {
	return &HeapVM{env: env, pc: pc}
}

func (m *HeapVM) stack() *OperandStack {
	return m.env.TopFrame().Operands
}

// resolve returns the reference bound to the non-null concrete object.
func (m *HeapVM) resolve(symb symbolic.ReferenceExpr, obj interface{}) *symbolic.ReferenceConstant {
	ref, ok := m.env.Heap.Resolve(symb, obj).(*symbolic.ReferenceConstant)
	assert(ok, "unresolved reference for %T", obj)
	return ref
}

// resolveArray returns the reference bound to the non-null concrete array.
func (m *HeapVM) resolveArray(symb symbolic.ReferenceExpr, array ConcreteArray) *symbolic.ReferenceConstant {
	ref := m.resolve(symb, array)
	assert(ref.IsArray(), "array access through %s", ref)
	return ref
}

// nullReferenceViolation returns true if obj is null. No constraint is
// recorded.
func (m *HeapVM) nullReferenceViolation(obj interface{}) bool {
	if obj == nil {
		log.Printf("[fault] null dereference in %s", m.env.TopFrame().Method)
		return true
	}
	return false
}

// negativeArrayLengthViolation records the sign of a requested array length.
func (m *HeapVM) negativeArrayLengthViolation(length symbolic.IntegerValue, concrete int32) bool {
	zero := symbolic.NewIntegerConstant(0)

	var c *symbolic.IntegerConstraint
	if concrete < 0 {
		c = symbolic.Lt(length, zero)
	} else {
		c = symbolic.Ge(length, zero)
	}
	if symbolic.IsSymbolic(c) {
		m.pc.AppendSupportingConstraint(c)
	}

	if concrete < 0 {
		log.Printf("[fault] negative array size %d in %s", concrete, m.env.TopFrame().Method)
		return true
	}
	return false
}

// negativeIndexViolation records the sign of an array index.
func (m *HeapVM) negativeIndexViolation(index symbolic.IntegerValue, concrete int32) bool {
	zero := symbolic.NewIntegerConstant(0)

	var c *symbolic.IntegerConstraint
	if concrete < 0 {
		c = symbolic.Lt(index, zero)
	} else {
		c = symbolic.Ge(index, zero)
	}
	m.appendArrayAccessCondition(c, concrete < 0)

	if concrete < 0 {
		log.Printf("[fault] negative array index %d in %s", concrete, m.env.TopFrame().Method)
		return true
	}
	return false
}

// indexTooBigViolation records whether an index is below the array length.
func (m *HeapVM) indexTooBigViolation(index symbolic.IntegerValue, concrete int32, length symbolic.IntegerValue) bool {
	tooBig := int64(concrete) >= length.ConcreteValue()

	var c *symbolic.IntegerConstraint
	if tooBig {
		c = symbolic.Ge(index, length)
	} else {
		c = symbolic.Lt(index, length)
	}
	m.appendArrayAccessCondition(c, tooBig)

	if tooBig {
		log.Printf("[fault] array index %d out of bounds in %s", concrete, m.env.TopFrame().Method)
		return true
	}
	return false
}

func (m *HeapVM) appendArrayAccessCondition(c *symbolic.IntegerConstraint, negated bool) {
	if !symbolic.IsSymbolic(c) {
		return
	}
	method := m.env.TopFrame().Method
	m.pc.AppendArrayAccessCondition(c, method.Owner, method.Name, negated)
}

// observed returns the constant for a value the host read from a location
// holding stored. An unbound placeholder stored there, such as a new array
// written to a field before its first use, is bound to the observed object.
func (m *HeapVM) observed(w Width, value interface{}, stored symbolic.Expr) symbolic.Expr {
	if ref, ok := stored.(symbolic.ReferenceExpr); ok && w == WidthRef {
		return m.env.Heap.Resolve(ref, value)
	}
	return constantOf(m.env.Heap, w, value)
}

// NEW pushes a fresh reference for an instance of className. The reference
// is bound to the concrete object on its first use.
func (m *HeapVM) NEW(className string) error {
	if err := m.env.EnsurePrepared(className); err != nil {
		return err
	}
	m.stack().PushRef(m.env.Heap.NewReference(className))
	return nil
}

// NEWARRAY allocates an array of a primitive component type given as a
// descriptor, e.g. "I".
func (m *HeapVM) NEWARRAY(length int32, componentType string) bool {
	return m.newArray(arrayType(componentType), length)
}

// ANEWARRAY allocates an array of references to componentType.
func (m *HeapVM) ANEWARRAY(length int32, componentType string) bool {
	return m.newArray(arrayType(componentType), length)
}

func (m *HeapVM) newArray(typ string, length int32) bool {
	s := m.stack()
	symLength := s.PopBv32()
	if m.negativeArrayLengthViolation(symLength, length) {
		return true
	}
	s.PushRef(m.env.Heap.NewArrayReference(typ, symLength))
	return false
}

// MULTIANEWARRAY allocates a multi-dimensional array. The host passes the
// concrete dimensions, outermost first.
func (m *HeapVM) MULTIANEWARRAY(typ string, dims []int32) bool {
	assert(len(dims) > 0, "MULTIANEWARRAY without dimensions")

	s := m.stack()
	symDims := make([]symbolic.IntegerValue, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		symDims[i] = s.PopBv32()
	}

	for i := range dims {
		if m.negativeArrayLengthViolation(symDims[i], dims[i]) {
			return true
		}
	}
	s.PushRef(m.env.Heap.NewArrayReference(typ, symDims[0]))
	return false
}

// ARRAYLENGTH pushes the length of array.
func (m *HeapVM) ARRAYLENGTH(array ConcreteArray) bool {
	s := m.stack()
	symArray := s.PopRef()
	if m.nullReferenceViolation(array) {
		return true
	}
	ref := m.resolveArray(symArray, array)
	s.PushBv32(m.env.Heap.ArrayLength(ref, array.Len()))
	return false
}

func (m *HeapVM) IALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthBv32, array, index) }
func (m *HeapVM) LALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthBv64, array, index) }
func (m *HeapVM) FALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthFp32, array, index) }
func (m *HeapVM) DALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthFp64, array, index) }
func (m *HeapVM) AALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthRef, array, index) }
func (m *HeapVM) BALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthBv32, array, index) }
func (m *HeapVM) CALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthBv32, array, index) }
func (m *HeapVM) SALOAD(array ConcreteArray, index int32) bool { return m.arrayLoad(WidthBv32, array, index) }

func (m *HeapVM) IASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthBv32, array, index)
}
func (m *HeapVM) LASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthBv64, array, index)
}
func (m *HeapVM) FASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthFp32, array, index)
}
func (m *HeapVM) DASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthFp64, array, index)
}
func (m *HeapVM) AASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthRef, array, index)
}
func (m *HeapVM) BASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthBv32, array, index)
}
func (m *HeapVM) CASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthBv32, array, index)
}
func (m *HeapVM) SASTORE(array ConcreteArray, index int32) bool {
	return m.arrayStore(WidthBv32, array, index)
}

// checkArrayAccess runs the null and bounds checks shared by loads and
// stores and returns the array reference if the access succeeds.
func (m *HeapVM) checkArrayAccess(symArray symbolic.ReferenceExpr, array ConcreteArray, symIndex symbolic.IntegerValue, index int32) (*symbolic.ReferenceConstant, bool) {
	if m.nullReferenceViolation(array) {
		return nil, true
	} else if m.negativeIndexViolation(symIndex, index) {
		return nil, true
	}

	ref := m.resolveArray(symArray, array)
	length := m.env.Heap.ArrayLength(ref, array.Len())
	if m.indexTooBigViolation(symIndex, index, length) {
		return nil, true
	}
	return ref, false
}

func (m *HeapVM) arrayLoad(w Width, array ConcreteArray, index int32) bool {
	s := m.stack()
	symIndex := s.PopBv32()
	symArray := s.PopRef()

	ref, fault := m.checkArrayAccess(symArray, array, symIndex, index)
	if fault {
		return true
	}

	concrete := m.observed(w, array.Load(int(index)), m.env.Heap.storedElem(elemKey{ref: ref.ID, index: int(index)}))
	s.PushOperand(NewOperand(w, m.env.Heap.ArrayLoad(ref, int(index), concrete)))
	return false
}

func (m *HeapVM) arrayStore(w Width, array ConcreteArray, index int32) bool {
	s := m.stack()
	value := s.PopOperand()
	assert(value.Width() == w, "array store: expected %s, got %s", w, value.Width())
	symIndex := s.PopBv32()
	symArray := s.PopRef()

	ref, fault := m.checkArrayAccess(symArray, array, symIndex, index)
	if fault {
		return true
	}

	m.env.Heap.ArrayStore(ref, int(index), value.Expr())
	return false
}

// GETFIELD pushes the symbolic value of an instance field. The host passes
// the concrete receiver and the concrete value it read.
func (m *HeapVM) GETFIELD(receiver interface{}, owner, name, desc string, value interface{}) bool {
	s := m.stack()
	symReceiver := s.PopRef()
	if m.nullReferenceViolation(receiver) {
		return true
	}

	ref := m.resolve(symReceiver, receiver)
	w := widthOf(desc)
	concrete := m.observed(w, value, m.env.Heap.storedField(fieldKey{ref: ref.ID, owner: owner, name: name}))
	s.PushOperand(NewOperand(w, m.env.Heap.GetField(ref, owner, name, concrete)))
	return false
}

// PUTFIELD stores the top value in an instance field of receiver.
func (m *HeapVM) PUTFIELD(receiver interface{}, owner, name, desc string) bool {
	s := m.stack()
	value := s.PopOperand()
	assert(value.Width() == widthOf(desc), "PUTFIELD %s.%s: expected %s, got %s", owner, name, widthOf(desc), value.Width())
	symReceiver := s.PopRef()
	if m.nullReferenceViolation(receiver) {
		return true
	}

	ref := m.resolve(symReceiver, receiver)
	m.env.Heap.PutField(ref, owner, name, value.Expr())
	return false
}

// GETSTATIC pushes the symbolic value of a static field after preparing its
// owner class.
func (m *HeapVM) GETSTATIC(owner, name, desc string, value interface{}) error {
	if err := m.env.EnsurePrepared(owner); err != nil {
		return err
	}

	w := widthOf(desc)
	concrete := m.observed(w, value, m.env.Heap.storedField(fieldKey{owner: owner, name: name}))
	m.stack().PushOperand(NewOperand(w, m.env.Heap.GetStaticField(owner, name, concrete)))
	return nil
}

// PUTSTATIC stores the top value in a static field after preparing its
// owner class.
func (m *HeapVM) PUTSTATIC(owner, name, desc string) error {
	if err := m.env.EnsurePrepared(owner); err != nil {
		return err
	}

	value := m.stack().PopOperand()
	assert(value.Width() == widthOf(desc), "PUTSTATIC %s.%s: expected %s, got %s", owner, name, widthOf(desc), value.Width())
	m.env.Heap.PutStaticField(owner, name, value.Expr())
	return nil
}

// CHECKCAST leaves the reference on the stack. A failing cast is reported by
// the host through its exception handling.
func (m *HeapVM) CHECKCAST(typeName string) {
	op := m.stack().PeekOperand(0)
	assert(op.Width() == WidthRef, "CHECKCAST %s: expected ref operand, got %s", typeName, op.Width())
}

// INSTANCEOF replaces the top reference with the concrete result of the
// type test. Null is never an instance.
func (m *HeapVM) INSTANCEOF(obj interface{}, typeName string) error {
	s := m.stack()
	s.PopRef()

	if obj == nil {
		s.PushBv32(symbolic.NewBoolConstant(false))
		return nil
	} else if m.env.Classes == nil {
		return ErrNoClassResolver
	}

	ok, err := m.env.Classes.IsInstance(obj, typeName)
	if err != nil {
		return fmt.Errorf("vm.HeapVM: instanceof %s: %w", typeName, err)
	}
	s.PushBv32(symbolic.NewBoolConstant(ok))
	return nil
}

// MONITORENTER pops the lock object. Returns true if it is null.
func (m *HeapVM) MONITORENTER(obj interface{}) bool {
	m.stack().PopRef()
	return m.nullReferenceViolation(obj)
}

// MONITOREXIT pops the lock object. Returns true if it is null.
func (m *HeapVM) MONITOREXIT(obj interface{}) bool {
	m.stack().PopRef()
	return m.nullReferenceViolation(obj)
}
