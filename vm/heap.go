package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"sort"

	"github.com/benbjohnson/immutable"
	"github.com/cespare/xxhash/v2"
	"github.com/gofraser/evosuite-sub000/symbolic"
)

// lengthField is the synthetic field holding an array's length.
const lengthField = "length"

// Heap tracks the symbolic values stored in fields, statics and array
// slots, and the reference constant bound to each concrete object.
//
// A stored value is only returned while its concrete value agrees with the
// value the host observes. Uninstrumented code may have written the
// location in between, in which case the observed constant wins.
type Heap struct {
	nextID uint64

	objects *immutable.Map       // concrete object -> *symbolic.ReferenceConstant
	bound   *immutable.SortedMap // reference id -> true
	fields  *immutable.Map       // fieldKey -> symbolic.Expr
	elems   *immutable.SortedMap // elemKey -> symbolic.Expr
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{
		nextID:  1,
		objects: immutable.NewMap(&identityHasher{}),
		bound:   immutable.NewSortedMap(&uint64Comparer{}),
		fields:  immutable.NewMap(&fieldHasher{}),
		elems:   immutable.NewSortedMap(&elemComparer{}),
	}
}

// NewReference returns a fresh reference of the given type that is not yet
// bound to a concrete object.
func (h *Heap) NewReference(typ string) *symbolic.ReferenceConstant {
	ref := &symbolic.ReferenceConstant{ID: h.nextID, Type: typ}
	h.nextID++
	return ref
}

// NewArrayReference returns a fresh array reference whose length field is
// set to length.
func (h *Heap) NewArrayReference(typ string, length symbolic.IntegerValue) *symbolic.ReferenceConstant {
	ref := h.NewReference(typ)
	h.PutField(ref, "", lengthField, length)
	return ref
}

// InitializeReference binds ref to the concrete object obj.
func (h *Heap) InitializeReference(obj interface{}, ref *symbolic.ReferenceConstant) {
	assert(obj != nil, "bind of nil object to %s", ref)
	assert(reflect.TypeOf(obj).Comparable(), "concrete object of type %T is not comparable", obj)
	h.objects = h.objects.Set(obj, ref)
	h.bound = h.bound.Set(ref.ID, true)
}

// Reference returns the reference bound to obj, binding a fresh one if obj
// has not been seen before. A nil object maps to symbolic.Null.
func (h *Heap) Reference(obj interface{}) symbolic.ReferenceExpr {
	if obj == nil {
		return symbolic.Null
	} else if v, ok := h.objects.Get(obj); ok {
		return v.(*symbolic.ReferenceConstant)
	}

	ref := h.NewReference(className(obj))
	h.InitializeReference(obj, ref)
	return ref
}

// Resolve returns the reference for obj given the symbolic reference that
// was found on the stack. An unbound placeholder, such as the result of NEW,
// is bound to obj on first use.
func (h *Heap) Resolve(symb symbolic.ReferenceExpr, obj interface{}) symbolic.ReferenceExpr {
	if obj == nil {
		return symbolic.Null
	} else if v, ok := h.objects.Get(obj); ok {
		return v.(*symbolic.ReferenceConstant)
	}

	if ref, ok := symb.(*symbolic.ReferenceConstant); ok {
		if _, bound := h.bound.Get(ref.ID); !bound {
			h.InitializeReference(obj, ref)
			return ref
		}
	}
	return h.Reference(obj)
}

// GetStaticField returns the symbolic value of a static field, or concrete
// if none is stored or the stored value is stale.
func (h *Heap) GetStaticField(owner, name string, concrete symbolic.Expr) symbolic.Expr {
	return h.load(fieldKey{owner: owner, name: name}, concrete)
}

// PutStaticField stores value in a static field.
func (h *Heap) PutStaticField(owner, name string, value symbolic.Expr) {
	h.fields = h.fields.Set(fieldKey{owner: owner, name: name}, value)
}

// GetField returns the symbolic value of an instance field, or concrete if
// none is stored or the stored value is stale.
func (h *Heap) GetField(ref *symbolic.ReferenceConstant, owner, name string, concrete symbolic.Expr) symbolic.Expr {
	return h.load(fieldKey{ref: ref.ID, owner: owner, name: name}, concrete)
}

// PutField stores value in an instance field.
func (h *Heap) PutField(ref *symbolic.ReferenceConstant, owner, name string, value symbolic.Expr) {
	h.fields = h.fields.Set(fieldKey{ref: ref.ID, owner: owner, name: name}, value)
}

// ArrayLength returns the symbolic length of an array of concrete length n.
func (h *Heap) ArrayLength(ref *symbolic.ReferenceConstant, n int) symbolic.IntegerValue {
	return h.GetField(ref, "", lengthField, symbolic.NewIntegerConstant(int64(n))).(symbolic.IntegerValue)
}

// ArrayLoad returns the symbolic value of an array slot, or concrete if
// none is stored or the stored value is stale.
func (h *Heap) ArrayLoad(ref *symbolic.ReferenceConstant, index int, concrete symbolic.Expr) symbolic.Expr {
	if v, ok := h.elems.Get(elemKey{ref: ref.ID, index: index}); ok {
		if expr := v.(symbolic.Expr); symbolic.ConcreteEqual(expr, concrete) {
			return expr
		}
	}
	return concrete
}

// ArrayStore stores value in an array slot.
func (h *Heap) ArrayStore(ref *symbolic.ReferenceConstant, index int, value symbolic.Expr) {
	h.elems = h.elems.Set(elemKey{ref: ref.ID, index: index}, value)
}

// storedField returns the value last written to a field, or nil.
func (h *Heap) storedField(key fieldKey) symbolic.Expr {
	if v, ok := h.fields.Get(key); ok {
		return v.(symbolic.Expr)
	}
	return nil
}

// storedElem returns the value last written to an array slot, or nil.
func (h *Heap) storedElem(key elemKey) symbolic.Expr {
	if v, ok := h.elems.Get(key); ok {
		return v.(symbolic.Expr)
	}
	return nil
}

func (h *Heap) load(key fieldKey, concrete symbolic.Expr) symbolic.Expr {
	if v, ok := h.fields.Get(key); ok {
		if expr := v.(symbolic.Expr); symbolic.ConcreteEqual(expr, concrete) {
			return expr
		}
	}
	return concrete
}

// Dump returns the stored fields and array slots as a string.
func (h *Heap) Dump() string {
	var lines []string
	itr := h.fields.Iterator()
	for !itr.Done() {
		k, v := itr.Next()
		key := k.(fieldKey)
		if key.ref == 0 {
			lines = append(lines, fmt.Sprintf("%s.%s = %s", key.owner, key.name, v))
		} else {
			lines = append(lines, fmt.Sprintf("#%d %s.%s = %s", key.ref, key.owner, key.name, v))
		}
	}
	sort.Strings(lines)

	var buf bytes.Buffer
	for _, line := range lines {
		fmt.Fprintln(&buf, line)
	}

	elems := h.elems.Iterator()
	for !elems.Done() {
		k, v := elems.Next()
		key := k.(elemKey)
		fmt.Fprintf(&buf, "#%d[%d] = %s\n", key.ref, key.index, v)
	}
	return buf.String()
}

// className returns the internal type name of a concrete object.
func className(obj interface{}) string {
	switch obj := obj.(type) {
	case interface{ ClassName() string }:
		return obj.ClassName()
	case string:
		return "java/lang/String"
	default:
		return "java/lang/Object"
	}
}

// fieldKey identifies an instance field, or a static field when ref is zero.
type fieldKey struct {
	ref   uint64
	owner string
	name  string
}

// fieldHasher hashes field keys. Implements immutable.Hasher.
type fieldHasher struct{}

func (h *fieldHasher) Hash(key interface{}) uint32 {
	k := key.(fieldKey)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], k.ref)

	d := xxhash.New()
	d.Write(buf[:])
	d.WriteString(k.owner)
	d.WriteString(".")
	d.WriteString(k.name)
	return uint32(d.Sum64())
}

func (h *fieldHasher) Equal(a, b interface{}) bool {
	return a.(fieldKey) == b.(fieldKey)
}

// identityHasher hashes concrete objects by identity. Pointer-like values
// hash their address. Implements immutable.Hasher.
type identityHasher struct{}

func (h *identityHasher) Hash(key interface{}) uint32 {
	if s, ok := key.(string); ok {
		return uint32(xxhash.Sum64String(s))
	}

	v := reflect.ValueOf(key)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Pointer()))
		return uint32(xxhash.Sum64(buf[:]))
	default:
		return uint32(xxhash.Sum64String(fmt.Sprintf("%T:%v", key, key)))
	}
}

func (h *identityHasher) Equal(a, b interface{}) bool {
	return a == b
}

// elemKey identifies an array slot.
type elemKey struct {
	ref   uint64
	index int
}

// elemComparer orders array slots by array then index. Implements
// immutable.Comparer.
type elemComparer struct{}

func (c *elemComparer) Compare(a, b interface{}) int {
	i, j := a.(elemKey), b.(elemKey)
	if cmp := (&uint64Comparer{}).Compare(i.ref, j.ref); cmp != 0 {
		return cmp
	} else if i.index < j.index {
		return -1
	} else if i.index > j.index {
		return 1
	}
	return 0
}

// uint64Comparer compares two 64-bit unsigned integers. Implements immutable.Comparer.
type uint64Comparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b, and
// returns 0 if a is equal to b. Panic if a or b is not a uint64.
func (c *uint64Comparer) Compare(a, b interface{}) int {
	if i, j := a.(uint64), b.(uint64); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
