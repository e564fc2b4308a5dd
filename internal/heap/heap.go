// Package heap implements the allocator and garbage collector (spec §4.5)
// coordinated with the string interning table (spec §4.4). Every heap
// object is created through a Heap method, which prepends it to the
// all-objects list and charges its nominal size against bytes_allocated.
//
// The source material couples the GC to a single file-scope vm and
// compiler so it can walk their roots directly. Spec §9 calls that out as
// a design smell for a reimplementation and prescribes "an explicit
// callback or interface" instead — here, that's RootProvider: the VM and
// the compiler each implement MarkRoots and register themselves with
// AddRootProvider, so this package never imports vm or compiler.
package heap

import (
	"github.com/cinderlang/cinder/internal/object"
	"github.com/cinderlang/cinder/internal/table"
)

// RootProvider marks every GC root it owns by calling h.MarkValue /
// h.MarkObject for each one. Package vm's VM and package compiler's
// Compiler both implement this.
type RootProvider interface {
	MarkRoots(h *Heap)
}

// Heap owns every live object, the string interning table, and the GC's
// gray worklist and trigger accounting.
type Heap struct {
	cfg Config

	bytesAllocated int
	nextGC         int

	all     object.Object // head of the intrusive all-objects list
	strings *interner

	gray []object.Object

	roots     []RootProvider
	protected []object.Value // temporary roots across allocation sequences

	initString *object.String

	// Collections counts completed GC cycles, exposed for tests.
	Collections int
}

// New creates an empty Heap tuned by cfg.
func New(cfg Config) *Heap {
	h := &Heap{cfg: cfg, nextGC: cfg.InitialThreshold, strings: newInterner()}
	h.initString = h.CopyString("init")
	return h
}

// BytesAllocated reports the current tracked heap size.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// NextGC reports the threshold that triggers the next collection.
func (h *Heap) NextGC() int { return h.nextGC }

// InitString returns the cached interned "init" string the VM uses to
// look up a class's initializer at call time.
func (h *Heap) InitString() *object.String { return h.initString }

// AddRootProvider registers rp to be consulted at the start of every
// collection.
func (h *Heap) AddRootProvider(rp RootProvider) {
	h.roots = append(h.roots, rp)
}

// Protect temporarily roots v across an allocation sequence that might
// otherwise collect it before anything else references it (spec §4.5's
// "notable cases": a fresh interned string before its table insert, a
// fresh constant before its chunk append). Every Protect must be paired
// with an Unprotect once v is safely reachable another way.
func (h *Heap) Protect(v object.Value) {
	h.protected = append(h.protected, v)
}

// Unprotect pops the most recently protected value.
func (h *Heap) Unprotect() {
	h.protected = h.protected[:len(h.protected)-1]
}

// AddConstant appends v to chunk's constant pool, protecting v for the
// duration of the append the way spec §4.1 requires.
func (h *Heap) AddConstant(chunk *object.Chunk, v object.Value) (idx int, ok bool) {
	h.Protect(v)
	idx, ok = chunk.AddConstant(v)
	h.Unprotect()
	return idx, ok
}

// track charges a freshly constructed object's nominal size, runs the GC
// if that pushed bytesAllocated over nextGC (or if stress mode is on), and
// then links the object into the all-objects list. Collecting before the
// link means the new object itself is never swept by the collection its
// own allocation triggered.
func (h *Heap) track(o object.Object, size int) {
	h.bytesAllocated += size
	if h.cfg.StressGC || h.bytesAllocated > h.nextGC {
		h.Collect()
	}

	hdr := object.Head(o)
	hdr.Next = h.all
	hdr.Size = size
	h.all = o
}

// Nominal per-object byte weights. Go gives no sizeof(); these only need
// to be internally consistent so the GC trigger heuristic behaves
// sensibly, not to match any real struct layout.
const (
	sizeStringBase = 40
	sizeFunction   = 72
	sizeNative     = 32
	sizeClosure    = 48
	sizeUpvalue    = 32
	sizeClass      = 56
	sizeInstance   = 48
	sizeBoundMeth  = 40
)

// NewFunction allocates an empty Function; callers fill in its fields
// (Arity, Chunk, Name, UpvalueCount) before it is reachable from anywhere
// else, so no Protect dance is needed around those writes.
func (h *Heap) NewFunction() *object.Function {
	f := &object.Function{Header: object.Header{Type: object.TypeFunction}}
	h.track(f, sizeFunction)
	return f
}

// NewNative wraps fn as a callable Native object.
func (h *Heap) NewNative(name string, fn object.NativeFn) *object.Native {
	n := &object.Native{Header: object.Header{Type: object.TypeNative}, Name: name, Fn: fn}
	h.track(n, sizeNative)
	return n
}

// NewClosure allocates a Closure over fn with an Upvalues slice sized to
// fn.UpvalueCount, initially all nil until the CLOSURE opcode fills each
// slot in.
func (h *Heap) NewClosure(fn *object.Function) *object.Closure {
	c := &object.Closure{Header: object.Header{Type: object.TypeClosure}, Function: fn, Upvalues: make([]*object.Upvalue, fn.UpvalueCount)}
	h.track(c, sizeClosure)
	return c
}

// NewUpvalue allocates an open upvalue pointing at slot.
func (h *Heap) NewUpvalue(slot *object.Value) *object.Upvalue {
	u := &object.Upvalue{Header: object.Header{Type: object.TypeUpvalue}, Location: slot}
	h.track(u, sizeUpvalue)
	return u
}

// NewClass allocates an empty Class named name.
func (h *Heap) NewClass(name *object.String) *object.Class {
	c := &object.Class{Header: object.Header{Type: object.TypeClass}, Name: name, Methods: table.New[*object.String, *object.Closure]()}
	h.track(c, sizeClass)
	return c
}

// NewInstance allocates an Instance of class with an empty field table.
func (h *Heap) NewInstance(class *object.Class) *object.Instance {
	i := &object.Instance{Header: object.Header{Type: object.TypeInstance}, Class: class, Fields: table.New[*object.String, object.Value]()}
	h.track(i, sizeInstance)
	return i
}

// NewBoundMethod allocates a BoundMethod pairing receiver with method.
func (h *Heap) NewBoundMethod(receiver object.Value, method *object.Closure) *object.BoundMethod {
	b := &object.BoundMethod{Header: object.Header{Type: object.TypeBoundMethod}, Receiver: receiver, Method: method}
	h.track(b, sizeBoundMeth)
	return b
}

// CopyString interns chars, returning the existing String object if one
// with identical bytes is already interned, or allocating a new one
// otherwise. The source material distinguishes copyString (always
// duplicates its input) from takeString (takes ownership, freeing the
// input on a hit); Go strings are immutable values with no buffer to free
// or duplicate, so both collapse to this single implementation. TakeString
// is kept as an alias so call sites can still say which case they're in.
func (h *Heap) CopyString(chars string) *object.String {
	hash := HashString(chars)
	if existing := h.strings.find(chars, hash); existing != nil {
		return existing
	}
	return h.allocateString(chars, hash)
}

// TakeString is an alias for CopyString — see its doc comment.
func (h *Heap) TakeString(chars string) *object.String { return h.CopyString(chars) }

func (h *Heap) allocateString(chars string, hash uint32) *object.String {
	s := &object.String{Header: object.Header{Type: object.TypeString}, Chars: chars, HashVal: hash}
	h.Protect(object.NewObject(s))
	h.track(s, sizeStringBase+len(chars))
	h.strings.insert(s)
	h.Unprotect()
	return s
}

// HashString computes the FNV-1a 32-bit hash spec §3 requires strings to
// carry, using the source material's constants (offset basis 2166136261,
// prime 16777619).
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}
