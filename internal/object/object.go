// Package object defines the heap object model (the root of every
// heap-allocated entity) together with the Value tagged union and the
// Chunk it is compiled into. These three are kept in one package because
// they are mutually referential in the source material — a Function
// embeds a Chunk, a Chunk's constant pool holds Values, and a Value can
// box an object — and Go does not allow that cycle to cross package
// boundaries the way spec.md's component table (§2) breaks them apart on
// paper.
//
// Allocation and GC bookkeeping (mark bits, the intrusive all-objects
// list, bytes-charged accounting) live in package heap, which depends on
// this package rather than the reverse: object.go only describes shapes,
// never allocates.
package object

import "github.com/cinderlang/cinder/internal/table"

// Type tags every heap Object with its concrete variant, mirroring the
// ObjType enum of the source material's object.h.
type Type uint8

const (
	TypeString Type = iota
	TypeFunction
	TypeNative
	TypeClosure
	TypeUpvalue
	TypeClass
	TypeInstance
	TypeBoundMethod
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeFunction:
		return "function"
	case TypeNative:
		return "native"
	case TypeClosure:
		return "closure"
	case TypeUpvalue:
		return "upvalue"
	case TypeClass:
		return "class"
	case TypeInstance:
		return "instance"
	case TypeBoundMethod:
		return "bound method"
	default:
		return "unknown"
	}
}

// Header is embedded in every concrete Object variant. Marked and Next are
// owned by package heap: Marked is cleared between collections, Next is
// the intrusive singly-linked link the GC walks during sweep. Nothing in
// this package ever sets them.
type Header struct {
	Type   Type
	Marked bool
	Next   Object
	// Size is the nominal byte weight charged against the heap's
	// bytes_allocated counter at allocation time (package heap), and
	// credited back on sweep. It drives the GC trigger heuristic; it is
	// not a literal sizeof(), since Go does not expose one.
	Size int
}

// Object is the root interface of every heap-allocated entity.
type Object interface {
	header() *Header
	// String returns the canonical textual representation used by the
	// print opcode and by string concatenation with non-string operands
	// is NOT implied — only PRINT and disassembly use this.
	String() string
}

// Head exposes an Object's header for package heap, which lives outside
// this package and cannot call the unexported header() method directly.
func Head(o Object) *Header { return o.header() }

// String is an immutable, interned byte sequence. At most one String
// object exists per distinct byte sequence (package heap's interning
// table enforces this), so Value equality on strings reduces to pointer
// equality.
type String struct {
	Header
	Chars   string
	HashVal uint32
}

func (s *String) header() *Header { return &s.Header }
func (s *String) String() string  { return s.Chars }

// Hash satisfies table.Key so *String can key the generic Table used for
// globals, class method tables, and instance field tables.
func (s *String) Hash() uint32 { return s.HashVal }

var _ = table.New[*String, Value]

// Function is a compiled function body: its arity, how many upvalues its
// closures must capture, its bytecode, and an optional name (nil for the
// implicit top-level script).
type Function struct {
	Header
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *String
}

func (f *Function) header() *Header { return &f.Header }
func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}

// NativeFn is the signature every host-supplied callable must satisfy
// (spec §6, "Native function contract"). It must not retain args past
// return.
type NativeFn func(args []Value) (Value, error)

// Native wraps a host callable so it can be called like any other Value.
type Native struct {
	Header
	Name string
	Fn   NativeFn
}

func (n *Native) header() *Header { return &n.Header }
func (n *Native) String() string  { return "<native fn>" }

// Upvalue is either open (Location points into a live VM stack slot) or
// closed (Location points at Closed, which it then owns). NextOpen is not
// used by package vm, which keeps its open upvalues in its own slice
// sorted by stack index.
type Upvalue struct {
	Header
	Location *Value
	Closed   Value
	NextOpen *Upvalue
}

func (u *Upvalue) header() *Header { return &u.Header }
func (u *Upvalue) String() string  { return "upvalue" }

// Close moves the pointed-to value into the upvalue itself and retargets
// Location at that copy, so that further reads/writes through Location
// keep working after the originating stack slot is gone.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Closure pairs a Function with the upvalues its body captured. Upvalues
// always has length equal to Function.UpvalueCount once construction
// completes.
type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func (c *Closure) header() *Header { return &c.Header }
func (c *Closure) String() string  { return c.Function.String() }

// Class is a named method table. Methods maps method name (*String) to
// the Closure implementing it; INHERIT copies a superclass's Methods into
// a subclass's at class-definition time (spec §9, "Method table
// inheritance via copy").
type Class struct {
	Header
	Name    *String
	Methods *table.Table[*String, *Closure]
}

func (c *Class) header() *Header { return &c.Header }
func (c *Class) String() string  { return "<class " + c.Name.Chars + ">" }

// Instance is a live object of some Class, with its own field table.
type Instance struct {
	Header
	Class  *Class
	Fields *table.Table[*String, Value]
}

func (i *Instance) header() *Header { return &i.Header }
func (i *Instance) String() string  { return "<instance of " + i.Class.Name.Chars + ">" }

// BoundMethod pairs a receiver with the Closure implementing the method it
// was looked up through, so calling it supplies Receiver as the implicit
// slot-0 argument.
type BoundMethod struct {
	Header
	Receiver Value
	Method   *Closure
}

func (b *BoundMethod) header() *Header { return &b.Header }
func (b *BoundMethod) String() string  { return b.Method.String() }
