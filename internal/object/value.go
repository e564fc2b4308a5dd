package object

// Kind tags which variant of the Value union is populated.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is the tagged union every stack slot, constant, global, field, and
// upvalue holds. Exactly one of Bool/Number/Obj is meaningful, selected by
// Kind; different Kinds are never equal to each other.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	Obj    Object
}

// Nil, True and False are the three non-numeric, non-object literal Values.
var (
	Nil   = Value{Kind: KindNil}
	True  = Value{Kind: KindBool, Bool: true}
	False = Value{Kind: KindBool, Bool: false}
)

// NewBool wraps a bool as a Value.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewNumber wraps a float64 as a Value.
func NewNumber(n float64) Value { return Value{Kind: KindNumber, Number: n} }

// NewObject wraps a heap Object as a Value.
func NewObject(o Object) Value { return Value{Kind: KindObject, Obj: o} }

// IsNil, IsBool, IsNumber and IsObject report Value's variant.
func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsObject() bool { return v.Kind == KindObject }

// ObjectType reports the heap Object's Type tag, or false if v is not an
// object Value.
func (v Value) ObjectType() (Type, bool) {
	if v.Kind != KindObject {
		return 0, false
	}
	return v.Obj.header().Type, true
}

// Is reports whether v is an object Value of the given Type.
func (v Value) Is(t Type) bool {
	ty, ok := v.ObjectType()
	return ok && ty == t
}

// AsString type-asserts v as a *String, panicking if v is not one. Callers
// must check Is(TypeString) (or the equivalent typed helper in package vm)
// first; this mirrors AS_STRING in the source material, which is likewise
// unchecked and only ever used after an IS_STRING guard.
func (v Value) AsString() *String { return v.Obj.(*String) }

// Falsey reports whether v is falsey: nil or false. Everything else,
// including 0 and the empty string, is truthy.
func (v Value) Falsey() bool {
	return v.Kind == KindNil || (v.Kind == KindBool && !v.Bool)
}

// Equal implements Value equality: different variants are never equal,
// and object equality is reference identity (which coincides with content
// equality for interned strings, since interning guarantees one object
// per distinct byte sequence).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindObject:
		return a.Obj == b.Obj
	default:
		return false
	}
}
