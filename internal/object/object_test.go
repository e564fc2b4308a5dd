package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueEqualityIsVariantStrict(t *testing.T) {
	assert.True(t, Equal(Nil, Nil))
	assert.False(t, Equal(Nil, False))
	assert.False(t, Equal(NewNumber(0), False))
	assert.True(t, Equal(NewNumber(1), NewNumber(1)))
	assert.False(t, Equal(NewNumber(1), NewNumber(2)))
	assert.True(t, Equal(True, True))
}

func TestValueFalsey(t *testing.T) {
	assert.True(t, Nil.Falsey())
	assert.True(t, False.Falsey())
	assert.False(t, True.Falsey())
	assert.False(t, NewNumber(0).Falsey())
	s := &String{Chars: ""}
	assert.False(t, NewObject(s).Falsey())
}

func TestValueObjectEqualityIsIdentity(t *testing.T) {
	a := &String{Chars: "foo"}
	b := &String{Chars: "foo"}
	// Two distinct (non-interned) String objects with the same content
	// are NOT equal under Value.Equal — interning (package heap) is what
	// makes byte-equal strings share one object in practice.
	assert.False(t, Equal(NewObject(a), NewObject(b)))
	assert.True(t, Equal(NewObject(a), NewObject(a)))
}

func TestPrintCanonicalForms(t *testing.T) {
	assert.Equal(t, "nil", Print(Nil))
	assert.Equal(t, "true", Print(True))
	assert.Equal(t, "false", Print(False))
	assert.Equal(t, "1", Print(NewNumber(1)))
	assert.Equal(t, "1.5", Print(NewNumber(1.5)))

	str := &String{Chars: "hi"}
	assert.Equal(t, "hi", Print(NewObject(str)))

	fn := &Function{Name: &String{Chars: "area"}}
	assert.Equal(t, "<fn area>", Print(NewObject(fn)))

	script := &Function{}
	assert.Equal(t, "<script>", Print(NewObject(script)))

	cls := &Class{Name: &String{Chars: "Circle"}}
	assert.Equal(t, "<class Circle>", Print(NewObject(cls)))

	inst := &Instance{Class: cls}
	assert.Equal(t, "<instance of Circle>", Print(NewObject(inst)))

	nat := &Native{Name: "clock"}
	assert.Equal(t, "<native fn>", Print(NewObject(nat)))
}

func TestUpvalueClose(t *testing.T) {
	v := NewNumber(42)
	up := &Upvalue{Location: &v}
	up.Close()
	assert.Equal(t, NewNumber(42), up.Closed)
	assert.Same(t, &up.Closed, up.Location)

	v = NewNumber(100) // mutating the original slot no longer affects the upvalue
	assert.Equal(t, NewNumber(42), *up.Location)
}
