package compiler

import (
	"golang.org/x/exp/slices"

	"github.com/cinderlang/cinder/internal/object"
)

// FunctionType distinguishes the four contexts a frame can compile for,
// each of which needs slightly different prologue/epilogue behavior (spec
// §4.2: "init() implicitly returns this", "top-level code is itself a
// function named <script>").
type FunctionType int

const (
	TypeFunction FunctionType = iota
	TypeInitializer
	TypeMethod
	TypeScript
)

const maxLocals = 256
const maxUpvalues = 256

// local is one entry of a frame's compile-time local variable stack. Depth
// is -1 in the window between a local's declaration and its initializer
// finishing, so a self-referential initializer ("var a = a;") can be
// rejected (spec §4.2, "Local variable shadowing and self-reference").
type local struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalueRef records one upvalue slot of a frame: either a direct capture
// of the immediately enclosing frame's local (isLocal true, index is that
// frame's local slot) or a transitive capture of one of the enclosing
// frame's own upvalues (isLocal false, index is that upvalue's slot).
type upvalueRef struct {
	index   byte
	isLocal bool
}

// frame is one compile-time activation: the function being built, its
// compile-time locals and upvalues, and the lexical scope depth, chained
// to the frame compiling the lexically enclosing function the way the
// source material chains `Compiler*` via `enclosing`.
type frame struct {
	enclosing *frame

	function *object.Function
	fnType   FunctionType

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int
}

func newFrame(enclosing *frame, fn *object.Function, fnType FunctionType) *frame {
	f := &frame{enclosing: enclosing, function: fn, fnType: fnType}
	// Slot 0 is reserved: the receiver for methods/initializers ("this"),
	// or an unnamed placeholder for plain functions and the top-level
	// script, exactly as the source material's initCompiler does.
	name := ""
	if fnType == TypeMethod || fnType == TypeInitializer {
		name = "this"
	}
	f.locals = append(f.locals, local{name: name, depth: 0})
	return f
}

// resolveLocal looks up name among this frame's own locals, innermost
// scope first. A depth of -1 (not yet initialized) is reported as an
// error by the caller, not here.
func (f *frame) resolveLocal(name string) (slot int, depth int, found bool) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return i, f.locals[i].depth, true
		}
	}
	return 0, 0, false
}

// resolveUpvalue looks up name in every enclosing frame transitively,
// recording a chain of upvalueRefs so each intervening frame captures it
// too, and dedups so capturing the same variable twice from the same
// frame reuses one slot (spec §4.2, "Upvalue capture & de-duplication").
// c is threaded through purely to report "too many closure variables"
// at the right source position, the way the source material's error()
// reaches the global parser from inside addUpvalue.
func (f *frame) resolveUpvalue(c *Compiler, name string) (slot int, found bool) {
	if f.enclosing == nil {
		return 0, false
	}
	if slot, _, ok := f.enclosing.resolveLocal(name); ok {
		f.enclosing.locals[slot].isCaptured = true
		return f.addUpvalue(c, byte(slot), true), true
	}
	if up, ok := f.enclosing.resolveUpvalue(c, name); ok {
		return f.addUpvalue(c, byte(up), false), true
	}
	return 0, false
}

func (f *frame) addUpvalue(c *Compiler, index byte, isLocal bool) int {
	want := upvalueRef{index: index, isLocal: isLocal}
	if i := slices.Index(f.upvalues, want); i != -1 {
		return i
	}
	if len(f.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in a function.")
		return 0
	}
	f.upvalues = append(f.upvalues, want)
	return len(f.upvalues) - 1
}

// classState tracks the lexically enclosing class while compiling a class
// body, chained the way the source material chains `ClassCompiler*`, so
// that nested classes restore the outer one and "super" can be rejected
// outside any class or when the class has no superclass.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}
