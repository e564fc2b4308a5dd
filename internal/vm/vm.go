// Package vm implements the stack-based bytecode interpreter of spec
// §4.3: it executes the Chunks a compiler.Compiler produces, one opcode
// at a time, against a fixed-size value stack and a bounded call-frame
// stack, with closures, classes, and method dispatch all resolved at
// execution time against the heap's object graph.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/cinderlang/cinder/internal/compiler"
	"github.com/cinderlang/cinder/internal/heap"
	"github.com/cinderlang/cinder/internal/natives"
	"github.com/cinderlang/cinder/internal/object"
	"github.com/cinderlang/cinder/internal/table"
)

// FramesMax and StackMax are the source material's fixed limits
// (inc/vm.h): 64 call frames, and a value stack sized for the worst case
// of every frame holding a full 256-slot local/argument window.
const (
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// openUpvalueEntry tracks one still-open upvalue and the absolute stack
// index it closes over, kept sorted with the highest index first so
// closeUpvalues can stop as soon as it sees an index below its threshold
// (the same invariant the source material's sorted intrusive list gives
// it, without needing ordered pointer comparisons on a Go slice).
type openUpvalueEntry struct {
	index int
	up    *object.Upvalue
}

// VM is a single interpreter instance. Globals and the heap persist
// across calls to Interpret; the value stack and call-frame stack are
// reset at the start of each one.
type VM struct {
	heap *heap.Heap

	stack    [StackMax]object.Value
	stackTop int

	frames     [FramesMax]callFrame
	frameCount int

	globals      *table.Table[*object.String, object.Value]
	openUpvalues []openUpvalueEntry

	natives  *natives.Registry
	compiler *compiler.Compiler

	// Stdout receives script output from the print statement; defaults to
	// os.Stdout but is overridable so tests and the REPL can capture it.
	Stdout io.Writer
}

// New creates a VM backed by h, with the standard native-function library
// installed as globals and a Compiler ready to turn source into Functions
// for Interpret.
func New(h *heap.Heap) *VM {
	vm := &VM{
		heap:     h,
		globals:  table.New[*object.String, object.Value](),
		natives:  natives.NewRegistry(),
		compiler: compiler.New(h),
		Stdout:   os.Stdout,
	}
	h.AddRootProvider(vm)
	vm.installNatives()
	return vm
}

func (vm *VM) installNatives() {
	vm.natives.Each(func(name string, fn object.NativeFn) {
		native := vm.heap.NewNative(name, fn)
		vm.globals.Set(vm.heap.CopyString(name), object.NewObject(native))
	})
}

// MarkRoots marks every value reachable from the VM's own state: the live
// stack slots, every active frame's closure, every still-open upvalue,
// and the globals table — satisfying heap.RootProvider.
func (vm *VM) MarkRoots(h *heap.Heap) {
	for i := 0; i < vm.stackTop; i++ {
		h.MarkValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		h.MarkObject(vm.frames[i].closure)
	}
	for _, e := range vm.openUpvalues {
		h.MarkObject(e.up)
	}
	vm.globals.Each(func(k *object.String, v object.Value) {
		h.MarkObject(k)
		h.MarkValue(v)
	})
}

// Interpret compiles and runs source in one step, the entry point spec §6
// describes for both the CLI's run command and the REPL.
func (vm *VM) Interpret(source string) error {
	fn, err := vm.compiler.Compile(source)
	if err != nil {
		return err
	}

	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil

	vm.push(object.NewObject(fn))
	closure := vm.heap.NewClosure(fn)
	vm.pop()
	vm.push(object.NewObject(closure))
	if err := vm.call(closure, 0); err != nil {
		return err
	}
	return vm.run()
}

// --- stack primitives ------------------------------------------------------

func (vm *VM) push(v object.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() object.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// runtimeError builds a RuntimeError carrying the current call stack as a
// trace, then resets the VM's stacks the way the source material's
// runtimeError does, so the VM is ready for a fresh Interpret call.
func (vm *VM) runtimeError(format string, args ...interface{}) error {
	trace := make([]traceFrame, 0, vm.frameCount)
	for i := 0; i < vm.frameCount; i++ {
		f := &vm.frames[i]
		name := "script"
		if f.closure.Function.Name != nil {
			name = f.closure.Function.Name.Chars + "()"
		}
		trace = append(trace, traceFrame{FunctionName: name, Line: f.line()})
	}
	err := newRuntimeError(format, trace, args...)
	vm.resetStack()
	return err
}

// --- calling ----------------------------------------------------------

func (vm *VM) call(closure *object.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames[vm.frameCount] = callFrame{closure: closure, slotsBase: vm.stackTop - argCount - 1}
	vm.frameCount++
	return nil
}

func (vm *VM) callValue(callee object.Value, argCount int) error {
	if callee.IsObject() {
		switch obj := callee.Obj.(type) {
		case *object.Closure:
			return vm.call(obj, argCount)
		case *object.Native:
			result, err := obj.Fn(vm.stack[vm.stackTop-argCount : vm.stackTop])
			if err != nil {
				return vm.runtimeError("%s", err.Error())
			}
			vm.stackTop -= argCount + 1
			vm.push(result)
			return nil
		case *object.Class:
			instance := vm.heap.NewInstance(obj)
			vm.stack[vm.stackTop-argCount-1] = object.NewObject(instance)
			if initializer, ok := obj.Methods.Get(vm.heap.InitString()); ok {
				return vm.call(initializer, argCount)
			}
			if argCount != 0 {
				return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
			}
			return nil
		case *object.BoundMethod:
			vm.stack[vm.stackTop-argCount-1] = obj.Receiver
			return vm.call(obj.Method, argCount)
		}
	}
	return vm.runtimeError("Can only call functions and classes.")
}

func (vm *VM) invoke(name *object.String, argCount int) error {
	receiver := vm.peek(argCount)
	instance, ok := receiver.Obj.(*object.Instance)
	if !receiver.IsObject() || !ok {
		return vm.runtimeError("Only instances have methods.")
	}
	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}
	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	return vm.call(method, argCount)
}

func (vm *VM) bindMethod(class *object.Class, name *object.String) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	bound := vm.heap.NewBoundMethod(vm.peek(0), method)
	vm.pop()
	vm.push(object.NewObject(bound))
	return nil
}

func (vm *VM) defineMethod(name *object.String) {
	method := vm.peek(0).Obj.(*object.Closure)
	class := vm.peek(1).Obj.(*object.Class)
	class.Methods.Set(name, method)
	vm.pop()
}

// --- upvalues ------------------------------------------------------------

func (vm *VM) captureUpvalue(index int) *object.Upvalue {
	for _, e := range vm.openUpvalues {
		if e.index == index {
			return e.up
		}
	}
	up := vm.heap.NewUpvalue(&vm.stack[index])

	insertAt := len(vm.openUpvalues)
	for i, e := range vm.openUpvalues {
		if e.index < index {
			insertAt = i
			break
		}
	}
	vm.openUpvalues = append(vm.openUpvalues, openUpvalueEntry{})
	copy(vm.openUpvalues[insertAt+1:], vm.openUpvalues[insertAt:])
	vm.openUpvalues[insertAt] = openUpvalueEntry{index: index, up: up}
	return up
}

// closeUpvalues closes every open upvalue capturing a stack slot at or
// above fromIndex, copying its value out of the stack it's about to be
// popped off of.
func (vm *VM) closeUpvalues(fromIndex int) {
	i := 0
	for i < len(vm.openUpvalues) && vm.openUpvalues[i].index >= fromIndex {
		vm.openUpvalues[i].up.Close()
		i++
	}
	vm.openUpvalues = vm.openUpvalues[i:]
}

// --- value helpers ---------------------------------------------------------

func isFalsey(v object.Value) bool { return v.Falsey() }

func (vm *VM) concatenate() error {
	b := vm.peek(0)
	a := vm.peek(1)
	if !a.Is(object.TypeString) || !b.Is(object.TypeString) {
		return vm.runtimeError("Operands must be either 2 numbers or 2 strings.")
	}
	vm.pop()
	vm.pop()
	result := vm.heap.CopyString(a.AsString().Chars + b.AsString().Chars)
	vm.push(object.NewObject(result))
	return nil
}

func (vm *VM) binaryNumeric(op byte) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().Number
	a := vm.pop().Number
	switch object.Op(op) {
	case object.OpSubtract:
		vm.push(object.NewNumber(a - b))
	case object.OpMultiply:
		vm.push(object.NewNumber(a * b))
	case object.OpDivide:
		vm.push(object.NewNumber(a / b))
	case object.OpModulo:
		vm.push(object.NewNumber(float64(int(a) % int(b))))
	case object.OpGreater:
		vm.push(object.NewBool(a > b))
	case object.OpLess:
		vm.push(object.NewBool(a < b))
	}
	return nil
}

// --- dispatch loop ----------------------------------------------------

// run executes instructions from the current top call frame until a
// top-level OP_RETURN pops the last frame, or a runtime error occurs.
func (vm *VM) run() error {
	frame := &vm.frames[vm.frameCount-1]

	for {
		op := object.Op(frame.readByte())

		switch op {
		case object.OpConstant:
			vm.push(frame.readConstant())

		case object.OpNil:
			vm.push(object.Nil)
		case object.OpTrue:
			vm.push(object.True)
		case object.OpFalse:
			vm.push(object.False)
		case object.OpPop:
			vm.pop()

		case object.OpGetLocal:
			slot := frame.readByte()
			vm.push(vm.stack[frame.slotsBase+int(slot)])
		case object.OpSetLocal:
			slot := frame.readByte()
			vm.stack[frame.slotsBase+int(slot)] = vm.peek(0)

		case object.OpGetGlobal:
			name := frame.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case object.OpSetGlobal:
			name := frame.readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
		case object.OpDefineGlobal:
			name := frame.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case object.OpGetUpvalue:
			slot := frame.readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case object.OpSetUpvalue:
			slot := frame.readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case object.OpGetProperty:
			if !vm.peek(0).Is(object.TypeInstance) {
				return vm.runtimeError("Only instances have properties.")
			}
			instance := vm.peek(0).Obj.(*object.Instance)
			name := frame.readString()
			if value, ok := instance.Fields.Get(name); ok {
				vm.pop()
				vm.push(value)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}

		case object.OpSetProperty:
			if !vm.peek(1).Is(object.TypeInstance) {
				return vm.runtimeError("Only instances have fields.")
			}
			instance := vm.peek(1).Obj.(*object.Instance)
			name := frame.readString()
			instance.Fields.Set(name, vm.peek(0))
			value := vm.pop()
			vm.pop()
			vm.push(value)

		case object.OpGetSuper:
			name := frame.readString()
			superclass := vm.pop().Obj.(*object.Class)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case object.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.NewBool(object.Equal(a, b)))
		case object.OpGreater, object.OpLess, object.OpSubtract, object.OpMultiply, object.OpDivide, object.OpModulo:
			if err := vm.binaryNumeric(byte(op)); err != nil {
				return err
			}
		case object.OpAdd:
			switch {
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().Number
				a := vm.pop().Number
				vm.push(object.NewNumber(a + b))
			case vm.peek(0).Is(object.TypeString) && vm.peek(1).Is(object.TypeString):
				if err := vm.concatenate(); err != nil {
					return err
				}
			default:
				return vm.runtimeError("Operands must be either 2 numbers or 2 strings.")
			}

		case object.OpNot:
			vm.push(object.NewBool(isFalsey(vm.pop())))
		case object.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(object.NewNumber(-vm.pop().Number))

		case object.OpPrint:
			fmt.Fprintln(vm.Stdout, object.Print(vm.pop()))

		case object.OpJump:
			offset := frame.readShort()
			frame.ip += offset
		case object.OpJumpIfFalse:
			offset := frame.readShort()
			if isFalsey(vm.peek(0)) {
				frame.ip += offset
			}
		case object.OpLoop:
			offset := frame.readShort()
			frame.ip -= offset

		case object.OpCall:
			argCount := int(frame.readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case object.OpInvoke:
			name := frame.readString()
			argCount := int(frame.readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case object.OpSuperInvoke:
			name := frame.readString()
			argCount := int(frame.readByte())
			superclass := vm.pop().Obj.(*object.Class)
			if err := vm.invokeFromClass(superclass, name, argCount); err != nil {
				return err
			}
			frame = &vm.frames[vm.frameCount-1]

		case object.OpClosure:
			fn := frame.readConstant().Obj.(*object.Function)
			closure := vm.heap.NewClosure(fn)
			vm.push(object.NewObject(closure))
			for i := range closure.Upvalues {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slotsBase + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case object.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case object.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.slotsBase)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = frame.slotsBase
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		case object.OpClass:
			name := frame.readString()
			vm.push(object.NewObject(vm.heap.NewClass(name)))

		case object.OpInherit:
			superVal := vm.peek(1)
			if !superVal.Is(object.TypeClass) {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).Obj.(*object.Class)
			subclass.Methods.AddAll(superVal.Obj.(*object.Class).Methods)
			vm.pop()

		case object.OpMethod:
			vm.defineMethod(frame.readString())

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
}
