package vm

import "github.com/cinderlang/cinder/internal/object"

// callFrame is one activation record of the call stack: the closure being
// executed, the instruction pointer into that closure's chunk, and the
// base index into the VM's value stack where this call's slot 0 (receiver
// or, for non-methods, the unused reserved slot) begins.
type callFrame struct {
	closure   *object.Closure
	ip        int
	slotsBase int
}

func (f *callFrame) chunk() *object.Chunk { return &f.closure.Function.Chunk }

func (f *callFrame) readByte() byte {
	b := f.chunk().Code[f.ip]
	f.ip++
	return b
}

func (f *callFrame) readShort() int {
	hi := f.readByte()
	lo := f.readByte()
	return int(hi)<<8 | int(lo)
}

func (f *callFrame) readConstant() object.Value {
	return f.chunk().Constants[f.readByte()]
}

func (f *callFrame) readString() *object.String {
	return f.readConstant().AsString()
}

func (f *callFrame) line() int {
	return f.chunk().LineAt(f.ip - 1)
}
