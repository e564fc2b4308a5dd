package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cinderlang/cinder/internal/object"
)

func TestBlackenTracesClosureThroughFunctionAndUpvalues(t *testing.T) {
	h := New(DefaultConfig())
	roots := &stubRoots{}
	h.AddRootProvider(roots)

	fn := h.NewFunction()
	fn.Name = h.CopyString("f")
	fn.UpvalueCount = 1
	captured := object.NewNumber(7)
	up := h.NewUpvalue(&captured)
	closure := h.NewClosure(fn)
	closure.Upvalues[0] = up

	roots.objects = []object.Object{closure}
	h.Collect()

	assert.False(t, object.Head(fn).Marked)
	assert.False(t, object.Head(up).Marked)
	again := h.CopyString("f")
	assert.Same(t, fn.Name, again, "function name string survived the cycle")
}

func TestBlackenTracesClassMethodsAndInstanceFields(t *testing.T) {
	h := New(DefaultConfig())
	roots := &stubRoots{}
	h.AddRootProvider(roots)

	methodFn := h.NewFunction()
	methodClosure := h.NewClosure(methodFn)
	cls := h.NewClass(h.CopyString("Greeter"))
	cls.Methods.Set(h.CopyString("greet"), methodClosure)

	inst := h.NewInstance(cls)
	fieldVal := object.NewObject(h.CopyString("hi"))
	inst.Fields.Set(h.CopyString("msg"), fieldVal)

	roots.objects = []object.Object{inst}
	before := h.BytesAllocated()
	h.Collect()
	after := h.BytesAllocated()

	assert.Equal(t, before, after, "everything reachable from inst should survive untouched")
	assert.False(t, object.Head(methodClosure).Marked)
	assert.False(t, object.Head(cls).Marked)
}

func TestUnreferencedMethodClosureIsCollectedWhenClassIsDropped(t *testing.T) {
	h := New(DefaultConfig())
	roots := &stubRoots{}
	h.AddRootProvider(roots)

	fn := h.NewFunction()
	closure := h.NewClosure(fn)
	cls := h.NewClass(h.CopyString("Temp"))
	cls.Methods.Set(h.CopyString("m"), closure)

	// nothing roots cls or closure
	before := h.BytesAllocated()
	h.Collect()
	after := h.BytesAllocated()
	assert.Less(t, after, before)
}

func TestBoundMethodKeepsReceiverAndMethodAlive(t *testing.T) {
	h := New(DefaultConfig())
	roots := &stubRoots{}
	h.AddRootProvider(roots)

	cls := h.NewClass(h.CopyString("C"))
	inst := h.NewInstance(cls)
	fn := h.NewFunction()
	closure := h.NewClosure(fn)
	bound := h.NewBoundMethod(object.NewObject(inst), closure)

	roots.objects = []object.Object{bound}
	before := h.BytesAllocated()
	h.Collect()
	after := h.BytesAllocated()
	assert.Equal(t, before, after)
}

func TestProtectKeepsValueAliveAcrossCollect(t *testing.T) {
	h := New(DefaultConfig())
	roots := &stubRoots{}
	h.AddRootProvider(roots)

	s := h.CopyString("unrooted-but-protected")
	h.Protect(object.NewObject(s))
	h.Collect()
	h.Unprotect()

	again := h.CopyString("unrooted-but-protected")
	assert.Same(t, s, again)
}
