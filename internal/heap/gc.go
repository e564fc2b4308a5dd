package heap

import "github.com/cinderlang/cinder/internal/object"

// MarkObject marks o reachable (transitioning white to gray) and pushes it
// onto the gray worklist for later tracing. Marking an already-marked
// object, or a nil one, is a no-op — this is what keeps cyclic graphs
// (a closure capturing itself, a class whose method closes over an
// instance of that same class) from looping forever.
func (h *Heap) MarkObject(o object.Object) {
	if o == nil {
		return
	}
	hdr := object.Head(o)
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, o)
}

// MarkValue marks v's object payload, if it has one.
func (h *Heap) MarkValue(v object.Value) {
	if v.Kind == object.KindObject {
		h.MarkObject(v.Obj)
	}
}

// Collect runs one full mark-sweep cycle: mark every root, trace the gray
// worklist to black, drop now-unreachable strings from the intern table,
// then sweep the all-objects list.
//
// Nothing in this call path may allocate through Heap — marking only
// pushes onto the gray slice (backed by Go's own allocator, not the
// tracked heap), matching the invariant in spec §4.5.
func (h *Heap) Collect() {
	for _, rp := range h.roots {
		rp.MarkRoots(h)
	}
	h.markProtected()
	if h.initString != nil {
		h.MarkObject(h.initString)
	}

	h.trace()
	h.strings.removeWhite()
	h.sweep()

	h.nextGC = int(float64(h.bytesAllocated) * h.cfg.GrowthFactor)
	if h.nextGC < h.cfg.InitialThreshold {
		h.nextGC = h.cfg.InitialThreshold
	}
	h.Collections++
}

func (h *Heap) markProtected() {
	for _, v := range h.protected {
		h.MarkValue(v)
	}
}

// trace repeatedly pops the gray worklist and blackens each object by
// marking everything it points to, until nothing gray remains.
func (h *Heap) trace() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

// blacken marks every object directly reachable from o.
func (h *Heap) blacken(o object.Object) {
	switch obj := o.(type) {
	case *object.String, *object.Native:
		// no outgoing references
	case *object.Function:
		if obj.Name != nil {
			h.MarkObject(obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			h.MarkValue(c)
		}
	case *object.Closure:
		h.MarkObject(obj.Function)
		for _, up := range obj.Upvalues {
			if up != nil {
				h.MarkObject(up)
			}
		}
	case *object.Upvalue:
		h.MarkValue(obj.Closed)
	case *object.Class:
		h.MarkObject(obj.Name)
		obj.Methods.Each(func(k *object.String, v *object.Closure) {
			h.MarkObject(k)
			h.MarkObject(v)
		})
	case *object.Instance:
		h.MarkObject(obj.Class)
		obj.Fields.Each(func(k *object.String, v object.Value) {
			h.MarkObject(k)
			h.MarkValue(v)
		})
	case *object.BoundMethod:
		h.MarkValue(obj.Receiver)
		h.MarkObject(obj.Method)
	}
}

// sweep unlinks and drops every still-white object from the all-objects
// list, crediting its size back to bytesAllocated, and resets the mark
// bit on every survivor so the next cycle starts from all-white again.
func (h *Heap) sweep() {
	var prev object.Object
	cur := h.all
	for cur != nil {
		hdr := object.Head(cur)
		if hdr.Marked {
			hdr.Marked = false
			prev = cur
			cur = hdr.Next
			continue
		}

		dead := cur
		cur = hdr.Next
		if prev != nil {
			object.Head(prev).Next = cur
		} else {
			h.all = cur
		}
		h.bytesAllocated -= object.Head(dead).Size
	}
}
