package heap

import "github.com/cinderlang/cinder/internal/object"

// interner is the string interning table of spec §4.4: an open-addressed
// hash set of *object.String, specialized so lookup can find an existing
// string by byte content (length + hash + bytes), not by identity —
// exactly the opposite comparison the generic table.Table uses, which is
// why this is its own small structure rather than an instantiation of
// table.Table[*object.String, struct{}].
type internSlot struct {
	key   *object.String
	state uint8 // 0 empty, 1 tombstone, 2 occupied
}

const (
	internEmpty uint8 = iota
	internTombstone
	internOccupied
)

type interner struct {
	slots []internSlot
	count int
}

func newInterner() *interner { return &interner{} }

// find returns the existing interned string with the given bytes and
// precomputed hash, or nil if none is interned yet.
func (in *interner) find(chars string, hash uint32) *object.String {
	if len(in.slots) == 0 {
		return nil
	}
	cap := len(in.slots)
	idx := int(hash) % cap
	for {
		s := &in.slots[idx]
		switch s.state {
		case internEmpty:
			return nil
		case internOccupied:
			if s.key.HashVal == hash && s.key.Chars == chars {
				return s.key
			}
		}
		idx = (idx + 1) % cap
	}
}

// insert adds a freshly allocated, not-yet-interned string. Callers must
// have already confirmed via find that no entry with the same content
// exists.
func (in *interner) insert(str *object.String) {
	if float64(in.count+1) > float64(len(in.slots))*maxLoadFactor {
		in.grow()
	}
	idx := in.probeForInsert(str.HashVal)
	if in.slots[idx].state == internEmpty {
		in.count++
	}
	in.slots[idx] = internSlot{key: str, state: internOccupied}
}

func (in *interner) probeForInsert(hash uint32) int {
	cap := len(in.slots)
	idx := int(hash) % cap
	var tombstone = -1
	for {
		s := &in.slots[idx]
		if s.state == internEmpty {
			if tombstone != -1 {
				return tombstone
			}
			return idx
		}
		if s.state == internTombstone && tombstone == -1 {
			tombstone = idx
		}
		idx = (idx + 1) % cap
	}
}

func (in *interner) grow() {
	newCap := 8
	if len(in.slots) > 0 {
		newCap = len(in.slots) * 2
	}
	old := in.slots
	in.slots = make([]internSlot, newCap)
	in.count = 0
	for _, s := range old {
		if s.state == internOccupied {
			idx := in.probeForInsert(s.key.HashVal)
			in.slots[idx] = s
			in.count++
		}
	}
}

// removeWhite deletes every entry whose string is unmarked, called
// between the GC's trace and sweep phases so the about-to-be-swept string
// object's intern entry doesn't outlive it (spec §4.5, phase 3).
func (in *interner) removeWhite() {
	for i := range in.slots {
		if in.slots[i].state == internOccupied && !in.slots[i].key.Marked {
			in.slots[i] = internSlot{state: internTombstone}
		}
	}
}

const maxLoadFactor = 0.75
