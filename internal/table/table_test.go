package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// strKey is a minimal Key implementation for exercising Table in isolation,
// independent of the object package's interned strings.
type strKey string

func (s strKey) Hash() uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func TestTableSetGetDelete(t *testing.T) {
	tb := New[strKey, int]()

	isNew := tb.Set("a", 1)
	assert.True(t, isNew)
	isNew = tb.Set("a", 2)
	assert.False(t, isNew)

	v, ok := tb.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = tb.Get("missing")
	assert.False(t, ok)

	assert.True(t, tb.Delete("a"))
	_, ok = tb.Get("a")
	assert.False(t, ok)
	assert.False(t, tb.Delete("a"))
}

func TestTableTombstoneDoesNotBreakProbeChain(t *testing.T) {
	tb := New[strKey, int]()
	tb.Set("a", 1)
	tb.Set("b", 2)
	tb.Set("c", 3)

	tb.Delete("b")

	v, ok := tb.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestTableGrowthRehashesSurvivors(t *testing.T) {
	tb := New[strKey, int]()
	for i := 0; i < 100; i++ {
		tb.Set(strKey(rune('a'+i%26))+strKey(rune(i)), i)
	}
	assert.Equal(t, 100, tb.Count())
	for i := 0; i < 100; i++ {
		key := strKey(rune('a'+i%26)) + strKey(rune(i))
		v, ok := tb.Get(key)
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestTableAddAll(t *testing.T) {
	src := New[strKey, int]()
	src.Set("a", 1)
	src.Set("b", 2)

	dst := New[strKey, int]()
	dst.Set("b", 99)
	dst.AddAll(src)

	va, _ := dst.Get("a")
	vb, _ := dst.Get("b")
	assert.Equal(t, 1, va)
	assert.Equal(t, 2, vb) // src overwrites dst on conflict, like INHERIT
}

func TestTableEach(t *testing.T) {
	tb := New[strKey, int]()
	tb.Set("a", 1)
	tb.Set("b", 2)
	seen := map[string]int{}
	tb.Each(func(k strKey, v int) { seen[string(k)] = v })
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
}
