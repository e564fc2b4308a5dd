package debug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlang/cinder/internal/compiler"
	"github.com/cinderlang/cinder/internal/heap"
)

func TestDisassembleListsConstantsAndOpcodes(t *testing.T) {
	h := heap.New(heap.DefaultConfig())
	c := compiler.New(h)
	fn, err := c.Compile(`print 1 + 2;`)
	require.NoError(t, err)

	out := Disassemble(&fn.Chunk, "script")
	assert.Contains(t, out, "== script ==")
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "OP_ADD")
	assert.Contains(t, out, "OP_PRINT")
	assert.Contains(t, out, "OP_RETURN")
}

func TestDisassembleAnnotatesClosureUpvalues(t *testing.T) {
	h := heap.New(heap.DefaultConfig())
	c := compiler.New(h)
	fn, err := c.Compile(`
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	require.NoError(t, err)

	out := Disassemble(&fn.Chunk, "script")
	assert.True(t, strings.Contains(out, "OP_CLOSURE"))
	assert.True(t, strings.Contains(out, "local") || strings.Contains(out, "upvalue"))
}
