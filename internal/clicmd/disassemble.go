package clicmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/cinderlang/cinder/internal/compiler"
	"github.com/cinderlang/cinder/internal/debug"
	"github.com/cinderlang/cinder/internal/heap"
)

// Disassemble compiles a source file and prints a human-readable
// bytecode listing of its top-level chunk, the equivalent of the
// teacher's `disassemble`/`disasm` command applied to source instead of
// a pre-compiled file (cinder has no separate bytecode file format to
// load).
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error reading file: %s\n", err)
		return err
	}

	h := heap.New(heap.DefaultConfig())
	comp := compiler.New(h)
	fn, err := comp.Compile(string(data))
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	fmt.Fprint(stdio.Stdout, debug.Disassemble(&fn.Chunk, args[0]))
	return nil
}
