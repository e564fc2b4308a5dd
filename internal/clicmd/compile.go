package clicmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/cinderlang/cinder/internal/compiler"
	"github.com/cinderlang/cinder/internal/heap"
)

// Compile runs only the compile phase of a source file and reports
// success or the compile error, without executing the result. Useful
// for checking a script's syntax without running it.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error reading file: %s\n", err)
		return err
	}

	h := heap.New(heap.DefaultConfig())
	comp := compiler.New(h)
	if _, err := comp.Compile(string(data)); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	fmt.Fprintf(stdio.Stdout, "%s: ok\n", args[0])
	return nil
}
