package clicmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/cinderlang/cinder/internal/heap"
	"github.com/cinderlang/cinder/internal/vm"
)

// Run compiles and executes a single source file, the equivalent of the
// teacher's bare `smog <file>` invocation.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error reading file: %s\n", err)
		return err
	}

	cfg, err := heap.LoadConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error loading GC config: %s\n", err)
		return err
	}
	cfg.StressGC = cfg.StressGC || c.stressOverride()

	h := heap.New(cfg)
	v := vm.New(h)
	v.Stdout = stdio.Stdout

	if err := v.Interpret(string(data)); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	return nil
}
