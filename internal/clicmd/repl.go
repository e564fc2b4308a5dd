package clicmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/mna/mainer"

	"github.com/cinderlang/cinder/internal/heap"
	"github.com/cinderlang/cinder/internal/vm"
)

// Repl starts an interactive read-eval-print loop backed by a single
// persistent VM, mirroring the teacher's REPL command except that cinder
// statements are newline- rather than period-terminated and each line is
// compiled and run independently (the VM's globals table, not any local
// scope, is what persists across lines).
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	fmt.Fprintf(stdio.Stdout, "cinder %s\n", c.BuildVersion)
	fmt.Fprintln(stdio.Stdout, "Type ':quit' or ':exit' to exit")

	cfg, err := heap.LoadConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "error loading GC config: %s\n", err)
		return err
	}
	cfg.StressGC = cfg.StressGC || c.stressOverride()

	h := heap.New(cfg)
	v := vm.New(h)
	v.Stdout = stdio.Stdout

	scanner := bufio.NewScanner(stdio.Stdin)
	for {
		fmt.Fprint(stdio.Stdout, "cinder> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case ":quit", ":exit":
			return nil
		case "":
			continue
		}

		if err := v.Interpret(line); err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
		}
	}
	return scanner.Err()
}
