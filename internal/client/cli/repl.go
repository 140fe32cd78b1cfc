package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	help() string
	dispatch(ctx context.Context, name string, args []string) error
}

// runREPL starts a simple read–eval–print loop for the Vimesta shell.
//
// It reads a line from in, splits it into a command and its arguments and
// dispatches to a. The prompt shows the current status (from statusFn):
// the signed-in user and whether the backend is reachable. The loop exits
// on EOF, when ctx is done, or when the user types "exit" or "quit".
//
// Command errors are printed and the loop carries on. Commands that prompt
// read from the same reader, so no input is lost between them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprint(out, strings.TrimSpace("vimesta "+statusFn())+"> ")

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprint(out, a.help())

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			if err := a.dispatch(ctx, cmd, args); err != nil {
				fmt.Fprintln(out, ErrorMessage(err))
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}
