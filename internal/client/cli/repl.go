package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests use a stub.
type execIface interface {
	List(ctx context.Context, category string) error
	Categories(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

const helpText = "Available commands: (l)ist [category], categories, add, edit <id>, delete <id>, exit"

// runREPL reads one command per line from reader and dispatches it. The loop
// ends on EOF or on "exit"/"quit". Command errors are printed and the loop
// goes on.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprint(w, "tb> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, arg := parts[0], strings.Join(parts[1:], " ")

		var cmdErr error
		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)

		case "l", "list":
			cmdErr = a.List(ctx, arg)

		case "categories":
			cmdErr = a.Categories(ctx)

		case "add":
			cmdErr = a.Add(ctx)

		case "edit":
			if arg == "" {
				fmt.Fprintln(w, "Usage: edit <id>")
				continue
			}
			cmdErr = a.Edit(ctx, arg)

		case "delete":
			if arg == "" {
				fmt.Fprintln(w, "Usage: delete <id>")
				continue
			}
			cmdErr = a.Delete(ctx, arg)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			if r, ok := a.(interface{ report(error) }); ok {
				r.report(cmdErr)
			} else {
				fmt.Fprintf(w, "Error: %v\n", cmdErr)
			}
		}

		if err != nil {
			return
		}
	}
}
