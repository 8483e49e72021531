package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives. App satisfies it; tests
// can provide a stub.
type execIface interface {
	prompt() string
	help() string
	// exec runs cmd and reports whether it was recognised.
	exec(ctx context.Context, cmd string, args []string) bool
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is done. Unknown commands are reported back to the user.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "%s> ", a.prompt())

		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, a.help())
		case "exit", "quit":
			fmt.Fprintln(w, "Até logo!")
			return
		default:
			if !a.exec(ctx, cmd, args) {
				fmt.Fprintln(w, "Comando desconhecido:", cmd)
			}
		}
	}
}
