package cli

import (
	"context"
	"errors"
	"io"
	"strings"
)

const helpText = "Available commands: register, login, otp, whoami, ping, logout, help, exit"

// Root runs the REPL on the app's input until EOF or "exit".
func (a *App) Root(ctx context.Context) {
	a.printf("Welcome to gophauth CLI (type 'help' for commands)\n")
	a.runREPL(ctx)
}

// runREPL reads one command per line and dispatches it. Command errors are
// printed and the loop continues. Prompts inside commands read from the same
// reader, so the loop must not buffer ahead of them.
func (a *App) runREPL(ctx context.Context) {
	for {
		a.printf("gophauth %s> ", a.getStatus())

		line, err := a.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			a.printf("%s\n", helpText)
		case "exit", "quit":
			a.printf("Bye!\n")
			return
		default:
			if err := a.runCommand(ctx, cmd, args); err != nil {
				a.printf("error: %v\n", err)
			}
		}
	}
}
