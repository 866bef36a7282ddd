package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Info(ctx context.Context) error
	Nickname(ctx context.Context) error
	Passwd(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	Withdraw(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. Command
// errors are printed and the loop continues. It returns on EOF, "exit" or
// "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "gophauth %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		var cmdErr error
		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: info, nickname, passwd, refresh, logout, withdraw, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, exit")
			}

		case "login":
			cmdErr = a.Login(ctx)

		case "info":
			cmdErr = a.Info(ctx)

		case "nickname":
			cmdErr = a.Nickname(ctx)

		case "passwd":
			cmdErr = a.Passwd(ctx)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "withdraw":
			cmdErr = a.Withdraw(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, "Error:", cmdErr)
		}
	}
}
