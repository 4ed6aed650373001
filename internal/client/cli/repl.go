package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error

	Skills(ctx context.Context) error
	Refresh(ctx context.Context) error
	Search(ctx context.Context, term string) error
	Difficulty(ctx context.Context, arg string) error
	Tab(ctx context.Context, arg string) error
	Show(ctx context.Context, arg string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, arg string) error
	Delete(ctx context.Context, arg string) error

	Users(ctx context.Context) error
	User(ctx context.Context, arg string) error
}

const (
	helpLoggedOut = "Available commands: register, login, status, show <id>, users, user <id>, exit"
	helpLoggedIn  = "Available commands: skills, refresh, search <term>, difficulty <all|beginner|intermediate|advanced>, " +
		"tab <all|my>, show <id>, add, edit <id>, delete <id>, users, user <id>, status, logout, exit"
)

// commands that need an authenticated session
var authOnly = map[string]bool{
	"skills": true, "refresh": true, "search": true, "difficulty": true,
	"tab": true, "add": true, "edit": true, "delete": true, "logout": true,
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF, "exit"/"quit" or when ctx is done. Handler errors are
// not printed here; handlers report to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(out, "skillswap %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}
		if cmd == "l" || cmd == "list" {
			cmd = "skills"
		}

		if authOnly[cmd] && !a.isLoggedIn() {
			fmt.Fprintln(out, "Please log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpLoggedIn)
			} else {
				fmt.Fprintln(out, helpLoggedOut)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "status":
			_ = a.Status(ctx)

		case "skills":
			_ = a.Skills(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "search":
			_ = a.Search(ctx, arg)
		case "difficulty":
			_ = a.Difficulty(ctx, arg)
		case "tab":
			_ = a.Tab(ctx, arg)
		case "show":
			_ = a.Show(ctx, arg)
		case "add":
			_ = a.Add(ctx)
		case "edit":
			_ = a.Edit(ctx, arg)
		case "delete":
			_ = a.Delete(ctx, arg)

		case "users":
			_ = a.Users(ctx)
		case "user":
			_ = a.User(ctx, arg)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
