package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it; tests
// use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GoogleLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	Go(ctx context.Context, path string) error
	Todos(ctx context.Context, page int) error
	AddTodo(ctx context.Context) error
	EditTodo(ctx context.Context, id string) error
	ToggleTodo(ctx context.Context, id string) error
	DeleteTodo(ctx context.Context, id string) error
	Categories(ctx context.Context) error
	AddCategory(ctx context.Context) error
}

const (
	helpGuest  = "Available commands: register, login, google-login, go <path>, exit"
	helpMember = "Available commands: whoami, todos [page], addtodo, edittodo <id>, toggle <id>, deltodo <id>, " +
		"categories, addcategory, go <path>, refresh, logout, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF, on "exit"/"quit", or when ctx is done. Command errors
// are not fatal; handlers report them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("todo%s> ", statusFn()))

		line, err := reader.ReadString('\n')
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
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "google-login":
			_ = a.GoogleLogin(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "refresh":
			_ = a.Refresh(ctx)

		case "go":
			if len(args) != 1 {
				printlnFn("Usage: go <path>")
				continue
			}
			_ = a.Go(ctx, args[0])

		case "todos":
			page := 1
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					printlnFn("Usage: todos [page]")
					continue
				}
				page = n
			}
			_ = a.Todos(ctx, page)

		case "addtodo":
			_ = a.AddTodo(ctx)

		case "edittodo", "toggle", "deltodo":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "edittodo":
				_ = a.EditTodo(ctx, args[0])
			case "toggle":
				_ = a.ToggleTodo(ctx, args[0])
			default:
				_ = a.DeleteTodo(ctx, args[0])
			}

		case "categories":
			_ = a.Categories(ctx)
		case "addcategory":
			_ = a.AddCategory(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			// last line had no trailing newline
			return
		}
	}
}
