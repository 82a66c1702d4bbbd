package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Verify(ctx context.Context, token string) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Go(ctx context.Context, path string) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the campus CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account (two steps)
//	  - login            sign in
//	  - verify [token]   confirm an email verification token
//	  - go <path>        open a view, e.g. go /app/profile
//	  - status           show session and server status
//	  - exit | quit      leave the program
//
//	Logged in, additionally:
//	  - profile          show your profile
//	  - edit             edit your profile
//	  - logout           sign out
//
// Protected commands are still dispatched when logged out; the route gate
// inside them redirects to login. Errors returned by command handlers are
// ignored here; handlers print their own messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("cm %s> ", statusFn()))
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
				printlnFn("Available commands: profile, edit, go <path>, verify, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, verify, go <path>, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "verify":
			_ = a.Verify(ctx, firstArg(args))

		case "profile", "whoami":
			_ = a.Profile(ctx)

		case "edit":
			_ = a.EditProfile(ctx)

		case "go":
			_ = a.Go(ctx, firstArg(args))

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
