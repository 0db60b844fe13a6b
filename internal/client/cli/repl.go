package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	output() io.Writer
	flushToasts()

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Refresh(ctx context.Context) error

	Go(ctx context.Context, location string) error
	Feed(ctx context.Context) error
	Like(ctx context.Context, postID string) error
	Post(ctx context.Context) error
	Delete(ctx context.Context, postID string) error
	Itineraries(ctx context.Context) error
	Itinerary(ctx context.Context, id string) error
	Create(ctx context.Context) error
	Rate(ctx context.Context, id, stars string) error
	Unrate(ctx context.Context, id string) error
	Follow(ctx context.Context, userID string) error
	Search(ctx context.Context, q string) error
	Toasts(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, register, whoami, go <path>, toasts, exit"
	helpSignedIn  = "Available commands: feed, like <postID>, post, delete <postID>, itineraries, " +
		"itinerary <id>, create, rate <id> <1-5>, unrate <id>, follow <userID>, search <query>, " +
		"go <path>, profile, passwd, refresh, whoami, toasts, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The first token selects the command and the rest are its arguments.
// Handlers report their own failures, so returned errors only end up in
// the debug path. Toasts raised by a command are printed after it.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	w := a.output()
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "guia %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}
		dispatch(ctx, a, w, cmd, args)
		a.flushToasts()
	}
}

func dispatch(ctx context.Context, a execIface, w io.Writer, cmd string, args []string) {
	usage := func(u string) { fmt.Fprintln(w, "Usage:", u) }

	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(w, helpSignedIn)
		} else {
			fmt.Fprintln(w, helpSignedOut)
		}

	case "login":
		_ = a.Login(ctx)
	case "register":
		_ = a.Register(ctx)
	case "logout":
		_ = a.Logout(ctx)
	case "whoami":
		_ = a.Whoami(ctx)
	case "profile":
		_ = a.Profile(ctx)
	case "passwd":
		_ = a.Passwd(ctx)
	case "refresh":
		_ = a.Refresh(ctx)
	case "toasts":
		_ = a.Toasts(ctx)

	case "go":
		if len(args) != 1 {
			usage("go <path>")
			return
		}
		_ = a.Go(ctx, args[0])

	case "feed":
		_ = a.Feed(ctx)
	case "post":
		_ = a.Post(ctx)
	case "like":
		if len(args) != 1 {
			usage("like <postID>")
			return
		}
		_ = a.Like(ctx, args[0])
	case "delete":
		if len(args) != 1 {
			usage("delete <postID>")
			return
		}
		_ = a.Delete(ctx, args[0])

	case "itineraries":
		_ = a.Itineraries(ctx)
	case "itinerary":
		if len(args) != 1 {
			usage("itinerary <id>")
			return
		}
		_ = a.Itinerary(ctx, args[0])
	case "create":
		_ = a.Create(ctx)
	case "rate":
		if len(args) != 2 {
			usage("rate <id> <1-5>")
			return
		}
		_ = a.Rate(ctx, args[0], args[1])
	case "unrate":
		if len(args) != 1 {
			usage("unrate <id>")
			return
		}
		_ = a.Unrate(ctx, args[0])

	case "follow":
		if len(args) != 1 {
			usage("follow <userID>")
			return
		}
		_ = a.Follow(ctx, args[0])
	case "search":
		if len(args) == 0 {
			usage("search <query>")
			return
		}
		_ = a.Search(ctx, strings.Join(args, " "))

	default:
		fmt.Fprintln(w, "Unknown command:", cmd)
	}
}
