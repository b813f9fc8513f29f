package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL drives; *App implements it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	FaceLogin(ctx context.Context) error
	Enroll(ctx context.Context) error
	Profile(ctx context.Context) error
	Edit(ctx context.Context) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Reauth(ctx context.Context) error
	Logout(ctx context.Context) error
}

type availability int

const (
	always availability = iota
	signedOut
	signedIn
)

type command struct {
	names []string
	when  availability
	help  string
	run   func(execIface, context.Context) error
}

var commands = []command{
	{[]string{"register"}, signedOut, "create an account (online only)", execIface.Register},
	{[]string{"login"}, signedOut, "sign in with email and password", execIface.Login},
	{[]string{"facelogin", "fl"}, signedOut, "sign in with the camera", execIface.FaceLogin},
	{[]string{"profile", "p"}, signedIn, "show your profile", execIface.Profile},
	{[]string{"edit"}, signedIn, "edit your profile", execIface.Edit},
	{[]string{"enroll"}, signedIn, "enroll your face for facelogin", execIface.Enroll},
	{[]string{"sync"}, signedIn, "push pending edits now", execIface.Sync},
	{[]string{"reauth"}, signedIn, "enter your password to resume syncing", execIface.Reauth},
	{[]string{"logout"}, signedIn, "end the session", execIface.Logout},
	{[]string{"status", "s"}, always, "connectivity and sync status", execIface.Status},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		for _, n := range c.names {
			if n == name {
				return c, true
			}
		}
	}
	return command{}, false
}

func (c command) availableTo(loggedIn bool) bool {
	switch c.when {
	case signedIn:
		return loggedIn
	case signedOut:
		return !loggedIn
	default:
		return true
	}
}

func printHelp(w io.Writer, loggedIn bool) {
	for _, c := range commands {
		if c.availableTo(loggedIn) {
			fmt.Fprintf(w, "  %-12s %s\n", strings.Join(c.names, ", "), c.help)
		}
	}
	fmt.Fprintf(w, "  %-12s %s\n", "help", "this list")
	fmt.Fprintf(w, "  %-12s %s\n", "exit, quit", "leave")
}

// runREPL reads one command per line from reader until EOF or exit. The
// same reader feeds the prompts inside commands. Handlers print their own
// errors, so their return values are dropped here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprintf(w, "pk %s > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
		case fields[0] == "exit" || fields[0] == "quit":
			fmt.Fprintln(w, "Bye!")
			return
		case fields[0] == "help":
			printHelp(w, a.isLoggedIn())
		default:
			dispatch(ctx, a, fields[0], w)
		}

		if err != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, name string, w io.Writer) {
	c, ok := lookupCommand(name)
	switch {
	case !ok:
		fmt.Fprintf(w, "Unknown command %q, type 'help'\n", name)
	case !c.availableTo(a.isLoggedIn()) && c.when == signedIn:
		fmt.Fprintf(w, "%q needs a session, log in first\n", name)
	case !c.availableTo(a.isLoggedIn()):
		fmt.Fprintf(w, "%q is not available while logged in, log out first\n", name)
	default:
		_ = c.run(a, ctx)
	}
}
