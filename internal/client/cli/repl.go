package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	resetState()

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Problems(ctx context.Context) error
	Problem(ctx context.Context, args []string) error
	AddProblem(ctx context.Context) error

	Lang(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Load(ctx context.Context, args []string) error
	Code(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Split(ctx context.Context, args []string) error

	RunCode(ctx context.Context, args []string) error
	Submit(ctx context.Context, args []string) error
	Review(ctx context.Context, args []string) error

	Submissions(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Leaderboard(ctx context.Context) error
	Contests(ctx context.Context) error
}

const (
	helpGuest = "Available commands: register, login, problems, problem <id>, lang, edit, load, code, reset, run, leaderboard, contests, split, exit"
	helpUser  = "Available commands: problems, problem <id>, lang <python|cpp|java>, edit [id], load <id> <file>, code [id], reset [id], " +
		"run [id], submit [id], review [id], submissions, dashboard, leaderboard, contests, addproblem, split [pct], whoami, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the CodeForge CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments. The
// loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn): user, language and
// the problem in focus. Commands that take a problem id fall back to the
// problem in focus when the id is omitted.
//
//	Session:
//	  - register | login | logout | whoami
//
//	Problems & editor:
//	  - problems             list problems
//	  - problem <id>         show a statement and focus it
//	  - lang [language]      show or switch the editor language
//	  - edit [id]            type a new draft
//	  - load <id> <file>     load a draft from disk
//	  - code [id]            print the current draft
//	  - reset [id]           restore the starter code
//	  - split [pct]          show or set the editor split ratio
//
//	Judge:
//	  - run [id] | submit [id] | review [id]
//
//	Stats:
//	  - submissions | dashboard | leaderboard | contests
//
//	Admin:
//	  - addproblem
//
// Errors returned by command handlers are reported here. An authentication
// failure means the session is gone, so UI state tied to the user is reset.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cf %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if errors.Is(err, io.EOF) {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "problems":
			cmdErr = a.Problems(ctx)
		case "problem":
			cmdErr = a.Problem(ctx, args)
		case "addproblem":
			cmdErr = a.AddProblem(ctx)

		case "lang":
			cmdErr = a.Lang(ctx, args)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "load":
			cmdErr = a.Load(ctx, args)
		case "code":
			cmdErr = a.Code(ctx, args)
		case "reset":
			cmdErr = a.Reset(ctx, args)
		case "split":
			cmdErr = a.Split(ctx, args)

		case "run":
			cmdErr = a.RunCode(ctx, args)
		case "submit":
			cmdErr = a.Submit(ctx, args)
		case "review":
			cmdErr = a.Review(ctx, args)

		case "submissions":
			cmdErr = a.Submissions(ctx)
		case "dashboard":
			cmdErr = a.Dashboard(ctx)
		case "leaderboard":
			cmdErr = a.Leaderboard(ctx)
		case "contests":
			cmdErr = a.Contests(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			report(a, cmdErr)
		}
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

// report prints a command failure in user terms.
func report(a execIface, err error) {
	var verr *session.ValidationError
	switch {
	case session.IsAuth(err):
		a.resetState()
		printlnFn("session expired, please log in again")
	case errors.As(err, &verr):
		printlnFn("Invalid input:", verr.Error())
	case errors.Is(err, session.ErrUnavailable):
		printlnFn("Server unavailable:", err.Error())
	default:
		printlnFn("Error:", err.Error())
	}
}
