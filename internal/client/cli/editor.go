package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/services"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
	"github.com/dmitrijs2005/codeforge/internal/filex"
)

// Lang prints the editor language, or switches it.
func (a *App) Lang(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(a.out, "Language: %s (available: %s)\n", a.language, strings.Join(services.Languages, ", "))
		return nil
	}
	lang := strings.ToLower(args[0])
	if !services.SupportedLanguage(lang) {
		return &session.ValidationError{
			Field:   "language",
			Message: fmt.Sprintf("%q is not one of %s", args[0], strings.Join(services.Languages, ", ")),
		}
	}
	a.language = lang
	fmt.Fprintf(a.out, "Language: %s\n", a.language)
	return nil
}

// Edit shows the current draft and replaces it with whatever the user types.
// An empty listing keeps the draft untouched.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.problemArg(args, 0)
	if err != nil {
		return err
	}
	current, err := a.drafts.Load(ctx, a.userName(), id, a.language)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "--- draft #%d (%s) ---\n%s", id, a.language, current)

	code, err := getCode(a.reader, "Type the new solution", a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(code) == "" {
		fmt.Fprintln(a.out, "Draft unchanged")
		return nil
	}

	a.drafts.Save(a.userName(), id, a.language, code)
	a.current = id
	fmt.Fprintln(a.out, "Draft saved")
	return nil
}

// Load reads a solution file into the draft: load <id> <file>.
func (a *App) Load(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return &session.ValidationError{Message: "usage: load <id> <file>"}
	}
	id, err := a.problemArg(args, 0)
	if err != nil {
		return err
	}
	code, err := filex.ReadSource(args[1])
	if err != nil {
		return err
	}

	a.drafts.Save(a.userName(), id, a.language, code)
	a.current = id
	fmt.Fprintf(a.out, "Loaded %s into draft #%d (%s)\n", args[1], id, a.language)
	return nil
}

func (a *App) Code(ctx context.Context, args []string) error {
	id, err := a.problemArg(args, 0)
	if err != nil {
		return err
	}
	code, err := a.drafts.Load(ctx, a.userName(), id, a.language)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, code)
	if !strings.HasSuffix(code, "\n") {
		fmt.Fprintln(a.out)
	}
	return nil
}

// Reset puts the starter code back.
func (a *App) Reset(ctx context.Context, args []string) error {
	id, err := a.problemArg(args, 0)
	if err != nil {
		return err
	}
	if _, err := a.drafts.Reset(ctx, a.userName(), id, a.language); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Draft #%d (%s) reset to starter code\n", id, a.language)
	return nil
}

// Split prints or stores the statement/editor split ratio. Out of range
// values are clamped.
func (a *App) Split(ctx context.Context, args []string) error {
	if len(args) == 0 {
		pct, err := a.layout.LeftPct(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Split: %s%%\n", strconv.FormatFloat(pct, 'f', -1, 64))
		return nil
	}

	pct, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
	if err != nil {
		return &session.ValidationError{Field: "split", Message: fmt.Sprintf("%q is not a number", args[0])}
	}
	stored, err := a.layout.SetLeftPct(ctx, pct)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Split: %s%%\n", strconv.FormatFloat(stored, 'f', -1, 64))
	return nil
}
