package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
)

// problemArg resolves the problem id at args[i], falling back to the problem
// in focus.
func (a *App) problemArg(args []string, i int) (int64, error) {
	if len(args) > i {
		id, err := strconv.ParseInt(args[i], 10, 64)
		if err != nil || id <= 0 {
			return 0, &session.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a problem id", args[i])}
		}
		return id, nil
	}
	if a.current != 0 {
		return a.current, nil
	}
	return 0, &session.ValidationError{Field: "id", Message: "is required (or open a problem first)"}
}

func (a *App) Problems(ctx context.Context) error {
	problems, err := a.problems.List(ctx)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Fprintln(a.out, "No problems yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tTAGS")
	for _, p := range problems {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.Difficulty, strings.Join(p.Tags, ", "))
	}
	return tw.Flush()
}

// Problem prints a statement and puts the problem in focus.
func (a *App) Problem(ctx context.Context, args []string) error {
	id, err := a.problemArg(args, 0)
	if err != nil {
		return err
	}
	p, err := a.problems.Get(ctx, id)
	if err != nil {
		return err
	}
	a.current = p.ID
	if a.current == 0 {
		a.current = id
	}

	fmt.Fprintf(a.out, "#%d %s [%s]\n", a.current, p.Title, p.Difficulty)
	if len(p.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, p.Body())
	if p.SampleInput != "" {
		fmt.Fprintf(a.out, "\nSample input:\n%s\n", p.SampleInput)
	}
	if p.SampleOutput != "" {
		fmt.Fprintf(a.out, "\nSample output:\n%s\n", p.SampleOutput)
	}
	return nil
}

// AddProblem collects the problem form. Whether the caller may create
// problems is decided by the backend; a non-admin only gets a warning.
func (a *App) AddProblem(ctx context.Context) error {
	if !a.isAdmin() {
		fmt.Fprintln(a.out, "Note: only admins can add problems, the server may reject this")
	}

	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	difficulty, err := getSimpleText(a.reader, "Difficulty (Easy, Medium, Hard)", a.out)
	if err != nil {
		return err
	}
	tags, err := getSimpleText(a.reader, "Tags, comma separated", a.out)
	if err != nil {
		return err
	}
	statement, err := getMultiline(a.reader, "Statement", a.out)
	if err != nil {
		return err
	}

	p, err := a.problems.Create(ctx, models.NewProblem{
		Title:      title,
		Difficulty: difficulty,
		Tags:       strings.Split(tags, ","),
		Statement:  statement,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created problem #%d %s\n", p.ID, p.Title)
	return nil
}
