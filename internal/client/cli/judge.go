package cli

import (
	"context"
	"fmt"
)

// draft returns the problem id and the code the judge commands work on.
func (a *App) draft(ctx context.Context, args []string) (int64, string, error) {
	id, err := a.problemArg(args, 0)
	if err != nil {
		return 0, "", err
	}
	a.drafts.Flush()
	code, err := a.drafts.Load(ctx, a.userName(), id, a.language)
	if err != nil {
		return 0, "", err
	}
	return id, code, nil
}

// RunCode executes the draft against custom input.
func (a *App) RunCode(ctx context.Context, args []string) error {
	id, code, err := a.draft(ctx, args)
	if err != nil {
		return err
	}
	stdin, err := getMultiline(a.reader, "Custom input", a.out)
	if err != nil {
		return err
	}

	res, err := a.judge.Run(ctx, id, code, a.language, stdin)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, res.Display())
	if res.TimeMs != nil {
		fmt.Fprintf(a.out, "Time: %d ms\n", *res.TimeMs)
	}
	return nil
}

// Submit sends the draft for judging and prints the verdict and cases.
func (a *App) Submit(ctx context.Context, args []string) error {
	id, code, err := a.draft(ctx, args)
	if err != nil {
		return err
	}

	report, err := a.judge.Submit(ctx, id, code, a.language)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Verdict: %s\n", report.Overall)
	if len(report.Cases) == 0 {
		return nil
	}
	fmt.Fprintf(a.out, "Passed %d/%d\n", report.PassedCount(), len(report.Cases))
	for _, c := range report.Cases {
		mark := "FAIL"
		if c.Passed {
			mark = "PASS"
		}
		fmt.Fprintf(a.out, "  %-4s %s\n", mark, c.Label)
	}
	return nil
}

// Review asks for an AI review of the draft.
func (a *App) Review(ctx context.Context, args []string) error {
	id, code, err := a.draft(ctx, args)
	if err != nil {
		return err
	}

	stdin, err := getMultiline(a.reader, "Custom input", a.out)
	if err != nil {
		return err
	}

	r, err := a.judge.Review(ctx, id, code, a.language, stdin)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Verdict:    %s\n", r.Verdict)
	fmt.Fprintf(a.out, "Complexity: %s\n", r.Complexity)
	printList(a, "Issues", r.Issues)
	printList(a, "Suggestions", r.Suggestions)
	if r.Explanation != "" {
		fmt.Fprintf(a.out, "\n%s\n", r.Explanation)
	}
	if r.Run != nil {
		if r.Run.Stdout != nil && *r.Run.Stdout != "" {
			fmt.Fprintf(a.out, "\n[stdout]\n%s\n", *r.Run.Stdout)
		}
		if r.Run.Stderr != nil && *r.Run.Stderr != "" {
			fmt.Fprintf(a.out, "\n[stderr]\n%s\n", *r.Run.Stderr)
		}
	}
	return nil
}

func printList(a *App, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(a.out, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(a.out, "  - %s\n", it)
	}
}
