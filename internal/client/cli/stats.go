package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func formatSeconds(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 3, 64) + "s"
}

// Submissions lists the caller's submissions, or everyone's when logged out.
func (a *App) Submissions(ctx context.Context) error {
	var (
		subs []models.Submission
		err  error
	)
	if a.isLoggedIn() {
		subs, err = a.stats.MySubmissions(ctx, a.userName())
	} else {
		subs, err = a.stats.Submissions(ctx)
	}
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Fprintln(a.out, "No submissions yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROBLEM\tLANG\tVERDICT\tTIME\tSUBMITTED")
	for _, s := range subs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Problem, s.Language, s.Verdict, formatSeconds(s.ExecutionTime), s.SubmittedAt)
	}
	return tw.Flush()
}

// Dashboard prints the progress summary. A summary nobody could compute is
// shown as zeros with a note.
func (a *App) Dashboard(ctx context.Context) error {
	sum, err := a.stats.Summary(ctx)
	if err != nil {
		return err
	}

	if sum.Source == "" {
		fmt.Fprintln(a.out, "Summary unavailable right now, showing zeros")
	}
	if sum.User != nil {
		fmt.Fprintf(a.out, "User:        %s\n", sum.User.Name())
	}
	fmt.Fprintf(a.out, "Submissions: %d\n", sum.TotalSubmissions)
	fmt.Fprintf(a.out, "Solved:      %d\n", sum.SolvedCount)

	if len(sum.DifficultyBreakdown) > 0 {
		levels := make([]string, 0, len(sum.DifficultyBreakdown))
		for k := range sum.DifficultyBreakdown {
			levels = append(levels, k)
		}
		slices.SortFunc(levels, func(x, y string) int { return difficultyRank(x) - difficultyRank(y) })
		fmt.Fprintln(a.out, "Solved by difficulty:")
		for _, k := range levels {
			fmt.Fprintf(a.out, "  %-8s %d\n", k, sum.DifficultyBreakdown[k])
		}
	}

	if len(sum.RecentSubmissions) > 0 {
		fmt.Fprintln(a.out, "Recent:")
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, r := range sum.RecentSubmissions {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.ProblemTitle, r.Language, r.Verdict, r.SubmittedAt)
		}
		return tw.Flush()
	}
	return nil
}

func difficultyRank(level string) int {
	switch level {
	case models.DifficultyEasy:
		return 0
	case models.DifficultyMedium:
		return 1
	case models.DifficultyHard:
		return 2
	}
	return 3
}

func (a *App) Leaderboard(ctx context.Context) error {
	rows, err := a.stats.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "Leaderboard is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUSER\tSOLVED\tLAST SUBMISSION")
	for i, r := range rows {
		last := r.LastSubmission
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, r.Username, r.Solved, last)
	}
	return tw.Flush()
}

// Contests lists upcoming external contests in local time.
func (a *App) Contests(ctx context.Context) error {
	contests, err := a.stats.Contests(ctx)
	if err != nil {
		return err
	}
	if len(contests) == 0 {
		fmt.Fprintln(a.out, "No upcoming contests")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTART\tDURATION\tURL")
	for _, c := range contests {
		start := time.Unix(c.StartUnix, 0).Local().Format(timeLayout)
		dur := (time.Duration(c.DurationSeconds) * time.Second).String()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, start, dur, c.VisitURL)
	}
	return tw.Flush()
}
