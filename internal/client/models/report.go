package models

import "strings"

// Canonical verdict names. Anything the backend sends outside this set is
// carried through unchanged.
const (
	VerdictAccepted          = "Accepted"
	VerdictWrongAnswer       = "Wrong Answer"
	VerdictTimeLimitExceeded = "Time Limit Exceeded"
	VerdictRuntimeError      = "Runtime Error"
	VerdictCompileError      = "Compile Error"
	VerdictUnknown           = "Unknown"
)

// TestCase is one judged case of a submission.
type TestCase struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// VerdictReport is the normalized outcome of a submit call.
type VerdictReport struct {
	Overall string     `json:"overall"`
	Cases   []TestCase `json:"cases"`
}

// PassedCount returns how many cases passed.
func (r VerdictReport) PassedCount() int {
	n := 0
	for _, c := range r.Cases {
		if c.Passed {
			n++
		}
	}
	return n
}

// ReviewRun is the optional execution block of an AI review.
type ReviewRun struct {
	Stdout *string `json:"stdout"`
	Stderr *string `json:"stderr"`
}

// AIReview is the normalized AI code review. All fields except Run are
// always set.
type AIReview struct {
	Verdict     string     `json:"verdict"`
	Issues      []string   `json:"issues"`
	Suggestions []string   `json:"suggestions"`
	Complexity  string     `json:"complexity"`
	Explanation string     `json:"explanation"`
	Run         *ReviewRun `json:"run,omitempty"`
}

// RunResult is the output of a custom-input run.
type RunResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	TimeMs *int64 `json:"timeMs,omitempty"`
}

// Display joins stdout and stderr the way the editor console shows them.
func (r RunResult) Display() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	var b strings.Builder
	b.WriteString(r.Stdout)
	b.WriteString("\n[stderr]\n")
	b.WriteString(r.Stderr)
	return b.String()
}
