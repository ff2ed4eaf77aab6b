package models

// Summary sources.
const (
	SummaryFromServer = "server"
	SummaryFromClient = "client"
)

// RecentSubmission is one row of the dashboard's recent activity list.
type RecentSubmission struct {
	ID            int64    `json:"id"`
	ProblemID     int64    `json:"problem_id"`
	ProblemTitle  string   `json:"problem_title"`
	Language      string   `json:"language"`
	Verdict       string   `json:"verdict"`
	ExecutionTime *float64 `json:"execution_time"`
	SubmittedAt   string   `json:"submitted_at"`
}

// Summary aggregates a user's progress. Source tells whether the server
// computed it, the client did, or neither could (empty).
type Summary struct {
	User                *User              `json:"user,omitempty"`
	TotalSubmissions    int                `json:"total_submissions"`
	SolvedCount         int                `json:"solved_count"`
	DifficultyBreakdown map[string]int     `json:"difficulty_breakdown"`
	RecentSubmissions   []RecentSubmission `json:"recent_submissions"`
	Source              string             `json:"-"`
}

type LeaderboardRow struct {
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	Solved         int    `json:"solved"`
	LastSubmission string `json:"last_submission"`
}

type Contest struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	StartUnix       int64  `json:"start_unix"`
	DurationSeconds int64  `json:"duration_seconds"`
	VisitURL        string `json:"visit_url"`
}
