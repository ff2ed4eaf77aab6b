package models

type Submission struct {
	ID            int64    `json:"id"`
	Problem       string   `json:"problem"`
	User          string   `json:"user"`
	Language      string   `json:"language"`
	Verdict       string   `json:"verdict"`
	ExecutionTime *float64 `json:"execution_time"`
	SubmittedAt   string   `json:"submitted_at"`
}
