package models

// Difficulty levels accepted by the problem form.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

type Problem struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Statement    string   `json:"statement,omitempty"`
	Difficulty   string   `json:"difficulty"`
	Tags         []string `json:"tags"`
	SampleInput  string   `json:"sample_input,omitempty"`
	SampleOutput string   `json:"sample_output,omitempty"`
}

// Body returns the statement text, whichever field the backend filled.
func (p Problem) Body() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Statement
}

// NewProblem is the payload of the admin "add problem" form.
type NewProblem struct {
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
	Statement  string   `json:"statement"`
}
