package normalize

import (
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
)

// ReviewIncomplete is the verdict of a review that carries none.
const ReviewIncomplete = "incomplete"

// Review normalizes an AI review. Every field of the result is set, Run
// only when the payload had a run object.
func Review(data []byte) models.AIReview {
	m, _ := object(decode(data))

	verdict := ReviewIncomplete
	if present(m, "verdict") {
		verdict = stringify(m["verdict"])
	} else if present(m, "status") {
		verdict = stringify(m["status"])
	}

	explanation := ""
	if present(m, "explanation") {
		explanation = stringify(m["explanation"])
	}

	return models.AIReview{
		Verdict:     verdict,
		Issues:      stringList(m["issues"]),
		Suggestions: stringList(m["suggestions"]),
		Complexity:  complexity(m["complexity"]),
		Explanation: explanation,
		Run:         reviewRun(m["run"]),
	}
}

// complexity flattens the string, object or list forms into one line.
func complexity(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		var parts []string
		if tv, ok := lookupFold(t, "time", "time_complexity"); ok {
			if s := stringify(tv); s != "" {
				parts = append(parts, "Time: "+s)
			}
		}
		if sv, ok := lookupFold(t, "space", "space_complexity"); ok {
			if s := stringify(sv); s != "" {
				parts = append(parts, "Space: "+s)
			}
		}
		return strings.Join(parts, ", ")
	case []any:
		return strings.Join(stringList(t), ", ")
	default:
		return ""
	}
}

func reviewRun(v any) *models.ReviewRun {
	m, ok := object(v)
	if !ok {
		return nil
	}
	return &models.ReviewRun{
		Stdout: optionalString(m, "stdout"),
		Stderr: optionalString(m, "stderr"),
	}
}

func optionalString(m map[string]any, key string) *string {
	if !present(m, key) {
		return nil
	}
	s := stringify(m[key])
	return &s
}
