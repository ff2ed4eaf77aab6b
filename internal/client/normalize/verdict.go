package normalize

import (
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
)

var shortVerdicts = map[string]string{
	"AC":  models.VerdictAccepted,
	"WA":  models.VerdictWrongAnswer,
	"TLE": models.VerdictTimeLimitExceeded,
	"RE":  models.VerdictRuntimeError,
	"CE":  models.VerdictCompileError,
}

// Verdict expands the judge's short codes (case-insensitive) to their long
// names. Anything else is returned unchanged; an empty verdict is Unknown.
func Verdict(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return models.VerdictUnknown
	}
	if long, ok := shortVerdicts[strings.ToUpper(v)]; ok {
		return long
	}
	return v
}

// IsAccepted reports whether v denotes an accepted solution.
func IsAccepted(v string) bool {
	return strings.Contains(strings.ToLower(Verdict(v)), "accept")
}
