package normalize

import (
	"encoding/json"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
)

// Run normalizes a custom-input run response {stdout?, stderr?, timeMs?}.
func Run(data []byte) models.RunResult {
	m, _ := object(decode(data))

	var res models.RunResult
	if present(m, "stdout") {
		res.Stdout = stringify(m["stdout"])
	}
	if present(m, "stderr") {
		res.Stderr = stringify(m["stderr"])
	}
	if n, ok := m["timeMs"].(json.Number); ok {
		if ms, err := n.Int64(); err == nil {
			res.TimeMs = &ms
		} else if f, err := n.Float64(); err == nil {
			ms := int64(f)
			res.TimeMs = &ms
		}
	}
	return res
}
