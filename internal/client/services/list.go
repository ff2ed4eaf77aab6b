package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/codeforge/internal/client/session"
)

// decodeList accepts a bare JSON array or a paginated {"results": [...]}
// envelope.
func decodeList[T any](resp *session.Response) ([]T, error) {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return nil, fmt.Errorf("decode list: empty body")
	}

	if body[0] == '[' {
		var list []T
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return list, nil
	}

	var page struct {
		Results *[]T `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if page.Results == nil {
		return nil, fmt.Errorf("decode list: no results array")
	}
	return *page.Results, nil
}
