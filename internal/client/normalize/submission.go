package normalize

import (
	"fmt"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
)

// submitPayload is one of the judge's response shapes.
type submitPayload interface {
	report() models.VerdictReport
}

// breakdownPayload: {overall_verdict, breakdown: [{id, visibility, status}]}.
type breakdownPayload struct {
	overall any
	cases   []any
}

// resultsPayload: {verdict, passed, total, results: [{test_case, passed}]}.
type resultsPayload struct {
	verdict any
	results []any
}

// classify picks the variant by its discriminating fields. The breakdown
// shape is checked first since it never carries a "verdict" key.
func classify(v any) submitPayload {
	m, ok := object(v)
	if !ok {
		return nil
	}
	switch {
	case present(m, "overall_verdict") || present(m, "breakdown"):
		return breakdownPayload{overall: m["overall_verdict"], cases: array(m["breakdown"])}
	case present(m, "verdict") || present(m, "results"):
		return resultsPayload{verdict: m["verdict"], results: array(m["results"])}
	default:
		return nil
	}
}

func (p breakdownPayload) report() models.VerdictReport {
	cases := make([]models.TestCase, 0, len(p.cases))
	for i, c := range p.cases {
		item, _ := object(c)
		kind := "Hidden"
		if s, _ := item["visibility"].(string); s == "public" {
			kind = "Sample"
		}
		status, _ := item["status"].(string)
		cases = append(cases, models.TestCase{
			Label:  fmt.Sprintf("%s %d", kind, i+1),
			Passed: Verdict(status) == models.VerdictAccepted,
		})
	}
	return models.VerdictReport{Overall: overall(p.overall), Cases: cases}
}

func (p resultsPayload) report() models.VerdictReport {
	cases := make([]models.TestCase, 0, len(p.results))
	for i, r := range p.results {
		item, _ := object(r)
		label := fmt.Sprintf("Test %d", i+1)
		if present(item, "test_case") {
			label = "Test " + stringify(item["test_case"])
		}
		passed, _ := item["passed"].(bool)
		cases = append(cases, models.TestCase{Label: label, Passed: passed})
	}
	return models.VerdictReport{Overall: overall(p.verdict), Cases: cases}
}

func overall(v any) string {
	if v == nil {
		return models.VerdictUnknown
	}
	return Verdict(stringify(v))
}

// Submission normalizes a submit response. Unrecognized payloads yield an
// Unknown verdict with no cases.
func Submission(data []byte) models.VerdictReport {
	p := classify(decode(data))
	if p == nil {
		return models.VerdictReport{Overall: models.VerdictUnknown, Cases: []models.TestCase{}}
	}
	return p.report()
}
