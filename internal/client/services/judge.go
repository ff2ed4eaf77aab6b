package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/normalize"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
)

// Languages the judge accepts, in menu order.
var Languages = []string{"python", "cpp", "java"}

// SupportedLanguage reports whether lang is one of Languages.
func SupportedLanguage(lang string) bool {
	return slices.Contains(Languages, lang)
}

// JudgeService runs, submits and reviews solutions.
type JudgeService interface {
	Run(ctx context.Context, problemID int64, code, language, stdin string) (models.RunResult, error)
	Submit(ctx context.Context, problemID int64, code, language string) (models.VerdictReport, error)
	Review(ctx context.Context, problemID int64, code, language, stdin string) (models.AIReview, error)
}

type judgeService struct {
	api session.Requester
}

func NewJudgeService(api session.Requester) JudgeService {
	return &judgeService{api: api}
}

type solution struct {
	Code     string  `json:"code"`
	Language string  `json:"language"`
	Stdin    *string `json:"stdin,omitempty"`
}

func validateSolution(problemID int64, code, language string) error {
	if problemID <= 0 {
		return &session.ValidationError{Field: "problem", Message: "must be a positive problem id"}
	}
	if strings.TrimSpace(code) == "" {
		return &session.ValidationError{Field: "code", Message: "is empty"}
	}
	if !SupportedLanguage(language) {
		return &session.ValidationError{
			Field:   "language",
			Message: fmt.Sprintf("%q is not one of %s", language, strings.Join(Languages, ", ")),
		}
	}
	return nil
}

func (s *judgeService) call(ctx context.Context, problemID int64, action string, body solution) ([]byte, error) {
	if err := validateSolution(problemID, body.Code, body.Language); err != nil {
		return nil, err
	}
	resp, err := s.api.Do(ctx, http.MethodPost, problemPath(problemID, action), body)
	if err != nil {
		return nil, fmt.Errorf("%s problem %d: %w", action, problemID, err)
	}
	return resp.Body, nil
}

func (s *judgeService) Run(ctx context.Context, problemID int64, code, language, stdin string) (models.RunResult, error) {
	data, err := s.call(ctx, problemID, "run", solution{Code: code, Language: language, Stdin: &stdin})
	if err != nil {
		return models.RunResult{}, err
	}
	return normalize.Run(data), nil
}

func (s *judgeService) Submit(ctx context.Context, problemID int64, code, language string) (models.VerdictReport, error) {
	data, err := s.call(ctx, problemID, "submit", solution{Code: code, Language: language})
	if err != nil {
		return models.VerdictReport{}, err
	}
	return normalize.Submission(data), nil
}

func (s *judgeService) Review(ctx context.Context, problemID int64, code, language, stdin string) (models.AIReview, error) {
	data, err := s.call(ctx, problemID, "review", solution{Code: code, Language: language, Stdin: &stdin})
	if err != nil {
		return models.AIReview{}, err
	}
	return normalize.Review(data), nil
}
