package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
)

const problemsPath = "/problems/"

type ProblemService interface {
	List(ctx context.Context) ([]models.Problem, error)
	Get(ctx context.Context, id int64) (*models.Problem, error)
	Create(ctx context.Context, p models.NewProblem) (*models.Problem, error)
}

type problemService struct {
	api session.Requester
}

func NewProblemService(api session.Requester) ProblemService {
	return &problemService{api: api}
}

func problemPath(id int64, action string) string {
	if action == "" {
		return fmt.Sprintf("%s%d/", problemsPath, id)
	}
	return fmt.Sprintf("%s%d/%s/", problemsPath, id, action)
}

func (s *problemService) List(ctx context.Context) ([]models.Problem, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, problemsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	list, err := decodeList[models.Problem](resp)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	return list, nil
}

func (s *problemService) Get(ctx context.Context, id int64) (*models.Problem, error) {
	if id <= 0 {
		return nil, &session.ValidationError{Field: "id", Message: "must be a positive problem id"}
	}
	resp, err := s.api.Do(ctx, http.MethodGet, problemPath(id, ""), nil)
	if err != nil {
		return nil, fmt.Errorf("get problem %d: %w", id, err)
	}
	var p models.Problem
	if err := resp.Decode(&p); err != nil {
		return nil, fmt.Errorf("get problem %d: %w", id, err)
	}
	return &p, nil
}

// Create submits a new problem. The backend decides whether the caller may.
func (s *problemService) Create(ctx context.Context, p models.NewProblem) (*models.Problem, error) {
	p, err := PrepareProblem(p)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, http.MethodPost, problemsPath, p)
	if err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}
	var created models.Problem
	if err := resp.Decode(&created); err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}
	return &created, nil
}

// PrepareProblem validates the form and normalizes difficulty and tags.
func PrepareProblem(p models.NewProblem) (models.NewProblem, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Statement = strings.TrimSpace(p.Statement)
	if p.Title == "" {
		return p, &session.ValidationError{Field: "title", Message: "is required"}
	}
	if p.Statement == "" {
		return p, &session.ValidationError{Field: "statement", Message: "is required"}
	}

	switch strings.ToLower(strings.TrimSpace(p.Difficulty)) {
	case "", "easy":
		p.Difficulty = models.DifficultyEasy
	case "medium":
		p.Difficulty = models.DifficultyMedium
	case "hard":
		p.Difficulty = models.DifficultyHard
	default:
		return p, &session.ValidationError{Field: "difficulty", Message: "must be Easy, Medium or Hard"}
	}

	p.Tags = NormalizeTags(p.Tags)
	return p, nil
}

// NormalizeTags splits comma-separated entries, trims and lowercases them,
// and drops blanks and duplicates while keeping first-seen order.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, tag := range strings.Split(entry, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
