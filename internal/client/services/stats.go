package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/normalize"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
	"github.com/dmitrijs2005/codeforge/internal/logging"
	"golang.org/x/sync/errgroup"
)

const (
	submissionsPath = "/submissions/"
	summaryPath     = "/me/summary/"
	leaderboardPath = "/leaderboard/"
	contestsPath    = "/contests/codeforces/"

	recentLimit       = 10
	unknownDifficulty = "Unknown"
)

// mySubmissionPaths are tried in order; only the last one lists everybody's
// submissions and needs filtering.
var mySubmissionPaths = []string{"/submissions/mine/", "/submissions/?mine=1", submissionsPath}

type StatsService interface {
	Submissions(ctx context.Context) ([]models.Submission, error)
	MySubmissions(ctx context.Context, username string) ([]models.Submission, error)
	Summary(ctx context.Context) (models.Summary, error)
	Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error)
	Contests(ctx context.Context) ([]models.Contest, error)
}

type statsService struct {
	api session.Requester
	log logging.Logger
}

func NewStatsService(api session.Requester, log logging.Logger) StatsService {
	return &statsService{api: api, log: log}
}

func (s *statsService) Submissions(ctx context.Context) ([]models.Submission, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, submissionsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	list, err := decodeList[models.Submission](resp)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return list, nil
}

// MySubmissions tries the known "mine" endpoints and falls back to
// filtering the full list by username. When nothing works it returns an
// empty list; only a lost session is reported.
func (s *statsService) MySubmissions(ctx context.Context, username string) ([]models.Submission, error) {
	for _, path := range mySubmissionPaths {
		resp, err := s.api.Do(ctx, http.MethodGet, path, nil)
		if err != nil {
			if session.IsAuth(err) {
				return nil, fmt.Errorf("my submissions: %w", err)
			}
			s.log.Debug(ctx, "submissions endpoint unavailable", "path", path, "error", err)
			continue
		}
		list, err := decodeList[models.Submission](resp)
		if err != nil {
			s.log.Debug(ctx, "submissions endpoint returned no list", "path", path, "error", err)
			continue
		}
		if path == submissionsPath && username != "" {
			list = slices.DeleteFunc(list, func(sub models.Submission) bool {
				return !strings.EqualFold(sub.User, username)
			})
		}
		return list, nil
	}
	return []models.Submission{}, nil
}

// Summary returns the dashboard numbers. The server summary is preferred;
// when it is missing or unusable the numbers are rebuilt from the raw
// submission and problem lists. If both fail the zero summary is returned
// with an empty Source. A lost session is always reported.
func (s *statsService) Summary(ctx context.Context) (models.Summary, error) {
	sum, err := s.serverSummary(ctx)
	if err == nil {
		return sum, nil
	}
	if session.IsAuth(err) {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	s.log.Debug(ctx, "server summary unavailable, computing locally", "error", err)

	sum, err = s.clientSummary(ctx)
	if err == nil {
		return sum, nil
	}
	if session.IsAuth(err) {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	s.log.Warn(ctx, "summary unavailable", "error", err)
	return emptySummary(), nil
}

func emptySummary() models.Summary {
	return models.Summary{
		DifficultyBreakdown: map[string]int{},
		RecentSubmissions:   []models.RecentSubmission{},
	}
}

func (s *statsService) serverSummary(ctx context.Context) (models.Summary, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, summaryPath, nil)
	if err != nil {
		return models.Summary{}, err
	}

	var head struct {
		TotalSubmissions any             `json:"total_submissions"`
		User             json.RawMessage `json:"user"`
	}
	if err := resp.Decode(&head); err != nil {
		return models.Summary{}, err
	}
	if _, ok := head.TotalSubmissions.(float64); !ok {
		return models.Summary{}, fmt.Errorf("summary has no numeric total_submissions")
	}

	var sum models.Summary
	if err := resp.Decode(&sum); err != nil {
		return models.Summary{}, err
	}
	sum.User = session.ParseUser(head.User)
	if sum.DifficultyBreakdown == nil {
		sum.DifficultyBreakdown = map[string]int{}
	}
	if sum.RecentSubmissions == nil {
		sum.RecentSubmissions = []models.RecentSubmission{}
	}
	sum.Source = models.SummaryFromServer
	return sum, nil
}

func (s *statsService) clientSummary(ctx context.Context) (models.Summary, error) {
	var (
		subs     []models.Submission
		problems []models.Problem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := s.api.Do(gctx, http.MethodGet, submissionsPath, nil)
		if err != nil {
			return err
		}
		subs, err = decodeList[models.Submission](resp)
		return err
	})
	g.Go(func() error {
		resp, err := s.api.Do(gctx, http.MethodGet, problemsPath, nil)
		if err != nil {
			return err
		}
		problems, err = decodeList[models.Problem](resp)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Summary{}, err
	}

	return BuildSummary(subs, problems), nil
}

// BuildSummary computes the dashboard numbers from raw lists. Problems are
// matched by title since submissions only carry the title.
func BuildSummary(subs []models.Submission, problems []models.Problem) models.Summary {
	difficulty := make(map[string]string, len(problems))
	ids := make(map[string]int64, len(problems))
	for _, p := range problems {
		d := p.Difficulty
		if d == "" {
			d = unknownDifficulty
		}
		if _, ok := difficulty[p.Title]; !ok {
			difficulty[p.Title] = d
			ids[p.Title] = p.ID
		}
	}

	solved := make(map[string]struct{})
	breakdown := make(map[string]int)
	for _, sub := range subs {
		if !normalize.IsAccepted(sub.Verdict) {
			continue
		}
		if _, ok := solved[sub.Problem]; ok {
			continue
		}
		solved[sub.Problem] = struct{}{}
		d, ok := difficulty[sub.Problem]
		if !ok {
			d = unknownDifficulty
		}
		breakdown[d]++
	}

	sorted := slices.Clone(subs)
	slices.SortStableFunc(sorted, func(a, b models.Submission) int {
		return submittedAt(b.SubmittedAt).Compare(submittedAt(a.SubmittedAt))
	})
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}

	recent := make([]models.RecentSubmission, 0, len(sorted))
	for i, sub := range sorted {
		pid, ok := ids[sub.Problem]
		if !ok {
			pid = int64(i)
		}
		recent = append(recent, models.RecentSubmission{
			ID:            sub.ID,
			ProblemID:     pid,
			ProblemTitle:  sub.Problem,
			Language:      sub.Language,
			Verdict:       sub.Verdict,
			ExecutionTime: sub.ExecutionTime,
			SubmittedAt:   sub.SubmittedAt,
		})
	}

	return models.Summary{
		TotalSubmissions:    len(subs),
		SolvedCount:         len(solved),
		DifficultyBreakdown: breakdown,
		RecentSubmissions:   recent,
		Source:              models.SummaryFromClient,
	}
}

// submittedAt parses the backend timestamp; unparsable values sort last.
func submittedAt(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *statsService) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, leaderboardPath, nil)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	rows, err := decodeList[models.LeaderboardRow](resp)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return rows, nil
}

func (s *statsService) Contests(ctx context.Context) ([]models.Contest, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, contestsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("contests: %w", err)
	}
	var payload struct {
		Upcoming []models.Contest `json:"upcoming"`
	}
	if err := resp.Decode(&payload); err != nil {
		return nil, fmt.Errorf("contests: %w", err)
	}
	if payload.Upcoming == nil {
		payload.Upcoming = []models.Contest{}
	}
	return payload.Upcoming, nil
}
