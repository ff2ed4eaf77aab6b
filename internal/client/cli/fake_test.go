package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/models"
	"github.com/dmitrijs2005/codeforge/internal/client/repositories/kv"
	"github.com/dmitrijs2005/codeforge/internal/client/services"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
	"github.com/dmitrijs2005/codeforge/internal/client/workspace"
	"github.com/dmitrijs2005/codeforge/internal/logging"
)

// ---- input stubs ----

// stubText answers successive getSimpleText prompts with answers.
func stubText(t *testing.T, answers ...string) *[]string {
	t.Helper()
	var prompts []string
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
	return &prompts
}

func stubPassword(t *testing.T, pw []byte) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}

func stubMultiline(t *testing.T, text string) {
	t.Helper()
	orig := getMultiline
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return text, nil }
	t.Cleanup(func() { getMultiline = orig })
}

func stubCode(t *testing.T, code string) {
	t.Helper()
	orig := getCode
	getCode = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return code, nil }
	t.Cleanup(func() { getCode = orig })
}

// ---- fake auth ----

type fakeAuth struct {
	user      *models.User
	tokenOnly bool

	loginErr    error
	registerErr error
	profile     *models.User
	profileErr  error

	LastUsername string
	LastPassword []byte
	LastEmail    string
	LogoutCalled bool
}

func (f *fakeAuth) Login(_ context.Context, username string, password []byte) (*models.User, error) {
	f.LastUsername, f.LastPassword = username, append([]byte(nil), password...)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &models.User{Username: username}
	return f.user, nil
}

func (f *fakeAuth) Register(_ context.Context, username string, password []byte, email string) (*models.User, error) {
	f.LastUsername, f.LastPassword, f.LastEmail = username, append([]byte(nil), password...), email
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.user = &models.User{Username: username, Email: email}
	return f.user, nil
}

func (f *fakeAuth) Logout(context.Context) {
	f.LogoutCalled = true
	f.user = nil
	f.tokenOnly = false
}

func (f *fakeAuth) CurrentUser() *models.User { return f.user }

func (f *fakeAuth) Authenticated() bool { return f.user != nil || f.tokenOnly }

func (f *fakeAuth) LoadProfile(context.Context) (*models.User, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile != nil {
		f.user = f.profile
	}
	return f.user, nil
}

// ---- fake problems ----

type fakeProblems struct {
	list    []models.Problem
	byID    map[int64]models.Problem
	listErr error

	LastCreated *models.NewProblem
}

func (f *fakeProblems) List(context.Context) ([]models.Problem, error) {
	return f.list, f.listErr
}

func (f *fakeProblems) Get(_ context.Context, id int64) (*models.Problem, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, &session.NetworkError{Endpoint: "/problems/", StatusCode: 404, Message: "not found"}
	}
	return &p, nil
}

func (f *fakeProblems) Create(_ context.Context, p models.NewProblem) (*models.Problem, error) {
	prepared, err := services.PrepareProblem(p)
	if err != nil {
		return nil, err
	}
	f.LastCreated = &prepared
	return &models.Problem{ID: 99, Title: prepared.Title}, nil
}

// ---- fake judge ----

type fakeJudge struct {
	run    models.RunResult
	report models.VerdictReport
	review models.AIReview
	err    error

	LastAction string
	LastID     int64
	LastCode   string
	LastLang   string
	LastStdin  string
}

func (f *fakeJudge) record(action string, id int64, code, lang, stdin string) {
	f.LastAction, f.LastID, f.LastCode, f.LastLang, f.LastStdin = action, id, code, lang, stdin
}

func (f *fakeJudge) Run(_ context.Context, id int64, code, lang, stdin string) (models.RunResult, error) {
	f.record("run", id, code, lang, stdin)
	return f.run, f.err
}

func (f *fakeJudge) Submit(_ context.Context, id int64, code, lang string) (models.VerdictReport, error) {
	f.record("submit", id, code, lang, "")
	return f.report, f.err
}

func (f *fakeJudge) Review(_ context.Context, id int64, code, lang, stdin string) (models.AIReview, error) {
	f.record("review", id, code, lang, stdin)
	return f.review, f.err
}

// ---- fake stats ----

type fakeStats struct {
	all         []models.Submission
	mine        []models.Submission
	summary     models.Summary
	leaderboard []models.LeaderboardRow
	contests    []models.Contest
	err         error

	LastMineUser string
}

func (f *fakeStats) Submissions(context.Context) ([]models.Submission, error) { return f.all, f.err }

func (f *fakeStats) MySubmissions(_ context.Context, username string) ([]models.Submission, error) {
	f.LastMineUser = username
	return f.mine, f.err
}

func (f *fakeStats) Summary(context.Context) (models.Summary, error) { return f.summary, f.err }

func (f *fakeStats) Leaderboard(context.Context) ([]models.LeaderboardRow, error) {
	return f.leaderboard, f.err
}

func (f *fakeStats) Contests(context.Context) ([]models.Contest, error) { return f.contests, f.err }

type fakeClock struct {
	exp time.Time
}

func (f fakeClock) AccessExpiry() (time.Time, bool) { return f.exp, !f.exp.IsZero() }

// ---- app ----

type testApp struct {
	*App
	out      *bytes.Buffer
	store    *kv.MemoryRepository
	auth     *fakeAuth
	problems *fakeProblems
	judge    *fakeJudge
	stats    *fakeStats
}

func (ta *testApp) output() string { return ta.out.String() }

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := kv.NewMemoryRepository()
	ta := &testApp{
		out:      &bytes.Buffer{},
		store:    store,
		auth:     &fakeAuth{},
		problems: &fakeProblems{byID: map[int64]models.Problem{}},
		judge:    &fakeJudge{},
		stats:    &fakeStats{},
	}
	drafts := workspace.NewDrafts(store, time.Hour, logging.Discard())
	t.Cleanup(drafts.Close)

	ta.App = &App{
		log:      logging.Discard(),
		auth:     ta.auth,
		problems: ta.problems,
		judge:    ta.judge,
		stats:    ta.stats,
		drafts:   drafts,
		layout:   workspace.NewLayout(store),
		language: "python",
		reader:   bufio.NewReader(strings.NewReader("")),
		out:      ta.out,
	}
	return ta
}
