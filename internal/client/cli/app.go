package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/codeforge/internal/client/config"
	"github.com/dmitrijs2005/codeforge/internal/client/services"
	"github.com/dmitrijs2005/codeforge/internal/client/session"
	"github.com/dmitrijs2005/codeforge/internal/client/storage"
	"github.com/dmitrijs2005/codeforge/internal/client/workspace"
	"github.com/dmitrijs2005/codeforge/internal/logging"
)

// tokenClock exposes the access token lifetime for whoami.
type tokenClock interface {
	AccessExpiry() (time.Time, bool)
}

type App struct {
	config   *config.Config
	log      logging.Logger
	db       io.Closer
	tokens   tokenClock
	auth     services.AuthService
	problems services.ProblemService
	judge    services.JudgeService
	stats    services.StatsService
	drafts   *workspace.Drafts
	layout   *workspace.Layout
	language string
	current  int64
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens local storage, restores the persisted session and builds the
// services on top of it. The returned App owns the database handle.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, store, err := storage.Open(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	sess := session.New(c.APIBaseURL, store,
		session.WithLogger(log),
		session.WithRateLimit(c.RateLimit),
		session.WithTimeout(c.RequestTimeout),
	)
	if err := sess.Restore(ctx); err != nil {
		log.Warn(ctx, "could not restore session", "error", err)
	}

	return &App{
		config:   c,
		log:      log,
		db:       db,
		tokens:   sess,
		auth:     services.NewAuthService(sess, sess, log),
		problems: services.NewProblemService(sess),
		judge:    services.NewJudgeService(sess),
		stats:    services.NewStatsService(sess, log),
		drafts:   workspace.NewDrafts(store, c.DraftDebounce, log),
		layout:   workspace.NewLayout(store),
		language: services.Languages[0],
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user exits or stdin closes.
// Pending drafts are flushed before the database is closed.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to CodeForge CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.drafts != nil {
		a.drafts.Flush()
		a.drafts.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "closing database", "error", err)
		}
	}
}

// isLoggedIn follows the token, not the cached user, which may still be
// loading when the token carries no username.
func (a *App) isLoggedIn() bool {
	return a.auth.Authenticated()
}

func (a *App) isAdmin() bool {
	u := a.auth.CurrentUser()
	return u != nil && u.IsAdmin
}

// userName is the draft owner; empty means guest.
func (a *App) userName() string {
	if u := a.auth.CurrentUser(); u != nil {
		return u.Username
	}
	return ""
}

func (a *App) getStatus() string {
	parts := make([]string, 0, 3)
	if name := a.userName(); name != "" {
		parts = append(parts, name)
	} else {
		parts = append(parts, "guest")
	}
	parts = append(parts, a.language)
	if a.current != 0 {
		parts = append(parts, fmt.Sprintf("#%d", a.current))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// resetState drops everything tied to the signed-in user.
func (a *App) resetState() {
	a.current = 0
}
