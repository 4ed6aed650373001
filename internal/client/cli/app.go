package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/skillswap/internal/client/client"
	"github.com/dmitrijs2005/skillswap/internal/client/config"
	"github.com/dmitrijs2005/skillswap/internal/client/models"
	"github.com/dmitrijs2005/skillswap/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skillswap/internal/client/services"
	"github.com/dmitrijs2005/skillswap/internal/client/tokenstore"
	"github.com/dmitrijs2005/skillswap/internal/filex"
	"github.com/dmitrijs2005/skillswap/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	db      *sql.DB
	api     client.Client
	session *services.SessionManager
	skills  *services.SkillCollectionController
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens the token database and wires the backend client and the
// services for the configured server.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if _, err := filex.EnsureParentDir(c.TokenDBPath); err != nil {
		return nil, fmt.Errorf("token database: %w", err)
	}
	db, err := client.InitDatabase(ctx, c.TokenDBPath)
	if err != nil {
		return nil, fmt.Errorf("token database: %w", err)
	}

	store := tokenstore.NewSQLite(metadata.NewSQLiteRepository(db))
	api, err := client.NewHTTPClient(c.ServerBaseURL, store, client.Options{
		Timeout:   c.RequestTimeout,
		RateLimit: c.RateLimit,
		Logger:    log.With("component", "http"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, api, store, log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, api client.Client, store tokenstore.Store, log logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		api:     api,
		session: services.NewSessionManager(api, store, log),
		skills:  services.NewSkillCollectionController(api, log),
		log:     log,
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run restores the previous session, starts the online status watcher and
// serves the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to SkillSwap CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	a.session.Bootstrap(ctx)
	if u := a.session.Snapshot().CurrentUser; u != nil {
		a.printf("Logged in as %s\n", u.Username)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "closing token database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.api.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.Snapshot().CurrentUser; u != nil {
		s = u.Username + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints a failed operation. A 401 means the server dropped the
// session, so the session is re-checked silently.
func (a *App) report(ctx context.Context, err error, fallback string) {
	if errors.Is(err, models.ErrInvalidInput) {
		a.println("Error:", err)
		return
	}
	a.println("Error:", client.Message(err, fallback))
	if services.IsUnauthorized(err) && !a.session.Revalidate(ctx) {
		a.println("Your session has ended, please log in again.")
	}
}
