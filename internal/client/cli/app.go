package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusmatch/internal/client/client"
	"github.com/dmitrijs2005/campusmatch/internal/client/config"
	"github.com/dmitrijs2005/campusmatch/internal/client/credstore"
	"github.com/dmitrijs2005/campusmatch/internal/client/gateway"
	"github.com/dmitrijs2005/campusmatch/internal/client/routegate"
	"github.com/dmitrijs2005/campusmatch/internal/client/services"
	"github.com/dmitrijs2005/campusmatch/internal/client/session"
	"github.com/dmitrijs2005/campusmatch/internal/logging"
)

// Mode is the server reachability shown in the prompt.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pingTimeout bounds one reachability probe.
const pingTimeout = 3 * time.Second

const defaultCheckInterval = 3 * time.Second

type App struct {
	config   *config.Config
	sessions *session.Manager
	auth     services.AuthService
	profile  services.ProfileService
	closer   io.Closer
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	mu        sync.Mutex
	mode      Mode
	location  string
	stopWatch func()
}

// NewApp opens the credential store and builds the client stack from c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	backend, err := credstore.Open(ctx, c.StoreDriver, c.StorePath)
	if err != nil {
		logger.Error(ctx, "error opening credential store", "driver", c.StoreDriver, "error", err)
		return nil, err
	}
	store := credstore.NewStore(backend, logger)

	// Session-scoped calls carry only a credential the manager has resolved.
	var sessions *session.Manager
	gw := gateway.New(c.ServerURL, gateway.TokenSourceFunc(func() (string, bool) { return sessions.AccessCredential() }),
		gateway.WithTimeout(c.RequestTimeout),
		gateway.WithLogger(logger))
	api := client.NewHTTPClient(gw)
	sessions = session.NewManager(api, store, logger)

	a := newApp(c, sessions,
		services.NewAuthService(api, sessions, c.InstitutionalDomain, logger),
		services.NewProfileService(api, sessions, logger),
		logger, os.Stdin, os.Stdout)
	a.closer = store
	return a, nil
}

func newApp(c *config.Config, sessions *session.Manager, auth services.AuthService,
	profile services.ProfileService, logger logging.Logger, in io.Reader, out io.Writer) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{
		config:   c,
		sessions: sessions,
		auth:     auth,
		profile:  profile,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
		location: routegate.PathHome,
	}
}

// Run resumes the stored session, starts the reachability watcher and runs
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close()

	a.println("Welcome to CampusMatch CLI (type 'help' for commands)")

	snap := a.sessions.Bootstrap(ctx)
	if snap.Authenticated() {
		a.println(fmt.Sprintf("Welcome back, %s!", displayName(snap)))
		a.navigate(routegate.PathMatches)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close() {
	a.mu.Lock()
	stop := a.stopWatch
	a.stopWatch = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.logger.Error(context.Background(), "error closing credential store", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Snapshot().Authenticated()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher probes the backend every interval and flips the
// prompt between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.auth.Ping(ctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) getStatus() string {
	s := ""
	if snap := a.sessions.Snapshot(); snap.Authenticated() {
		s = snap.Identity.Email + " "
	}
	if m := a.currentMode(); m != "" {
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

func displayName(s session.Snapshot) string {
	if s.Identity == nil {
		return ""
	}
	if s.Identity.Name != "" {
		return s.Identity.Name
	}
	return s.Identity.Email
}
