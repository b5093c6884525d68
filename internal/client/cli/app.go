package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/agentdeck/internal/client/authstate"
	"github.com/dmitrijs2005/agentdeck/internal/client/client"
	"github.com/dmitrijs2005/agentdeck/internal/client/config"
	"github.com/dmitrijs2005/agentdeck/internal/client/guard"
	"github.com/dmitrijs2005/agentdeck/internal/client/localdb"
	"github.com/dmitrijs2005/agentdeck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/agentdeck/internal/client/services"
	"github.com/dmitrijs2005/agentdeck/internal/client/tokenstore"
	"github.com/dmitrijs2005/agentdeck/internal/logging"
	"github.com/dmitrijs2005/agentdeck/internal/models"
	"github.com/dmitrijs2005/agentdeck/internal/store"
	"github.com/dmitrijs2005/agentdeck/internal/store/postgres"
)

// authProvider is the part of *authstate.Provider the CLI uses.
type authProvider interface {
	State() authstate.State
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Register(ctx context.Context, email, password string, fullName *string) (*models.Session, error)
	SignOut(ctx context.Context)
}

// dataStore is the part of *store.DataStore the CLI uses.
type dataStore interface {
	Mode() store.Mode
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateProject(ctx context.Context, p models.NewProject) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListTasks(ctx context.Context, projectID *string, opts models.ListOptions) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.NewTask) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	AddChatMessage(ctx context.Context, taskID, role, content string) (*models.Task, error)
	GetUserProfile(ctx context.Context) (*models.Profile, error)
	UpdateUserProfile(ctx context.Context, prefs map[string]any) (*models.Profile, error)
}

// preferenceReader exposes locally cached preferences.
type preferenceReader interface {
	Preferences(ctx context.Context) (map[string]any, error)
}

type App struct {
	config *config.Config
	logger logging.Logger
	auth   authProvider
	data   dataStore
	prefs  preferenceReader
	guard  *guard.Guard
	reader *bufio.Reader
	out    io.Writer

	closers []func() error
}

// NewApp opens the local store, starts the session probe and resolves the
// store mode. A remote store that is configured but cannot be reached puts
// the process in local mode.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, "text", c.LogLevel)

	db, err := localdb.Open(ctx, c.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing local database: %w", err)
	}
	tokens := tokenstore.New(metadata.NewSQLiteRepository(db))

	api := client.NewHTTPClient(c.BackendURL, c.RequestTimeout)
	sessions, err := services.NewSessionService(ctx, api, tokens, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	provider := authstate.NewProvider(ctx, sessions, logger)

	var pg *sql.DB
	mode := store.NewModeResolver(func() store.Mode {
		if store.FromSettings(c.StoreURL, c.StoreKey)() == store.ModeLocal {
			return store.ModeLocal
		}
		conn, err := postgres.Open(ctx, c.StoreURL, c.StoreKey)
		if err != nil {
			logger.Warn(ctx, "remote store unavailable, running in local mode", "error", err)
			return store.ModeLocal
		}
		pg = conn
		return store.ModeConfigured
	})

	var remote store.Remote
	closers := []func() error{db.Close}
	if mode.Configured() {
		remote = postgres.NewRepository(pg)
		closers = append(closers, pg.Close)
	}

	a := &App{
		config:  c,
		logger:  logger,
		auth:    provider,
		data:    store.NewDataStore(mode, remote, provider, tokens, logger),
		prefs:   tokens,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: closers,
	}
	a.guard = a.newGuard(provider, mode.Configured)
	return a, nil
}

func (a *App) newGuard(states guard.StateSource, configured func() bool) *guard.Guard {
	g := guard.New(states, configured)
	g.OnLoading = func(context.Context) {
		fmt.Fprintln(a.out, "Checking session, try again in a moment...")
	}
	g.OnRedirect = func(ctx context.Context) error {
		fmt.Fprintln(a.out, "Please log in first.")
		return a.Login(ctx)
	}
	return g
}

// protected runs fn behind the route guard.
func (a *App) protected(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := a.guard.Run(ctx, fn)
	return err
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().Status == authstate.StatusAuthenticated
}

func (a *App) getStatus() string {
	s := a.auth.State()
	who := s.Status.String()
	if s.User != nil {
		who = s.User.Email
	}
	return fmt.Sprintf("(%s %s)", who, a.data.Mode())
}

// Run starts the REPL on stdin and releases resources when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to agentdeck CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}
