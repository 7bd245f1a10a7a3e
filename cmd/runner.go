package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/traylist/internal/capture"
	"github.com/desertthunder/traylist/internal/messaging"
	"github.com/desertthunder/traylist/internal/repositories"
	"github.com/desertthunder/traylist/internal/services"
	"github.com/desertthunder/traylist/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	store      services.Store
	bus        *messaging.Bus
	logger     *log.Logger
	output     io.Writer
	closeDelay time.Duration
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      services.Store
	Bus        *messaging.Bus
	Logger     *log.Logger
	Output     io.Writer
	CloseDelay time.Duration
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration.
//
// When no remote store is injected, an HTTP client is built from the
// config with its bearer token read from the mirrored identity.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Bus == nil {
		opts.Bus = messaging.NewBus()
	}
	if opts.CloseDelay <= 0 {
		opts.CloseDelay = capture.DefaultCloseDelay
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		bus:        opts.Bus,
		logger:     opts.Logger,
		output:     opts.Output,
		closeDelay: opts.CloseDelay,
		db:         opts.DB,
	}

	if r.store == nil {
		r.store = services.NewHTTPStore(services.HTTPStoreOpts{
			BaseURL:        r.config.Remote.BaseURL,
			WatchURL:       r.config.Remote.WatchURL,
			Token:          r.accessToken,
			WriteRateLimit: r.config.Remote.WriteRateLimit,
		})
	}

	return r
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// database opens the shared storage area lazily and caches the handle.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	return db, nil
}

// accessToken reads the mirrored identity's bearer token for remote calls.
func (r *Runner) accessToken() (string, error) {
	db, err := r.database()
	if err != nil {
		return "", err
	}

	tok, err := repositories.NewTokenRepository(db).Get()
	if err != nil {
		return "", err
	}

	return tok.AccessToken, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, captureCommand, drainCommand, daemonCommand,
		listCommand, addCommand, updateCommand, removeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
