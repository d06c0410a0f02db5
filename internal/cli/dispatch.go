package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"taskboard/internal/board"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/logging"
	"taskboard/internal/service"
)

// defaultCommand runs when no command is given.
const defaultCommand = "board"

// ServiceFactory creates the backend Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service
// factory. A nil factory gives commands an in-memory board with no backend.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{defaultCommand}
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var (
		configDir string
		backend   string
		quiet     bool
		debug     bool
	)
	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&backend, "backend", "", "")
	fs.BoolVarP(&quiet, "quiet", "q", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := loadConfig(configDir, backend)
	if err != nil {
		if cmd.NeedsBoard() {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		// help, version, login and logout only need the directory
		cfg, _ = config.New(configDir)
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if debug {
		cfg.Log.Level = zerolog.LevelDebugValue
	}

	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer closeLog()

	logger.Debug().Str("command", cmd.Name()).Str("backend", cfg.Backend).Msg("dispatch")

	var b *board.Store
	if cmd.NeedsBoard() {
		var code int
		var closeBoard func()
		b, closeBoard, code = d.openBoard(ctx, cfg, logger, errOut)
		if code != exitcode.Success {
			return code
		}
		defer closeBoard()
	}

	return cmd.Run(ctx, cfg, b, fs.Args(), out, errOut)
}

// loadConfig reads config.yaml and applies the --backend override.
func loadConfig(dir, backend string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(backend))
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

// openBoard builds the board store on top of the configured backend and
// loads the current state from it.
func (d *Dispatcher) openBoard(ctx context.Context, cfg *config.Config, logger zerolog.Logger, errOut io.Writer) (*board.Store, func(), int) {
	opts := []board.Option{
		board.WithLogger(logging.Component(logger, "board")),
		board.WithRemoteReset(true),
	}
	if cfg.Board.Policy != "" {
		policy, err := board.ParsePolicy(cfg.Board.Policy)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return nil, nil, exitcode.AuthError
		}
		opts = append(opts, board.WithPolicy(policy))
	}

	closeFn := func() {}
	if d.factory != nil {
		svc, err := d.factory(ctx, cfg, logger)
		if err != nil {
			return nil, nil, reportBackendError(err, errOut)
		}
		if closer, ok := svc.(io.Closer); ok {
			closeFn = func() {
				if err := closer.Close(); err != nil {
					logger.Warn().Err(err).Msg("close backend")
				}
			}
		}
		opts = append(opts, board.WithRemote(svc))
	}

	b := board.New(opts...)
	if err := b.RefreshFromRemote(ctx); err != nil {
		closeFn()
		return nil, nil, reportBackendError(err, errOut)
	}
	return b, closeFn, exitcode.Success
}

func reportBackendError(err error, errOut io.Writer) int {
	if errors.Is(err, service.ErrAuth) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
