package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/internal/config"
	redisadapter "github.com/aretw0/mrsim/pkg/adapters/redis"
	"github.com/aretw0/mrsim/pkg/ports"
)

// Output formats.
const (
	OutputText    = "text"
	OutputJSON    = "json"
	OutputCSV     = "csv"
	OutputMermaid = "mermaid"
)

// Options contains the configuration shared by the CLI commands.
type Options struct {
	File     string
	Output   string
	Debug    bool
	LogLevel string

	// Overrides applied after the document settings when positive.
	Workers   int
	Density   int
	Sidebands int

	StoreKey      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// session bundles what a command needs to run a document.
type session struct {
	doc       *config.Document
	simulator *mrsim.Simulator
	store     ports.SpectrumStore
	logger    *slog.Logger
	close     func()
}

// openSession loads the document and builds its Simulator, connecting to
// Redis when an address is configured.
func openSession(ctx context.Context, opts Options) (*session, error) {
	logger, err := createLogger(opts.Debug, opts.LogLevel)
	if err != nil {
		return nil, err
	}
	doc, err := config.Load(opts.File)
	if err != nil {
		return nil, err
	}

	simOpts, err := doc.Settings.Options()
	if err != nil {
		return nil, fmt.Errorf("%s: simulation: %w", opts.File, err)
	}
	simOpts = append(simOpts, mrsim.WithLogger(logger))
	if opts.Debug {
		simOpts = append(simOpts, mrsim.WithHooks(createDebugHooks(logger)))
	}
	if opts.Workers > 0 {
		simOpts = append(simOpts, mrsim.WithWorkers(opts.Workers))
	}
	if opts.Density > 0 {
		simOpts = append(simOpts, mrsim.WithIntegrationDensity(opts.Density))
	}
	if opts.Sidebands > 0 {
		simOpts = append(simOpts, mrsim.WithSidebands(opts.Sidebands))
	}

	s := &session{doc: doc, logger: logger, close: func() {}}
	if opts.RedisAddr != "" {
		store := redisadapter.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		s.store = store
		s.close = func() { _ = store.Close() }
		simOpts = append(simOpts,
			mrsim.WithStore(store),
			mrsim.WithLocker(redisadapter.NewLocker(store.Client(), redisadapter.DefaultPrefix)),
		)
		logger.Info("Spectrum store connected", "addr", opts.RedisAddr)
	} else if opts.StoreKey != "" {
		return nil, fmt.Errorf("--store-key requires --redis")
	}

	s.simulator, err = mrsim.New(simOpts...)
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}
