package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/sheetpilot"
	"github.com/aretw0/sheetpilot/internal/config"
	"github.com/aretw0/sheetpilot/pkg/adapters/file"
	"github.com/aretw0/sheetpilot/pkg/adapters/loam"
	"github.com/aretw0/sheetpilot/pkg/adapters/memory"
	"github.com/aretw0/sheetpilot/pkg/adapters/process"
	"github.com/aretw0/sheetpilot/pkg/adapters/redis"
	"github.com/aretw0/sheetpilot/pkg/adapters/xlsx"
	"github.com/aretw0/sheetpilot/pkg/observability"
	"github.com/aretw0/sheetpilot/pkg/persistence/middleware"
	"github.com/aretw0/sheetpilot/pkg/planner/httpplanner"
	"github.com/aretw0/sheetpilot/pkg/ports"
	"github.com/aretw0/sheetpilot/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime is an Agent plus the resources it owns.
type Runtime struct {
	Agent    *sheetpilot.Agent
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Loader   *loam.Loader

	closers []func() error
}

// Close releases the workbook and the redis connection.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRuntime wires an Agent from configuration.
func NewRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Registry: prometheus.NewRegistry()}
	rt.Metrics = observability.NewMetrics(rt.Registry)

	grid, err := openGrid(cfg.Workbook, rt)
	if err != nil {
		return nil, err
	}

	planner, err := httpplanner.New(cfg.Planner.URL,
		httpplanner.WithTimeout(cfg.Planner.Timeout),
		httpplanner.WithLogger(logger),
	)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("planner: %w", err)
	}

	opts := []sheetpilot.Option{
		sheetpilot.WithLogger(logger),
		sheetpilot.WithMetrics(rt.Metrics),
		sheetpilot.WithLifecycleHooks(observability.LogHooks(logger)),
		sheetpilot.WithMaxRounds(cfg.Runner.MaxRounds),
		sheetpilot.WithSnapshotRows(cfg.Planner.SnapshotRows),
	}

	store, locker, err := openStore(cfg, rt)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	opts = append(opts, sheetpilot.WithSessionStore(store))
	if locker != nil {
		opts = append(opts, sheetpilot.WithLocker(locker))
	}

	if cfg.Tools.File != "" {
		tools, err := loadTools(cfg.Tools.File)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		opts = append(opts, sheetpilot.WithTools(tools))
	}

	if cfg.Scenarios.Dir != "" {
		loader, err := loam.Open(cfg.Scenarios.Dir)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("scenarios: %w", err)
		}
		rt.Loader = loader
		opts = append(opts, sheetpilot.WithScenarios(loader))
	}

	agent, err := sheetpilot.New(grid, planner, opts...)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Agent = agent
	logger.Debug("agent ready",
		"workbook", cfg.Workbook.Path,
		"store", cfg.Store.Kind,
		"planner", cfg.Planner.URL,
	)
	return rt, nil
}

// loadTools extends the built-in tools with the commands of a tools file.
// Commands run from the directory holding the file.
func loadTools(path string) (*registry.Registry, error) {
	configs, err := process.LoadTools(path)
	if err != nil {
		return nil, err
	}
	reg := registry.Default()
	runner := process.NewRunner(process.WithRegistry(configs), process.WithBaseDir(filepath.Dir(path)))
	if err := runner.Install(reg); err != nil {
		return nil, fmt.Errorf("tools: %w", err)
	}
	return reg, nil
}

func openGrid(cfg config.WorkbookConfig, rt *Runtime) (ports.Grid, error) {
	if cfg.Path == "" {
		return memory.NewGrid(), nil
	}
	g, err := xlsx.Open(cfg.Path, cfg.Sheet)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, g.Close)
	return g, nil
}

func openStore(cfg config.Config, rt *Runtime) (ports.SessionStore, ports.DistributedLocker, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch cfg.Store.Kind {
	case config.StoreFile:
		store = file.New(cfg.Store.Path)
	case config.StoreRedis:
		client, err := redis.Connect(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		rt.closers = append(rt.closers, client.Close)
		var ropts []redis.Option
		if cfg.Redis.Prefix != "" {
			ropts = append(ropts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			ropts = append(ropts, redis.WithTTL(cfg.Redis.TTL))
		}
		store = redis.NewFromClient(client, ropts...)
		locker = redis.NewLocker(client, "sheetpilot:")
	default:
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(cfg.Store.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Store.PIIPatterns))
	}
	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), locker, nil
}
