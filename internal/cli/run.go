package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/roach88/nucleus/internal/config"
	"github.com/roach88/nucleus/internal/dna"
	"github.com/roach88/nucleus/internal/engine"
	"github.com/roach88/nucleus/internal/network/transport"
	"github.com/roach88/nucleus/internal/node"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath  string
	DNAPath     string
	AgentID     string
	MetricsAddr string

	// IDs overrides the UUIDv7 request id generator (for testing).
	IDs engine.IDGenerator
	// Ready is called once the node has started (for testing).
	Ready func(*node.Node)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a node",
		Long: `Start a node for one agent running one DNA.

Configuration is read from --config (TOML, YAML or JSON by extension), then
NUCLEUS_* environment variables, then the flags below. With the sqlite
storage backend the node replays its action log and resumes its chain.

Example:
  nucleus run --config node.toml
  nucleus run --dna blog.cue --agent alice --metrics-addr :9100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&opts.DNAPath, "dna", "", "path to the DNA definition (overrides node.dna_path)")
	cmd.Flags().StringVar(&opts.AgentID, "agent", "", "agent id (overrides node.agent_id)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve /metrics, /healthz and /status on this address")

	return cmd
}

func (o *RunOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.DNAPath != "" {
		cfg.Node.DNAPath = o.DNAPath
	}
	if o.AgentID != "" {
		cfg.Node.AgentID = o.AgentID
	}
	if o.MetricsAddr != "" {
		cfg.Metrics.Addr = o.MetricsAddr
	}
	if cfg.Node.DNAPath == "" {
		return nil, errors.New("no DNA: set node.dna_path or --dna")
	}
	return cfg, cfg.Validate()
}

func runNode(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	logger, level := newLogger(cmd.ErrOrStderr(), cfg.Logging, opts.Verbose)
	slog.SetDefault(logger)

	d, err := dna.Load(cfg.Node.DNAPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load DNA", err)
	}
	slog.Info("DNA loaded", "name", d.Name, "address", d.Address())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	storage, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	defer func() {
		if closeErr := storage.close(); closeErr != nil {
			slog.Error("error closing storage", "error", closeErr)
		}
	}()
	slog.Info("storage ready",
		"backend", cfg.Storage.Backend,
		"eav_backend", cfg.Storage.EAV(),
		"history", len(storage.history),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := engine.NewMetrics(reg)

	ids := opts.IDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	nodeOpts := node.Options{
		AgentID:        cfg.Node.AgentID,
		DNA:            d,
		CAS:            storage.cas,
		EAV:            storage.eav,
		Hub:            transport.NewHub(),
		PoolSize:       cfg.Pool.Size,
		PoolMode:       poolMode(cfg.Pool.Mode),
		NetworkTimeout: cfg.Network.Timeout(),
		RequestRate:    cfg.Network.RequestRate,
		RequestBurst:   cfg.Network.RequestBurst,
		History:        storage.history,
		Metrics:        metrics,
		IDs:            ids,
	}
	if storage.log != nil {
		nodeOpts.ActionLog = storage.log
	}
	n, err := node.New(nodeOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build node", err)
	}

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           adminHandler(reg, n.Context),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		slog.Info("serving admin endpoints", "addr", cfg.Metrics.Addr)
	}

	if opts.ConfigPath != "" {
		err := config.Watch(ctx, opts.ConfigPath, func(next *config.Config) {
			if !opts.Verbose {
				level.Set(parseLevel(next.Logging.Level))
			}
			slog.Info("config reloaded; only logging.level applies without a restart",
				"log_level", next.Logging.Level)
		})
		if err != nil {
			slog.Warn("config hot reload disabled", "error", err)
		}
	}

	if err := n.Start(ctx); err != nil {
		n.Stop()
		return WrapExitError(ExitFailure, "failed to start node", err)
	}
	defer n.Stop()

	rc := n.Context()
	fmt.Fprintf(cmd.OutOrStdout(), "Node %s started on DNA %s (%s) at seq %d.\n",
		rc.AgentID(), d.Name, d.Address(), rc.State().Seq())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	if opts.Ready != nil {
		opts.Ready(n)
	}
	<-ctx.Done()
	slog.Info("shutting down", "agent_id", rc.AgentID())
	return nil
}

func poolMode(mode string) engine.PoolMode {
	if mode == config.PoolModeBlock {
		return engine.PoolBlock
	}
	return engine.PoolReject
}
