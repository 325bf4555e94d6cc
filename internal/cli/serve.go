package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyike/FinAgentGo/config"
	"github.com/dyike/FinAgentGo/internal/debug"
	"github.com/dyike/FinAgentGo/internal/metrics"
	"github.com/dyike/FinAgentGo/internal/server"
	"github.com/dyike/FinAgentGo/internal/storage"
	"github.com/dyike/FinAgentGo/pkg/app"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr      string
		noHistory bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web client, the agent relay and the data API",
		Long: `Serve the static web client and relay /ws/{user_id} connections to the
agent runtime. The config file is watched and the engine is rebuilt on change;
live sessions keep the engine they started with.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, addr, !noHistory)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record sessions to SQLite")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, addr string, history bool) error {
	mgrOpts := []config.ManagerOption{config.WithInitialConfig(opts.cfg)}
	if opts.configPath != "" {
		mgrOpts = append(mgrOpts, config.WithConfigPath(opts.configPath))
	}
	mgr, err := config.NewManager(mgrOpts...)
	if err != nil {
		return fmt.Errorf("config manager: %w", err)
	}
	cfg := mgr.Get().WithEnvOverrides()
	opts.applyFlags(&cfg)
	slog.Info("config loaded", "path", mgr.Path())

	// The debug plugin has to be registered before the first agent is built.
	dbg := debug.NewEinoDebugger(&cfg)
	if err := dbg.Initialize(ctx); err != nil {
		slog.Warn("eino debugger unavailable", "err", err)
	}

	m := metrics.New()
	rt, err := app.NewRuntime(mgr,
		app.WithNotifier(m.EngineNotice),
		app.WithBuilder(func(c config.Config) (*app.Engine, error) {
			c = c.WithEnvOverrides()
			opts.applyFlags(&c)
			return app.BuildEngine(c, app.WithObserver(m))
		}),
	)
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			slog.Warn("runtime close", "err", err)
		}
	}()
	if _, err := rt.Engine().Agent(); err != nil {
		slog.Warn("agent unavailable, /ws will answer 503 until the config is fixed", "err", err)
	}

	srvOpts := []server.Option{server.WithMetrics(m), server.WithStaticDir(cfg.StaticDir)}
	if history {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer store.Close()
		srvOpts = append(srvOpts, server.WithStore(store))
	}

	if addr == "" {
		addr = cfg.ListenAddr
	}
	return server.New(rt, srvOpts...).ListenAndServe(ctx, addr)
}
