package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clawdsign/pkg/api"
	"github.com/matzehuels/clawdsign/pkg/config"
	"github.com/matzehuels/clawdsign/pkg/observability"
	"github.com/matzehuels/clawdsign/pkg/service"
)

// serveOptions holds flags for the serve command.
type serveOptions struct {
	configPath string
	addr       string
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the ClawdSign HTTP API.

Configuration comes from an optional TOML file (--config) and the environment:
PORT, CLAWDSIGN_STORE, DATABASE_URL, MONGO_URI, CLAWDSIGN_CACHE, REDIS_ADDR.`,
		Example: `  # In-memory store, port 8080
  clawdsign serve

  # PostgreSQL with Redis cache
  CLAWDSIGN_STORE=postgres DATABASE_URL=postgres://localhost/clawdsign \
  CLAWDSIGN_CACHE=redis REDIS_ADDR=localhost:6379 clawdsign serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	logger := c.Logger
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && logger.GetLevel() > lvl {
		logger.SetLevel(lvl)
	}

	hooks := observability.NewLogHooks(logger)
	observability.SetServiceHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	st, err := openStore(ctx, cfg.Store, cfg.Store.Migrate)
	if err != nil {
		return err
	}
	defer st.Close()

	ch := openCache(ctx, cfg.Cache, logger)
	defer ch.Close()

	logger.Info("starting server",
		"store", cfg.Store.Backend, "cache", cfg.Cache.Backend, "addr", cfg.Server.Addr)

	svc := service.New(st,
		service.WithCache(ch),
		service.WithLogger(logger),
		service.WithStatsTTL(cfg.Cache.StatsTTL.Duration),
	)
	srv := api.New(svc, api.Options{Logger: logger, MaxBodyBytes: cfg.Server.MaxBodyBytes})
	return srv.ListenAndServe(ctx, api.ServeConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout.Duration,
		WriteTimeout:    cfg.Server.WriteTimeout.Duration,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
	})
}
