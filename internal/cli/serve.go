package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moviegraph/pkg/observability"
	"github.com/matzehuels/moviegraph/pkg/ratings"
	"github.com/matzehuels/moviegraph/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP renderer.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, backend, mongoURI string
	var rateLimit int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the renderer over HTTP",
		Long: `Serve renders interaction maps POSTed to / (or /render).

With a MongoDB URI (--mongo-uri or [mongo] uri) it also serves, from an
imported MovieLens dataset:

  GET /users/graph?user=1&user=2
  GET /users/{id}/ego?distance=2&min_inverse_popularity=0.01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			if flags.Changed("cache") {
				c.cfg.Cache.Backend = backend
			}
			if flags.Changed("mongo-uri") {
				c.cfg.Mongo.URI = mongoURI
			}
			if flags.Changed("rate-limit") {
				c.cfg.Server.RateLimit = rateLimit
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&backend, "cache", "", "artifact cache: none, file, redis")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI enabling the /users routes")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute per client IP, 0 disables")
	_ = cmd.RegisterFlagCompletionFunc("cache", cacheBackends)

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	observability.SetServerHooks(observability.NewLogHooks(c.Logger))

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	deps := server.Deps{Runner: runner, Logger: c.Logger}
	if c.cfg.Mongo.URI != "" {
		octx, cancel := c.mongoContext(ctx)
		store, err := ratings.Open(octx, c.cfg.Mongo.URI, c.cfg.Mongo.Database)
		cancel()
		if err != nil {
			return err
		}
		defer closeStore(c, store)
		deps.Store = store
		c.Logger.Info("ratings store connected", "database", c.cfg.Mongo.Database)
	}

	c.Logger.Info("starting server",
		"cache", c.cfg.Cache.Backend,
		"rate_limit", c.cfg.Server.RateLimit,
		"steps", c.cfg.Layout.Steps)
	return server.New(c.cfg, deps).ListenAndServe(ctx)
}

func closeStore(c *CLI, store *ratings.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		c.Logger.Warn("close ratings store", "error", err)
	}
}
