package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/floatkit/internal/config"
	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		placement  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tooltip demo server",
		Long: `Serve the tooltip demo page with live layout sync.

Settings come from floatkit.json, found from the working directory
upwards, or from --config. Without a file the defaults apply.

Examples:
  floatkit serve
  floatkit serve --addr=127.0.0.1:9000
  floatkit serve --placement=top -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if placement != "" {
				cfg.Tooltip.Placement = placement
			}
			if verbose {
				cfg.Log.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from floatkit.json)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to floatkit.json")
	cmd.Flags().StringVarP(&placement, "placement", "p", "", "Default tooltip placement")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	return cmd
}

// loadConfig reads path when given, else searches from the working
// directory. A missing file is not an error when no path was named.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.HasCode(err, "F021") {
		return config.New(), nil
	}
	return cfg, err
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// originChecker allows the listed origins, or any origin when the list is
// empty.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	hosts := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if u, err := url.Parse(o); err == nil {
			hosts[u.Scheme+"://"+u.Host] = true
		}
	}
	return func(r *http.Request) bool {
		u, err := url.Parse(r.Header.Get("Origin"))
		if err != nil {
			return false
		}
		return hosts[u.Scheme+"://"+u.Host]
	}
}

func newServer(cfg *config.Config, logger *slog.Logger) *server.Server {
	return server.New(server.Config{
		Addr:             cfg.Server.Addr,
		Placement:        cfg.Tooltip.Placement,
		Delay:            cfg.Tooltip.Delay(),
		GroupDelay:       cfg.Tooltip.GroupDelayDuration(),
		GroupTimeout:     cfg.Tooltip.GroupTimeoutDuration(),
		MetricsNamespace: cfg.Metrics.Namespace,
		CheckOrigin:      originChecker(cfg.Server.AllowedOrigins),
		Logger:           logger,
	})
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Log)
	srv := newServer(cfg, logger)

	printBanner()
	info("serve")
	if cfg.Path() != "" {
		info("config %s", cfg.Path())
	} else {
		warn("no floatkit.json found, using defaults")
	}
	success("Listening on %s", cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		info("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
