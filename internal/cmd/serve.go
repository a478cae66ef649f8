package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/stackforge/internal/config"
	"github.com/harrison/stackforge/internal/logger"
	"github.com/harrison/stackforge/internal/server"
	"github.com/harrison/stackforge/internal/session"
)

// pruneInterval is how often serve deletes idle sessions
const pruneInterval = time.Hour

// NewServeCommand creates and returns the serve subcommand
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web configurator API",
		Long: `Serve the HTTP API behind the web configurator.

Sessions are stored in SQLite (server.session_db, default
.stackforge/sessions.db) and sessions idle for longer than
server.keep_sessions_days are pruned every hour. Prometheus metrics are
exposed on /metrics.

Examples:
  stackforge serve
  stackforge serve --addr 127.0.0.1:9000 --db /var/lib/stackforge/sessions.db`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :8787)")
	cmd.Flags().String("db", "", "Session database path")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var addr, db *string
	if cmd.Flags().Changed("addr") {
		v, _ := cmd.Flags().GetString("addr")
		addr = &v
	}
	if cmd.Flags().Changed("db") {
		v, _ := cmd.Flags().GetString("db")
		db = &v
	}
	cfg.MergeWithFlags(nil, nil, nil, addr, db)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := newRunLoggers(cmd, cfg, true)
	if err != nil {
		return err
	}
	defer log.Close()

	home, err := config.GetStackforgeHome()
	if err != nil {
		return err
	}
	dbPath := config.ResolvePath(home, cfg.Server.SessionDB)
	store, err := session.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open session store %s: %w", dbPath, err)
	}
	defer store.Close()
	log.LogInfo(fmt.Sprintf("session store: %s", dbPath))

	srv := server.New(newRuleEngine(), store, cfg.DefaultState(), log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.Server.Addr)
	})
	if cfg.Server.KeepSessionsDays > 0 {
		keep := time.Duration(cfg.Server.KeepSessionsDays) * 24 * time.Hour
		g.Go(func() error {
			return pruneLoop(gctx, srv, keep, log)
		})
	}
	return g.Wait()
}

// pruneLoop prunes once at startup and then every pruneInterval until ctx ends.
// Prune failures are logged and retried on the next tick.
func pruneLoop(ctx context.Context, srv *server.Server, keep time.Duration, log logger.Logger) error {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		if _, err := srv.PruneSessions(ctx, keep); err != nil && ctx.Err() == nil {
			log.LogWarn(fmt.Sprintf("session prune failed: %v", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
