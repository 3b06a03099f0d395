package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pageutil/internal/catalog"
	"github.com/ziadkadry99/pageutil/internal/config"
	"github.com/ziadkadry99/pageutil/internal/history"
	"github.com/ziadkadry99/pageutil/internal/pending"
	"github.com/ziadkadry99/pageutil/internal/server"
	"github.com/ziadkadry99/pageutil/internal/webutil"
)

var (
	servePort      int
	historyMaxAge  time.Duration
	shutdownPeriod = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pending registry and string catalog server",
	Long: `Starts the pageutil HTTP server. The registry reports "init" as pending
until the catalog is loaded and every route is mounted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().DurationVar(&historyMaxAge, "history-max-age", 7*24*time.Hour, "drop pending history older than this on startup (0 keeps everything)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	hist := history.NewStore(database)
	if historyMaxAge > 0 {
		n, err := hist.DeleteBefore(ctx, time.Now().Add(-historyMaxAge))
		if err != nil {
			return errors.Wrap(err, "pruning history")
		}
		if n > 0 {
			log.WithField("deleted", n).Info("pruned pending history")
		}
	}

	reg := pending.New()
	reg.Observe(hist.Recorder())
	reg.Begin(pending.InitID)

	table, err := loadTable(ctx, cfg, database)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		AllowAll: cfg.Server.AllowAll,
	}, reg)

	registerAllRoutes(srv, cfg, table, hist)
	reg.End(pending.InitID)

	go func() {
		<-ctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"version":    Version,
		"port":       cfg.Server.Port,
		"database":   database.Path(),
		"lang":       cfg.Lang,
		"components": len(table.Components()),
	}).Info("pageutil server starting")

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// registerAllRoutes wires every feature package onto the server.
func registerAllRoutes(srv *server.Server, cfg *config.Config, table *catalog.Table, hist *history.Store) {
	reg := srv.Registry()

	// Pending registry: long-poll and websocket routes bound themselves.
	pending.RegisterRoutes(srv.Root(), reg)

	r := srv.Router()

	// Pending history
	history.RegisterRoutes(r, hist)

	// String catalog, optionally counted as in-flight I/O.
	var mw []func(http.Handler) http.Handler
	if cfg.Server.TrackRequests {
		mw = append(mw, pending.Track(reg))
	}
	catalog.RegisterRoutes(r, table, mw...)

	// Helpers
	webutil.RegisterRoutes(r, siteFromConfig(cfg))
}
