package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lowember/ember/internal/config"
	"github.com/lowember/ember/internal/engine"
	"github.com/lowember/ember/internal/server"
	"github.com/lowember/ember/internal/session"
	"github.com/lowember/ember/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	journal, closeJournal, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer closeJournal()

	sessions := session.NewStore(session.Options{
		FuseMax:        cfg.Fuse.Max,
		RechargeWindow: cfg.Fuse.RechargeWindow,
	})
	eng := engine.New(sessions, journal, logger)
	srv := server.New(eng, VersionString(), logger)

	addr := cfg.ListenAddr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("ember serving",
			zap.String("addr", addr),
			zap.String("journal", cfg.Journal.Driver),
			zap.Int("fuse_max", cfg.Fuse.Max),
			zap.Duration("recharge_window", cfg.Fuse.RechargeWindow),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openJournal builds the history journal named by cfg. The returned close
// func is always safe to call.
func openJournal(cfg config.JournalConfig) (session.Journal, func(), error) {
	switch cfg.Driver {
	case "memory":
		return session.NewMemoryJournal(), func() {}, nil
	case "sqlite":
		db, err := store.OpenMemory()
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		return db, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown journal driver: %q", cfg.Driver)
	}
}
