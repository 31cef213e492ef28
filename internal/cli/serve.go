package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tonycui/spatio/internal/config"
	"github.com/tonycui/spatio/internal/logging"
	"github.com/tonycui/spatio/internal/server"
	"github.com/tonycui/spatio/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the spatio server",
	Long:  `Start the spatio server with the configuration taken from environment variables (see SPATIO_HOST, SPATIO_PORT, LOG_LEVEL and friends) or a local .env file.`,
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	log := logging.New("cli")

	db, recovery, err := store.Open(store.Options{
		AofPath:        cfg.AofPath,
		AofEnabled:     cfg.AofEnabled,
		AofSyncPolicy:  cfg.AofSyncPolicy,
		DefaultTimeout: cfg.DefaultTimeout,
	})
	if err != nil {
		log.Errorf("open store: %v", err)
		return err
	}
	if len(recovery.Errors) > 0 {
		log.Warnf("AOL recovery: %d of %d lines skipped (success rate %.2f)",
			len(recovery.Errors), len(recovery.Errors)+len(recovery.Commands), recovery.SuccessRate)
	} else if len(recovery.Commands) > 0 {
		log.Infof("AOL recovery: replayed %d commands", len(recovery.Commands))
	}
	defer db.Close()

	srv := server.New(cfg.ListenAddr(), db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return nil
	case err := <-errCh:
		return err
	}
}
