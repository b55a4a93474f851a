package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/takulai/takd/internal/config"
	"github.com/takulai/takd/internal/node"
	"github.com/takulai/takd/internal/rpc"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the accounting daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func runServer(cfg *config.Config) error {
	log := newLogger(cfg.Log.Level)

	n, err := node.Open(node.Options{
		Backend:      cfg.Database.Backend,
		DataPath:     cfg.Database.Path,
		Compression:  cfg.Database.Compression,
		HistoryPath:  cfg.Database.HistoryPath,
		GenesisOwner: cfg.Genesis.Owner,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("failed to open node: %w", err)
	}
	defer n.Close()

	server := rpc.NewServer(n, rpc.Options{
		Addr:    cfg.Server.Addr,
		Version: Version,
		Logger:  log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		return nil
	})

	return g.Wait()
}
