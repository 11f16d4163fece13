package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tidelabs/tidecore/api"
	"github.com/tidelabs/tidecore/core/statistics"
	"github.com/tidelabs/tidecore/core/tidechain"
	"github.com/tidelabs/tidecore/log"
	"github.com/tidelabs/tidecore/version"
	"golang.org/x/sync/errgroup"
)

// Serve opens the latest state and serves the query API on it
var Serve = &cobra.Command{
	Use:   "serve",
	Short: "Run the query API over the node state",
	RunE:  serve,
}

func serve(cmd *cobra.Command, args []string) error {
	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}

	metrics := statistics.NopMetrics()
	if cfg.Prometheus {
		metrics = statistics.PrometheusMetrics("tidecore")
	}

	blockchain, err := tidechain.NewBlockchain(openStorage(), cfg, statistics.New(metrics), logger)
	if err != nil {
		return err
	}
	defer blockchain.Close()

	if blockchain.Height() == 0 {
		if _, err := initChain(blockchain, logger); err != nil {
			return err
		}
	}

	addr, err := cfg.APIHost()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return api.Run(ctx, api.NewService(blockchain, cfg, logger, version.Version), addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down", "height", blockchain.Height())
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
