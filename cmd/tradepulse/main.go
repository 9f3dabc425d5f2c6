// Command tradepulse ingests a real-time cryptocurrency trades feed,
// records every trade, and computes minute-aligned moving averages and
// cross-symbol correlations. No flags, no environment variables: every
// tunable is a build-time constant.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tradepulse/tradepulse/internal/obslog"
	"github.com/tradepulse/tradepulse/internal/pipeline"
)

func main() {
	log := obslog.New()
	defer log.Sync()

	p, err := pipeline.New(log)
	if err != nil {
		log.Sugar().Fatalw("failed to start", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Sugar().Info("tradepulse starting")
	p.Run(ctx)
	log.Sugar().Info("tradepulse stopped")

	os.Exit(0)
}
