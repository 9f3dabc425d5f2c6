// Package pipeline owns every piece of shared state the running system
// needs — the trade queue, the per-symbol histories, and the three
// independently-scheduled workers driving them — and coordinates their
// startup and shutdown.
package pipeline

import (
	"context"
	"sync"

	"github.com/tradepulse/tradepulse/internal/analytics"
	"github.com/tradepulse/tradepulse/internal/history"
	"github.com/tradepulse/tradepulse/internal/ingest"
	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/obslog"
	"github.com/tradepulse/tradepulse/internal/queue"
	"github.com/tradepulse/tradepulse/internal/translog"
)

const queueCapacity = 4096

// Pipeline holds everything the three workers (ingest supervisor,
// transaction logger, analytics engine) share, and runs them until
// cancelled.
type Pipeline struct {
	log       *obslog.Logger
	queue     *queue.TradeQueue
	histories [model.NumSymbols]*history.SymbolHistory

	supervisor *ingest.Supervisor
	txLogger   *translog.Logger
	engine     *analytics.Engine
}

// New wires a Pipeline. It opens the transaction log files and builds the
// exchange dialer eagerly, so startup failures surface before Run.
func New(log *obslog.Logger) (*Pipeline, error) {
	var histories [model.NumSymbols]*history.SymbolHistory
	for i := range histories {
		histories[i] = history.New()
	}

	q := queue.New(queueCapacity)

	supervisor, err := ingest.NewSupervisor(q, histories, log)
	if err != nil {
		return nil, err
	}

	txLogger, err := translog.New(q, log)
	if err != nil {
		return nil, err
	}

	engine := analytics.New(histories, log)

	return &Pipeline{
		log:        log,
		queue:      q,
		histories:  histories,
		supervisor: supervisor,
		txLogger:   txLogger,
		engine:     engine,
	}, nil
}

// Run starts all three workers and blocks until ctx is cancelled, then
// shuts them down and waits for all three to return. Cancellation stops
// the analytics engine and the supervisor, which closes its exchange
// connection as soon as it observes ctx; Run then shuts the queue down so
// the transaction logger drains what is already queued and exits. These
// steps are not ordered against each other: the exchange connection is
// closed concurrently with the drain, not held open until it completes.
// The transport is never torn down before ctx is cancelled, so the
// supervisor keeps delivering frames right up until the signal.
func (p *Pipeline) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.supervisor.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.txLogger.Run()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.engine.Run(ctx)
	}()

	<-ctx.Done()
	p.log.Sugar().Info("shutdown signal received, draining")
	p.queue.Shutdown()

	wg.Wait()
	p.log.Sugar().Info("all workers stopped")
}
