// Package translog implements the transaction logger task: a single
// consumer of the trade queue that appends one line per trade to its
// symbol's append-only log file.
package translog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/obslog"
	"github.com/tradepulse/tradepulse/internal/queue"
)

const logDir = "logs/transactions"

// Logger drains a TradeQueue and appends each trade to its symbol's
// transactions log until the queue signals shutdown.
type Logger struct {
	q     *queue.TradeQueue
	log   *obslog.Logger
	files [model.NumSymbols]*os.File
}

// New opens the eight append-mode transaction log files, one per symbol.
func New(q *queue.TradeQueue, obs *obslog.Logger) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", logDir, err)
	}

	l := &Logger{q: q, log: obs}
	for i, symbol := range model.Symbols {
		path := filepath.Join(logDir, symbol+".log")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l.closeAll()
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		l.files[i] = f
	}
	return l, nil
}

// Run pops trades until the queue is shut down and drained, writing one
// line per trade. Trades for a symbol outside the canonical table (the
// parser queues those too) are skipped without being written.
func (l *Logger) Run() {
	for {
		trade, ok := l.q.Pop()
		if !ok {
			l.closeAll()
			return
		}

		idx := model.SymbolIndex(trade.Symbol)
		if idx < 0 {
			continue
		}

		f := l.files[idx]
		if _, err := fmt.Fprintf(f, "[%d], Price: %.8f, Volume: %.8f\n", trade.Timestamp, trade.Price, trade.Volume); err != nil {
			l.log.Sugar().Errorw("transaction log write failed", "symbol", trade.Symbol, "error", err)
			continue
		}
		if err := f.Sync(); err != nil {
			l.log.Sugar().Errorw("transaction log flush failed", "symbol", trade.Symbol, "error", err)
		}
	}
}

func (l *Logger) closeAll() {
	for _, f := range l.files {
		if f != nil {
			f.Close()
		}
	}
}
