package analytics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tradepulse/tradepulse/internal/history"
	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/obslog"
)

const (
	mavgDir = "data/mavg"
	corrDir = "data/corr"
	tick    = 60 * time.Second
)

// Engine runs the minute-aligned analytics pass: moving averages first,
// then cross-symbol correlation, over the eight tracked symbols' histories.
type Engine struct {
	histories [model.NumSymbols]*history.SymbolHistory
	log       *obslog.Logger
}

// New builds an analytics engine over the given per-symbol histories.
func New(histories [model.NumSymbols]*history.SymbolHistory, log *obslog.Logger) *Engine {
	return &Engine{histories: histories, log: log.WithFields(zap.String("component", "analytics"))}
}

// Run blocks, waking on each wall-clock minute boundary to run one pass,
// until ctx is cancelled. The wait between ticks is itself cancellable so
// shutdown latency stays sub-second rather than up to 60 s.
func (e *Engine) Run(ctx context.Context) {
	deadline := nextMinuteBoundary(time.Now())
	if !e.sleepUntil(ctx, deadline) {
		return
	}

	for {
		e.runTick(time.Now())

		deadline = deadline.Add(tick)
		if !e.sleepUntil(ctx, deadline) {
			return
		}
	}
}

func nextMinuteBoundary(from time.Time) time.Time {
	truncated := from.Truncate(time.Minute)
	if !truncated.After(from) {
		truncated = truncated.Add(time.Minute)
	}
	return truncated
}

// sleepUntil waits until deadline or ctx cancellation, whichever comes
// first. Returns false if ctx was cancelled.
func (e *Engine) sleepUntil(ctx context.Context, deadline time.Time) bool {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (e *Engine) runTick(now time.Time) {
	nowSec := uint64(now.Unix())

	if err := os.MkdirAll(mavgDir, 0755); err != nil {
		e.log.Sugar().Errorw("mkdir failed, skipping moving-average pass", "dir", mavgDir, "error", err)
	} else {
		e.passA(nowSec)
	}

	samples := e.snapshotMA()

	if err := os.MkdirAll(corrDir, 0755); err != nil {
		e.log.Sugar().Errorw("mkdir failed, skipping correlation pass", "dir", corrDir, "error", err)
		return
	}
	e.passB(nowSec, samples)
}

// passA computes and records each symbol's 15-minute moving average and
// appends it to that symbol's derived log.
func (e *Engine) passA(now uint64) {
	for i, sym := range model.Symbols {
		ma, sumVolume := e.histories[i].CurrentMovingAverage(now)
		e.histories[i].RecordMA(now, ma)

		if err := e.appendLine(mavgDir, sym, fmt.Sprintf("%d,%.8f,%.8f\n", now, ma, sumVolume)); err != nil {
			e.log.Sugar().Errorw("moving-average log write failed", "symbol", sym, "error", err)
		}
	}
}

// snapshotMA copies each symbol's last-eight-MA vector under its own lock,
// one symbol at a time, so no two history locks are ever held together.
func (e *Engine) snapshotMA() [model.NumSymbols]*[8]float64 {
	var out [model.NumSymbols]*[8]float64
	for i := range model.Symbols {
		if ma, ok := e.histories[i].LastEightMA(); ok {
			out[i] = &ma
		}
	}
	return out
}

// passB computes each eligible pivot's correlation row and appends it to
// that symbol's derived log. Pivots with fewer than eight MA samples are
// skipped entirely.
func (e *Engine) passB(now uint64, samples [model.NumSymbols]*[8]float64) {
	for i, sym := range model.Symbols {
		if samples[i] == nil {
			continue
		}

		r := correlate(i, samples)

		line := fmt.Sprintf("%d,%s,%.4f", now, r.bestSymbol, r.bestR)
		for _, v := range r.values {
			line += fmt.Sprintf(",%.4f", v)
		}
		line += "\n"

		if err := e.appendLine(corrDir, sym, line); err != nil {
			e.log.Sugar().Errorw("correlation log write failed", "symbol", sym, "error", err)
		}
	}
}

// appendLine opens dir/symbol.log in append mode, writes line, and closes
// the file immediately; no tick ever keeps a derived log file open across
// writes.
func (e *Engine) appendLine(dir, symbol, line string) error {
	path := filepath.Join(dir, symbol+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return err
	}
	return f.Sync()
}
