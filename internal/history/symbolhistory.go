// Package history implements the per-symbol trade window and moving-average
// ring for one tracked symbol.
package history

import (
	"sync"

	"github.com/tradepulse/tradepulse/internal/model"
)

// windowSeconds is the trailing window retained for the moving average
// (15 minutes).
const windowSeconds = 900

// maSamples is the length of the moving-average ring.
const maSamples = 8

// SymbolHistory holds every trade observed in the trailing 15-minute window
// for one symbol, plus the ring of its last eight moving-average samples.
// One instance exists per tracked symbol; each guards its own state with its
// own mutex so the analytics pass never needs to hold two history locks at
// once.
type SymbolHistory struct {
	mu sync.Mutex

	trades []model.Trade // insertion order, pruned in place

	maHistory    [maSamples]float64
	maTimestamps [maSamples]uint64
	maIndex      int // next write position
	maCount      int // saturates at maSamples
}

// New returns an empty SymbolHistory.
func New() *SymbolHistory {
	return &SymbolHistory{}
}

func pruneLocked(trades []model.Trade, cutoff uint64) []model.Trade {
	write := 0
	for read := 0; read < len(trades); read++ {
		if trades[read].Timestamp >= cutoff {
			trades[write] = trades[read]
			write++
		}
	}
	return trades[:write]
}

// Append prunes trades older than trade.Timestamp-900 and adds trade to the
// window. Go's slice append already grows the backing array geometrically,
// which is the idiomatic equivalent of the original's doubling-from-128
// realloc — there is no separately tracked capacity field here.
func (h *SymbolHistory) Append(trade model.Trade) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := cutoffBefore(trade.Timestamp)
	h.trades = pruneLocked(h.trades, cutoff)
	h.trades = append(h.trades, trade)
}

func cutoffBefore(now uint64) uint64 {
	if now < windowSeconds {
		return 0
	}
	return now - windowSeconds
}

// CurrentMovingAverage prunes the window to now-900 and returns the mean
// trade price and total volume over what remains. Returns
// (0, 0) when the window is empty.
func (h *SymbolHistory) CurrentMovingAverage(now uint64) (ma float64, sumVolume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := cutoffBefore(now)
	h.trades = pruneLocked(h.trades, cutoff)

	var sumPrice float64
	for _, t := range h.trades {
		sumPrice += t.Price
		sumVolume += t.Volume
	}

	count := len(h.trades)
	if count == 0 {
		return 0, sumVolume
	}
	return sumPrice / float64(count), sumVolume
}

// RecordMA writes one moving-average sample into the ring.
func (h *SymbolHistory) RecordMA(now uint64, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.maHistory[h.maIndex] = value
	h.maTimestamps[h.maIndex] = now
	h.maIndex = (h.maIndex + 1) % maSamples
	if h.maCount < maSamples {
		h.maCount++
	}
}

// LastEightMA returns the last eight moving-average samples in chronological
// order. ok is false when fewer than eight samples have been recorded yet.
func (h *SymbolHistory) LastEightMA() (out [maSamples]float64, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maCount < maSamples {
		return out, false
	}
	for k := 0; k < maSamples; k++ {
		idx := (h.maIndex - maSamples + k + maSamples) % maSamples
		out[k] = h.maHistory[idx]
	}
	return out, true
}

// Count reports the number of trades currently held (diagnostics/tests).
func (h *SymbolHistory) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.trades)
}

// MACount reports how many moving-average samples have been recorded so far
// (diagnostics/tests).
func (h *SymbolHistory) MACount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maCount
}
