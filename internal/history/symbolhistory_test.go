package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepulse/tradepulse/internal/model"
)

func TestSymbolHistory_PruneBoundary(t *testing.T) {
	h := New()
	h.Append(model.Trade{Price: 1, Timestamp: 100})
	h.Append(model.Trade{Price: 2, Timestamp: 500})
	h.Append(model.Trade{Price: 3, Timestamp: 1500})

	ma, _ := h.CurrentMovingAverage(1600)
	assert.Equal(t, 3.0, ma)
	assert.Equal(t, 1, h.Count())
}

func TestSymbolHistory_EmptyWindowIsZero(t *testing.T) {
	h := New()
	ma, vol := h.CurrentMovingAverage(1000)
	assert.Equal(t, 0.0, ma)
	assert.Equal(t, 0.0, vol)
}

func TestSymbolHistory_AppendWithinWindowKeepsAll(t *testing.T) {
	h := New()
	for i := uint64(0); i < 5; i++ {
		h.Append(model.Trade{Price: float64(i), Timestamp: 1000 + i})
	}
	require.Equal(t, 5, h.Count())
}

func TestSymbolHistory_PruneToStrictlyAboveAllTimestampsEmpties(t *testing.T) {
	h := New()
	h.Append(model.Trade{Price: 1, Timestamp: 10})
	h.Append(model.Trade{Price: 2, Timestamp: 20})

	ma, vol := h.CurrentMovingAverage(20 + windowSeconds + 1)
	assert.Equal(t, 0.0, ma)
	assert.Equal(t, 0.0, vol)
	assert.Equal(t, 0, h.Count())
}

func TestSymbolHistory_MovingAverageRingFill(t *testing.T) {
	h := New()

	for v := 1; v <= 2; v++ {
		h.RecordMA(uint64(v), float64(v))
	}
	_, ok := h.LastEightMA()
	assert.False(t, ok, "fewer than 8 samples must report insufficient")

	for v := 3; v <= 10; v++ {
		h.RecordMA(uint64(v), float64(v))
	}

	out, ok := h.LastEightMA()
	require.True(t, ok)
	assert.Equal(t, [8]float64{3, 4, 5, 6, 7, 8, 9, 10}, out)
	assert.Equal(t, 8, h.MACount())
}
