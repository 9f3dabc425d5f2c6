package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepulse/tradepulse/internal/history"
	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/obslog"
)

func chdirToTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })
}

func newEngine() (*Engine, [model.NumSymbols]*history.SymbolHistory) {
	var h [model.NumSymbols]*history.SymbolHistory
	for i := range h {
		h[i] = history.New()
	}
	return New(h, obslog.New()), h
}

func TestEngine_PassAWritesMovingAverageLine(t *testing.T) {
	chdirToTemp(t)
	e, h := newEngine()

	h[0].Append(model.Trade{Price: 10, Volume: 1, Timestamp: 1000})
	h[0].Append(model.Trade{Price: 20, Volume: 2, Timestamp: 1000})

	e.runTick(time.Unix(1000, 0))

	data, err := os.ReadFile(filepath.Join(mavgDir, model.Symbols[0]+".log"))
	require.NoError(t, err)
	assert.Equal(t, "1000,15.00000000,3.00000000\n", string(data))
}

func TestEngine_CorrelationRowSkippedBeforeEightSamples(t *testing.T) {
	chdirToTemp(t)
	e, _ := newEngine()

	e.runTick(time.Unix(1000, 0))

	_, err := os.Stat(filepath.Join(corrDir, model.Symbols[0]+".log"))
	assert.True(t, os.IsNotExist(err))
}

func TestEngine_CorrelationRowAppearsOnEighthTick(t *testing.T) {
	chdirToTemp(t)
	e, _ := newEngine()

	for i := uint64(0); i < 8; i++ {
		e.runTick(time.Unix(int64(1000+i*60), 0))
	}

	data, err := os.ReadFile(filepath.Join(corrDir, model.Symbols[0]+".log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestNextMinuteBoundary_AlwaysStrictlyAfterNow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	next := nextMinuteBoundary(now)
	assert.True(t, next.After(now))
	assert.Equal(t, 0, next.Second())

	onBoundary := time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC)
	assert.True(t, nextMinuteBoundary(onBoundary).After(onBoundary))
}
