package translog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepulse/tradepulse/internal/model"
	"github.com/tradepulse/tradepulse/internal/obslog"
	"github.com/tradepulse/tradepulse/internal/queue"
)

func chdirToTemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })
}

func TestLogger_WritesOneLinePerTrade(t *testing.T) {
	chdirToTemp(t)

	q := queue.New(8)
	l, err := New(q, obslog.New())
	require.NoError(t, err)

	q.Push(model.Trade{Symbol: "BTC-USDT", Price: 30000.5, Volume: 0.125, Timestamp: 1700000000})
	q.Push(model.Trade{Symbol: "BTC-USDT", Price: 30001.0, Volume: 0.25, Timestamp: 1700000001})
	q.Shutdown()

	l.Run()

	data, err := os.ReadFile(filepath.Join(logDir, "BTC-USDT.log"))
	require.NoError(t, err)
	assert.Equal(t,
		"[1700000000], Price: 30000.50000000, Volume: 0.12500000\n"+
			"[1700000001], Price: 30001.00000000, Volume: 0.25000000\n",
		string(data))
}

func TestLogger_SkipsTradesForUnknownSymbol(t *testing.T) {
	chdirToTemp(t)

	q := queue.New(8)
	l, err := New(q, obslog.New())
	require.NoError(t, err)

	q.Push(model.Trade{Symbol: "UNKNOWN-USDT", Price: 1, Volume: 1, Timestamp: 1})
	q.Shutdown()

	l.Run()

	data, err := os.ReadFile(filepath.Join(logDir, "ETH-USDT.log"))
	require.NoError(t, err)
	assert.Empty(t, data)
}
