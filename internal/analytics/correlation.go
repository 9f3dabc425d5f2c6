// Package analytics implements the minute-aligned periodic pass:
// per-symbol moving averages, then pairwise Pearson correlation across the
// eight moving-average series.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/tradepulse/tradepulse/internal/model"
)

const selfCorrelation = 1.0

// minDenominator is the threshold below which the Pearson denominator is
// treated as degenerate and the correlation reported as 0.0.
const minDenominator = 1e-9

// row is one pivot symbol's correlation results for a single tick: the
// strongest non-self peer and the full per-symbol vector.
type row struct {
	bestSymbol string
	bestR      float64
	values     [model.NumSymbols]float64
}

// correlate computes pivot i's correlation row against the other symbols'
// last-eight-MA snapshots. samples[k] is nil when symbol k has fewer than
// eight MA samples recorded yet (treated as correlation 0.0, and as
// ineligible for best-peer selection).
func correlate(i int, samples [model.NumSymbols]*[8]float64) row {
	r := row{bestSymbol: "N/A", bestR: -2.0}

	x := samples[i]
	if x == nil {
		return r
	}

	for j := 0; j < model.NumSymbols; j++ {
		switch {
		case j == i:
			r.values[j] = selfCorrelation
		case samples[j] == nil:
			r.values[j] = 0.0
			continue
		default:
			r.values[j] = pearson(x[:], samples[j][:])
		}

		if j != i && r.values[j] > r.bestR {
			r.bestR = r.values[j]
			r.bestSymbol = model.Symbols[j]
		}
	}

	return r
}

// pearson computes the Pearson correlation coefficient of x and y via
// gonum's stat package. When the denominator sqrt(Sxx*Syy) of centred sums
// of squares is below minDenominator (for example a constant series), or
// gonum returns NaN, the degenerate case is mapped to 0.0.
func pearson(x, y []float64) float64 {
	n := float64(len(x))
	den := (n - 1) * math.Sqrt(stat.Variance(x, nil)*stat.Variance(y, nil))
	if math.Abs(den) < minDenominator {
		return 0.0
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0.0
	}
	return r
}
