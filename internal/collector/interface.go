// Package collector acquires daily price history for the backtest
// engine. Providers return adjusted closes on a clean, strictly
// increasing timestamp index.
package collector

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/newthinker/statarb/internal/core"
)

// maxFillGap caps how many consecutive missing values Clean carries
// forward before dropping the rows instead.
const maxFillGap = 5

// Provider defines the interface for price history sources.
type Provider interface {
	Name() string
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error)
}

// Clean sorts a series ascending, drops duplicate timestamps keeping
// the first occurrence, and forward-fills missing values from the
// prior bar for at most maxFillGap consecutive bars. Longer runs, and
// missing values with no prior bar, are dropped rather than invented.
func Clean(s core.Series) core.Series {
	idx := make([]int, len(s.Times))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.Times[idx[a]].Before(s.Times[idx[b]])
	})

	out := core.Series{Symbol: s.Symbol}
	gap := 0
	for _, i := range idx {
		if n := len(out.Times); n > 0 && out.Times[n-1].Equal(s.Times[i]) {
			continue
		}
		v := s.Values[i]
		if math.IsNaN(v) {
			gap++
			if gap > maxFillGap || len(out.Values) == 0 {
				continue
			}
			v = out.Values[len(out.Values)-1]
		} else {
			gap = 0
		}
		out.Times = append(out.Times, s.Times[i])
		out.Values = append(out.Values, v)
	}
	return out
}
