package backtest

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/newthinker/statarb/internal/strategy"
)

// Result holds the complete backtest output, one row per shared
// timestamp of the two price series.
type Result struct {
	SymbolA string
	SymbolB string
	Beta    float64

	Times    []time.Time
	Ret      []float64
	Equity   []float64
	Z        []float64 // NaN during the z-score warm-up
	YPos     []float64
	XPos     []float64
	Turnover []float64

	Events []strategy.Event
	Stats  Stats
}

// Len returns the number of result rows.
func (r *Result) Len() int {
	return len(r.Times)
}

// WriteCSV exports the result table. NaN z-scores are written as empty
// cells so downstream tools do not mistake the warm-up for a zero.
func (r *Result) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "ret", "equity", "z", "y_pos", "x_pos", "turnover", "event"}); err != nil {
		return err
	}
	for i := range r.Times {
		z := ""
		if !math.IsNaN(r.Z[i]) {
			z = formatF(r.Z[i])
		}
		event := ""
		if i < len(r.Events) && r.Events[i] != strategy.EventNone {
			event = r.Events[i].String()
		}
		row := []string{
			r.Times[i].Format("2006-01-02"),
			formatF(r.Ret[i]),
			formatF(r.Equity[i]),
			z,
			formatF(r.YPos[i]),
			formatF(r.XPos[i]),
			formatF(r.Turnover[i]),
			event,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
