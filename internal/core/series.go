package core

import "time"

// Series is a real-valued daily time series with an ordered,
// duplicate-free timestamp index.
type Series struct {
	Symbol string      `json:"symbol"`
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Values)
}

// IsValid checks that values and timestamps line up and that the
// index is strictly increasing with no duplicates.
func (s Series) IsValid() bool {
	if len(s.Times) != len(s.Values) {
		return false
	}
	for i := 1; i < len(s.Times); i++ {
		if !s.Times[i].After(s.Times[i-1]) {
			return false
		}
	}
	return true
}

// Last returns the final observation.
func (s Series) Last() (time.Time, float64, bool) {
	if len(s.Values) == 0 {
		return time.Time{}, 0, false
	}
	n := len(s.Values) - 1
	return s.Times[n], s.Values[n], true
}

// Align restricts two series to their shared timestamp index, sorted
// ascending. Both inputs must be strictly increasing; the originals are
// never mutated.
func Align(a, b Series) (Series, Series) {
	outA := Series{Symbol: a.Symbol}
	outB := Series{Symbol: b.Symbol}

	i, j := 0, 0
	for i < len(a.Times) && j < len(b.Times) {
		switch {
		case a.Times[i].Before(b.Times[j]):
			i++
		case b.Times[j].Before(a.Times[i]):
			j++
		default:
			outA.Times = append(outA.Times, a.Times[i])
			outA.Values = append(outA.Values, a.Values[i])
			outB.Times = append(outB.Times, b.Times[j])
			outB.Values = append(outB.Values, b.Values[j])
			i++
			j++
		}
	}
	return outA, outB
}
