package core

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestSeries_IsValid(t *testing.T) {
	s := Series{
		Times:  []time.Time{day(0), day(1), day(2)},
		Values: []float64{1, 2, 3},
	}
	if !s.IsValid() {
		t.Error("strictly increasing series should be valid")
	}

	dup := Series{
		Times:  []time.Time{day(0), day(0)},
		Values: []float64{1, 2},
	}
	if dup.IsValid() {
		t.Error("duplicate timestamps should be invalid")
	}

	mismatch := Series{
		Times:  []time.Time{day(0)},
		Values: []float64{1, 2},
	}
	if mismatch.IsValid() {
		t.Error("length mismatch should be invalid")
	}
}

func TestAlign(t *testing.T) {
	a := Series{
		Times:  []time.Time{day(0), day(1), day(2), day(4)},
		Values: []float64{10, 11, 12, 14},
	}
	b := Series{
		Times:  []time.Time{day(1), day(2), day(3), day(4)},
		Values: []float64{21, 22, 23, 24},
	}

	alignedA, alignedB := Align(a, b)

	if alignedA.Len() != 3 || alignedB.Len() != 3 {
		t.Fatalf("aligned length = %d/%d, want 3", alignedA.Len(), alignedB.Len())
	}
	wantA := []float64{11, 12, 14}
	wantB := []float64{21, 22, 24}
	for i := range wantA {
		if alignedA.Values[i] != wantA[i] {
			t.Errorf("alignedA[%d] = %f, want %f", i, alignedA.Values[i], wantA[i])
		}
		if alignedB.Values[i] != wantB[i] {
			t.Errorf("alignedB[%d] = %f, want %f", i, alignedB.Values[i], wantB[i])
		}
		if !alignedA.Times[i].Equal(alignedB.Times[i]) {
			t.Errorf("timestamps diverge at %d", i)
		}
	}

	// Inputs untouched
	if a.Len() != 4 || b.Len() != 4 {
		t.Error("Align must not mutate its inputs")
	}
}

func TestAlign_NoOverlap(t *testing.T) {
	a := Series{Times: []time.Time{day(0)}, Values: []float64{1}}
	b := Series{Times: []time.Time{day(1)}, Values: []float64{2}}

	alignedA, alignedB := Align(a, b)
	if alignedA.Len() != 0 || alignedB.Len() != 0 {
		t.Error("disjoint indexes should align to empty series")
	}
}
