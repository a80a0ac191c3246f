// internal/storage/cache/prices_test.go
package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/statarb/internal/core"
)

// countingProvider records how many times it is hit
type countingProvider struct {
	series core.Series
	err    error
	calls  int
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	c.calls++
	if c.err != nil {
		return core.Series{}, c.err
	}
	return c.series, nil
}

func sampleSeries(symbol string, n int) core.Series {
	s := core.Series{Symbol: symbol}
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Times = append(s.Times, t0.AddDate(0, 0, i))
		s.Values = append(s.Values, 100+float64(i))
	}
	return s
}

func TestPrices_CacheMissThenHit(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	src := &countingProvider{series: sampleSeries("KO", 10)}
	p := NewPrices(fs, src, nil)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 10)

	first, err := p.FetchDaily(ctx, "KO", start, end)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := p.FetchDaily(ctx, "KO", start, end)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if src.calls != 1 {
		t.Errorf("provider hit %d times, want 1", src.calls)
	}
	if first.Len() != second.Len() || first.Values[3] != second.Values[3] {
		t.Error("cached series differs from fetched series")
	}
}

func TestPrices_DistinctRangesAreDistinctEntries(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	src := &countingProvider{series: sampleSeries("KO", 10)}
	p := NewPrices(fs, src, nil)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p.FetchDaily(ctx, "KO", start, start.AddDate(0, 0, 10))
	p.FetchDaily(ctx, "KO", start, start.AddDate(0, 0, 20))

	if src.calls != 2 {
		t.Errorf("provider hit %d times, want 2 for different ranges", src.calls)
	}
}

func TestPrices_CorruptEntryRefetches(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	src := &countingProvider{series: sampleSeries("KO", 5)}
	p := NewPrices(fs, src, nil)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	fs.Write(ctx, seriesKey("KO", start, end), []byte("{not json"))

	s, err := p.FetchDaily(ctx, "KO", start, end)
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	if s.Len() != 5 {
		t.Errorf("len = %d, want 5 from refetch", s.Len())
	}
	if src.calls != 1 {
		t.Errorf("provider hit %d times, want 1", src.calls)
	}
}

func TestPrices_ProviderErrorPassesThrough(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	src := &countingProvider{err: errors.New("rate limited")}
	p := NewPrices(fs, src, nil)

	_, err := p.FetchDaily(context.Background(), "KO", time.Now().AddDate(0, -1, 0), time.Now())
	if err == nil {
		t.Fatal("expected provider error to pass through")
	}
}

type fakeRecorder struct {
	lookups map[string]int
	fetches map[string]int
}

func (f *fakeRecorder) RecordCacheLookup(outcome string) { f.lookups[outcome]++ }
func (f *fakeRecorder) RecordFetch(provider, status string) {
	f.fetches[provider+"/"+status]++
}

func TestPrices_Recorder(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	src := &countingProvider{series: sampleSeries("KO", 5)}
	rec := &fakeRecorder{lookups: map[string]int{}, fetches: map[string]int{}}
	p := NewPrices(fs, src, nil).WithRecorder(rec)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	p.FetchDaily(ctx, "KO", start, end)
	p.FetchDaily(ctx, "KO", start, end)

	if rec.lookups["miss"] != 1 || rec.lookups["hit"] != 1 {
		t.Errorf("lookups = %v, want one miss then one hit", rec.lookups)
	}
	if rec.fetches["counting/ok"] != 1 {
		t.Errorf("fetches = %v, want one ok fetch", rec.fetches)
	}
}

func TestPrices_Purge(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	src := &countingProvider{series: sampleSeries("KO", 5)}
	p := NewPrices(fs, src, nil)

	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.FetchDaily(ctx, "KO", start, start.AddDate(0, 0, 5))
	p.FetchDaily(ctx, "KO", start, start.AddDate(0, 0, 9))

	removed, err := p.Purge(ctx, "KO")
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	p.FetchDaily(ctx, "KO", start, start.AddDate(0, 0, 5))
	if src.calls != 3 {
		t.Errorf("provider hit %d times, want 3 after purge", src.calls)
	}
}
