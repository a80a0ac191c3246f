// internal/storage/cache/prices.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/statarb/internal/collector"
	"github.com/newthinker/statarb/internal/core"
)

// Recorder receives cache and fetch outcomes, typically backed by the
// metrics registry. A nil Recorder disables recording.
type Recorder interface {
	RecordCacheLookup(outcome string)
	RecordFetch(provider, status string)
}

// Prices is a read-through price cache. Fetches go to the underlying
// provider only on a miss; cache failures degrade to a direct fetch,
// never to an error.
type Prices struct {
	store    Storage
	provider collector.Provider
	log      *zap.Logger
	rec      Recorder
}

// NewPrices wraps a provider with a cache backend
func NewPrices(store Storage, provider collector.Provider, log *zap.Logger) *Prices {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prices{store: store, provider: provider, log: log}
}

// WithRecorder attaches an outcome recorder and returns the cache.
func (p *Prices) WithRecorder(rec Recorder) *Prices {
	p.rec = rec
	return p
}

func (p *Prices) record(fn func(Recorder)) {
	if p.rec != nil {
		fn(p.rec)
	}
}

func (p *Prices) Name() string {
	return p.provider.Name() + "+cache"
}

func seriesKey(symbol string, start, end time.Time) string {
	return fmt.Sprintf("adjclose_%s_%s_%s.json",
		symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// FetchDaily returns the cached series for the exact symbol and date
// range, fetching and storing it on a miss. A cached entry that fails
// to decode is treated as a miss and overwritten.
func (p *Prices) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	key := seriesKey(symbol, start, end)

	if data, err := p.store.Read(ctx, key); err == nil {
		var s core.Series
		if err := json.Unmarshal(data, &s); err == nil && s.IsValid() {
			p.log.Debug("price cache hit", zap.String("key", key), zap.Int("bars", s.Len()))
			p.record(func(r Recorder) { r.RecordCacheLookup("hit") })
			return s, nil
		}
		p.log.Warn("corrupt cache entry, refetching", zap.String("key", key))
	}
	p.record(func(r Recorder) { r.RecordCacheLookup("miss") })

	s, err := p.provider.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		p.record(func(r Recorder) { r.RecordFetch(p.provider.Name(), "error") })
		return core.Series{}, err
	}
	p.record(func(r Recorder) { r.RecordFetch(p.provider.Name(), "ok") })

	if data, err := json.Marshal(s); err == nil {
		if err := p.store.Write(ctx, key, data); err != nil {
			// Best effort; a cache write failure must not fail the fetch
			p.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return s, nil
}

// Purge removes all cached entries for a symbol. Keys are flat, so
// listing happens at the root and filters on the symbol prefix.
func (p *Prices) Purge(ctx context.Context, symbol string) (int, error) {
	keys, err := p.store.List(ctx, "")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, "adjclose_"+symbol+"_") {
			continue
		}
		if err := p.store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
