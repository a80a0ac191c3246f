package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/newthinker/statarb/internal/collector"
	"github.com/newthinker/statarb/internal/core"
)

const (
	baseURL        = "https://query1.finance.yahoo.com/v8/finance/chart"
	maxRetryElapse = 30 * time.Second
)

// validSymbol matches stock symbols like KO, PEP, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9^.\-]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo fetches daily adjusted closes from the Yahoo Finance chart API.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// New creates a new Yahoo provider
func New() *Yahoo {
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// FetchDaily fetches daily adjusted close history for one symbol.
// Transient failures (network errors, 5xx, 429) are retried with
// exponential backoff; client errors are not.
func (y *Yahoo) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error) {
	if err := validateSymbol(symbol); err != nil {
		return core.Series{}, err
	}

	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d&includeAdjustedClose=true",
		y.baseURL, symbol, start.Unix(), end.Unix())

	var result chartResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := y.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status: %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		return json.NewDecoder(resp.Body).Decode(&result)
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = maxRetryElapse
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return core.Series{}, fmt.Errorf("fetching history: %w", err)
	}

	if result.Chart.Error != nil {
		return core.Series{}, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return core.Series{}, fmt.Errorf("no data for symbol: %s", symbol)
	}

	return parseSeries(symbol, result.Chart.Result[0])
}

// parseSeries extracts adjusted closes, falling back to raw closes
// when the adjclose indicator is absent. Bars with no value are
// skipped rather than filled.
func parseSeries(symbol string, r chartResult) (core.Series, error) {
	if len(r.Indicators.Quote) == 0 {
		return core.Series{}, fmt.Errorf("no quote data for symbol: %s", symbol)
	}

	closes := r.Indicators.Quote[0].Close
	if len(r.Indicators.Adjclose) > 0 && len(r.Indicators.Adjclose[0].Adjclose) == len(r.Timestamp) {
		closes = r.Indicators.Adjclose[0].Adjclose
	}
	if len(closes) != len(r.Timestamp) {
		return core.Series{}, fmt.Errorf("malformed response for symbol: %s", symbol)
	}

	s := core.Series{Symbol: symbol}
	for i, ts := range r.Timestamp {
		if closes[i] == nil {
			continue
		}
		s.Times = append(s.Times, time.Unix(int64(ts), 0).UTC())
		s.Values = append(s.Values, *closes[i])
	}
	if len(s.Values) == 0 {
		return core.Series{}, fmt.Errorf("no usable bars for symbol: %s", symbol)
	}
	return collector.Clean(s), nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote    []quoteIndicator   `json:"quote"`
	Adjclose []adjcloseIndicator `json:"adjclose"`
}

type quoteIndicator struct {
	Close []*float64 `json:"close"`
}

type adjcloseIndicator struct {
	Adjclose []*float64 `json:"adjclose"`
}
