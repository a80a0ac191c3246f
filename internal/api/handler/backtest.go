// internal/api/handler/backtest.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/statarb/internal/api/job"
	"github.com/newthinker/statarb/internal/api/response"
	"github.com/newthinker/statarb/internal/backtest"
	"github.com/newthinker/statarb/internal/core"
	"github.com/newthinker/statarb/internal/metrics"
)

const backtestTimeout = 5 * time.Minute

// BacktestRequest is the request body for starting a pair backtest.
// Omitted parameter fields fall back to the server defaults.
type BacktestRequest struct {
	SymbolA string `json:"symbol_a"`
	SymbolB string `json:"symbol_b"`
	Start   string `json:"start"`
	End     string `json:"end"`

	Beta         *float64 `json:"beta,omitempty"`
	Lookback     *int     `json:"lookback,omitempty"`
	ZIn          *float64 `json:"z_in,omitempty"`
	ZOut         *float64 `json:"z_out,omitempty"`
	Stop         *float64 `json:"stop,omitempty"`
	TakeProfit   *float64 `json:"take_profit,omitempty"`
	ConfirmDelta *float64 `json:"confirm_delta,omitempty"`
	CostBps      *float64 `json:"cost_bps,omitempty"`
}

// BacktestHandler handles pair backtest API requests.
type BacktestHandler struct {
	jobStore   *job.Store
	backtester *backtest.Backtester
	defaults   backtest.Params
	registry   *metrics.Registry
	log        *zap.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(
	jobStore *job.Store,
	backtester *backtest.Backtester,
	defaults backtest.Params,
	registry *metrics.Registry,
	log *zap.Logger,
) *BacktestHandler {
	return &BacktestHandler{
		jobStore:   jobStore,
		backtester: backtester,
		defaults:   defaults,
		registry:   registry,
		log:        log,
	}
}

// params merges request overrides into the server defaults.
func (req *BacktestRequest) params(defaults backtest.Params) backtest.Params {
	p := defaults
	if req.Lookback != nil {
		p.Lookback = *req.Lookback
	}
	if req.ZIn != nil {
		p.ZIn = *req.ZIn
	}
	if req.ZOut != nil {
		p.ZOut = *req.ZOut
	}
	if req.Stop != nil {
		p.Stop = *req.Stop
	}
	if req.TakeProfit != nil {
		p.TakeProfit = *req.TakeProfit
		p.TakeProfitEnabled = *req.TakeProfit > 0
	}
	if req.ConfirmDelta != nil {
		p.ConfirmDelta = *req.ConfirmDelta
	}
	if req.CostBps != nil {
		p.CostBps = *req.CostBps
	}
	return p
}

// Create starts a new backtest job.
func (h *BacktestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if req.SymbolA == "" || req.SymbolB == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, errors.New("symbol_a and symbol_b are required")))
		return
	}

	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	end, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	p := req.params(h.defaults)
	if err := p.Validate(); err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	breq := backtest.Request{
		SymbolA: req.SymbolA,
		SymbolB: req.SymbolB,
		Start:   start,
		End:     end,
		Params:  p,
	}
	if req.Beta != nil {
		breq.Beta = *req.Beta
		breq.BetaKnown = true
	}

	j := h.jobStore.Create("backtest")
	jobID := j.ID
	status := j.Status

	go h.runBacktest(jobID, breq)

	response.JSON(w, http.StatusAccepted, map[string]any{
		"job_id": jobID,
		"status": status,
	})
}

// runBacktest executes the backtest and updates job status.
func (h *BacktestHandler) runBacktest(jobID string, req backtest.Request) {
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusRunning
	})
	h.registry.SetJobsActive(h.jobStore.ActiveCount())

	ctx, cancel := context.WithTimeout(context.Background(), backtestTimeout)
	defer cancel()

	started := time.Now()
	result, err := h.backtester.RunPair(ctx, req)
	elapsed := time.Since(started).Seconds()

	if err != nil {
		h.log.Warn("backtest job failed",
			zap.String("job_id", jobID),
			zap.String("pair", req.SymbolA+"/"+req.SymbolB),
			zap.Error(err))
		h.registry.RecordBacktest("error", elapsed)
		h.jobStore.Update(jobID, func(j *job.Job) {
			j.Status = job.StatusFailed
			j.Error = core.WrapError(core.ErrBacktestFailed, err)
		})
		h.registry.SetJobsActive(h.jobStore.ActiveCount())
		return
	}

	h.registry.RecordBacktest("ok", elapsed)
	h.jobStore.Update(jobID, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Result = summarize(result)
	})
	h.registry.SetJobsActive(h.jobStore.ActiveCount())
}

// summarize flattens a result into the JSON shape returned to clients.
// NaN is not representable in JSON, so the z series replaces warm-up
// values with nulls.
func summarize(res *backtest.Result) map[string]any {
	z := make([]*float64, len(res.Z))
	for i, v := range res.Z {
		if v == v { // not NaN
			zv := v
			z[i] = &zv
		}
	}

	dates := make([]string, len(res.Times))
	for i, ts := range res.Times {
		dates[i] = ts.Format("2006-01-02")
	}

	return map[string]any{
		"symbol_a": res.SymbolA,
		"symbol_b": res.SymbolB,
		"beta":     res.Beta,
		"bars":     res.Len(),
		"stats": map[string]float64{
			"ann_return":   res.Stats.AnnReturn,
			"ann_vol":      res.Stats.AnnVol,
			"sharpe":       res.Stats.Sharpe,
			"max_drawdown": res.Stats.MaxDrawdown,
		},
		"dates":    dates,
		"equity":   res.Equity,
		"ret":      res.Ret,
		"z":        z,
		"y_pos":    res.YPos,
		"x_pos":    res.XPos,
		"turnover": res.Turnover,
	}
}

// GetStatus returns the status of a backtest job.
func (h *BacktestHandler) GetStatus(w http.ResponseWriter, r *http.Request, jobID string) {
	j, err := h.jobStore.Get(jobID)
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	resp := map[string]any{
		"job_id": j.ID,
		"status": j.Status,
	}

	if j.Status == job.StatusComplete {
		resp["result"] = j.Result
	}
	if j.Status == job.StatusFailed && j.Error != nil {
		resp["error"] = map[string]string{
			"code":    j.Error.Code,
			"message": j.Error.Message,
		}
	}

	response.JSON(w, http.StatusOK, resp)
}
