// internal/api/handler/diagnose.go
package handler

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/newthinker/statarb/internal/api/response"
	"github.com/newthinker/statarb/internal/core"
)

// Diagnose runs pair diagnostics synchronously. Diagnostics are cheap
// relative to a full backtest, so there is no job indirection here.
func (h *BacktestHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbolA := q.Get("symbol_a")
	symbolB := q.Get("symbol_b")
	if symbolA == "" || symbolB == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, errors.New("symbol_a and symbol_b are required")))
		return
	}

	start, err := time.Parse("2006-01-02", q.Get("start"))
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}
	end, err := time.Parse("2006-01-02", q.Get("end"))
	if err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	diag, err := h.backtester.Diagnose(r.Context(), symbolA, symbolB, start, end)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoData) || errors.Is(err, core.ErrInsufficientData) {
			status = http.StatusUnprocessableEntity
		}
		response.Error(w, status, err)
		return
	}

	// A non-reverting spread has an infinite half-life, which JSON
	// cannot carry; send null instead.
	var halfLife *float64
	if !math.IsInf(diag.HalfLife, 0) && !math.IsNaN(diag.HalfLife) {
		halfLife = &diag.HalfLife
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol_a":       diag.SymbolA,
		"symbol_b":       diag.SymbolB,
		"observations":   diag.Observations,
		"beta":           diag.Beta,
		"adf_p_value":    diag.ADFPValue,
		"half_life_days": halfLife,
	})
}
