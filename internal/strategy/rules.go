package strategy

import (
	"fmt"

	"github.com/newthinker/statarb/internal/core"
)

// Rules holds the z-score thresholds that govern entries and exits.
//
// Entry fires after |z| crosses ZIn, at the earliest one bar later;
// exit fires when |z| falls back to ZOut; Stop flattens unconditionally
// when |z| blows out past it. Take-profit is optional and carried as an
// explicit enabled flag rather than a sentinel value.
type Rules struct {
	ZIn  float64
	ZOut float64
	Stop float64

	TakeProfit        float64
	TakeProfitEnabled bool

	// ConfirmDelta requires z to reverse toward zero by at least this
	// amount from the recorded crossing value before entering. Zero
	// enters on the bar after the cross unconditionally.
	ConfirmDelta float64
}

// Validate checks threshold ordering before any processing happens.
func (r Rules) Validate() error {
	if r.ZIn <= 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("z_in must be positive, got %g", r.ZIn))
	}
	if r.ZOut < 0 || r.ZOut >= r.ZIn {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("z_out must be in [0, z_in), got %g", r.ZOut))
	}
	if r.Stop <= r.ZIn {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("stop must exceed z_in, got %g", r.Stop))
	}
	if r.TakeProfitEnabled && (r.TakeProfit < 0 || r.TakeProfit > r.ZOut) {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("take_profit must be in [0, z_out], got %g", r.TakeProfit))
	}
	if r.ConfirmDelta < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("confirm_delta must be non-negative, got %g", r.ConfirmDelta))
	}
	return nil
}
