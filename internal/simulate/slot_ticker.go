package simulate

import (
	"fmt"

	"transitsim/internal/engine"
)

// slotTickerLoop advances one slot boundary at a time for the life of the
// run (spec §4.7). Slot buckets are pre-allocated by the metrics
// aggregator at construction, so ensureSlot here is idempotent bookkeeping
// rather than first-touch allocation; its real job is to guarantee a log
// line exists for every slot even ones no station or route ever touches.
func slotTickerLoop(sim *Simulator) func(proc *engine.Proc) {
	return func(proc *engine.Proc) {
		step := float64(sim.cfg.TimeCtx.SlotLength)
		for idx := 0; idx < sim.cfg.TimeCtx.NumSlots; idx++ {
			sim.metrics.ensureSlot(idx)
			sim.log(proc.Now(), "SlotTicker", fmt.Sprintf("entering slot %s", sim.cfg.TimeCtx.SlotLabel(idx)))
			proc.Hold(step)
		}
	}
}
