package simulate

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"transitsim/internal/distribution"
	"transitsim/internal/engine"
)

const (
	maxResamples          = 10
	degenerateFallbackMin = 10.0
	implausibleGapMin     = 1440.0 // larger than a day
	minHold               = 1e-4
)

// arrivalGeneratorLoop samples the active interarrival rule for its
// station and spawns a Passenger after each gap (spec §4.4). When no rule
// covers the current time it holds(1) and retries, producing
// time-inhomogeneous arrivals driven purely by whichever slot's
// distribution is active.
func arrivalGeneratorLoop(sim *Simulator, st *station, rng *rand.Rand) func(proc *engine.Proc) {
	return func(proc *engine.Proc) {
		nextID := 0
		for {
			t := proc.Now()
			rule, ok := sim.cfg.Interarrival.Active(st.Name, t)
			if !ok {
				proc.Hold(1)
				continue
			}
			d := rule.Spec.Bind(rng)
			w := d.Sample()
			if rule.Spec.Family != distribution.NoArrival {
				w = sampleWithResample(d)
				if invalidGap(w) {
					sim.log(t, "ArrivalGenerator", fmt.Sprintf("%s: degenerate interarrival sample, falling back to %.1f min", st.Name, degenerateFallbackMin))
					w = degenerateFallbackMin
				}
				w = math.Max(w, minHold)
			}
			proc.Hold(w)

			if rule.Spec.Family == distribution.NoArrival {
				continue
			}
			nextID++
			p := &passenger{ID: sim.nextPassengerID(), Origin: st.Name}
			sim.sched.Spawn(fmt.Sprintf("passenger-%s-%d", st.Name, nextID), passengerLoop(sim, st, p))
		}
	}
}

func sampleWithResample(d distribution.Distribution) float64 {
	w := d.Sample()
	for i := 0; i < maxResamples && invalidGap(w); i++ {
		w = d.Sample()
	}
	return w
}

func invalidGap(w float64) bool {
	return math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 || w > implausibleGapMin
}
