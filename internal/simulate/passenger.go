package simulate

import (
	"fmt"

	"transitsim/internal/engine"
)

type passengerState string

const (
	stateQueued passengerState = "queued"
	stateOnBus  passengerState = "on_bus"
	stateExited passengerState = "exited"
)

// passenger is created by an ArrivalGenerator, boarded by a Bus, and
// exits when the Bus activates it during an alighting step or a forced
// stop (spec §4.5).
type passenger struct {
	ID          int
	Origin      string
	ArrivalTime float64
	RouteID     string // assigned once boarded
	State       passengerState
	proc        *engine.Proc
}

// passengerLoop records arrival time, enqueues at the origin station, and
// blocks until a Bus activates it. The coroutine does nothing while
// on_bus: a Bus mutates the passenger's State and onboard-list membership
// directly between its own suspension points, which is safe under the
// scheduler's single-threaded cooperative semantics.
func passengerLoop(sim *Simulator, st *station, p *passenger) func(proc *engine.Proc) {
	return func(proc *engine.Proc) {
		p.proc = proc
		p.ArrivalTime = proc.Now()
		p.State = stateQueued
		proc.ToStore(st.Queue, p)
		sim.metrics.tallyQueue(st.Name, proc.Now(), float64(st.Queue.Len()))
		proc.Passivate()
		p.State = stateExited
		sim.log(proc.Now(), "Passenger", passengerExitMessage(p))
	}
}

func passengerExitMessage(p *passenger) string {
	return fmt.Sprintf("passenger %d exited on route %s", p.ID, p.RouteID)
}
