package simulate

import "transitsim/internal/engine"

// station holds a FIFO waiting queue with unbounded capacity, written by
// one ArrivalGenerator and read by any Bus serving it (spec §3 "Station").
type station struct {
	Name  string
	Queue *engine.Store
}

func newStation(name string, sched *engine.Scheduler) *station {
	return &station{Name: name, Queue: sched.NewStore()}
}
