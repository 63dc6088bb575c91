// Package simulate implements the Discrete-Event Transit Simulator: the
// Station, Passenger, Bus, ArrivalGenerator, and SlotTicker processes
// running on the engine package's cooperative scheduler, and the
// MetricsAggregator that turns their activity into the external result
// shape.
package simulate

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"transitsim/internal/config"
	"transitsim/internal/engine"
	"transitsim/internal/scenario"
)

// routeState is one route's mutable fleet-control state (spec §3 "Fleet
// Control").
type routeState struct {
	cfg       *scenario.RouteConfig
	activeBus int
	seq       int
}

// Simulator owns every process, station, and the metrics store for one
// run. It is built once from a resolved SimConfig and run to completion.
type Simulator struct {
	cfg   *scenario.SimConfig
	dwell config.DwellConfig

	sched    *engine.Scheduler
	stations map[string]*station
	routes   map[string]*routeState
	routeIDs []string

	metrics *metricsAggregator
	logs    *logRecorder
	rng     *rand.Rand

	passengerSeq int
}

// New builds a Simulator ready to Run, wiring one Station per configured
// station, one ArrivalGenerator per station, one Bus process per
// scheduled departure, and a SlotTicker.
func New(cfg *scenario.SimConfig, appCfg *config.Config, logger *logrus.Entry) *Simulator {
	sched := engine.New()
	sim := &Simulator{
		cfg:      cfg,
		dwell:    appCfg.Dwell,
		sched:    sched,
		stations: make(map[string]*station, len(cfg.Stations)),
		routes:   make(map[string]*routeState, len(cfg.Routes)),
		rng:      rand.New(rand.NewSource(uint64(cfg.Seed))),
		logs:     newLogRecorder(cfg.TimeCtx, logger),
	}
	sim.log(0, "Simulator", fmt.Sprintf("seed=%d", cfg.Seed))

	for _, name := range cfg.Stations {
		sim.stations[name] = newStation(name, sched)
	}

	for _, rc := range cfg.Routes {
		sim.routes[rc.RouteID] = &routeState{cfg: rc}
		sim.routeIDs = append(sim.routeIDs, rc.RouteID)
	}

	sim.metrics = newMetricsAggregator(cfg.TimeCtx, cfg.Stations, sim.routeIDs, appCfg.Metrics.SlotSentinel, appCfg.Metrics.GlobalDefault)

	for _, name := range cfg.Stations {
		st := sim.stations[name]
		sched.Spawn("arrival-"+st.Name, arrivalGeneratorLoop(sim, st, sim.rng))
	}

	for _, rc := range cfg.Routes {
		rs := sim.routes[rc.RouteID]
		for i, depart := range rc.Schedule {
			sched.Spawn("bus-"+rc.RouteID+"-"+strconv.Itoa(i), busLoop(sim, rs, depart))
		}
	}

	sched.Spawn("slot-ticker", slotTickerLoop(sim))

	return sim
}

// Run drives the scheduler to the window's end and renders the external
// result shape.
func (sim *Simulator) Run() *scenario.SimulationResult {
	till := float64(sim.cfg.TimeCtx.SimDuration)
	sim.sched.Run(till)
	sim.metrics.close(till)

	return &scenario.SimulationResult{
		ResultSummary: sim.metrics.Summary(),
		SlotResults:   sim.metrics.SlotResults(),
		Logs:          sim.logs.entries,
	}
}

func (sim *Simulator) log(t float64, component, message string) {
	sim.logs.log(t, component, message)
}

func (sim *Simulator) nextPassengerID() int {
	sim.passengerSeq++
	return sim.passengerSeq
}
