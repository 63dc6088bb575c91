package simulate

import (
	"fmt"
	"math"

	"transitsim/internal/engine"
	"transitsim/internal/scenario"
)

// busLoop implements one scheduled departure (spec §4.6). It holds until
// its departure time, checks the route's admission cap, then walks the
// route station by station, alighting, dwelling, boarding, and traveling
// until it either reaches the final stop or exhausts its distance budget.
func busLoop(sim *Simulator, rs *routeState, departSim float64) func(proc *engine.Proc) {
	return func(proc *engine.Proc) {
		if wait := departSim - proc.Now(); wait > 0 {
			proc.Hold(wait)
		}

		if rs.activeBus >= rs.cfg.MaxBus {
			sim.log(proc.Now(), "Bus", fmt.Sprintf("route %s: departure at %.1f rejected, admission cap %d reached", rs.cfg.RouteID, proc.Now(), rs.cfg.MaxBus))
			return
		}

		rs.activeBus++
		rs.seq++
		busID := fmt.Sprintf("%s-#%d", rs.cfg.RouteID, rs.seq)
		sim.log(proc.Now(), "Bus", fmt.Sprintf("%s: departed", busID))

		stations := rs.cfg.Stations
		last := len(stations) - 1
		remainingDist := rs.cfg.MaxDistM

		var onBoard []*passenger
		var totalTravelTime, totalTravelDist float64

		for i := 0; i <= last; i++ {
			st := sim.stations[stations[i]]

			var alightCount int
			switch {
			case i == 0:
				alightCount = 0
			case i == last:
				alightCount = len(onBoard)
			default:
				if rule, ok := sim.cfg.Alighting.Active(stations[i], proc.Now()); ok {
					n := int(math.Floor(rule.Spec.Bind(sim.rng).Sample()))
					if n < 0 {
						n = 0
					}
					if n > len(onBoard) {
						n = len(onBoard)
					}
					alightCount = n
				}
			}

			if alightCount > 0 {
				alighting := onBoard[:alightCount]
				onBoard = onBoard[alightCount:]
				for _, p := range alighting {
					proc.Activate(p.proc)
				}
			}

			doorCycle := alightCount > 0 || (i < last && st.Queue.Len() > 0)

			if sim.dwell.Enabled && alightCount > 0 {
				proc.Hold(float64(alightCount) * sim.dwell.AlightTimeMin)
			}
			if sim.dwell.Enabled && doorCycle {
				proc.Hold(sim.dwell.DoorOpenMin)
			}

			sim.metrics.tallyQueue(st.Name, proc.Now(), float64(st.Queue.Len()))
			if st.Queue.Len() > 0 {
				sim.metrics.tallyRouteQueue(rs.cfg.RouteID, proc.Now(), float64(st.Queue.Len()))
			}

			boarded := 0
			if i < last {
				for len(onBoard) < rs.cfg.Capacity && st.Queue.Len() > 0 {
					p := proc.FromStore(st.Queue).(*passenger)
					p.State = stateOnBus
					p.RouteID = rs.cfg.RouteID
					wait := proc.Now() - p.ArrivalTime
					sim.metrics.tallyBoarding(st.Name, rs.cfg.RouteID, proc.Now(), wait)
					onBoard = append(onBoard, p)
					boarded++
				}
				sim.metrics.tallyQueue(st.Name, proc.Now(), float64(st.Queue.Len()))
			}

			if sim.dwell.Enabled && boarded > 0 {
				proc.Hold(float64(boarded) * sim.dwell.BoardTimeMin)
			}
			if sim.dwell.Enabled && doorCycle {
				proc.Hold(sim.dwell.DoorCloseMin)
			}

			dwellTotal := 0.0
			if sim.dwell.Enabled {
				dwellTotal = float64(alightCount)*sim.dwell.AlightTimeMin + float64(boarded)*sim.dwell.BoardTimeMin
				if doorCycle {
					dwellTotal += sim.dwell.DoorOpenMin + sim.dwell.DoorCloseMin
				}
			}
			totalTravelTime += dwellTotal

			if i == last {
				break
			}

			next := stations[i+1]
			key := scenario.SegmentKey{From: stations[i], To: next}
			segTime := rs.cfg.TravelMin[key]
			segDist := rs.cfg.TravelDist[key]

			remainingDist -= segDist
			if remainingDist < 0 {
				for _, p := range onBoard {
					proc.Activate(p.proc)
				}
				onBoard = nil
				sim.log(proc.Now(), "Bus", fmt.Sprintf("%s: forced stop between %s and %s, distance budget exhausted", busID, stations[i], next))
				sim.metrics.tallyCompletedTrip(rs.cfg.RouteID, proc.Now(), totalTravelTime, totalTravelDist)
				rs.activeBus--
				return
			}

			util := float64(len(onBoard)) / float64(rs.cfg.Capacity)
			sim.metrics.tallyUtilization(rs.cfg.RouteID, proc.Now(), util, dwellTotal+segTime)

			totalTravelTime += segTime
			totalTravelDist += segDist
			proc.Hold(math.Max(segTime, minHold))
		}

		sim.log(proc.Now(), "Bus", fmt.Sprintf("%s: trip complete", busID))
		sim.metrics.tallyCompletedTrip(rs.cfg.RouteID, proc.Now(), totalTravelTime, totalTravelDist)
		rs.activeBus--
	}
}
