package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"transitsim/internal/distribution"
	"transitsim/internal/simerr"
	"transitsim/internal/timectx"
)

// Map builds an immutable SimConfig from a decoded SimulationRequest,
// resolving route tables, demand rules, and unit conversions. seed is the
// explicit RNG seed to record and use; the request itself carries no
// seed, so the caller supplies one (the CLI derives one from the wall
// clock when none is configured).
func Map(req *SimulationRequest, seed int64) (*SimConfig, error) {
	if req.TimeSlot <= 0 {
		return nil, simerr.New(simerr.InvalidInput, "time_slot must be > 0")
	}
	tc, err := timectx.New(req.TimePeriod, req.TimeSlot)
	if err != nil {
		return nil, simerr.Wrap(simerr.InvalidInput, "invalid time_period/time_slot", err)
	}

	pairsByID := make(map[int]RoutePair, len(req.ConfigurationData.RoutePair))
	for _, p := range req.ConfigurationData.RoutePair {
		if _, dup := pairsByID[p.RoutePairID]; dup {
			return nil, simerr.New(simerr.InvalidInput, fmt.Sprintf("duplicated route_pair_id %d", p.RoutePairID))
		}
		pairsByID[p.RoutePairID] = p
	}

	interarrival := NewRuleTables()
	if err := fillRules(interarrival, tc, req.ConfigurationData.InterarrivalData); err != nil {
		return nil, err
	}
	alighting := NewRuleTables()
	if err := fillRules(alighting, tc, req.ConfigurationData.AlightingData); err != nil {
		return nil, err
	}

	stations := make([]string, 0, len(req.ConfigurationData.StationList))
	for _, s := range req.ConfigurationData.StationList {
		stations = append(stations, s.StationName)
	}

	routes := make([]*RouteConfig, 0, len(req.ScenarioData))
	for _, rd := range req.ScenarioData {
		rc, err := mapRoute(rd, pairsByID, tc)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rc)
	}

	return &SimConfig{
		TimeCtx:      tc,
		SlotLength:   req.TimeSlot,
		Stations:     stations,
		Routes:       routes,
		Interarrival: interarrival,
		Alighting:    alighting,
		Seed:         seed,
	}, nil
}

func fillRules(tables *RuleTables, tc *timectx.TimeContext, blocks []DemandBlock) error {
	for _, block := range blocks {
		t0, t1, err := tc.RangeToSim(block.TimeRange)
		if err != nil {
			return simerr.Wrap(simerr.InvalidInput, "invalid demand time_range", err)
		}
		for _, rec := range block.Records {
			spec, err := distribution.Parse(rec.Distribution, rec.ArgumentList)
			if err != nil {
				return simerr.Wrap(simerr.InvalidDistribution, "invalid demand rule distribution", err)
			}
			tables.Add(rec.Station, t0, t1, spec)
		}
	}
	return nil
}

// mapRoute resolves one scenario route: decodes route_order into a station
// sequence, assembles its travel-time/distance tables by the
// max(distance/speed, prorated share of avg trip time, scheduled time)
// rule, and converts its schedule and fleet knobs into sim units.
func mapRoute(rd ScenarioRoute, pairsByID map[int]RoutePair, tc *timectx.TimeContext) (*RouteConfig, error) {
	ids, err := parseRouteOrder(rd.RouteOrder)
	if err != nil {
		return nil, simerr.Wrap(simerr.InvalidInput, fmt.Sprintf("route %d: malformed route_order", rd.RouteID), err)
	}
	if len(ids) == 0 {
		return nil, simerr.New(simerr.InvalidInput, fmt.Sprintf("route %d: route_order is empty", rd.RouteID))
	}

	pairs := make([]RoutePair, 0, len(ids))
	for _, id := range ids {
		p, ok := pairsByID[id]
		if !ok {
			return nil, simerr.New(simerr.MissingTable, fmt.Sprintf("route %d: no route_pair with id %d", rd.RouteID, id))
		}
		pairs = append(pairs, p)
	}

	stations := make([]string, 0, len(pairs)+1)
	stations = append(stations, pairs[0].FstStation)
	for _, p := range pairs {
		stations = append(stations, p.SndStation)
	}

	totalDistM := 0.0
	for _, p := range pairs {
		totalDistM += p.Distance
	}

	speedMS := rd.BusInformation.BusSpeed * 1000.0 / 3600.0
	avgTravelTimeSec := rd.BusInformation.AvgTravelTime * 60.0
	if speedMS <= 0 {
		return nil, simerr.New(simerr.InvalidInput, fmt.Sprintf("route %d: bus_speed must be > 0", rd.RouteID))
	}

	travelMin := make(map[SegmentKey]float64, len(pairs))
	travelDist := make(map[SegmentKey]float64, len(pairs))
	for _, p := range pairs {
		key := SegmentKey{From: p.FstStation, To: p.SndStation}
		idealSec := p.TravelTime * 60.0
		distOverSpeedSec := p.Distance / speedMS
		proratedSec := 0.0
		if totalDistM > 0 {
			proratedSec = p.Distance / totalDistM * avgTravelTimeSec
		}
		segSec := maxOf(idealSec, distOverSpeedSec, proratedSec)
		travelMin[key] = segSec / 60.0
		travelDist[key] = p.Distance
	}

	schedule := make([]float64, 0, len(rd.RouteSchedule))
	for _, dep := range rd.RouteSchedule {
		minutes, err := timectx.ParseHourMin(dep.DepartureTime)
		if err != nil {
			return nil, simerr.Wrap(simerr.InvalidInput, fmt.Sprintf("route %d: malformed departure_time", rd.RouteID), err)
		}
		schedule = append(schedule, tc.ToSim(minutes))
	}

	return &RouteConfig{
		RouteID:    strconv.Itoa(rd.RouteID),
		Stations:   stations,
		TravelMin:  travelMin,
		TravelDist: travelDist,
		Schedule:   schedule,
		MaxBus:     rd.BusInformation.MaxBus,
		MaxDistM:   rd.BusInformation.MaxDistance * 1000.0,
		Capacity:   rd.BusInformation.BusCapacity,
	}, nil
}

func parseRouteOrder(order string) ([]int, error) {
	parts := strings.Split(order, "$")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("malformed route_pair id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func maxOf(values ...float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
