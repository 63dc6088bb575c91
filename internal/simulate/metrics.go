package simulate

import (
	"transitsim/internal/scenario"
	"transitsim/internal/timectx"
)

// sampleMonitor is an unweighted running mean (spec §4.8 "sample
// monitors").
type sampleMonitor struct {
	sum float64
	n   int
}

func (m *sampleMonitor) tally(v float64) {
	m.sum += v
	m.n++
}

func (m *sampleMonitor) mean(sentinel float64) float64 {
	if m.n == 0 {
		return sentinel
	}
	return m.sum / float64(m.n)
}

func (m *sampleMonitor) empty() bool { return m.n == 0 }

// weightedMonitor computes Σv·w / Σw (spec §4.8 "weighted monitors").
type weightedMonitor struct {
	sumVW float64
	sumW  float64
}

func (m *weightedMonitor) tally(v, w float64) {
	if w <= 0 {
		return
	}
	m.sumVW += v * w
	m.sumW += w
}

func (m *weightedMonitor) mean(sentinel float64) float64 {
	if m.sumW == 0 {
		return sentinel
	}
	return m.sumVW / m.sumW
}

func (m *weightedMonitor) empty() bool { return m.sumW == 0 }

// levelMonitor treats each tally as a step change holding until the next
// tally or the monitor is closed at run end (spec §4.8 "level monitors").
type levelMonitor struct {
	haveLast  bool
	lastValue float64
	lastTime  float64
	sumVW     float64
	sumW      float64
}

func (m *levelMonitor) tally(v, t float64) {
	if m.haveLast && t > m.lastTime {
		dt := t - m.lastTime
		m.sumVW += m.lastValue * dt
		m.sumW += dt
	}
	m.lastValue = v
	m.lastTime = t
	m.haveLast = true
}

func (m *levelMonitor) close(t float64) {
	if m.haveLast && t > m.lastTime {
		m.sumVW += m.lastValue * (t - m.lastTime)
		m.sumW += t - m.lastTime
		m.lastTime = t
	}
}

func (m *levelMonitor) mean(sentinel float64) float64 {
	if m.sumW == 0 {
		return sentinel
	}
	return m.sumVW / m.sumW
}

func (m *levelMonitor) empty() bool { return m.sumW == 0 }

// countedSum is a plain sum/count arithmetic mean (spec §4.8 "counted
// sums", used for per-route queue).
type countedSum struct {
	sum float64
	n   int
}

func (c *countedSum) tally(v float64) {
	c.sum += v
	c.n++
}

func (c *countedSum) mean(sentinel float64) float64 {
	if c.n == 0 {
		return sentinel
	}
	return c.sum / float64(c.n)
}

// slotBucket is one time-slot's worth of per-station and per-route
// accumulators.
type slotBucket struct {
	stationWaiting map[string]*sampleMonitor
	stationQueue   map[string]*levelMonitor
	routeWaiting   map[string]*sampleMonitor
	routeUtil      map[string]*weightedMonitor
	routeTravel    map[string]*sampleMonitor // total_travel_time, per completed trip
	routeDist      map[string]*sampleMonitor // total_travel_dist, per completed trip
	routeQueue     map[string]*countedSum
	customersCount map[string]int
}

func newSlotBucket() *slotBucket {
	return &slotBucket{
		stationWaiting: make(map[string]*sampleMonitor),
		stationQueue:   make(map[string]*levelMonitor),
		routeWaiting:   make(map[string]*sampleMonitor),
		routeUtil:      make(map[string]*weightedMonitor),
		routeTravel:    make(map[string]*sampleMonitor),
		routeDist:      make(map[string]*sampleMonitor),
		routeQueue:     make(map[string]*countedSum),
		customersCount: make(map[string]int),
	}
}

func (b *slotBucket) station(station string) (*sampleMonitor, *levelMonitor) {
	sw, ok := b.stationWaiting[station]
	if !ok {
		sw = &sampleMonitor{}
		b.stationWaiting[station] = sw
	}
	sq, ok := b.stationQueue[station]
	if !ok {
		sq = &levelMonitor{}
		b.stationQueue[station] = sq
	}
	return sw, sq
}

func (b *slotBucket) route(routeID string) (*sampleMonitor, *weightedMonitor, *sampleMonitor, *sampleMonitor, *countedSum) {
	rw, ok := b.routeWaiting[routeID]
	if !ok {
		rw = &sampleMonitor{}
		b.routeWaiting[routeID] = rw
	}
	ru, ok := b.routeUtil[routeID]
	if !ok {
		ru = &weightedMonitor{}
		b.routeUtil[routeID] = ru
	}
	rt, ok := b.routeTravel[routeID]
	if !ok {
		rt = &sampleMonitor{}
		b.routeTravel[routeID] = rt
	}
	rd, ok := b.routeDist[routeID]
	if !ok {
		rd = &sampleMonitor{}
		b.routeDist[routeID] = rd
	}
	rq, ok := b.routeQueue[routeID]
	if !ok {
		rq = &countedSum{}
		b.routeQueue[routeID] = rq
	}
	return rw, ru, rt, rd, rq
}

// metricsAggregator is the slot-indexed collection of monitors and
// counters described in spec §4.8, proactively populated for every slot
// in the window so every slot is present in the output even if unused
// (spec §9 "Metrics slot creation").
type metricsAggregator struct {
	tc            *timectx.TimeContext
	slots         []*slotBucket
	routeIDs      []string
	stationNames  []string
	slotSentinel  float64
	globalDefault float64

	globalWaiting    sampleMonitor
	globalQueueMeans sampleMonitor // mean of non-empty per-(slot,station) queue means
	globalUtil       weightedMonitor
	globalTravel     sampleMonitor
	globalDist       sampleMonitor
}

func newMetricsAggregator(tc *timectx.TimeContext, stations []string, routeIDs []string, slotSentinel, globalDefault float64) *metricsAggregator {
	m := &metricsAggregator{
		tc:            tc,
		routeIDs:      routeIDs,
		stationNames:  stations,
		slotSentinel:  slotSentinel,
		globalDefault: globalDefault,
	}
	m.slots = make([]*slotBucket, tc.NumSlots)
	for i := range m.slots {
		m.slots[i] = newSlotBucket()
	}
	return m
}

func (m *metricsAggregator) ensureSlot(idx int) *slotBucket { return m.slots[idx] }

// tallyQueue records the current waiting-queue depth for station at simTime.
func (m *metricsAggregator) tallyQueue(station string, simTime float64, depth float64) {
	idx := m.tc.SlotIndex(simTime)
	_, sq := m.ensureSlot(idx).station(station)
	sq.tally(depth, simTime)
}

// tallyBoarding records one passenger boarding at station on route at
// simTime, with the wait they experienced.
func (m *metricsAggregator) tallyBoarding(station, routeID string, simTime, wait float64) {
	idx := m.tc.SlotIndex(simTime)
	sw, _ := m.ensureSlot(idx).station(station)
	sw.tally(wait)
	rw, _, _, _, _ := m.ensureSlot(idx).route(routeID)
	rw.tally(wait)
	m.ensureSlot(idx).customersCount[routeID]++
	m.globalWaiting.tally(wait)
}

// tallyRouteQueue records a non-empty queue sample attributed to a route's
// stop (spec §4.6.d: "if > 0, accumulate into route_queue running
// sum/count").
func (m *metricsAggregator) tallyRouteQueue(routeID string, simTime float64, depth float64) {
	if depth <= 0 {
		return
	}
	idx := m.tc.SlotIndex(simTime)
	_, _, _, _, rq := m.ensureSlot(idx).route(routeID)
	rq.tally(depth)
}

// tallyUtilization records a segment's occupancy weighted by its duration.
func (m *metricsAggregator) tallyUtilization(routeID string, simTime, util, weight float64) {
	idx := m.tc.SlotIndex(simTime)
	_, ru, _, _, _ := m.ensureSlot(idx).route(routeID)
	ru.tally(util, weight)
	m.globalUtil.tally(util, weight)
}

// tallyCompletedTrip records a bus trip's totals. It is called both for a
// trip that reaches its final stop and, with the partial totals, for a
// trip ended by a forced stop.
func (m *metricsAggregator) tallyCompletedTrip(routeID string, simTime, travelTime, travelDist float64) {
	idx := m.tc.SlotIndex(simTime)
	_, _, rt, rd, _ := m.ensureSlot(idx).route(routeID)
	rt.tally(travelTime)
	rd.tally(travelDist)
	m.globalTravel.tally(travelTime)
	m.globalDist.tally(travelDist)
}

// close finalizes every level monitor at the end of the simulation window
// so the last step's value is weighted correctly.
func (m *metricsAggregator) close(till float64) {
	for _, bucket := range m.slots {
		for _, sq := range bucket.stationQueue {
			sq.close(till)
		}
	}
	for _, station := range m.stationNames {
		for _, bucket := range m.slots {
			if sq, ok := bucket.stationQueue[station]; ok && !sq.empty() {
				m.globalQueueMeans.tally(sq.mean(m.slotSentinel))
			}
		}
	}
}

// Summary renders the five global result fields (spec §4.8).
func (m *metricsAggregator) Summary() scenario.ResultSummary {
	return scenario.ResultSummary{
		AverageWaitingTime:    m.globalWaiting.mean(m.globalDefault),
		AverageQueueLength:    m.globalQueueMeans.mean(m.globalDefault),
		AverageUtilization:    m.globalUtil.mean(m.globalDefault),
		AverageTravelTime:     m.globalTravel.mean(m.globalDefault),
		AverageTravelDistance: m.globalDist.mean(m.globalDefault),
	}
}

// SlotResults renders one row per slot in the window, in order.
func (m *metricsAggregator) SlotResults() []scenario.SlotResult {
	out := make([]scenario.SlotResult, 0, len(m.slots))
	for idx, bucket := range m.slots {
		var totalWaiting, totalQueue sampleMonitor
		stationRows := make([]scenario.StationRow, 0, len(m.stationNames))
		for _, station := range m.stationNames {
			sw, sq := bucket.station(station)
			row := scenario.StationRow{
				Station: station,
				Waiting: sw.mean(m.slotSentinel),
				Queue:   sq.mean(m.slotSentinel),
			}
			stationRows = append(stationRows, row)
			if !sw.empty() {
				totalWaiting.tally(row.Waiting)
			}
			if !sq.empty() {
				totalQueue.tally(row.Queue)
			}
		}

		routeRows := make([]scenario.RouteRow, 0, len(m.routeIDs))
		for _, routeID := range m.routeIDs {
			rw, ru, rt, rd, rq := bucket.route(routeID)
			routeRows = append(routeRows, scenario.RouteRow{
				RouteID:        atoiOrZero(routeID),
				Waiting:        rw.mean(m.slotSentinel),
				Utilization:    ru.mean(m.slotSentinel),
				TravelTime:     rt.mean(m.slotSentinel),
				TravelDistance: rd.mean(m.slotSentinel),
				Queue:          rq.mean(m.slotSentinel),
				CustomersCount: bucket.customersCount[routeID],
			})
		}

		out = append(out, scenario.SlotResult{
			SlotName: m.tc.SlotLabel(idx),
			ResultTotalStation: scenario.TotalStation{
				Waiting: totalWaiting.mean(m.slotSentinel),
				Queue:   totalQueue.mean(m.slotSentinel),
			},
			ResultStation: stationRows,
			ResultRoute:   routeRows,
		})
	}
	return out
}

func atoiOrZero(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n
}
