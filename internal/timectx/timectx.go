// Package timectx maps between wall-clock minutes and simulation time and
// indexes time-slots.
package timectx

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeContext anchors a simulation window to a real-clock range expressed in
// minutes from midnight, and slices it into fixed-length slots.
type TimeContext struct {
	RealStart   int // minutes from midnight
	RealEnd     int
	SlotLength  int
	SimDuration int
	NumSlots    int
}

// New builds a TimeContext from a "hh.mm-hh.mm" real-clock window and a slot
// length in minutes. Matches the prototype's TimeContext(time_period, time_slot).
func New(timePeriod string, slotLength int) (*TimeContext, error) {
	start, end, err := ParseRange(timePeriod)
	if err != nil {
		return nil, err
	}
	return NewFromMinutes(start, end, slotLength)
}

// NewFromMinutes builds a TimeContext directly from real-clock minutes.
func NewFromMinutes(realStart, realEnd, slotLength int) (*TimeContext, error) {
	if slotLength <= 0 {
		return nil, fmt.Errorf("timectx: slot length must be > 0, got %d", slotLength)
	}
	if realStart > realEnd {
		return nil, fmt.Errorf("timectx: real_start %d must be <= real_end %d", realStart, realEnd)
	}
	duration := realEnd - realStart
	numSlots := duration / slotLength
	if numSlots < 1 {
		numSlots = 1
	}
	return &TimeContext{
		RealStart:   realStart,
		RealEnd:     realEnd,
		SlotLength:  slotLength,
		SimDuration: duration,
		NumSlots:    numSlots,
	}, nil
}

// ToSim converts a real-clock minute into simulation time.
func (tc *TimeContext) ToSim(realMinute int) float64 {
	return float64(realMinute - tc.RealStart)
}

// SimToReal formats a simulation time as an "hh:mm" real-clock string.
func (tc *TimeContext) SimToReal(simTime float64) string {
	total := int(simTime) + tc.RealStart
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// SlotIndex returns the slot a given simulation time falls into, clamped to
// [0, NumSlots-1]. An event at exactly the end of the window (or beyond)
// clamps into the final slot rather than indexing past it.
func (tc *TimeContext) SlotIndex(simTime float64) int {
	idx := int(simTime) / tc.SlotLength
	if idx < 0 {
		idx = 0
	}
	if idx > tc.NumSlots-1 {
		idx = tc.NumSlots - 1
	}
	return idx
}

// SlotLabel renders the "hh:mm-hh:mm" label for a slot index.
func (tc *TimeContext) SlotLabel(idx int) string {
	start := tc.RealStart + idx*tc.SlotLength
	end := start + tc.SlotLength
	if end > tc.RealEnd {
		end = tc.RealEnd
	}
	return fmt.Sprintf("%02d:%02d-%02d:%02d", start/60, start%60, end/60, end%60)
}

// RangeToSim converts an "hh.mm-hh.mm" range into a pair of sim-minute
// offsets relative to RealStart.
func (tc *TimeContext) RangeToSim(timeRange string) (float64, float64, error) {
	start, end, err := ParseRange(timeRange)
	if err != nil {
		return 0, 0, err
	}
	return tc.ToSim(start), tc.ToSim(end), nil
}

// ParseHourMin parses "hh.mm" or "hh:mm" into minutes from midnight.
func ParseHourMin(t string) (int, error) {
	norm := strings.ReplaceAll(t, ":", ".")
	parts := strings.SplitN(norm, ".", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("timectx: malformed time %q, want hh.mm", t)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timectx: malformed hour in %q: %w", t, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timectx: malformed minute in %q: %w", t, err)
	}
	return h*60 + m, nil
}

// ParseRange parses "hh.mm-hh.mm" into a pair of minutes from midnight.
func ParseRange(r string) (int, int, error) {
	parts := strings.SplitN(r, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("timectx: malformed range %q, want hh.mm-hh.mm", r)
	}
	start, err := ParseHourMin(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseHourMin(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
