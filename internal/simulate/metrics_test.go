package simulate

import (
	"testing"

	"transitsim/internal/timectx"
)

const sentinel = -99999.9

func mustTimeCtx(t *testing.T, start, end, slotLen int) *timectx.TimeContext {
	t.Helper()
	tc, err := timectx.NewFromMinutes(start, end, slotLen)
	if err != nil {
		t.Fatalf("NewFromMinutes: %v", err)
	}
	return tc
}

func TestSampleMonitorMeanAndEmpty(t *testing.T) {
	var m sampleMonitor
	if !m.empty() {
		t.Fatal("expected empty monitor")
	}
	if got := m.mean(sentinel); got != sentinel {
		t.Fatalf("mean() = %v, want sentinel %v", got, sentinel)
	}
	m.tally(2)
	m.tally(4)
	m.tally(6)
	if got := m.mean(sentinel); got != 4 {
		t.Fatalf("mean() = %v, want 4", got)
	}
}

func TestWeightedMonitorIgnoresNonPositiveWeight(t *testing.T) {
	var m weightedMonitor
	m.tally(1, 0)
	m.tally(1, -5)
	if !m.empty() {
		t.Fatal("non-positive weight tallies should not count")
	}
	m.tally(0.5, 2)
	m.tally(1.0, 2)
	if got := m.mean(sentinel); got != 0.75 {
		t.Fatalf("mean() = %v, want 0.75", got)
	}
}

func TestLevelMonitorTimeWeightedMean(t *testing.T) {
	var m levelMonitor
	m.tally(0, 0)  // depth 0 from t=0
	m.tally(2, 10) // depth 0 held for 10 minutes, now depth 2
	m.close(20)    // depth 2 held for the remaining 10 minutes

	// (0*10 + 2*10) / 20 = 1.0
	if got := m.mean(sentinel); got != 1.0 {
		t.Fatalf("mean() = %v, want 1.0", got)
	}
}

func TestLevelMonitorEmptyUntilFirstTally(t *testing.T) {
	var m levelMonitor
	if !m.empty() {
		t.Fatal("expected empty monitor before any tally")
	}
	m.close(100)
	if !m.empty() {
		t.Fatal("close before any tally should not manufacture a mean")
	}
}

func TestCountedSumMean(t *testing.T) {
	var c countedSum
	if got := c.mean(sentinel); got != sentinel {
		t.Fatalf("mean() = %v, want sentinel", got)
	}
	c.tally(3)
	c.tally(5)
	if got := c.mean(sentinel); got != 4 {
		t.Fatalf("mean() = %v, want 4", got)
	}
}

func TestMetricsAggregatorSlotCountMatchesWindow(t *testing.T) {
	tc := mustTimeCtx(t, 0, 60, 15)
	m := newMetricsAggregator(tc, []string{"A"}, []string{"1"}, sentinel, 0.0)
	if len(m.slots) != tc.NumSlots {
		t.Fatalf("got %d pre-allocated slots, want %d", len(m.slots), tc.NumSlots)
	}

	m.tallyBoarding("A", "1", 5, 2.5)
	m.close(60)
	results := m.SlotResults()
	if len(results) != tc.NumSlots {
		t.Fatalf("SlotResults returned %d rows, want %d", len(results), tc.NumSlots)
	}
	if results[0].ResultRoute[0].CustomersCount != 1 {
		t.Fatalf("expected one boarding counted in slot 0, got %d", results[0].ResultRoute[0].CustomersCount)
	}
	if results[1].ResultRoute[0].CustomersCount != 0 {
		t.Fatalf("boarding in slot 0 must not leak into slot 1")
	}
}
