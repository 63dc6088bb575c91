package engine

import "testing"

// TestReadyQueueRunsBeforeTimerHeap checks the FIFO-before-timers ordering
// guarantee from spec §5: a process Activated at the current time runs
// before any already-scheduled hold(0) event at the same instant.
func TestReadyQueueRunsBeforeTimerHeap(t *testing.T) {
	sched := New()
	var order []string

	late := sched.Spawn("late", func(p *Proc) {
		p.Hold(0)
		order = append(order, "late")
	})

	sched.Spawn("early", func(p *Proc) {
		p.Activate(late)
		order = append(order, "early")
	})

	sched.Run(1)

	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Fatalf("got order %v, want [early late]", order)
	}
}

// TestHoldOrdersByTimeThenInsertion checks the (time, insertion_seq) tiebreak.
func TestHoldOrdersByTimeThenInsertion(t *testing.T) {
	sched := New()
	var order []string

	sched.Spawn("b", func(p *Proc) {
		p.Hold(5)
		order = append(order, "b")
	})
	sched.Spawn("a", func(p *Proc) {
		p.Hold(5)
		order = append(order, "a")
	})
	sched.Spawn("c", func(p *Proc) {
		p.Hold(1)
		order = append(order, "c")
	})

	sched.Run(10)

	want := []string{"c", "b", "a"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

// TestStoreBlocksUntilPut verifies FromStore suspends a reader until a
// writer puts an item, and hands it off at the writer's current time.
func TestStoreBlocksUntilPut(t *testing.T) {
	sched := New()
	store := sched.NewStore()
	var got any

	sched.Spawn("reader", func(p *Proc) {
		got = p.FromStore(store)
	})
	sched.Spawn("writer", func(p *Proc) {
		p.Hold(3)
		p.ToStore(store, "payload")
	})

	sched.Run(10)

	if got != "payload" {
		t.Fatalf("got %v, want payload", got)
	}
}

// TestStoreNonBlockingPop checks an item already queued is available
// without suspension.
func TestStoreNonBlockingPop(t *testing.T) {
	sched := New()
	store := sched.NewStore()

	sched.Spawn("writer", func(p *Proc) {
		p.ToStore(store, 1)
		p.ToStore(store, 2)
	})

	var seen []any
	sched.Spawn("reader", func(p *Proc) {
		p.Hold(1)
		seen = append(seen, p.FromStore(store))
		seen = append(seen, p.FromStore(store))
	})

	sched.Run(10)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("got %v, want [1 2]", seen)
	}
	if store.Len() != 0 {
		t.Fatalf("store should be drained, len=%d", store.Len())
	}
}

// TestRunClampsToTillWithPendingWork ensures Run leaves a suspended
// process parked rather than running it past the window bound.
func TestRunClampsToTillWithPendingWork(t *testing.T) {
	sched := New()
	ran := false

	sched.Spawn("late", func(p *Proc) {
		p.Hold(100)
		ran = true
	})

	sched.Run(10)

	if ran {
		t.Fatal("process scheduled beyond till must not run")
	}
	if sched.Now() != 10 {
		t.Fatalf("Now() = %v, want clamped to till=10", sched.Now())
	}
}
