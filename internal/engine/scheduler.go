// Package engine implements a single-threaded, cooperative discrete-event
// kernel: hold, activate, passivate, and FIFO stores, with a stable
// (scheduled_time, insertion_seq) ordering for events at equal simulation
// time. Processes run as goroutines, but only one ever executes logic at a
// time — the scheduler hands control to a process and blocks until that
// process suspends again, which gives deterministic single-threaded
// semantics on top of real stacks instead of a hand-rolled state machine
// per process kind (see spec §4.3/§9). This mirrors the event-priority-queue
// shape of the teacher's batch driver (container/heap over {time, bus,
// stopIdx}), generalized to arbitrary processes.
package engine

import "container/heap"

// Proc is a cooperatively-scheduled process. Call Hold, Passivate, ToStore,
// and FromStore from inside the function passed to Scheduler.Spawn. Hold,
// Passivate, and FromStore on an empty store are the only suspension
// points; ToStore never suspends.
type Proc struct {
	Name string

	sched      *Scheduler
	toProc     chan struct{}
	toSched    chan struct{}
	pendingVal any
	finished   bool
}

func (p *Proc) yield() {
	p.toSched <- struct{}{}
	<-p.toProc
}

// Hold suspends the calling process for dt sim-minutes. dt < 0 is treated
// as 0. hold(0) is scheduled through the timer queue, so it runs after
// every event already ready at the current time, never jumping ahead of
// them.
func (p *Proc) Hold(dt float64) {
	if dt < 0 {
		dt = 0
	}
	t := p.sched.now + dt
	heap.Push(&p.sched.timers, timerEntry{time: t, seq: p.sched.nextSeq(), proc: p})
	p.yield()
}

// Passivate suspends the process indefinitely; only an explicit Activate
// resumes it.
func (p *Proc) Passivate() {
	p.yield()
}

// ToStore appends an item to store s. Never blocks. If a process is
// already waiting in FromStore, the item is handed to it directly and
// that waiter becomes ready at the current time.
func (p *Proc) ToStore(s *Store, item any) {
	s.put(item)
}

// FromStore pops the head of store s, suspending the caller until an item
// is available if s is currently empty (FIFO fairness across waiters).
func (p *Proc) FromStore(s *Store) any {
	if v, ok := s.tryPop(); ok {
		return v
	}
	s.waiters = append(s.waiters, p)
	p.yield()
	return p.pendingVal
}

// Now returns the current simulation time.
func (p *Proc) Now() float64 { return p.sched.now }

// Activate schedules target to run at the current simulation time, after
// any events already ready. Safe to call on a process currently blocked in
// Passivate or FromStore.
func (p *Proc) Activate(target *Proc) { p.sched.activate(target) }

// Store is an unbounded FIFO queue of handles shared between one writer
// (typically an ArrivalGenerator) and any number of readers (Buses).
type Store struct {
	sched   *Scheduler
	items   []any
	waiters []*Proc
}

// Len reports the number of items currently queued (not counting blocked
// waiters).
func (s *Store) Len() int { return len(s.items) }

func (s *Store) put(item any) {
	if len(s.waiters) > 0 {
		w := s.waiters[0]
		s.waiters = s.waiters[1:]
		w.pendingVal = item
		s.sched.activate(w)
		return
	}
	s.items = append(s.items, item)
}

func (s *Store) tryPop() (any, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	v := s.items[0]
	s.items = s.items[1:]
	return v, true
}

// timerEntry is a pending Hold resumption, ordered by (time, seq).
type timerEntry struct {
	time float64
	seq  uint64
	proc *Proc
}

type timerHeap []timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)        { *h = append(*h, x.(timerEntry)) }
func (h *timerHeap) Pop() any          { old := *h; n := len(old); v := old[n-1]; *h = old[:n-1]; return v }

// Scheduler is the cooperative single-threaded event kernel. All processes
// spawned on it, and all Stores created by it, share its notion of time.
type Scheduler struct {
	now    float64
	seqGen uint64
	timers timerHeap
	ready  []*Proc
	live   int
}

// New creates an empty Scheduler at sim time 0.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulation time.
func (s *Scheduler) Now() float64 { return s.now }

func (s *Scheduler) nextSeq() uint64 {
	s.seqGen++
	return s.seqGen
}

// NewStore creates a Store bound to this scheduler.
func (s *Scheduler) NewStore() *Store {
	return &Store{sched: s}
}

// activate appends target to the ready queue (FIFO), to run at the
// current time before any timer-heap event, mirroring spec §5's ordering
// guarantee.
func (s *Scheduler) activate(target *Proc) {
	if target.finished {
		return
	}
	s.ready = append(s.ready, target)
}

// Spawn starts a new process. The process begins running immediately at
// the current simulation time (after whatever is already ready), exactly
// like Activate on a freshly created component.
func (s *Scheduler) Spawn(name string, fn func(p *Proc)) *Proc {
	p := &Proc{
		Name:    name,
		sched:   s,
		toProc:  make(chan struct{}),
		toSched: make(chan struct{}),
	}
	s.live++
	go func() {
		<-p.toProc
		fn(p)
		p.finished = true
		s.live--
		p.toSched <- struct{}{}
	}()
	s.activate(p)
	return p
}

// Run drives the event loop until simulation time reaches till or no
// process has further work. Processes still running (neither finished nor
// scheduled) when till is reached are left suspended; this is how the
// scenario's "till" bound in spec §5 terminates a run.
func (s *Scheduler) Run(till float64) {
	for {
		if len(s.ready) > 0 {
			p := s.ready[0]
			s.ready = s.ready[1:]
			s.runOne(p)
			continue
		}
		if s.timers.Len() == 0 {
			break
		}
		next := s.timers[0]
		if next.time > till {
			break
		}
		heap.Pop(&s.timers)
		if next.proc.finished {
			continue
		}
		s.now = next.time
		s.runOne(next.proc)
	}
	if s.now < till {
		s.now = till
	}
}

func (s *Scheduler) runOne(p *Proc) {
	p.toProc <- struct{}{}
	<-p.toSched
}
