package simnet

// simulator.go holds the discrete-event engine that advances simulated time
// and executes scheduled actions in (time, scheduling order) order

import (
	"container/heap"
	"errors"
	"fmt"
	"sort"
)

// ErrNegativeDelay is the panic value (wrapped) when an action is scheduled in the past
var ErrNegativeDelay = errors.New("negative scheduling delay")

// TimeProvider exposes the current simulation time, in seconds
type TimeProvider interface {
	Now() float64
}

// Scheduler accepts actions to execute after a delay (in seconds) of simulation time
type Scheduler interface {
	Schedule(delay float64, description string, action func())
}

// Controller starts, pauses and clears a simulation run
type Controller interface {
	Run()
	Pause()
	Reset()
}

// Simulator runs an event driven simulation by executing actions at given simulated time points.
// It implements TimeProvider, Scheduler and Controller. It is not safe for concurrent use;
// actions run one at a time and may schedule further events
type Simulator struct {
	now     float64
	queue   eventHeap
	running bool
	nxtSeq  int64
}

// NewSimulator is a constructor
func NewSimulator() *Simulator {
	sim := new(Simulator)
	sim.queue = eventHeap{}
	heap.Init(&sim.queue)
	return sim
}

// Now returns the simulation time of the event being (or last) executed
func (sim *Simulator) Now() float64 {
	return sim.now
}

// Schedule enters an action to be executed delay seconds after Now()
func (sim *Simulator) Schedule(delay float64, description string, action func()) {
	if delay < 0 {
		panic(fmt.Errorf("%w: %g for %q", ErrNegativeDelay, delay, description))
	}
	ev := &Event{Time: sim.now + delay, Seq: sim.nxtSeq, Description: description, Action: action}
	sim.nxtSeq += 1
	heap.Push(&sim.queue, ev)
}

// Run executes events until the queue drains or Pause is called
func (sim *Simulator) Run() {
	sim.running = true
	for sim.running && len(sim.queue) > 0 {
		sim.execute(heap.Pop(&sim.queue).(*Event))
	}
}

// RunUntil executes events until the queue drains, Pause is called, or the next
// event lies beyond limit. Events past limit stay queued
func (sim *Simulator) RunUntil(limit float64) {
	sim.running = true
	for sim.running && len(sim.queue) > 0 && sim.queue[0].Time <= limit {
		sim.execute(heap.Pop(&sim.queue).(*Event))
	}
}

// Pause stops the run loop once the executing action returns
func (sim *Simulator) Pause() {
	sim.running = false
}

// Reset discards all pending events. Now() is not changed
func (sim *Simulator) Reset() {
	sim.queue = eventHeap{}
}

// Pending returns the number of events waiting to execute
func (sim *Simulator) Pending() int {
	return len(sim.queue)
}

// EventQueue returns a copy of the pending events, in execution order
func (sim *Simulator) EventQueue() []Event {
	evts := make([]Event, 0, len(sim.queue))
	for _, ev := range sim.queue {
		evts = append(evts, *ev)
	}
	sort.Slice(evts, func(i, j int) bool { return evts[i].before(&evts[j]) })
	return evts
}

func (sim *Simulator) execute(ev *Event) {
	sim.now = ev.Time
	ev.Action()
}
