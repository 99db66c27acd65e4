package simnet

// event.go holds the simulation event and the time-ordered heap
// the simulator keeps its pending events in

import (
	"fmt"
	"strconv"
)

// Event is an action bound to an absolute simulation time. Seq breaks ties
// between events at the same time, so they execute in the order they were scheduled
type Event struct {
	Time        float64 // absolute simulation time, in seconds
	Seq         int64   // scheduling order
	Description string
	Action      func()
}

// before reports whether ev executes ahead of other
func (ev *Event) before(other *Event) bool {
	if ev.Time != other.Time {
		return ev.Time < other.Time
	}
	return ev.Seq < other.Seq
}

func (ev Event) String() string {
	return fmt.Sprintf("%s: %s", strconv.FormatFloat(ev.Time, 'f', -1, 64), ev.Description)
}

// eventHeap and its methods implement a min-priority heap
// on the (time, sequence) key of events
type eventHeap []*Event

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}
