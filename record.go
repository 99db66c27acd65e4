package simnet

// record.go holds the reservation records of a transmission stream and
// the list algebra (split, merge, reverse, expiry) applied to a timeline of them

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// recordEpsilon is the tolerance (10ns) applied when comparing record times.
// Repeated splitting and re-summing of float durations drifts by far less than this
const recordEpsilon = 10e-9

// TransmissionRecord is a reserved interval on a stream. Duration is negative
// only inside a time-reversed timeline used for backward placement
type TransmissionRecord struct {
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// End returns the time at which the reservation is over
func (tr TransmissionRecord) End() float64 {
	return tr.Start + tr.Duration
}

// Equal reports whether the start times and the durations of both records agree within recordEpsilon
func (tr TransmissionRecord) Equal(other TransmissionRecord) bool {
	return sameTime(tr.Start, other.Start) && sameTime(tr.Duration, other.Duration)
}

func (tr TransmissionRecord) String() string {
	return fmt.Sprintf("[%s+%s]", fmtSecs(tr.Start), fmtSecs(tr.Duration))
}

// reversed maps the record onto the reversed time axis
func (tr TransmissionRecord) reversed() TransmissionRecord {
	return TransmissionRecord{Start: tr.End(), Duration: -tr.Duration}
}

// Timeline is the ordered, non-overlapping list of reservations held by a stream
type Timeline []TransmissionRecord

// Equal compares two timelines record by record
func (tl Timeline) Equal(other Timeline) bool {
	if len(tl) != len(other) {
		return false
	}
	for idx := range tl {
		if !tl[idx].Equal(other[idx]) {
			return false
		}
	}
	return true
}

func (tl Timeline) String() string {
	strs := make([]string, 0, len(tl))
	for _, tr := range tl {
		strs = append(strs, tr.String())
	}
	return "{" + strings.Join(strs, ",") + "}"
}

// clone returns a copy that shares no storage with tl
func (tl Timeline) clone() Timeline {
	if tl == nil {
		return nil
	}
	return append(Timeline{}, tl...)
}

// splitAt cuts the timeline at time t. Records ending by t are in the first part,
// records starting after t in the second, and a record that straddles t is cut
// into two records meeting at t
func (tl Timeline) splitAt(t float64) (Timeline, Timeline) {
	for idx, tr := range tl {
		// t lies before this record, which and all its successors come after t
		if t < tr.Start {
			return tl[:idx].clone(), tl[idx:].clone()
		}

		// t lies inside this record
		if t < tr.End() {
			before := append(tl[:idx].clone(), TransmissionRecord{Start: tr.Start, Duration: t - tr.Start})
			after := append(Timeline{{Start: t, Duration: tr.End() - t}}, tl[idx+1:]...)
			return before, after
		}
	}
	return tl.clone(), Timeline{}
}

// mergeWith appends tail to tl. When the last record of tl ends where the first
// record of tail starts, the two are coalesced into one record
func (tl Timeline) mergeWith(tail Timeline) Timeline {
	if len(tl) == 0 {
		return tail.clone()
	}
	if len(tail) == 0 {
		return tl.clone()
	}

	last := tl[len(tl)-1]
	if !sameTime(last.End(), tail[0].Start) {
		return append(tl.clone(), tail...)
	}

	merged := append(Timeline{}, tl[:len(tl)-1]...)
	merged = append(merged, TransmissionRecord{Start: last.Start, Duration: last.Duration + tail[0].Duration})
	return append(merged, tail[1:]...)
}

// reversed returns the timeline mirrored in time: the order of the records is
// reversed and each record runs backwards from its end
func (tl Timeline) reversed() Timeline {
	rev := make(Timeline, 0, len(tl))
	for idx := len(tl) - 1; idx >= 0; idx-- {
		rev = append(rev, tl[idx].reversed())
	}
	return rev
}

// dropExpired removes the leading records that ended before now, and trims the
// part of a record in progress that already lies in the past
func (tl Timeline) dropExpired(now float64) Timeline {
	idx := 0
	for idx < len(tl) && tl[idx].End() < now {
		idx += 1
	}
	live := tl[idx:].clone()
	if len(live) > 0 && live[0].Start < now {
		live[0] = TransmissionRecord{Start: now, Duration: live[0].End() - now}
	}
	return live
}

func sameTime(a, b float64) bool {
	return math.Abs(a-b) < recordEpsilon
}

func fmtSecs(secs float64) string {
	return strconv.FormatFloat(secs, 'f', -1, 64)
}
