package simnet

// placement.go holds the algorithm that places a new transmission into
// the timeline of a stream.
//
// A new transmission greedily claims the free time in front of the next reservation.
// If that gap is too short, it absorbs the gap and the reservation that follows
// (the reservation keeps its place, the new transmission grows around it) and keeps
// on pushing outward until all of its duration has been placed. Reservations are
// therefore never moved; they are only enveloped. The result carries the new
// transmission, together with everything it absorbed, as its first record.
//
// The same code places a transmission backwards in time: reverse the timeline,
// negate the duration, place, and reverse the result.

import (
	"math"
)

// placeTransmission returns the timeline that results from placing a transmission
// of the given duration into tl, starting at start. tl must not contain records
// ending before start (forward) or after start (backward). The first record of the
// result ends when the new transmission is complete
func placeTransmission(tl Timeline, start, duration float64) Timeline {
	cursor := start       // where the free gap in front of tl[idx] begins
	remaining := duration // part of duration not yet placed
	consumed := 0.0       // gaps and reservations absorbed so far
	idx := 0

	for idx < len(tl) {
		gap := tl[idx].Start - cursor

		// the rest of the transmission fits in front of tl[idx]
		if math.Abs(remaining) < math.Abs(gap) {
			break
		}

		// fill the gap and envelop tl[idx]
		consumed += gap + tl[idx].Duration
		remaining -= gap
		cursor = tl[idx].End()
		idx += 1
	}

	placed := make(Timeline, 0, len(tl)-idx+1)
	placed = append(placed, TransmissionRecord{Start: start, Duration: consumed + remaining})
	return append(placed, tl[idx:]...)
}

// finishTime returns the end of the first record of a placement result
func finishTime(placed Timeline) float64 {
	return placed[0].End()
}
