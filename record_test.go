package simnet

import (
	"testing"
)

func TestRecordEqualWithinEpsilon(t *testing.T) {
	rec := TransmissionRecord{Start: 1, Duration: 2}
	if !rec.Equal(TransmissionRecord{Start: 1 + 1e-9, Duration: 2 - 1e-9}) {
		t.Fatalf("records differing by 1ns should be equal")
	}
	if rec.Equal(TransmissionRecord{Start: 1 + 1e-6, Duration: 2}) {
		t.Fatalf("records differing by 1us should not be equal")
	}
	if rec.Equal(TransmissionRecord{Start: 1, Duration: 2.001}) {
		t.Fatalf("records with different durations should not be equal")
	}
}

func TestRecordEndAndString(t *testing.T) {
	rec := TransmissionRecord{Start: 7.5, Duration: 2.5}
	if rec.End() != 10 {
		t.Fatalf("End() = %v, want 10", rec.End())
	}
	if got := rec.String(); got != "[7.5+2.5]" {
		t.Fatalf("String() = %q, want [7.5+2.5]", got)
	}
	if got := (Timeline{rec, {Start: 12, Duration: 1}}).String(); got != "{[7.5+2.5],[12+1]}" {
		t.Fatalf("Timeline.String() = %q", got)
	}
}

func TestTimelineSplitAt(t *testing.T) {
	tl := Timeline{{Start: 1, Duration: 2}, {Start: 5, Duration: 2}}

	cases := []struct {
		name   string
		at     float64
		before Timeline
		after  Timeline
	}{
		{name: "before first record", at: 0, before: Timeline{}, after: tl},
		{name: "inside first record", at: 2, before: Timeline{{1, 1}}, after: Timeline{{2, 1}, {5, 2}}},
		{name: "at end of first record", at: 3, before: Timeline{{1, 2}}, after: Timeline{{5, 2}}},
		{name: "in gap", at: 4, before: Timeline{{1, 2}}, after: Timeline{{5, 2}}},
		{name: "inside last record", at: 6.5, before: Timeline{{1, 2}, {5, 1.5}}, after: Timeline{{6.5, 0.5}}},
		{name: "after last record", at: 9, before: tl, after: Timeline{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before, after := tl.splitAt(tc.at)
			if !before.Equal(tc.before) || !after.Equal(tc.after) {
				t.Fatalf("splitAt(%v) = %v, %v, want %v, %v", tc.at, before, after, tc.before, tc.after)
			}
		})
	}
}

func TestTimelineSplitDoesNotAlias(t *testing.T) {
	tl := Timeline{{Start: 1, Duration: 2}, {Start: 5, Duration: 2}}
	before, after := tl.splitAt(4)
	before[0].Duration = 100
	after[0].Start = 100
	if !tl.Equal(Timeline{{1, 2}, {5, 2}}) {
		t.Fatalf("splitAt results share storage with the timeline: %v", tl)
	}
}

func TestTimelineSplitMergeRoundTrip(t *testing.T) {
	tl := Timeline{{Start: 0.1, Duration: 0.2}, {Start: 0.7, Duration: 0.1}, {Start: 1.3, Duration: 2.9}}
	for _, at := range []float64{0, 0.15, 0.3, 0.5, 0.75, 0.8, 1.3, 2.2222, 4.2, 5} {
		before, after := tl.splitAt(at)
		if merged := before.mergeWith(after); !merged.Equal(tl) {
			t.Fatalf("split at %v and merge = %v, want %v", at, merged, tl)
		}
	}
}

func TestTimelineMergeWith(t *testing.T) {
	cases := []struct {
		name       string
		head, tail Timeline
		want       Timeline
	}{
		{name: "empty head", head: Timeline{}, tail: Timeline{{1, 1}}, want: Timeline{{1, 1}}},
		{name: "empty tail", head: Timeline{{1, 1}}, tail: Timeline{}, want: Timeline{{1, 1}}},
		{name: "gap kept", head: Timeline{{1, 1}}, tail: Timeline{{3, 1}}, want: Timeline{{1, 1}, {3, 1}}},
		{name: "touching coalesced", head: Timeline{{0, 1}, {2, 1}}, tail: Timeline{{3, 2}, {6, 1}},
			want: Timeline{{0, 1}, {2, 3}, {6, 1}}},
		{name: "touching within epsilon", head: Timeline{{2, 1}}, tail: Timeline{{3 + 1e-12, 2}}, want: Timeline{{2, 3}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.head.mergeWith(tc.tail); !got.Equal(tc.want) {
				t.Fatalf("mergeWith = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTimelineReversed(t *testing.T) {
	tl := Timeline{{Start: 1, Duration: 2}, {Start: 5, Duration: 2}}
	rev := tl.reversed()
	if want := (Timeline{{7, -2}, {3, -2}}); !rev.Equal(want) {
		t.Fatalf("reversed() = %v, want %v", rev, want)
	}
	if back := rev.reversed(); !back.Equal(tl) {
		t.Fatalf("reversing twice = %v, want %v", back, tl)
	}
}

func TestTimelineDropExpired(t *testing.T) {
	tl := Timeline{{Start: 1, Duration: 2}, {Start: 5, Duration: 2}}

	cases := []struct {
		name string
		now  float64
		want Timeline
	}{
		{name: "nothing expired", now: 0, want: tl},
		{name: "first expired", now: 4, want: Timeline{{5, 2}}},
		{name: "record in progress trimmed", now: 6, want: Timeline{{6, 1}}},
		{name: "all expired", now: 8, want: Timeline{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tl.dropExpired(tc.now); !got.Equal(tc.want) {
				t.Fatalf("dropExpired(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}
