package simnet

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/iti/simnet/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func runScenario(t *testing.T, sd *ScenarioDesc, opts ...NetworkOption) (*Scenario, *Simulator) {
	t.Helper()
	sim := NewSimulator()
	scn, err := BuildScenario(sd, sim, sim, nil, opts...)
	if err != nil {
		t.Fatalf("BuildScenario: %v", err)
	}
	scn.Launch()
	if sd.Horizon > 0 {
		sim.RunUntil(sd.Horizon)
	} else {
		sim.Run()
	}
	return scn, sim
}

func TestScenarioDeliversAndFails(t *testing.T) {
	sd := CreateScenarioDesc("mixed", 0.1, 1)
	sd.AddHost("a", 1000, 1000)
	sd.AddHost("b", 1000, 1000)
	sd.AddHost("c", 1000, 1000).Offline = true
	sd.AddFlow(FlowDesc{Name: "ab", Src: "a", Dst: "b", Bits: 500, Rate: 1, Dist: "const", Count: 5})
	sd.AddFlow(FlowDesc{Name: "ac", Src: "a", Dst: "c", Bits: 500, Rate: 1, Dist: "const", Count: 2})

	scn, sim := runScenario(t, sd)
	sum := scn.Summary(sim.Now())

	if sum.Generated != 7 || sum.Delivered != 5 || sum.Failed != 2 {
		t.Fatalf("summary = %+v, want 7 generated, 5 delivered, 2 failed", sum)
	}
	if a := sum.Hosts["a"]; a.Sent != 5 || a.Failed != 2 {
		t.Fatalf("host a stats = %+v", a)
	}
	if b := sum.Hosts["b"]; b.Received != 5 || b.ReceivedBits != 2500 {
		t.Fatalf("host b stats = %+v", b)
	}
	expectTime(t, "end of run", sum.Time, 4.6)
	if got := scn.HostNames(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("HostNames() = %v", got)
	}
}

func TestScenarioOutageDropsMessages(t *testing.T) {
	sd := CreateScenarioDesc("outage", 0.1, 0.5)
	sd.AddHost("a", 1000, 1000)
	b := sd.AddHost("b", 1000, 1000)
	b.Outages = []OutageDesc{{Start: 1.5, Duration: 1}}
	sd.AddFlow(FlowDesc{Name: "ab", Src: "a", Dst: "b", Bits: 500, Rate: 1, Dist: "const", Count: 5})

	scn, sim := runScenario(t, sd)
	sum := scn.Summary(sim.Now())
	if sum.Delivered != 4 || sum.Failed != 1 {
		t.Fatalf("summary = %+v, want 4 delivered and 1 failed", sum)
	}
	if !scn.Hosts["b"].IsOnline() {
		t.Fatalf("host b still offline after its outage")
	}
}

func TestScenarioSharesBandwidth(t *testing.T) {
	sd := CreateScenarioDesc("fan-in", 0, 0)
	sd.AddHost("a", 1000, 0)
	sd.AddHost("b", 1000, 0)
	sd.AddHost("sink", 0, 1000)
	sd.AddFlow(FlowDesc{Name: "a", Src: "a", Dst: "sink", Bits: 1000, Rate: 1, Dist: "const", Count: 1})
	sd.AddFlow(FlowDesc{Name: "b", Src: "b", Dst: "sink", Bits: 1000, Rate: 1, Dist: "const", Count: 1})

	sim := NewSimulator()
	scn, err := BuildScenario(sd, sim, sim, nil)
	if err != nil {
		t.Fatalf("BuildScenario: %v", err)
	}
	var arrivals []float64
	scn.Hosts["sink"].OnReceive(func(sender Node, msg Message) { arrivals = append(arrivals, sim.Now()) })
	scn.Launch()
	sim.Run()

	// both senders could finish after 1s, but the sink's download carries one at a time
	if want := []float64{1, 2}; !reflect.DeepEqual(arrivals, want) {
		t.Fatalf("arrivals = %v, want %v", arrivals, want)
	}
}

func TestScenarioWithCollaborators(t *testing.T) {
	sd := CreateScenarioDesc("observed", 0, 0)
	sd.AddHost("a", 100, 100)
	sd.AddHost("b", 100, 100)
	sd.AddFlow(FlowDesc{Name: "ab", Src: "a", Dst: "b", Bits: 100, Rate: 0.5, Dist: "const", Count: 3})

	c, _ := newTestCollector(t)
	tm := CreateTraceManager("observed", true)
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "debug", Format: "json", Output: &buf})

	sim := NewSimulator()
	sched := c.Instrument(NewInterceptingScheduler(sim).LogEvents(log, sim))
	scn, err := BuildScenario(sd, sched, sim, log, WithLogger(log), WithMetrics(c), WithTraces(tm))
	if err != nil {
		t.Fatalf("BuildScenario: %v", err)
	}
	scn.Launch()
	sim.Run()

	if got := testutil.ToFloat64(c.Transmissions.WithLabelValues(outcomeDelivered)); got != 3 {
		t.Fatalf("delivered transmissions = %v, want 3", got)
	}
	// three arrivals and three deliveries
	if got := testutil.ToFloat64(c.EventsExecuted); got != 6 {
		t.Fatalf("executed events = %v, want 6", got)
	}
	if tm.NumTraces() != 9 {
		t.Fatalf("NumTraces() = %d, want 9", tm.NumTraces())
	}
	for _, msg := range []string{"scenario built", "transmission scheduled", "flow arrival: ab"} {
		if !strings.Contains(buf.String(), msg) {
			t.Fatalf("log output missing %q", msg)
		}
	}
}

func TestBuildScenarioRejectsInvalidDescriptions(t *testing.T) {
	sim := NewSimulator()

	invalid := CreateScenarioDesc("invalid", -1, 0)
	if _, err := BuildScenario(invalid, sim, sim, nil); err == nil {
		t.Fatalf("negative latency accepted")
	}

	split := CreateScenarioDesc("split", 0, 0)
	split.AddHost("a", 1, 1, "b")
	split.AddHost("b", 1, 1)
	split.AddHost("c", 1, 1)
	split.AddFlow(FlowDesc{Name: "ac", Src: "a", Dst: "c", Bits: 1, Rate: 1, Count: 1})
	_, err := BuildScenario(split, sim, sim, nil)
	if err == nil || !strings.Contains(err.Error(), "unconnected") {
		t.Fatalf("BuildScenario() = %v, want a connectivity error", err)
	}
}

func TestScenarioStopsAtHorizon(t *testing.T) {
	sd := CreateScenarioDesc("bounded", 0, 0)
	sd.AddHost("a", 0, 0)
	sd.AddHost("b", 0, 0)
	sd.AddFlow(FlowDesc{Name: "ab", Src: "a", Dst: "b", Bits: 1, Rate: 2, Dist: "const"})
	sd.Horizon = 10

	scn, _ := runScenario(t, sd)
	sum := scn.Summary(10)
	if sum.Generated != 21 || sum.Delivered != 21 {
		t.Fatalf("summary = %+v, want 21 generated and delivered", sum)
	}
}
