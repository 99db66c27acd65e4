package simnet

// scenario.go assembles a runnable simulation (hosts, network, flows and
// outages) from a ScenarioDesc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iti/simnet/internal/logging"
)

// Scenario is a simulation model built from a ScenarioDesc, ready to be launched
type Scenario struct {
	Name    string
	Network *Network
	Hosts   map[string]*Host
	Flows   []*Flow
	Outages []Outage
	Horizon float64

	sched Scheduler
	log   logging.Logger
}

// ScenarioSummary reports the counters of a run
type ScenarioSummary struct {
	Name      string               `json:"name" yaml:"name"`
	Time      float64              `json:"time" yaml:"time"`
	Generated int                  `json:"generated" yaml:"generated"`
	Delivered int                  `json:"delivered" yaml:"delivered"`
	Failed    int                  `json:"failed" yaml:"failed"`
	Hosts     map[string]HostStats `json:"hosts" yaml:"hosts"`
}

// BuildScenario validates sd and creates its model on the given scheduler and clock.
// The options are passed on to the network
func BuildScenario(sd *ScenarioDesc, sched Scheduler, clock TimeProvider, log logging.Logger,
	opts ...NetworkOption) (*Scenario, error) {

	if err := sd.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sd.Name, err)
	}
	log = logging.OrNoop(log).With(logging.String("scenario", sd.Name))

	pg := buildPeerGraph(sd)
	if err := checkFlowConnectivity(sd, pg); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sd.Name, err)
	}
	if parts := pg.partitions(); len(parts) > 1 && pg.g.Edges().Len() > 0 {
		for _, part := range parts[1:] {
			log.Warn("hosts unreachable from the main partition", logging.String("hosts", strings.Join(part, ",")))
		}
	}

	scn := &Scenario{Name: sd.Name, Hosts: make(map[string]*Host), Horizon: sd.Horizon, sched: sched, log: log}
	scn.Network = NewNetwork(sched, clock, sd.Network.Latency, sd.Network.OfflineDetection, opts...)

	for _, hd := range sd.Hosts {
		host := NewHost(hd.Name, hd.Upload, hd.Download, clock)
		if hd.Offline {
			host.SetOnline(false)
		}
		for _, strm := range []TransmissionStream{host.UploadStream(), host.DownloadStream()} {
			if ss, ok := strm.(*SequentialStream); ok {
				ss.SetLogger(log)
			}
		}
		scn.Hosts[hd.Name] = host
		for _, od := range hd.Outages {
			scn.Outages = append(scn.Outages, Outage{Host: host, Start: od.Start, Duration: od.Duration})
		}
	}

	for _, fd := range sd.Flows {
		flw := CreateFlow(fd.Name, scn.Hosts[fd.Src], scn.Hosts[fd.Dst], fd.Bits, fd.Rate, fd.Dist, fd.Count, fd.Start)
		scn.Flows = append(scn.Flows, flw)
	}
	log.Info("scenario built", logging.Int("hosts", len(scn.Hosts)), logging.Int("flows", len(scn.Flows)),
		logging.Int("outages", len(scn.Outages)))
	return scn, nil
}

// Launch schedules the outages and the first arrival of every flow
func (scn *Scenario) Launch() {
	for _, otg := range scn.Outages {
		otg.Launch(scn.sched)
	}
	for _, flw := range scn.Flows {
		flw.Launch(scn.sched, scn.Network)
	}
}

// HostNames returns the names of the hosts, sorted
func (scn *Scenario) HostNames() []string {
	names := make([]string, 0, len(scn.Hosts))
	for name := range scn.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary gathers the counters of the hosts and flows at simulation time now
func (scn *Scenario) Summary(now float64) ScenarioSummary {
	sum := ScenarioSummary{Name: scn.Name, Time: now, Hosts: make(map[string]HostStats)}
	for _, flw := range scn.Flows {
		sum.Generated += flw.Sent()
	}
	for name, host := range scn.Hosts {
		sum.Hosts[name] = host.Stats
		sum.Delivered += host.Stats.Received
		sum.Failed += host.Stats.Failed
	}
	return sum
}
