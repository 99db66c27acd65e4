package simnet

// desc.go holds the serializable description of a simulation scenario:
// network parameters, hosts and their bandwidths, outages, and traffic flows.
// Descriptions are read from and written to yaml or json files

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// NetworkDesc holds the network-wide delays, in seconds
type NetworkDesc struct {
	Latency          float64 `json:"latency" yaml:"latency"`
	OfflineDetection float64 `json:"offlinedetection" yaml:"offlinedetection"`
}

// OutageDesc takes a host offline at Start for Duration seconds
type OutageDesc struct {
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// HostDesc describes one host. Bandwidths are in bits per second, zero meaning unlimited.
// Peers lists the hosts this one has links to
type HostDesc struct {
	Name     string       `json:"name" yaml:"name"`
	Upload   float64      `json:"upload" yaml:"upload"`
	Download float64      `json:"download" yaml:"download"`
	Offline  bool         `json:"offline" yaml:"offline"`
	Peers    []string     `json:"peers" yaml:"peers"`
	Outages  []OutageDesc `json:"outages" yaml:"outages"`
}

// FlowDesc describes a stream of messages of Bits bits from Src to Dst, arriving
// at Rate messages per second after Start. Dist selects the inter-arrival
// distribution ("exp" or "const"). Count bounds the number of messages, zero
// meaning no bound other than the horizon
type FlowDesc struct {
	Name  string  `json:"name" yaml:"name"`
	Src   string  `json:"src" yaml:"src"`
	Dst   string  `json:"dst" yaml:"dst"`
	Bits  float64 `json:"bits" yaml:"bits"`
	Rate  float64 `json:"rate" yaml:"rate"`
	Dist  string  `json:"dist" yaml:"dist"`
	Count int     `json:"count" yaml:"count"`
	Start float64 `json:"start" yaml:"start"`
}

// ScenarioDesc is the complete description of a simulation experiment.
// Horizon is the simulation time at which the run stops, zero meaning when no events remain
type ScenarioDesc struct {
	Name    string      `json:"name" yaml:"name"`
	Network NetworkDesc `json:"network" yaml:"network"`
	Hosts   []HostDesc  `json:"hosts" yaml:"hosts"`
	Flows   []FlowDesc  `json:"flows" yaml:"flows"`
	Horizon float64     `json:"horizon" yaml:"horizon"`
	Trace   bool        `json:"trace" yaml:"trace"`
}

// CreateScenarioDesc is an initialization constructor.
// Its output struct has methods for integrating data
func CreateScenarioDesc(name string, latency, offlineDetection float64) *ScenarioDesc {
	sd := new(ScenarioDesc)
	sd.Name = name
	sd.Network = NetworkDesc{Latency: latency, OfflineDetection: offlineDetection}
	sd.Hosts = make([]HostDesc, 0)
	sd.Flows = make([]FlowDesc, 0)
	return sd
}

// AddHost includes a host with the given bandwidths and peers
func (sd *ScenarioDesc) AddHost(name string, upload, download float64, peers ...string) *HostDesc {
	sd.Hosts = append(sd.Hosts, HostDesc{Name: name, Upload: upload, Download: download, Peers: peers})
	return &sd.Hosts[len(sd.Hosts)-1]
}

// AddFlow includes a flow
func (sd *ScenarioDesc) AddFlow(flow FlowDesc) {
	sd.Flows = append(sd.Flows, flow)
}

// host returns the description of the named host, or nil
func (sd *ScenarioDesc) host(name string) *HostDesc {
	idx := slices.IndexFunc(sd.Hosts, func(hd HostDesc) bool { return hd.Name == name })
	if idx < 0 {
		return nil
	}
	return &sd.Hosts[idx]
}

// Validate checks the description for errors a run would trip over, and
// returns all of them joined
func (sd *ScenarioDesc) Validate() error {
	var errs []error
	if sd.Network.Latency < 0 || sd.Network.OfflineDetection < 0 {
		errs = append(errs, errors.New("network delays must not be negative"))
	}
	if sd.Horizon < 0 {
		errs = append(errs, errors.New("horizon must not be negative"))
	}

	names := []string{}
	for _, hd := range sd.Hosts {
		if hd.Name == "" {
			errs = append(errs, errors.New("host without a name"))
			continue
		}
		if slices.Contains(names, hd.Name) {
			errs = append(errs, fmt.Errorf("host %s described twice", hd.Name))
		}
		names = append(names, hd.Name)
		if hd.Upload < 0 || hd.Download < 0 {
			errs = append(errs, fmt.Errorf("host %s: bandwidth must not be negative", hd.Name))
		}
		for _, od := range hd.Outages {
			if od.Start < 0 || od.Duration <= 0 {
				errs = append(errs, fmt.Errorf("host %s: outage needs a non-negative start and a positive duration", hd.Name))
			}
		}
	}

	for _, hd := range sd.Hosts {
		for _, peer := range hd.Peers {
			if !slices.Contains(names, peer) {
				errs = append(errs, fmt.Errorf("host %s: unknown peer %s", hd.Name, peer))
			}
		}
	}

	flowNames := []string{}
	for _, fd := range sd.Flows {
		if slices.Contains(flowNames, fd.Name) {
			errs = append(errs, fmt.Errorf("flow %s described twice", fd.Name))
		}
		flowNames = append(flowNames, fd.Name)
		if !slices.Contains(names, fd.Src) || !slices.Contains(names, fd.Dst) {
			errs = append(errs, fmt.Errorf("flow %s: unknown endpoint in %s -> %s", fd.Name, fd.Src, fd.Dst))
		}
		if fd.Src == fd.Dst {
			errs = append(errs, fmt.Errorf("flow %s: source and destination are the same host", fd.Name))
		}
		if !(fd.Rate > 0) || fd.Bits < 0 || fd.Count < 0 || fd.Start < 0 {
			errs = append(errs, fmt.Errorf("flow %s: needs a positive rate and non-negative bits, count and start", fd.Name))
		}
		if _, present := interArrivalDists[fd.Dist]; !present {
			errs = append(errs, fmt.Errorf("flow %s: unknown inter-arrival distribution %q", fd.Name, fd.Dist))
		}
		if fd.Count == 0 && sd.Horizon == 0 {
			errs = append(errs, fmt.Errorf("flow %s: unbounded flow needs a horizon", fd.Name))
		}
	}
	return errors.Join(errs...)
}

// WriteToFile stores the ScenarioDesc struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name
func (sd *ScenarioDesc) WriteToFile(filename string) error {
	bytes, err := marshalByExt(filename, *sd)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0o644)
}

// ReadScenarioDesc deserializes a byte slice holding a representation of a ScenarioDesc struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them. A deserialized representation is returned, or an error if one is generated
// from a file read or the deserialization
func ReadScenarioDesc(filename string, useYAML bool, dict []byte) (*ScenarioDesc, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := ScenarioDesc{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", filename, err)
	}
	return &example, nil
}
