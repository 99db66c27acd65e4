package simnet

// workload.go holds the traffic generators of a scenario: flows that hand
// messages to the network at random or constant intervals, and outages that
// take hosts offline for a while

import (
	"fmt"
	"math"

	"github.com/iti/rngstream"
)

// interArrivalDists maps the distribution names accepted in a FlowDesc to samplers.
// A sampler's first argument is a U01 random number, the second the vector of
// distribution parameters (the rate first)
var interArrivalDists = map[string]func(float64, []float64) float64{
	"":            sampleExpRV,
	"exp":         sampleExpRV,
	"expon":       sampleExpRV,
	"exponential": sampleExpRV,
	"const":       sampleConst,
	"constant":    sampleConst,
}

// Flow generates messages of a fixed size from Src to Dst
type Flow struct {
	Name  string
	Src   *Host
	Dst   *Host
	Bits  float64
	Rate  float64 // messages per second
	Count int     // messages to generate, zero for no limit
	Start float64

	sent int // messages handed to the network so far

	// function that computes inter-arrival times
	sampleNxtArrival func(float64, []float64) float64

	rngstrm *rngstream.RngStream
}

// CreateFlow is a constructor. The flow draws from its own rng stream, named after the flow
func CreateFlow(name string, src, dst *Host, bits, rate float64, dist string, count int, start float64) *Flow {
	sampler, present := interArrivalDists[dist]
	if !present {
		panic(fmt.Errorf("flow %s: unknown inter-arrival distribution %q", name, dist))
	}
	return &Flow{Name: name, Src: src, Dst: dst, Bits: bits, Rate: rate, Count: count, Start: start,
		sampleNxtArrival: sampler, rngstrm: rngstream.New(name)}
}

// Sent returns the number of messages the flow has handed to the network
func (flw *Flow) Sent() int {
	return flw.sent
}

// Launch schedules the first message of the flow
func (flw *Flow) Launch(sched Scheduler, net *Network) {
	sched.Schedule(flw.Start, "flow arrival: "+flw.Name, func() {
		flw.arrival(sched, net)
	})
}

// arrival hands one message to the network and schedules the next
func (flw *Flow) arrival(sched Scheduler, net *Network) {
	if flw.Count > 0 && flw.sent >= flw.Count {
		return
	}
	flw.sent += 1
	msg := NewPayload(flw.Bits, flw.Name)
	net.Transmit(Transmission{Sender: flw.Src, Receiver: flw.Dst, Message: msg})

	if flw.Count > 0 && flw.sent >= flw.Count {
		return
	}
	interarrival := flw.sampleNxtArrival(flw.rngstrm.RandU01(), []float64{flw.Rate})
	sched.Schedule(interarrival, "flow arrival: "+flw.Name, func() {
		flw.arrival(sched, net)
	})
}

// Outage takes a host offline at Start and back online Duration seconds later
type Outage struct {
	Host     *Host
	Start    float64
	Duration float64
}

// Launch schedules both transitions of the outage
func (otg Outage) Launch(sched Scheduler) {
	sched.Schedule(otg.Start, "host offline: "+otg.Host.Name(), func() {
		otg.Host.SetOnline(false)
	})
	sched.Schedule(otg.Start+otg.Duration, "host online: "+otg.Host.Name(), func() {
		otg.Host.SetOnline(true)
	})
}

// expRV returns a sample of a exponentially distributed random number
func expRV(u01, rate float64) float64 {
	return -math.Log(1.0-u01) / rate
}

// sampleExpRV has the function signature expected by a Flow
// for calling a next interarrival time
func sampleExpRV(u01 float64, params []float64) float64 {
	return expRV(u01, params[0])
}

// sampleConst has the function signature expected by a Flow
// for calling a next interarrival time, here, a constant
func sampleConst(u01 float64, params []float64) float64 {
	return 1.0 / params[0]
}
