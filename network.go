package simnet

// network.go holds the Network, which carries messages between nodes: it applies
// the online/offline rules, negotiates the transmission between the sender's upload
// stream and the receiver's download stream, and schedules the notifications

import (
	"fmt"

	"github.com/iti/evt/vrtime"
	"github.com/iti/simnet/internal/logging"
)

// Transmission is a message to be carried from Sender to Receiver
type Transmission struct {
	Sender   Node
	Receiver Node
	Message  Message
}

func (tx Transmission) String() string {
	return fmt.Sprintf("%v -> %v", tx.Sender, tx.Receiver)
}

// Network connects every node with every other. Its configuration is fixed at construction
type Network struct {
	scheduler        Scheduler
	clock            TimeProvider
	latency          float64 // propagation delay added to every delivery
	offlineDetection float64 // time the sender needs to notice the receiver is offline

	log     logging.Logger
	metrics *Collector
	traces  *TraceManager
}

// NetworkOption configures optional collaborators of a Network
type NetworkOption func(*Network)

// WithLogger has the network log each transmission at debug level
func WithLogger(log logging.Logger) NetworkOption {
	return func(net *Network) { net.log = logging.OrNoop(log).With(logging.String("component", "network")) }
}

// WithMetrics has the network count transmissions in c
func WithMetrics(c *Collector) NetworkOption {
	return func(net *Network) { net.metrics = c }
}

// WithTraces has the network record every transmission step in tm
func WithTraces(tm *TraceManager) NetworkOption {
	return func(net *Network) { net.traces = tm }
}

// NewNetwork is a constructor. latency and offlineDetection are in seconds
func NewNetwork(scheduler Scheduler, clock TimeProvider, latency, offlineDetection float64,
	opts ...NetworkOption) *Network {
	if latency < 0 || offlineDetection < 0 {
		panic(fmt.Errorf("network delays must not be negative: latency %g, offline detection %g",
			latency, offlineDetection))
	}
	net := &Network{scheduler: scheduler, clock: clock, latency: latency,
		offlineDetection: offlineDetection, log: logging.Noop()}
	for _, opt := range opts {
		opt(net)
	}
	return net
}

// Latency returns the propagation delay, in seconds
func (net *Network) Latency() float64 { return net.latency }

// OfflineDetection returns the delay before a sender learns its receiver is offline
func (net *Network) OfflineDetection() float64 { return net.offlineDetection }

// Transmit starts carrying tx.Message. The outcome is reported to the nodes
// through scheduled notifications, never to the caller
func (net *Network) Transmit(tx Transmission) {
	now := net.clock.Now()
	net.trace(now, tx, TraceRequest, 0)

	switch {
	case !tx.Receiver.IsOnline():
		// the sender only finds out after waiting in vain
		net.log.Debug("receiver offline", logging.SimTime(now), logging.String("transmission", tx.String()))
		net.metrics.observeOutcome(outcomeReceiverOffline)
		net.scheduler.Schedule(net.offlineDetection, "transmission failed: "+tx.String(), func() {
			net.fail(tx)
		})

	case !tx.Sender.IsOnline():
		// a node always knows its own state, so the failure is due at once
		net.log.Debug("sender offline", logging.SimTime(now), logging.String("transmission", tx.String()))
		net.metrics.observeOutcome(outcomeSenderOffline)
		net.scheduler.Schedule(0, "transmission failed: "+tx.String(), func() {
			net.fail(tx)
		})

	default:
		net.send(now, tx)
	}
}

// send negotiates the transmission and schedules its delivery
func (net *Network) send(now float64, tx Transmission) {
	req := NewTransmitRequest(tx.Message, tx.Sender.UploadStream(), tx.Receiver.DownloadStream())
	finish := ScheduleTransmission(req)
	net.trace(now, tx, TraceCommit, finish)

	delay := finish - now + net.latency
	net.log.Debug("transmission scheduled", logging.SimTime(now), logging.String("transmission", tx.String()),
		logging.Float("finish", finish), logging.Float("delay", delay))

	net.scheduler.Schedule(delay, "transmission finished: "+tx.String(), func() {
		net.trace(net.clock.Now(), tx, TraceDeliver, finish)
		net.metrics.observeOutcome(outcomeDelivered)
		net.metrics.observeDelivery(delay, tx.Message.Size())
		tx.Receiver.NotifyReceive(tx.Sender, tx.Message)
		if listener, ok := tx.Sender.(SendStateListener); ok {
			listener.NotifySuccess(tx.Receiver)
		}
	})
}

func (net *Network) fail(tx Transmission) {
	net.trace(net.clock.Now(), tx, TraceFail, 0)
	if listener, ok := tx.Sender.(SendStateListener); ok {
		listener.NotifyFailure(tx.Receiver)
	}
}

func (net *Network) trace(now float64, tx Transmission, op TraceOp, finish float64) {
	if !net.traces.Active() {
		return
	}
	AddTxTrace(net.traces, vrtime.SecondsToTime(now), tx, op, finish)
}
