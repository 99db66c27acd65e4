package simnet

// metrics.go holds the Prometheus collector fed by the network and by an
// InterceptingScheduler

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// transmission outcomes, used as label values
const (
	outcomeDelivered       = "delivered"
	outcomeReceiverOffline = "receiver_offline"
	outcomeSenderOffline   = "sender_offline"
)

// Collector bundles the Prometheus metrics of a simulation run. All of its methods
// are safe to call on a nil Collector
type Collector struct {
	gatherer prometheus.Gatherer

	EventsScheduled   prometheus.Counter
	EventsExecuted    prometheus.Counter
	Transmissions     *prometheus.CounterVec
	TransmissionDelay prometheus.Histogram
	BitsDelivered     prometheus.Counter
}

// NewCollector registers the simulation metrics against reg, defaulting to the
// global Prometheus registry when nil. Metrics already registered are reused
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	scheduled, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simnet_events_scheduled_total",
		Help: "Number of actions handed to the event scheduler.",
	}), "simnet_events_scheduled_total")
	if err != nil {
		return nil, err
	}

	executed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simnet_events_executed_total",
		Help: "Number of scheduled actions that completed.",
	}), "simnet_events_executed_total")
	if err != nil {
		return nil, err
	}

	transmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simnet_transmissions_total",
		Help: "Transmissions handed to the network, labeled by outcome.",
	}, []string{"outcome"})
	transmissions, err = registerCounterVec(reg, transmissions, "simnet_transmissions_total")
	if err != nil {
		return nil, err
	}

	delay, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simnet_transmission_delay_seconds",
		Help:    "Simulated time from transmit to delivery, including latency.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 12),
	}), "simnet_transmission_delay_seconds")
	if err != nil {
		return nil, err
	}

	bits, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simnet_bits_delivered_total",
		Help: "Sum of the sizes of delivered messages, in bits.",
	}), "simnet_bits_delivered_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		EventsScheduled:   scheduled,
		EventsExecuted:    executed,
		Transmissions:     transmissions,
		TransmissionDelay: delay,
		BitsDelivered:     bits,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Instrument adds event counting to the hooks already registered on is
func (c *Collector) Instrument(is *InterceptingScheduler) *InterceptingScheduler {
	if c == nil {
		return is
	}
	scheduled, executed := is.onScheduled, is.onExecuted
	return is.
		OnScheduled(func(delay float64, description string) {
			scheduled(delay, description)
			c.EventsScheduled.Inc()
		}).
		OnExecuted(func(description string) {
			executed(description)
			c.EventsExecuted.Inc()
		})
}

// observeOutcome counts one transmission with the given outcome
func (c *Collector) observeOutcome(outcome string) {
	if c == nil || c.Transmissions == nil {
		return
	}
	c.Transmissions.WithLabelValues(outcome).Inc()
}

// observeDelivery records a delivered message
func (c *Collector) observeDelivery(delay, bits float64) {
	if c == nil {
		return
	}
	if c.TransmissionDelay != nil {
		c.TransmissionDelay.Observe(delay)
	}
	if c.BitsDelivered != nil {
		c.BitsDelivered.Add(bits)
	}
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}
