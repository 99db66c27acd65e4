package simnet

// stream.go holds the transmission streams: the directional, bandwidth limited
// channels (a host's upload or download capacity) that negotiate transmissions

import (
	"errors"
	"fmt"

	"github.com/iti/simnet/internal/logging"
)

// ErrStreamOffline is the panic value (wrapped) when a stream that is offline is asked
// to offer or accept a transmission. The network never does that, so it marks a defect in the caller
var ErrStreamOffline = errors.New("stream is offline")

// TransmissionStream is one end of a transmission. The negotiation protocol asks
// both ends of a request for an offer, then has both accept the slower one
type TransmissionStream interface {
	// RequestTransmission returns a tentative offer for carrying the request
	RequestTransmission(req *TransmitRequest) *TransmitOffer

	// Accept commits the stream to an offer, its own or the one made by the other end
	Accept(offer *TransmitOffer)

	IsOnline() bool
}

// TransmitOffer is a stream's non-binding proposal of when a request would finish
type TransmitOffer struct {
	Issuer     TransmissionStream
	FinishTime float64
	Request    *TransmitRequest

	// candidate is the timeline the issuer adopts if its offer wins. Only the
	// issuer interprets it; streams without a timeline leave it nil
	candidate Timeline
}

// SequentialStream models a channel of fixed bandwidth that carries one
// transmission at a time. Committed reservations keep their place; new ones fill
// the gaps between them or envelop them
type SequentialStream struct {
	name      string
	bandwidth float64 // bits per second
	clock     TimeProvider
	online    bool
	scheduled Timeline
	log       logging.Logger
}

// NewSequentialStream is a constructor. The stream starts online with an empty timeline
func NewSequentialStream(name string, bandwidth float64, clock TimeProvider) *SequentialStream {
	if !(bandwidth > 0) {
		panic(fmt.Errorf("stream %s: bandwidth must be positive, got %g", name, bandwidth))
	}
	return &SequentialStream{name: name, bandwidth: bandwidth, clock: clock,
		online: true, scheduled: Timeline{}, log: logging.Noop()}
}

// SetLogger directs the stream's debug output to log
func (ss *SequentialStream) SetLogger(log logging.Logger) {
	ss.log = logging.OrNoop(log).With(logging.String("stream", ss.name))
}

func (ss *SequentialStream) String() string { return ss.name }

// Bandwidth returns the capacity of the stream, in bits per second
func (ss *SequentialStream) Bandwidth() float64 { return ss.bandwidth }

func (ss *SequentialStream) IsOnline() bool { return ss.online }

func (ss *SequentialStream) SetOnline(online bool) { ss.online = online }

// ScheduledTransmissions returns a copy of the committed reservations, as of the
// last negotiation the stream took part in. A reservation already in progress at
// that negotiation is shown starting at the negotiation time, not at its original start
func (ss *SequentialStream) ScheduledTransmissions() Timeline {
	return ss.scheduled.clone()
}

// RequestTransmission computes where the request would go in this stream's
// timeline if it started now, and offers the resulting finish time
func (ss *SequentialStream) RequestTransmission(req *TransmitRequest) *TransmitOffer {
	ss.assertOnline("request")
	now := ss.clock.Now()
	ss.scheduled = ss.scheduled.dropExpired(now)

	candidate := placeTransmission(ss.scheduled, now, ss.duration(req))
	offer := &TransmitOffer{Issuer: ss, FinishTime: finishTime(candidate), Request: req, candidate: candidate}

	ss.log.Debug("offer", logging.SimTime(now), logging.Float("finish", offer.FinishTime),
		logging.String("timeline", candidate.String()))
	return offer
}

// Accept commits the stream to offer
func (ss *SequentialStream) Accept(offer *TransmitOffer) {
	ss.assertOnline("accept")
	if offer.Issuer == TransmissionStream(ss) {
		ss.acceptOwn(offer)
	} else {
		ss.acceptForeign(offer)
	}
	ss.log.Debug("accepted", logging.SimTime(ss.clock.Now()), logging.Float("finish", offer.FinishTime),
		logging.Bool("own", offer.Issuer == TransmissionStream(ss)), logging.String("timeline", ss.scheduled.String()))
}

// acceptOwn adopts the timeline computed when the offer was made
func (ss *SequentialStream) acceptOwn(offer *TransmitOffer) {
	ss.scheduled = offer.candidate
}

// acceptForeign reserves the request's duration on this stream so that it ends
// exactly at the finish time the other end offered. The reservation is placed
// backwards from that time, by running the forward placement on the reversed
// part of the timeline that precedes it
func (ss *SequentialStream) acceptForeign(offer *TransmitOffer) {
	before, after := ss.scheduled.splitAt(offer.FinishTime)
	placed := placeTransmission(before.reversed(), offer.FinishTime, -ss.duration(offer.Request))
	ss.scheduled = placed.reversed().mergeWith(after)
}

// duration is the time this stream needs to carry the request's message
func (ss *SequentialStream) duration(req *TransmitRequest) float64 {
	return req.Message.Size() / ss.bandwidth
}

func (ss *SequentialStream) assertOnline(op string) {
	if !ss.online {
		panic(fmt.Errorf("%w: %s on %s", ErrStreamOffline, op, ss.name))
	}
}

// InstantStream is a channel without capacity limits. Its offers finish
// immediately and it keeps no timeline, so the other end of a
// transmission always decides the finish time
type InstantStream struct {
	name   string
	clock  TimeProvider
	online bool
}

// NewInstantStream is a constructor
func NewInstantStream(name string, clock TimeProvider) *InstantStream {
	return &InstantStream{name: name, clock: clock, online: true}
}

func (is *InstantStream) String() string { return is.name }

func (is *InstantStream) IsOnline() bool { return is.online }

func (is *InstantStream) SetOnline(online bool) { is.online = online }

// RequestTransmission offers to finish now
func (is *InstantStream) RequestTransmission(req *TransmitRequest) *TransmitOffer {
	if !is.online {
		panic(fmt.Errorf("%w: request on %s", ErrStreamOffline, is.name))
	}
	return &TransmitOffer{Issuer: is, FinishTime: is.clock.Now(), Request: req}
}

// Accept has nothing to record
func (is *InstantStream) Accept(offer *TransmitOffer) {
	if !is.online {
		panic(fmt.Errorf("%w: accept on %s", ErrStreamOffline, is.name))
	}
}
