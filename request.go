package simnet

// request.go holds the two-party negotiation that settles when a
// transmission between a sender stream and a receiver stream finishes

// TransmitRequest asks to carry Message from the Sender stream to the Receiver stream
type TransmitRequest struct {
	Message  Message
	Sender   TransmissionStream
	Receiver TransmissionStream
}

// NewTransmitRequest is a constructor
func NewTransmitRequest(msg Message, sender, receiver TransmissionStream) *TransmitRequest {
	return &TransmitRequest{Message: msg, Sender: sender, Receiver: receiver}
}

// ScheduleTransmission negotiates the request between its two streams and returns
// the agreed finish time. A transmission cannot finish before its slower end, so
// the later of the two offers wins and both streams commit to it
func ScheduleTransmission(req *TransmitRequest) float64 {
	offer := negotiate(req)
	req.Sender.Accept(offer)
	req.Receiver.Accept(offer)
	return offer.FinishTime
}

// negotiate collects both offers and selects the winner
func negotiate(req *TransmitRequest) *TransmitOffer {
	sendOffer := req.Sender.RequestTransmission(req)
	rcvOffer := req.Receiver.RequestTransmission(req)
	return slowerOffer(sendOffer, rcvOffer)
}

// slowerOffer returns the offer finishing later. On a tie the receiver's offer wins
func slowerOffer(sendOffer, rcvOffer *TransmitOffer) *TransmitOffer {
	if sendOffer.FinishTime > rcvOffer.FinishTime {
		return sendOffer
	}
	return rcvOffer
}
