package simnet

// message.go holds the messages carried by the network

import (
	"fmt"

	"github.com/google/uuid"
)

// Message is anything that can be transmitted. Only its size, in bits, matters to the network
type Message interface {
	Size() float64
}

// Payload is the concrete Message used by hosts and workloads.
// Each payload has a unique identity
type Payload struct {
	ID   uuid.UUID
	Bits float64
	Body any
}

// NewPayload is a constructor
func NewPayload(bits float64, body any) *Payload {
	return &Payload{ID: uuid.New(), Bits: bits, Body: body}
}

// Size returns the number of bits in the payload
func (pl *Payload) Size() float64 {
	return pl.Bits
}

func (pl *Payload) String() string {
	return fmt.Sprintf("Message(ID=%s)", pl.ID)
}

// messageID returns a printable identity for msg
func messageID(msg Message) string {
	if pl, ok := msg.(*Payload); ok {
		return pl.ID.String()
	}
	if s, ok := msg.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%p", msg)
}
