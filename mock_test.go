package simnet

import (
	"fmt"
	"testing"
)

// manualClock is a TimeProvider whose time the test sets
type manualClock struct {
	now float64
}

func (mc *manualClock) Now() float64 { return mc.now }

// timeLog collects lines stamped with the time of a clock
type timeLog struct {
	clock   TimeProvider
	entries []string
}

func (tl *timeLog) add(format string, args ...any) {
	tl.entries = append(tl.entries, fmt.Sprintf("%g: ", tl.clock.Now())+fmt.Sprintf(format, args...))
}

func (tl *timeLog) clear() { tl.entries = nil }

// mockStream offers a finish time the test sets, and logs what it accepts
type mockStream struct {
	name       string
	log        *timeLog
	online     bool
	finishTime float64
	accepted   []*TransmitOffer
}

func newMockStream(name string, log *timeLog) *mockStream {
	return &mockStream{name: name, log: log, online: true}
}

func (ms *mockStream) String() string { return ms.name }

func (ms *mockStream) IsOnline() bool { return ms.online }

func (ms *mockStream) SetOnline(online bool) { ms.online = online }

func (ms *mockStream) RequestTransmission(req *TransmitRequest) *TransmitOffer {
	return &TransmitOffer{Issuer: ms, FinishTime: ms.finishTime, Request: req}
}

func (ms *mockStream) Accept(offer *TransmitOffer) {
	ms.accepted = append(ms.accepted, offer)
	ms.log.add("%s: Transmit %v from %v to %v", ms.name, offer.Request.Message, offer.Request.Sender, offer.Request.Receiver)
}

// mockNode is a Node with mock streams that logs what the network tells it
type mockNode struct {
	name     string
	log      *timeLog
	online   bool
	upload   *mockStream
	download *mockStream
}

func newMockNode(name string, log *timeLog) *mockNode {
	return &mockNode{name: name, log: log, online: true,
		upload: newMockStream(name+"_upload", log), download: newMockStream(name+"_download", log)}
}

func (mn *mockNode) String() string { return mn.name }

func (mn *mockNode) UploadStream() TransmissionStream { return mn.upload }

func (mn *mockNode) DownloadStream() TransmissionStream { return mn.download }

func (mn *mockNode) IsOnline() bool { return mn.online }

func (mn *mockNode) NotifyReceive(sender Node, msg Message) {
	mn.log.add("Receive %v from %v to %v", msg, sender, mn)
}

func (mn *mockNode) NotifySuccess(receiver Node) {
	mn.log.add("Successfully sent from %v to %v", mn, receiver)
}

func (mn *mockNode) NotifyFailure(receiver Node) {
	mn.log.add("Failure sending from %v to %v", mn, receiver)
}

// plainNode is a Node that does not implement SendStateListener
type plainNode struct {
	name     string
	online   bool
	upload   TransmissionStream
	download TransmissionStream
	received int
}

func (pn *plainNode) String() string { return pn.name }

func (pn *plainNode) UploadStream() TransmissionStream { return pn.upload }

func (pn *plainNode) DownloadStream() TransmissionStream { return pn.download }

func (pn *plainNode) IsOnline() bool { return pn.online }

func (pn *plainNode) NotifyReceive(sender Node, msg Message) { pn.received += 1 }

// bits is a Message of the given size
type bits float64

func (b bits) Size() float64 { return float64(b) }

func (b bits) String() string { return fmt.Sprintf("Message(%gbit)", float64(b)) }

// expectPanic runs fn and returns the value it panicked with, failing the test if it did not panic
func expectPanic(t *testing.T, fn func()) (recovered any) {
	t.Helper()
	defer func() {
		recovered = recover()
		if recovered == nil {
			t.Fatalf("expected a panic")
		}
	}()
	fn()
	return nil
}
