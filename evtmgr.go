package simnet

// evtmgr.go lets the network run on an evtm.EventManager instead of a Simulator

import (
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// EvtmScheduler adapts an evtm.EventManager to the TimeProvider and Scheduler
// interfaces. Ordering of events at the same time is left to the event manager
type EvtmScheduler struct {
	evtMgr *evtm.EventManager
}

// NewEvtmScheduler is a constructor
func NewEvtmScheduler(evtMgr *evtm.EventManager) *EvtmScheduler {
	return &EvtmScheduler{evtMgr: evtMgr}
}

// EventManager returns the wrapped event manager, which drives the run
func (es *EvtmScheduler) EventManager() *evtm.EventManager {
	return es.evtMgr
}

// Now returns the event manager's current time in seconds
func (es *EvtmScheduler) Now() float64 {
	return es.evtMgr.CurrentSeconds()
}

// Schedule hands the action to the event manager. The description travels as the
// event context
func (es *EvtmScheduler) Schedule(delay float64, description string, action func()) {
	es.evtMgr.Schedule(description, action, runAction, vrtime.SecondsToTime(delay))
}

// runAction is the event handler for every action scheduled through an EvtmScheduler
func runAction(evtMgr *evtm.EventManager, context any, data any) any {
	data.(func())()
	return nil
}
