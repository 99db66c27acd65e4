package simnet

// intercept.go holds a Scheduler decorator that exposes hooks around
// the scheduling and the execution of every action

import (
	"github.com/iti/simnet/internal/logging"
)

// InterceptingScheduler wraps another Scheduler and calls the registered hooks
// when an action is scheduled, just before it executes, and just after
type InterceptingScheduler struct {
	wrapped     Scheduler
	onScheduled func(delay float64, description string)
	onExecuting func(description string)
	onExecuted  func(description string)
}

// NewInterceptingScheduler is a constructor. All hooks start out as no-ops
func NewInterceptingScheduler(wrapped Scheduler) *InterceptingScheduler {
	return &InterceptingScheduler{
		wrapped:     wrapped,
		onScheduled: func(float64, string) {},
		onExecuting: func(string) {},
		onExecuted:  func(string) {},
	}
}

// OnScheduled registers the hook called after an action has been handed to the wrapped scheduler
func (is *InterceptingScheduler) OnScheduled(hook func(delay float64, description string)) *InterceptingScheduler {
	if hook != nil {
		is.onScheduled = hook
	}
	return is
}

// OnExecuting registers the hook called just before an action runs
func (is *InterceptingScheduler) OnExecuting(hook func(description string)) *InterceptingScheduler {
	if hook != nil {
		is.onExecuting = hook
	}
	return is
}

// OnExecuted registers the hook called just after an action returned
func (is *InterceptingScheduler) OnExecuted(hook func(description string)) *InterceptingScheduler {
	if hook != nil {
		is.onExecuted = hook
	}
	return is
}

// Schedule hands a wrapped version of action to the underlying scheduler
func (is *InterceptingScheduler) Schedule(delay float64, description string, action func()) {
	// the hooks are read when the event fires, so hooks registered later still apply
	is.wrapped.Schedule(delay, description, func() {
		is.onExecuting(description)
		action()
		is.onExecuted(description)
	})
	is.onScheduled(delay, description)
}

// LogEvents adds debug logging of scheduling and execution to the hooks already
// registered. clock, when not nil, stamps each line with the simulation time
func (is *InterceptingScheduler) LogEvents(log logging.Logger, clock TimeProvider) *InterceptingScheduler {
	log = logging.OrNoop(log)
	stamp := func() logging.Field {
		if clock == nil {
			return logging.SimTime(0)
		}
		return logging.SimTime(clock.Now())
	}
	scheduled, executing, executed := is.onScheduled, is.onExecuting, is.onExecuted
	return is.
		OnScheduled(func(delay float64, description string) {
			scheduled(delay, description)
			log.Debug("event scheduled", stamp(), logging.Float("delay", delay), logging.String("event", description))
		}).
		OnExecuting(func(description string) {
			executing(description)
			log.Debug("event executing", stamp(), logging.String("event", description))
		}).
		OnExecuted(func(description string) {
			executed(description)
			log.Debug("event executed", stamp(), logging.String("event", description))
		})
}
