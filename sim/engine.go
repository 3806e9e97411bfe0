package sim

// TimeTeller reports the current simulated time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler accepts events that happen now or in the future.
type EventScheduler interface {
	Schedule(e Event)
}

// A SimulationEndHandler is notified once the event queue is drained.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine drives a discrete event simulation.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes the events in time order until no event is left.
	Run() error

	// Pause blocks the engine before the next event until Continue is
	// called. It is safe to call from another goroutine.
	Pause()

	// Continue resumes a paused engine.
	Continue()

	// RegisterSimulationEndHandler adds a handler to be called by Finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished calls all the registered SimulationEndHandlers.
	Finished()
}
