package domain

import (
	"context"
	"sync/atomic"
	"time"
)

// Clock is a source of wall-clock time.
type Clock interface {
	Now() time.Time
}

// Display renders the local side effects of a tick. Implementations must not
// feed anything back into the simulation.
type Display interface {
	// Show renders the readings of the current tick.
	Show(snapshot Snapshot)
	// ShowResult renders the outcome of the send that followed Show.
	ShowResult(result SendResult)
}

// LoopStatus is the lifecycle state of a SimulationLoop.
type LoopStatus int32

const (
	// LoopStopped is the state before Run and after it returns.
	LoopStopped LoopStatus = iota
	// LoopRunning is the state while Run is executing.
	LoopRunning
)

func (s LoopStatus) String() string {
	if s == LoopRunning {
		return "Running"
	}
	return "Stopped"
}

// SimulationLoop owns a SensorState and drives it at a fixed cadence:
// update, display, send, wait.
type SimulationLoop struct {
	state    *SensorState
	reporter Reporter
	display  Display
	clock    Clock
	rnd      RandomSource
	interval TickInterval
	logger   Logger
	maxTicks uint64

	ticks  atomic.Uint64
	status atomic.Int32
}

// Run ticks immediately and then once per interval until ctx is cancelled
// or the tick limit is reached. Cancellation is observed between ticks; a
// send already in flight completes within its own timeout.
func (l *SimulationLoop) Run(ctx context.Context) {
	l.status.Store(int32(LoopRunning))
	defer l.status.Store(int32(LoopStopped))

	ticker := time.NewTicker(time.Duration(l.interval))
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			l.logger.Info("simulation stopped after %d ticks", l.Ticks())
			return
		}

		l.Tick(ctx)

		if l.maxTicks > 0 && l.Ticks() >= l.maxTicks {
			l.logger.Info("tick limit of %d reached", l.maxTicks)
			return
		}

		select {
		case <-ctx.Done():
			l.logger.Info("simulation stopped after %d ticks", l.Ticks())
			return
		case <-ticker.C:
		}
	}
}

// Tick performs one simulation step and returns the outcome of its send.
func (l *SimulationLoop) Tick(ctx context.Context) SendResult {
	now := l.clock.Now()
	l.state.Update(now, l.rnd)
	tick := l.ticks.Add(1)

	snapshot := NewSnapshot(tick, now, *l.state)
	_ = RunSideEffect("display", func() { l.display.Show(snapshot) }, l.logger)

	result := l.reporter.Send(context.WithoutCancel(ctx), *l.state)
	_ = RunSideEffect("result display", func() { l.display.ShowResult(result) }, l.logger)

	return result
}

// Ticks returns the number of completed updates.
func (l *SimulationLoop) Ticks() uint64 {
	return l.ticks.Load()
}

// Status returns whether the loop is currently running.
func (l *SimulationLoop) Status() LoopStatus {
	return LoopStatus(l.status.Load())
}

// WithMaxTicks limits Run to n ticks. Zero means no limit.
func (l *SimulationLoop) WithMaxTicks(n uint64) *SimulationLoop {
	l.maxTicks = n
	return l
}

// NewSimulationLoop creates a loop that exclusively owns state.
func NewSimulationLoop(
	state *SensorState,
	reporter Reporter,
	display Display,
	clock Clock,
	rnd RandomSource,
	interval TickInterval,
	logger Logger,
) *SimulationLoop {
	return &SimulationLoop{
		state:    state,
		reporter: reporter,
		display:  display,
		clock:    clock,
		rnd:      rnd,
		interval: interval,
		logger:   logger,
	}
}
