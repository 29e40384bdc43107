package scheduler

import (
	"sync"
	"time"

	"github.com/neoblast-cz/inkframe/internal/srv/config"
	"github.com/sirupsen/logrus"
)

// RenderFunc produces and displays the bitmap of one module. Errors are
// logged by the scheduler and never stop the worker.
type RenderFunc func(moduleName string) error

// Config is the subset of the config store the scheduler reads. Every field
// of a scheduling decision is read fresh at the start of that decision, so
// concurrent edits land at the next wait, never mid-flight.
type Config interface {
	ActiveModule() string
	RefreshMinutes() int
	Rotation() []config.RotationEntry
}

type waitResult int

const (
	waitTimeout waitResult = iota
	waitForce
	waitStop
)

// Scheduler owns the one background worker driving all renders.
//
// Two modes, decided once per cycle from the rotation list:
//   - single module: render the active module, wait the refresh interval
//   - rotation (two or more entries): show each entry for its own duration,
//     restarting the whole pass from the first entry on a forced refresh
type Scheduler struct {
	render RenderFunc
	cfg    Config

	// wall time per configured minute, shortened in tests
	tick time.Duration

	startOnce sync.Once
	stopOnce  sync.Once

	stopChannel  chan struct{}
	forceChannel chan struct{}
	doneChannel  chan struct{}
}

func New(render RenderFunc, cfg Config) *Scheduler {
	return &Scheduler{
		render:       render,
		cfg:          cfg,
		tick:         time.Minute,
		stopChannel:  make(chan struct{}),
		forceChannel: make(chan struct{}, 1),
		doneChannel:  make(chan struct{}),
	}
}

// Start launches the background worker. Subsequent calls are ignored.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		logrus.Infof("Start scheduler")
		go s.loop()
	})
}

// ForceRefresh asks for an out-of-band render. Non-blocking and safe from
// any goroutine; requests raised before the worker consumes the signal
// collapse into one pending wake.
func (s *Scheduler) ForceRefresh() {
	select {
	case s.forceChannel <- struct{}{}:
	default:
	}
}

// Stop asks the worker to exit at its next check point. Non-blocking; wait
// on Done for the worker to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		logrus.Infof("Stop scheduler")
		close(s.stopChannel)
	})
}

func (s *Scheduler) Done() <-chan struct{} {
	return s.doneChannel
}

func (s *Scheduler) loop() {
	defer close(s.doneChannel)

	for {
		select {
		case <-s.stopChannel:
			return
		default:
		}

		rotation := s.cfg.Rotation()
		if len(rotation) > 1 {
			if !s.rotationPass(rotation) {
				return
			}
		} else {
			if !s.singleCycle() {
				return
			}
		}
	}
}

// singleCycle renders the active module then waits one refresh interval.
// The interval is read fresh each cycle, so an edit takes effect with the
// next wait. Returns false when the worker must exit.
func (s *Scheduler) singleCycle() bool {
	s.renderModule(s.cfg.ActiveModule())
	switch s.wait(s.cfg.RefreshMinutes()) {
	case waitStop:
		return false
	case waitForce:
		logrus.Debugf("Forced refresh")
	}
	return true
}

// rotationPass shows each entry of one snapshot of the rotation list for
// its own duration. A forced refresh abandons the pass so the next render
// is the first entry again. Returns false when the worker must exit.
func (s *Scheduler) rotationPass(rotation []config.RotationEntry) bool {
	for _, entry := range rotation {
		select {
		case <-s.stopChannel:
			return false
		default:
		}

		s.renderModule(entry.Module)

		switch s.wait(entry.DurationMinutes) {
		case waitStop:
			return false
		case waitForce:
			logrus.Debugf("Forced refresh, restarting rotation pass")
			return true
		}
	}
	return true
}

// wait blocks up to the given number of configured minutes or until a
// signal fires, and reports which happened. Receiving from forceChannel
// consumes the pending wake, so no spurious extra refresh follows.
func (s *Scheduler) wait(minutes int) waitResult {
	timer := time.NewTimer(time.Duration(minutes) * s.tick)
	defer timer.Stop()

	select {
	case <-s.stopChannel:
		return waitStop
	case <-s.forceChannel:
		return waitForce
	case <-timer.C:
		return waitTimeout
	}
}

// renderModule invokes the render callback, absorbing errors and panics so
// a failing module can never kill the worker.
func (s *Scheduler) renderModule(name string) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Render of module %s panicked: %v", name, rec)
		}
	}()

	err := s.render(name)
	if err != nil {
		logrus.Errorf("Render of module %s failed: %v", name, err)
	}
}
