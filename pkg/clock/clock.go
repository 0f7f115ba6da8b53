package clock

import "time"

// Clock abstracts wall time and timer creation so cooldown behavior can be
// driven by simulated time in tests.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, fn func()) Timer
}

// Ticker is a stoppable repeating timer.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Timer is a stoppable one-shot timer.
type Timer interface {
	Stop() bool
}

// System is the real-time Clock.
type System struct{}

func NewSystem() System { return System{} }

func (System) Now() time.Time { return time.Now() }

func (System) NewTicker(d time.Duration) Ticker {
	return systemTicker{t: time.NewTicker(d)}
}

func (System) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }
