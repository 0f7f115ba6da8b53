package clock

import (
	"sync"
	"time"
)

// Mock is a manually-advanced Clock for tests. Tickers fire once per whole
// period crossed by Advance; AfterFunc callbacks run synchronously inside
// Advance when their deadline passes.
type Mock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*mockTicker
	timers  []*mockTimer
}

// NewMock creates a Mock starting at the given instant.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockTicker{
		ch:     make(chan time.Time, 64),
		period: d,
		next:   m.now.Add(d),
		clock:  m,
	}
	m.tickers = append(m.tickers, t)
	return t
}

func (m *Mock) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &mockTimer{at: m.now.Add(d), fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the mock time forward, firing due tickers and timers in
// deadline order.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)

	for {
		var (
			nextTicker *mockTicker
			nextTimer  *mockTimer
			at         time.Time
		)
		for _, t := range m.tickers {
			if t.stopped || t.next.After(target) {
				continue
			}
			if at.IsZero() || t.next.Before(at) {
				nextTicker, nextTimer, at = t, nil, t.next
			}
		}
		for _, t := range m.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if at.IsZero() || t.at.Before(at) {
				nextTicker, nextTimer, at = nil, t, t.at
			}
		}
		if nextTicker == nil && nextTimer == nil {
			break
		}

		m.now = at
		if nextTicker != nil {
			nextTicker.next = at.Add(nextTicker.period)
			select {
			case nextTicker.ch <- at:
			default:
			}
		} else {
			nextTimer.fired = true
			fn := nextTimer.fn
			m.mu.Unlock()
			fn()
			m.mu.Lock()
		}
	}

	m.now = target
	m.mu.Unlock()
}

type mockTicker struct {
	ch      chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
	clock   *Mock
}

func (t *mockTicker) C() <-chan time.Time { return t.ch }

func (t *mockTicker) Stop() {
	t.clock.mu.Lock()
	t.stopped = true
	t.clock.mu.Unlock()
}

type mockTimer struct {
	at      time.Time
	fn      func()
	fired   bool
	stopped bool
}

func (t *mockTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
