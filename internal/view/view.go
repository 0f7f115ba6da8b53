package view

import (
	"sync"

	"SignalDesk/internal/domain/models"
)

// State is the complete render state of the page. It is recomputed by the
// session engine after every mutation and pushed to subscribers; the browser
// renders it verbatim and holds no rules of its own.
type State struct {
	Language   string        `json:"language"`
	RTL        bool          `json:"rtl"`
	Market     models.Market `json:"market"`
	Pair       string        `json:"pair"`
	Pairs      []string      `json:"pairs"`
	Expiration int           `json:"expiration"` // selected, seconds; 0 = unset

	// Placeholder is true until a real signal has been shown this session.
	Placeholder bool           `json:"placeholder"`
	Signal      *models.Signal `json:"signal,omitempty"`

	Loading        bool   `json:"loading"`
	RequestEnabled bool   `json:"requestEnabled"`
	CooldownText   string `json:"cooldownText"` // empty = countdown hidden
}

// Event is a single push-channel message.
type Event struct {
	Type    string `json:"type"` // state | notice | chart.render | chart.symbol
	State   *State `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

// Sink receives view events. The push hub implements it; tests use a fake.
type Sink interface {
	Publish(Event)
}

// View holds the current render state and fans updates out to a Sink.
// Methods are safe for concurrent use.
type View struct {
	mu   sync.Mutex
	st   State
	sink Sink
}

func New(sink Sink) *View {
	return &View{
		st:   State{Placeholder: true, RequestEnabled: true},
		sink: sink,
	}
}

// Update applies fn to the state and publishes the result.
func (v *View) Update(fn func(*State)) {
	v.mu.Lock()
	fn(&v.st)
	st := v.st
	v.mu.Unlock()

	if v.sink != nil {
		v.sink.Publish(Event{Type: "state", State: &st})
	}
}

// Notice publishes a transient user-facing notice (rendered as a toast).
func (v *View) Notice(message string) {
	if message == "" || v.sink == nil {
		return
	}
	v.sink.Publish(Event{Type: "notice", Message: message})
}

// Snapshot returns a copy of the current state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.st
}
