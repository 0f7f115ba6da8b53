package view

import (
	"sync"
	"testing"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Publish(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *captureSink) last() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[len(s.events)-1], true
}

func TestNewStartsWithPlaceholder(t *testing.T) {
	v := New(nil)
	st := v.Snapshot()
	if !st.Placeholder || !st.RequestEnabled {
		t.Errorf("placeholder=%v requestEnabled=%v", st.Placeholder, st.RequestEnabled)
	}
}

func TestUpdatePublishesSnapshotCopy(t *testing.T) {
	sink := &captureSink{}
	v := New(sink)

	v.Update(func(st *State) { st.Pair = "EUR/USD" })

	ev, ok := sink.last()
	if !ok || ev.Type != "state" {
		t.Fatalf("event = %+v", ev)
	}
	if ev.State.Pair != "EUR/USD" {
		t.Errorf("published pair = %q", ev.State.Pair)
	}

	// Published state is a copy, not a live pointer into the view.
	v.Update(func(st *State) { st.Pair = "GBP/USD" })
	if ev.State.Pair != "EUR/USD" {
		t.Error("earlier event mutated by later update")
	}
}

func TestNoticeSkipsEmptyMessages(t *testing.T) {
	sink := &captureSink{}
	v := New(sink)

	v.Notice("")
	if _, ok := sink.last(); ok {
		t.Error("empty notice published")
	}

	v.Notice("Market closed")
	ev, _ := sink.last()
	if ev.Type != "notice" || ev.Message != "Market closed" {
		t.Errorf("event = %+v", ev)
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	v := New(nil)
	v.Update(func(st *State) { st.Loading = true })
	v.Notice("hello")
	if !v.Snapshot().Loading {
		t.Error("update lost")
	}
}
