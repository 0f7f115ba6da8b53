// Package market tracks the active market and pair and enforces the
// market-closed policy.
package market

import (
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/view"
	"SignalDesk/pkg/clock"
)

// Timers is the slice of the cooldown ledger the selector drives: display
// tickers are stopped on market/pair switches, ledger entries are not
// touched.
type Timers interface {
	StopAll()
	Stop(market models.Market, pair string)
	Refresh(market models.Market, pair string)
}

// Selector owns market and pair selection plus the expiration menus.
type Selector struct {
	snapshot *models.Snapshot
	forexExp []int
	otcExp   []int

	timers Timers
	view   *view.View
	clock  clock.Clock

	// notify emits a user-facing notice by translation key.
	notify func(key string)
}

func NewSelector(
	snapshot *models.Snapshot,
	forexExp, otcExp []int,
	timers Timers,
	v *view.View,
	clk clock.Clock,
	notify func(key string),
) *Selector {
	return &Selector{
		snapshot: snapshot,
		forexExp: forexExp,
		otcExp:   otcExp,
		timers:   timers,
		view:     v,
		clock:    clk,
		notify:   notify,
	}
}

// IsMarketClosed reports the weekly closure rule: forex is closed on
// Saturday and Sunday in UTC, OTC never closes.
func (s *Selector) IsMarketClosed(m models.Market) bool {
	if m != models.MarketForex {
		return false
	}
	wd := s.clock.Now().UTC().Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Expirations returns the offered expiration menu for a market, in seconds.
func (s *Selector) Expirations(m models.Market) []int {
	if m == models.MarketOTC {
		return s.otcExp
	}
	return s.forexExp
}

func shortest(menu []int) int {
	if len(menu) == 0 {
		return 0
	}
	min := menu[0]
	for _, v := range menu[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// SwitchMarket activates the requested market, silently substituting OTC
// (with one notice) when forex is requested while closed. All cooldown
// tickers stop, the first pair of the new list becomes current, the
// expiration menu resets to its shortest entry, and the cooldown display of
// the new pair refreshes. Returns the market actually activated.
func (s *Selector) SwitchMarket(st *models.SessionState, requested models.Market) models.Market {
	actual := requested
	if requested == models.MarketForex && s.IsMarketClosed(models.MarketForex) {
		s.notify("weekendMessage")
		actual = models.MarketOTC
	}

	s.timers.StopAll()

	st.Market = actual
	pairs := s.snapshot.PairsFor(actual)
	st.Pair = ""
	if len(pairs) > 0 {
		st.Pair = pairs[0]
	}
	st.Expiration = shortest(s.Expirations(actual))

	s.view.Update(func(v *view.State) {
		v.Market = actual
		v.Pairs = pairs
		v.Pair = st.Pair
		v.Expiration = st.Expiration
		if !st.HasActualSignal {
			v.Placeholder = true
			v.Signal = nil
		}
	})

	s.timers.Refresh(actual, st.Pair)
	return actual
}

// SetPair makes pair current. The previous pair's display ticker stops; its
// ledger entry survives. Returns false when pair is not in the current
// market's list.
func (s *Selector) SetPair(st *models.SessionState, pair string) bool {
	if !contains(s.snapshot.PairsFor(st.Market), pair) {
		return false
	}

	if st.Pair != "" && st.Pair != pair {
		s.timers.Stop(st.Market, st.Pair)
	}
	st.Pair = pair

	s.view.Update(func(v *view.State) {
		v.Pair = pair
		if !st.HasActualSignal {
			v.Placeholder = true
			v.Signal = nil
		}
	})

	s.timers.Refresh(st.Market, pair)
	return true
}

// SelectExpiration picks an expiration from the current market's menu.
// Values outside the menu are rejected.
func (s *Selector) SelectExpiration(st *models.SessionState, seconds int) bool {
	if !containsInt(s.Expirations(st.Market), seconds) {
		return false
	}
	st.Expiration = seconds

	s.view.Update(func(v *view.State) {
		v.Expiration = seconds
		if !st.HasActualSignal {
			v.Placeholder = true
			v.Signal = nil
		}
	})

	s.timers.Refresh(st.Market, st.Pair)
	return true
}

// ResetExpirations re-renders the expiration menu with the shortest entry
// selected; used to recover from an inconsistent UI state.
func (s *Selector) ResetExpirations(st *models.SessionState) {
	st.Expiration = shortest(s.Expirations(st.Market))
	s.view.Update(func(v *view.State) {
		v.Expiration = st.Expiration
	})
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
