// Package cooldown persists per-(market,pair) unlock instants and drives
// the repeating countdown display.
package cooldown

import (
	"context"
	"errors"
	"sync"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/view"
	"SignalDesk/pkg/clock"
	"SignalDesk/pkg/kvstore"
	"SignalDesk/pkg/logger"
	"SignalDesk/pkg/util"

	"time"
)

// KeyPrefix namespaces every persisted cooldown entry.
const KeyPrefix = "cooldown:"

// Key builds the persisted key for a (market, pair) cooldown entry.
func Key(m models.Market, pair string) string {
	return KeyPrefix + string(m) + ":" + pair
}

// Ledger is the sole writer of cooldown entries. It owns one display ticker
// per pair at most; leaking a ticker is a defect, so starts and stops are
// counted and exposed.
type Ledger struct {
	store   kvstore.Store
	clk     clock.Clock
	view    *view.View
	log     *logger.Logger
	metrics repository.Metrics

	mu      sync.Mutex
	tickers map[string]*handle
	starts  int
	stops   int

	amnesty sync.Once
}

type handle struct {
	ticker clock.Ticker
	done   chan struct{}
}

func NewLedger(store kvstore.Store, clk clock.Clock, v *view.View, log *logger.Logger, metrics repository.Metrics) *Ledger {
	return &Ledger{
		store:   store,
		clk:     clk,
		view:    v,
		log:     log,
		metrics: metrics,
		tickers: make(map[string]*handle),
	}
}

// RunAmnesty discards every persisted cooldown entry. Runs at most once per
// process, before the first display refresh; a reload always starts with a
// clean ledger. This is deliberate policy, not stale-data cleanup.
func (l *Ledger) RunAmnesty(ctx context.Context) {
	l.amnesty.Do(func() {
		keys, err := l.store.KeysWithPrefix(ctx, KeyPrefix)
		if err != nil {
			l.log.Warn("cooldown amnesty scan", logger.Error(err))
			return
		}
		if len(keys) == 0 {
			return
		}
		if err := l.store.Remove(ctx, keys...); err != nil {
			l.log.Warn("cooldown amnesty remove", logger.Error(err))
			return
		}
		l.log.Info("cooldown amnesty", logger.Int("cleared", len(keys)))
	})
}

// Arm writes unlock = now + seconds for (market, pair) and starts the 1s
// display ticker for that pair, replacing any existing one. Non-positive
// durations are ignored.
func (l *Ledger) Arm(ctx context.Context, m models.Market, pair string, seconds int) {
	if seconds <= 0 || pair == "" {
		return
	}

	until := l.clk.Now().Add(time.Duration(seconds) * time.Second)
	if err := l.store.Set(ctx, Key(m, pair), util.FormatEpochMillis(until)); err != nil {
		// Fire-and-forget: the in-memory ticker still enforces the display.
		l.log.Warn("cooldown persist", logger.Error(err), logger.String("pair", pair))
	}

	l.mu.Lock()
	l.startTickerLocked(m, pair)
	l.mu.Unlock()

	l.Refresh(m, pair)
}

// IsLocked reports whether (market, pair) has an unlock instant in the
// future. Storage errors degrade to unlocked.
func (l *Ledger) IsLocked(ctx context.Context, m models.Market, pair string) bool {
	raw, err := l.store.Get(ctx, Key(m, pair))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			l.log.Warn("cooldown read", logger.Error(err))
		}
		return false
	}
	until, ok := util.ParseEpochMillis(raw)
	if !ok {
		return false
	}
	return l.clk.Now().Before(until)
}

// Refresh is the per-tick display update for (market, pair). An absent or
// expired entry enables the request control, hides the countdown, removes
// the expired entry and stops the pair's ticker; a live entry disables the
// control and shows the formatted remainder. View effects apply only while
// (market, pair) is the displayed selection.
func (l *Ledger) Refresh(m models.Market, pair string) {
	if pair == "" {
		return
	}
	ctx := context.Background()

	raw, err := l.store.Get(ctx, Key(m, pair))
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		l.log.Warn("cooldown read", logger.Error(err))
		err = kvstore.ErrNotFound
	}

	if err == nil {
		if until, ok := util.ParseEpochMillis(raw); ok {
			if left := until.Sub(l.clk.Now()); left > 0 {
				if l.isDisplayed(m, pair) {
					text := util.FormatRemaining(left)
					l.view.Update(func(v *view.State) {
						v.RequestEnabled = false
						v.CooldownText = text
					})
				}
				return
			}
		}
		// Expired or unparsable: drop the entry.
		if rmErr := l.store.Remove(ctx, Key(m, pair)); rmErr != nil {
			l.log.Warn("cooldown remove", logger.Error(rmErr))
		}
	}

	if l.isDisplayed(m, pair) {
		l.view.Update(func(v *view.State) {
			v.RequestEnabled = true
			v.CooldownText = ""
		})
	}

	l.mu.Lock()
	l.stopTickerLocked(m, pair)
	l.mu.Unlock()
}

// Stop stops the display ticker for one pair. The ledger entry survives.
func (l *Ledger) Stop(m models.Market, pair string) {
	l.mu.Lock()
	l.stopTickerLocked(m, pair)
	l.mu.Unlock()
}

// StopAll stops every display ticker across all pairs; entries survive.
func (l *Ledger) StopAll() {
	l.mu.Lock()
	for key, h := range l.tickers {
		h.ticker.Stop()
		close(h.done)
		delete(l.tickers, key)
		l.stops++
	}
	l.publishTickerCountLocked()
	l.mu.Unlock()
}

// ActiveTickers reports the number of running display tickers.
func (l *Ledger) ActiveTickers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tickers)
}

// StartStopCounts reports lifetime ticker starts and stops.
func (l *Ledger) StartStopCounts() (starts, stops int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starts, l.stops
}

func (l *Ledger) startTickerLocked(m models.Market, pair string) {
	key := Key(m, pair)
	if h, ok := l.tickers[key]; ok {
		h.ticker.Stop()
		close(h.done)
		delete(l.tickers, key)
		l.stops++
	}

	h := &handle{
		ticker: l.clk.NewTicker(time.Second),
		done:   make(chan struct{}),
	}
	l.tickers[key] = h
	l.starts++
	l.publishTickerCountLocked()

	go func() {
		for {
			select {
			case <-h.done:
				return
			case <-h.ticker.C():
				l.Refresh(m, pair)
			}
		}
	}()
}

func (l *Ledger) stopTickerLocked(m models.Market, pair string) {
	key := Key(m, pair)
	h, ok := l.tickers[key]
	if !ok {
		return
	}
	h.ticker.Stop()
	close(h.done)
	delete(l.tickers, key)
	l.stops++
	l.publishTickerCountLocked()
}

func (l *Ledger) publishTickerCountLocked() {
	if l.metrics != nil {
		l.metrics.SetActiveTickers(len(l.tickers))
	}
}

func (l *Ledger) isDisplayed(m models.Market, pair string) bool {
	st := l.view.Snapshot()
	return st.Market == m && st.Pair == pair
}
