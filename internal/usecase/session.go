// Package usecase hosts the signal session engine: the state machine behind
// the page. One engine instance serves the process; a single mutex
// serializes every operation and timer callback.
package usecase

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/chart"
	"SignalDesk/internal/service/cooldown"
	"SignalDesk/internal/service/locale"
	"SignalDesk/internal/service/market"
	"SignalDesk/internal/view"
	"SignalDesk/pkg/clock"
	"SignalDesk/pkg/kvstore"
	"SignalDesk/pkg/logger"
	"SignalDesk/pkg/util"

	"github.com/google/uuid"
)

// HistoryKey is the persisted signal-history key. The mapping is written on
// every delivery and read only at startup; it is never used to restore the
// display after a reload.
const HistoryKey = "signal-history"

// Rejection reasons recorded when a signal request fails a guard.
const (
	RejectInFlight     = "in_flight"
	RejectMarketClosed = "market_closed"
	RejectNoExpiration = "no_expiration"
	RejectCooldown     = "cooldown"
)

// Deps collects the session engine collaborators.
type Deps struct {
	Snapshot *models.Snapshot
	Locale   *locale.Manager
	Selector *market.Selector
	Ledger   *cooldown.Ledger
	Charts   *chart.Controller
	View     *view.View
	Store    kvstore.Store
	Archiver repository.Archiver
	Metrics  repository.Metrics
	Log      *logger.Logger
	Clock    clock.Clock

	// Draw returns a uniform value in [0,1); Delay returns the simulated
	// request latency. Both default to randomized implementations and are
	// injectable for tests.
	Draw  func() float64
	Delay func() time.Duration
}

// Session orchestrates signal requests over the shared session state.
type Session struct {
	mu sync.Mutex
	st models.SessionState

	snapshot *models.Snapshot
	locale   *locale.Manager
	selector *market.Selector
	ledger   *cooldown.Ledger
	charts   *chart.Controller
	view     *view.View
	store    kvstore.Store
	archiver repository.Archiver
	metrics  repository.Metrics
	log      *logger.Logger
	clk      clock.Clock

	draw  func() float64
	delay func() time.Duration

	booted      bool
	inFlight    bool
	requestedAt time.Time
	history     map[string]*models.Signal
}

func NewSession(d Deps) *Session {
	draw := d.Draw
	if draw == nil {
		draw = rand.Float64
	}
	delay := d.Delay
	if delay == nil {
		delay = func() time.Duration {
			return 1200*time.Millisecond + time.Duration(rand.Int63n(int64(1200*time.Millisecond)))
		}
	}
	return &Session{
		snapshot: d.Snapshot,
		locale:   d.Locale,
		selector: d.Selector,
		ledger:   d.Ledger,
		charts:   d.Charts,
		view:     d.View,
		store:    d.Store,
		archiver: d.Archiver,
		metrics:  d.Metrics,
		log:      d.Log,
		clk:      d.Clock,
		draw:     draw,
		delay:    delay,
		history:  make(map[string]*models.Signal),
	}
}

// Bootstrap brings the session live: resolves the initial language, loads
// the write-only history, runs the cooldown amnesty and activates the forex
// market (substituting OTC when closed). Only the first call does anything;
// later calls are a no-op so every entry point can trigger it lazily.
func (s *Session) Bootstrap(ctx context.Context, urlLang, browserLocale string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.booted {
		return
	}
	s.booted = true

	lang := s.locale.ResolveInitial(ctx, urlLang, browserLocale)
	s.st.Language = lang
	s.view.Update(func(v *view.State) {
		v.Language = lang
		v.RTL = locale.IsRTL(lang)
	})

	s.loadHistory(ctx)
	s.ledger.RunAmnesty(ctx)

	s.selector.SwitchMarket(&s.st, models.MarketForex)
	s.charts.Show(s.st.Market, s.st.Pair, locale.ChartLocale(lang))
}

// SetLanguage switches the active language. Unsupported codes are a silent
// no-op. After a change the last signal is re-rendered when one was shown
// this session, otherwise the placeholder is.
func (s *Session) SetLanguage(ctx context.Context, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.locale.SetLanguage(ctx, &s.st, code) {
		return false
	}

	last := s.st.LastSignal
	hasSignal := s.st.HasActualSignal && last != nil
	s.view.Update(func(v *view.State) {
		v.Language = code
		v.RTL = locale.IsRTL(code)
		if hasSignal {
			v.Placeholder = false
			v.Signal = last
		} else {
			v.Placeholder = true
			v.Signal = nil
		}
	})

	// The collaborator has no live locale call; recreate the chart.
	s.charts.Show(s.st.Market, s.st.Pair, locale.ChartLocale(code))
	return true
}

// SwitchMarket activates a market and returns the one actually activated
// (OTC when forex was requested on a closed day).
func (s *Session) SwitchMarket(ctx context.Context, requested models.Market) models.Market {
	s.mu.Lock()
	defer s.mu.Unlock()

	actual := s.selector.SwitchMarket(&s.st, requested)
	s.charts.UpdateSymbol(actual, s.st.Pair, locale.ChartLocale(s.st.Language))
	return actual
}

// SetPair makes pair current within the active market.
func (s *Session) SetPair(ctx context.Context, pair string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selector.SetPair(&s.st, pair) {
		return false
	}
	s.charts.UpdateSymbol(s.st.Market, pair, locale.ChartLocale(s.st.Language))
	return true
}

// SelectExpiration picks an expiration from the active market's menu.
func (s *Session) SelectExpiration(ctx context.Context, seconds int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.SelectExpiration(&s.st, seconds)
}

// RequestSignal runs the request state machine: Idle -> Requesting ->
// Delivered, with four silent-or-noticed rejection guards evaluated in
// order. Delivery happens after the simulated latency elapses.
func (s *Session) RequestSignal(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		s.metrics.RecordRejection(RejectInFlight)
		return
	}
	if s.st.Market == models.MarketForex && s.selector.IsMarketClosed(models.MarketForex) {
		s.view.Notice(s.locale.Translate(s.st.Language, "weekendMessage"))
		s.metrics.RecordRejection(RejectMarketClosed)
		return
	}
	if s.st.Expiration <= 0 {
		// Recover the inconsistent control set; no notice.
		s.selector.ResetExpirations(&s.st)
		s.metrics.RecordRejection(RejectNoExpiration)
		return
	}
	if s.ledger.IsLocked(ctx, s.st.Market, s.st.Pair) {
		// Control is already disabled; this guard is the safety net.
		s.metrics.RecordRejection(RejectCooldown)
		return
	}

	s.inFlight = true
	s.requestedAt = s.clk.Now()
	s.view.Update(func(v *view.State) {
		v.Loading = true
		v.RequestEnabled = false
	})

	s.clk.AfterFunc(s.delay(), s.deliver)
}

// deliver completes a request: generates the signal, renders and archives
// it, arms the cooldown and returns the machine to Idle.
func (s *Session) deliver() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	now := s.clk.Now()
	sig := &models.Signal{
		ID:               uuid.NewString(),
		Direction:        models.PickDirection(s.draw()),
		Confidence:       models.BucketConfidence(s.draw()),
		Pair:             s.st.Pair,
		Market:           s.st.Market,
		Expiration:       s.st.Expiration,
		ExpirationLabel:  util.FormatExpiration(s.st.Expiration),
		CreatedAt:        now.UnixMilli(),
		DisplayTimestamp: now.Format("15:04:05"),
	}

	s.st.HasActualSignal = true
	s.st.LastSignal = sig

	// Restore the control first; Arm's refresh re-disables it for as long
	// as a cooldown is actually armed. With no pair selected nothing arms
	// and the control must not stay dead.
	s.view.Update(func(v *view.State) {
		v.Placeholder = false
		v.Signal = sig
		v.Loading = false
		v.RequestEnabled = true
	})

	s.archive(ctx, sig)
	s.metrics.RecordSignalDelivered(string(sig.Market), sig.Pair)
	s.metrics.RecordLatency("deliver", now.Sub(s.requestedAt).Seconds())

	s.ledger.Arm(ctx, sig.Market, sig.Pair, sig.Expiration)
	s.inFlight = false
}

// archive overwrites the history slot for (market, pair) and publishes to
// the analytics sink. Both writes are fire-and-forget.
func (s *Session) archive(ctx context.Context, sig *models.Signal) {
	s.history[sig.HistoryKey()] = sig
	if b, err := json.Marshal(s.history); err == nil {
		if err := s.store.Set(ctx, HistoryKey, string(b)); err != nil {
			s.log.Warn("history persist", logger.Error(err))
		}
	}

	if s.archiver != nil {
		go func() {
			actx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.archiver.Archive(actx, sig); err != nil {
				s.log.Warn("signal archive", logger.Error(err), logger.String("pair", sig.Pair))
			}
		}()
	}
}

func (s *Session) loadHistory(ctx context.Context) {
	raw, err := s.store.Get(ctx, HistoryKey)
	if err != nil {
		return
	}
	var h map[string]*models.Signal
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		s.log.Warn("history decode", logger.Error(err))
		return
	}
	s.history = h
}

// State returns the current render state.
func (s *Session) State() view.State {
	return s.view.Snapshot()
}

// InFlight reports whether a request is pending delivery.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// UIConfig is the snapshot-derived data the page needs to build its
// controls.
type UIConfig struct {
	Languages    []UILanguage                 `json:"languages"`
	Translations map[string]map[string]string `json:"translations"`
	Markets      map[string][]string          `json:"markets"`
	Expirations  map[string][]int             `json:"expirations"`
}

// UILanguage describes one language menu entry.
type UILanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Config assembles the UI configuration from the startup snapshot.
func (s *Session) Config() UIConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	langs := s.snapshot.Languages()
	entries := make([]UILanguage, 0, len(langs))
	for _, code := range langs {
		entries = append(entries, UILanguage{
			Code: code,
			Name: locale.DisplayName(code),
			Flag: s.locale.FlagPath(code),
		})
	}
	// Stable menu order.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Code < entries[j-1].Code; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	return UIConfig{
		Languages:    entries,
		Translations: s.snapshot.Translations,
		Markets: map[string][]string{
			string(models.MarketForex): s.snapshot.Markets.Forex,
			string(models.MarketOTC):   s.snapshot.Markets.OTC,
		},
		Expirations: map[string][]int{
			string(models.MarketForex): s.selector.Expirations(models.MarketForex),
			string(models.MarketOTC):   s.selector.Expirations(models.MarketOTC),
		},
	}
}
