package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/service/chart"
	"SignalDesk/internal/service/cooldown"
	"SignalDesk/internal/service/locale"
	"SignalDesk/internal/service/market"
	"SignalDesk/internal/usecase"
	"SignalDesk/internal/view"
	"SignalDesk/pkg/clock"
	xhttp "SignalDesk/pkg/http"
	"SignalDesk/pkg/kvstore"
	"SignalDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

type nopSink struct{}

func (nopSink) Publish(view.Event) {}

type nopMetrics struct{}

func (nopMetrics) RecordSignalDelivered(market, pair string) {}
func (nopMetrics) RecordRejection(reason string)             {}
func (nopMetrics) SetActiveTickers(n int)                    {}
func (nopMetrics) RecordLatency(op string, seconds float64)  {}

// monday keeps the forex market open for every test.
var monday = time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*echo.Echo, *clock.Mock) {
	t.Helper()

	snap := &models.Snapshot{
		Translations: map[string]map[string]string{
			"en": {"weekendMessage": "Market closed"},
			"ru": {"weekendMessage": "Рынок закрыт"},
		},
		Markets: models.SnapshotMarkets{Forex: []string{"EUR/USD", "GBP/USD"}},
	}
	snap.Normalize()

	v := view.New(nopSink{})
	clk := clock.NewMock(monday)
	store := kvstore.NewMemory()
	log := logger.Nop()

	ledger := cooldown.NewLedger(store, clk, v, log, nopMetrics{})
	loc := locale.NewManager(snap, store, log, "en")
	sel := market.NewSelector(snap, []int{60, 120}, []int{5, 15}, ledger, v, clk, func(key string) {
		v.Notice(loc.Translate(v.Snapshot().Language, key))
	})

	session := usecase.NewSession(usecase.Deps{
		Snapshot: snap,
		Locale:   loc,
		Selector: sel,
		Ledger:   ledger,
		Charts:   chart.NewController(nil, log),
		View:     v,
		Store:    store,
		Metrics:  nopMetrics{},
		Log:      log,
		Clock:    clk,
		Delay:    func() time.Duration { return time.Second },
	})

	e := echo.New()
	NewSessionHandler(log, session).RegisterRoutes(e)
	return e, clk
}

func doJSON(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, xhttp.APIResponse) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env xhttp.APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func asState(t *testing.T, data interface{}) view.State {
	t.Helper()
	b, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	var st view.State
	if err := json.Unmarshal(b, &st); err != nil {
		t.Fatal(err)
	}
	return st
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)
	rec, _ := doJSON(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStateBootstrapsWithLangQuery(t *testing.T) {
	e, _ := newTestServer(t)

	rec, env := doJSON(e, http.MethodGet, "/api/state?lang=ru", "")
	if rec.Code != http.StatusOK || env.Status != http.StatusOK {
		t.Fatalf("http=%d envelope=%d", rec.Code, env.Status)
	}
	st := asState(t, env.Data)
	if st.Language != "ru" {
		t.Errorf("language = %q, want ru from the lang query", st.Language)
	}
	if st.Market != models.MarketForex || st.Pair != "EUR/USD" || st.Expiration != 60 {
		t.Errorf("market=%v pair=%q exp=%d", st.Market, st.Pair, st.Expiration)
	}
}

func TestStateUnsupportedLangFallsBack(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/state?lang=xx", nil)
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	// An explicit but unsupported lang forces the default, the browser
	// preference does not win.
	if st := asState(t, env.Data); st.Language != "en" {
		t.Errorf("language = %q, want forced default", st.Language)
	}
}

func TestConfigListsControls(t *testing.T) {
	e, _ := newTestServer(t)

	_, env := doJSON(e, http.MethodGet, "/api/config", "")
	if env.Status != http.StatusOK {
		t.Fatalf("envelope = %d", env.Status)
	}
	b, _ := json.Marshal(env.Data)
	var cfg usecase.UIConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Languages) != 2 {
		t.Errorf("languages = %v", cfg.Languages)
	}
	if got := cfg.Expirations["forex"]; len(got) != 2 || got[0] != 60 {
		t.Errorf("forex expirations = %v", got)
	}
	if got := cfg.Markets["otc"]; len(got) != 2 || got[0] != "OTC EUR/USD" {
		t.Errorf("otc pairs = %v", got)
	}
}

func TestSetLanguageValidation(t *testing.T) {
	e, _ := newTestServer(t)

	rec, env := doJSON(e, http.MethodPost, "/api/language", `{"language":""}`)
	if rec.Code != http.StatusOK || env.Status != http.StatusBadRequest {
		t.Errorf("http=%d envelope=%d, want 200/400", rec.Code, env.Status)
	}

	_, env = doJSON(e, http.MethodPost, "/api/language", `{"language":"xx"}`)
	if env.Status != http.StatusNotFound {
		t.Errorf("envelope = %d for unsupported language", env.Status)
	}

	_, env = doJSON(e, http.MethodPost, "/api/language", `{"language":"ru"}`)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope = %d", env.Status)
	}
	if st := asState(t, env.Data); st.Language != "ru" {
		t.Errorf("language = %q", st.Language)
	}
}

func TestSwitchMarketValidatesAndReportsActive(t *testing.T) {
	e, _ := newTestServer(t)

	_, env := doJSON(e, http.MethodPost, "/api/market", `{"market":"crypto"}`)
	if env.Status != http.StatusBadRequest {
		t.Errorf("envelope = %d for unknown market", env.Status)
	}

	_, env = doJSON(e, http.MethodPost, "/api/market", `{"market":"otc"}`)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope = %d", env.Status)
	}
	b, _ := json.Marshal(env.Data)
	var resp SwitchMarketResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Requested != "otc" || resp.Active != "otc" {
		t.Errorf("requested=%q active=%q", resp.Requested, resp.Active)
	}
	if resp.State.Pair != "OTC EUR/USD" || resp.State.Expiration != 5 {
		t.Errorf("pair=%q exp=%d", resp.State.Pair, resp.State.Expiration)
	}
}

func TestSetPairUnknownPair(t *testing.T) {
	e, _ := newTestServer(t)

	_, env := doJSON(e, http.MethodPost, "/api/pair", `{"pair":"USD/JPY"}`)
	if env.Status != http.StatusNotFound {
		t.Errorf("envelope = %d for pair outside the market", env.Status)
	}

	_, env = doJSON(e, http.MethodPost, "/api/pair", `{"pair":"GBP/USD"}`)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope = %d", env.Status)
	}
	if st := asState(t, env.Data); st.Pair != "GBP/USD" {
		t.Errorf("pair = %q", st.Pair)
	}
}

func TestSelectExpirationOutsideMenu(t *testing.T) {
	e, _ := newTestServer(t)

	_, env := doJSON(e, http.MethodPost, "/api/expiration", `{"seconds":45}`)
	if env.Status != http.StatusBadRequest {
		t.Errorf("envelope = %d for off-menu value", env.Status)
	}

	_, env = doJSON(e, http.MethodPost, "/api/expiration", `{"seconds":120}`)
	if env.Status != http.StatusOK {
		t.Fatalf("envelope = %d", env.Status)
	}
	if st := asState(t, env.Data); st.Expiration != 120 {
		t.Errorf("expiration = %d", st.Expiration)
	}
}

func TestRequestSignalAcceptedAndDelivered(t *testing.T) {
	e, clk := newTestServer(t)

	rec, env := doJSON(e, http.MethodPost, "/api/signal", "")
	if rec.Code != http.StatusOK || env.Status != http.StatusAccepted {
		t.Fatalf("http=%d envelope=%d, want 200/202", rec.Code, env.Status)
	}
	if st := asState(t, env.Data); !st.Loading || st.RequestEnabled {
		t.Errorf("loading=%v enabled=%v right after accept", st.Loading, st.RequestEnabled)
	}

	clk.Advance(time.Second)

	_, env = doJSON(e, http.MethodGet, "/api/state", "")
	st := asState(t, env.Data)
	if st.Signal == nil || st.Loading {
		t.Errorf("signal=%v loading=%v after delivery", st.Signal, st.Loading)
	}
	if st.RequestEnabled || st.CooldownText == "" {
		t.Errorf("enabled=%v cooldown=%q, want locked", st.RequestEnabled, st.CooldownText)
	}
}

func TestRequestSignalRateLimited(t *testing.T) {
	e, _ := newTestServer(t)

	var last xhttp.APIResponse
	for i := 0; i < signalBurst+1; i++ {
		_, last = doJSON(e, http.MethodPost, "/api/signal", "")
	}
	if last.Status != http.StatusTooManyRequests {
		t.Errorf("envelope = %d after exhausting the burst", last.Status)
	}
}
