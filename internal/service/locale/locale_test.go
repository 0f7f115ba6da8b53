package locale

import (
	"context"
	"testing"

	"SignalDesk/internal/domain/models"
	"SignalDesk/pkg/kvstore"
	"SignalDesk/pkg/logger"
)

func testSnapshot() *models.Snapshot {
	s := &models.Snapshot{
		Flags: map[string]string{"en": "/flags/gb.svg", "ru": "/flags/ru.svg"},
		Translations: map[string]map[string]string{
			"en": {"weekendMessage": "Market closed"},
			"ru": {"weekendMessage": "Рынок закрыт"},
			"uk": {},
			"ar": {},
		},
	}
	s.Normalize()
	return s
}

func newTestManager(t *testing.T) (*Manager, kvstore.Store) {
	t.Helper()
	store := kvstore.NewMemory()
	return NewManager(testSnapshot(), store, logger.Nop(), "en"), store
}

func TestResolveInitialSupportedURLParamWinsAndPersists(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	if got := m.ResolveInitial(ctx, "ru", "uk-UA"); got != "ru" {
		t.Fatalf("resolved %q, want ru", got)
	}
	if saved, _ := store.Get(ctx, PreferenceKey); saved != "ru" {
		t.Errorf("persisted %q, want ru", saved)
	}
}

func TestResolveInitialUnsupportedURLParamForcesDefault(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	// A saved preference and a matchable browser locale both exist; the
	// unsupported URL value still forces the default.
	_ = store.Set(ctx, PreferenceKey, "ru")

	if got := m.ResolveInitial(ctx, "xx", "ru-RU"); got != "en" {
		t.Fatalf("resolved %q, want en", got)
	}
	if saved, _ := store.Get(ctx, PreferenceKey); saved != "en" {
		t.Errorf("persisted %q, want en", saved)
	}
}

func TestResolveInitialSavedPreference(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	_ = store.Set(ctx, PreferenceKey, "uk")

	if got := m.ResolveInitial(ctx, "", "en-US"); got != "uk" {
		t.Errorf("resolved %q, want uk", got)
	}
}

func TestResolveInitialBrowserLocale(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		browser string
		want    string
	}{
		{"ru-RU", "ru"},  // exact base match
		{"uk", "uk"},     // already a base code
		{"en-GB", "en"},  // base match
		{"fr-FR", "ar"},  // no match: lexicographically smallest available
		{"", "en"},       // empty defaults to en
	}
	for _, c := range cases {
		m, _ := newTestManager(t)
		if got := m.ResolveInitial(ctx, "", c.browser); got != c.want {
			t.Errorf("browser %q resolved %q, want %q", c.browser, got, c.want)
		}
	}
}

func TestSetLanguage(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	st := &models.SessionState{Language: "en"}

	if m.SetLanguage(ctx, st, "xx") {
		t.Fatal("unsupported code accepted")
	}
	if st.Language != "en" {
		t.Fatalf("state mutated on rejection: %q", st.Language)
	}

	if !m.SetLanguage(ctx, st, "ru") {
		t.Fatal("supported code rejected")
	}
	if st.Language != "ru" {
		t.Errorf("state language %q", st.Language)
	}
	if saved, _ := store.Get(ctx, PreferenceKey); saved != "ru" {
		t.Errorf("persisted %q", saved)
	}
}

func TestTranslateFallsBackToKey(t *testing.T) {
	m, _ := newTestManager(t)

	if got := m.Translate("ru", "weekendMessage"); got != "Рынок закрыт" {
		t.Errorf("translate = %q", got)
	}
	if got := m.Translate("ru", "unknownKey"); got != "unknownKey" {
		t.Errorf("missing entry = %q, want the key back", got)
	}
	if got := m.Translate("xx", "weekendMessage"); got != "weekendMessage" {
		t.Errorf("missing pack = %q, want the key back", got)
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL("ar") {
		t.Error("ar must be RTL")
	}
	for _, code := range []string{"en", "ru", "he", ""} {
		if IsRTL(code) {
			t.Errorf("%q flagged RTL", code)
		}
	}
}

func TestChartLocale(t *testing.T) {
	cases := map[string]string{
		"en": "en",
		"ru": "ru",
		"am": "hy",
		"uz": "en",
		"tg": "en",
		"xx": "en",
	}
	for code, want := range cases {
		if got := ChartLocale(code); got != want {
			t.Errorf("ChartLocale(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestFlagPathFallsBackToDefault(t *testing.T) {
	m, _ := newTestManager(t)
	if got := m.FlagPath("ru"); got != "/flags/ru.svg" {
		t.Errorf("FlagPath(ru) = %q", got)
	}
	if got := m.FlagPath("uk"); got != "/flags/gb.svg" {
		t.Errorf("FlagPath(uk) = %q, want the default flag", got)
	}
}
