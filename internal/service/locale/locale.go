// Package locale resolves and tracks the active UI language.
package locale

import (
	"context"
	"strings"

	"SignalDesk/internal/domain/models"
	"SignalDesk/pkg/kvstore"
	"SignalDesk/pkg/logger"
)

// PreferenceKey is the persisted saved-language key.
const PreferenceKey = "preferred-language"

// rtlLanguage is the single code rendered right-to-left.
const rtlLanguage = "ar"

// Manager owns language resolution, translation lookup and the saved
// preference. It never fails: unsupported codes collapse to the default and
// missing translations echo the key back.
type Manager struct {
	snapshot    *models.Snapshot
	store       kvstore.Store
	log         *logger.Logger
	defaultLang string
}

func NewManager(snapshot *models.Snapshot, store kvstore.Store, log *logger.Logger, defaultLang string) *Manager {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &Manager{snapshot: snapshot, store: store, log: log, defaultLang: defaultLang}
}

// Supported reports whether code has a language pack.
func (m *Manager) Supported(code string) bool {
	_, ok := m.snapshot.Translations[code]
	return ok
}

// ResolveInitial picks the startup language. Precedence: a supported URL
// code wins and is persisted; an unsupported URL code forces the default
// (also persisted) rather than guessing from the browser locale; otherwise
// the saved preference, then the browser locale, then the first available
// pack.
func (m *Manager) ResolveInitial(ctx context.Context, urlParam, browserLocale string) string {
	if raw := strings.ToLower(strings.TrimSpace(urlParam)); raw != "" {
		chosen := m.defaultLang
		if m.Supported(raw) {
			chosen = raw
		}
		m.persist(ctx, chosen)
		return chosen
	}

	if saved, err := m.store.Get(ctx, PreferenceKey); err == nil && m.Supported(saved) {
		return saved
	}

	chosen := m.fromBrowserLocale(browserLocale)
	m.persist(ctx, chosen)
	return chosen
}

func (m *Manager) fromBrowserLocale(browserLocale string) string {
	nav := strings.ToLower(browserLocale)
	if nav == "" {
		nav = "en"
	}
	base := nav
	if len(base) > 2 {
		base = base[:2]
	}
	switch {
	case m.Supported(base):
		return base
	case m.Supported("ru") && strings.HasPrefix(nav, "ru"):
		return "ru"
	case m.Supported("uk") && strings.HasPrefix(nav, "uk"):
		return "uk"
	}
	if langs := m.snapshot.Languages(); len(langs) > 0 {
		// Deterministic pick: lexicographically smallest available code.
		min := langs[0]
		for _, l := range langs[1:] {
			if l < min {
				min = l
			}
		}
		return min
	}
	return m.defaultLang
}

// SetLanguage activates a supported language and persists the preference.
// Unsupported codes are a silent no-op; the return value tells the caller
// whether anything changed.
func (m *Manager) SetLanguage(ctx context.Context, st *models.SessionState, code string) bool {
	if !m.Supported(code) {
		return false
	}
	st.Language = code
	m.persist(ctx, code)
	return true
}

// Translate returns the localized string for key under the active language,
// or the key itself when no pack or entry exists.
func (m *Manager) Translate(lang, key string) string {
	if pack, ok := m.snapshot.Translations[lang]; ok {
		if v, ok := pack[key]; ok {
			return v
		}
	}
	return key
}

// IsRTL reports whether the code renders right-to-left.
func IsRTL(code string) bool {
	return code == rtlLanguage
}

// FlagPath returns the flag asset for a language, falling back to the
// default language's flag.
func (m *Manager) FlagPath(code string) string {
	if p, ok := m.snapshot.Flags[code]; ok {
		return p
	}
	return m.snapshot.Flags[m.defaultLang]
}

// DisplayName returns the human-readable native name for a language code,
// or the upper-cased code for unknown ones.
func DisplayName(code string) string {
	names := map[string]string{
		"en": "English", "ru": "Русский", "uk": "Українська", "es": "Español",
		"de": "Deutsch", "pt": "Português", "hi": "हिन्दी", "tr": "Türkçe",
		"ar": "العربية", "uz": "O'zbekcha", "tg": "Тоҷикӣ", "az": "Azərbaycan",
		"am": "Հայերեն",
	}
	if n, ok := names[code]; ok {
		return n
	}
	return strings.ToUpper(code)
}

// ChartLocale maps a UI language to the charting collaborator's locale set.
func ChartLocale(code string) string {
	switch code {
	case "en", "ru", "uk", "es", "de", "pt", "hi", "tr", "ar", "az":
		return code
	case "am":
		return "hy"
	default:
		return "en"
	}
}

func (m *Manager) persist(ctx context.Context, code string) {
	if err := m.store.Set(ctx, PreferenceKey, code); err != nil {
		m.log.Warn("persist language preference", logger.Error(err), logger.String("code", code))
	}
}
