package models

// Snapshot is the configuration payload fetched once at startup. It carries
// language packs, flag asset paths and the tradable pair list per market.
type Snapshot struct {
	Flags        map[string]string            `json:"flags"`
	Translations map[string]map[string]string `json:"translations"`
	Markets      SnapshotMarkets              `json:"markets"`
	// Pairs is the legacy single-list shape; when set it populates the
	// forex list and the OTC list is derived from it.
	Pairs []string `json:"pairs"`
}

// SnapshotMarkets holds the per-market pair lists. Order is display order.
type SnapshotMarkets struct {
	Forex []string `json:"forex"`
	OTC   []string `json:"otc"`
}

// Normalize fills gaps after decoding: nil maps become empty, the legacy
// pair list is promoted, and a missing OTC list is derived by prefixing
// every forex pair.
func (s *Snapshot) Normalize() {
	if s.Flags == nil {
		s.Flags = map[string]string{}
	}
	if s.Translations == nil {
		s.Translations = map[string]map[string]string{}
	}
	if len(s.Markets.Forex) == 0 && len(s.Pairs) > 0 {
		s.Markets.Forex = s.Pairs
	}
	if len(s.Markets.OTC) == 0 && len(s.Markets.Forex) > 0 {
		derived := make([]string, len(s.Markets.Forex))
		for i, p := range s.Markets.Forex {
			derived[i] = OTCPairPrefix + p
		}
		s.Markets.OTC = derived
	}
}

// PairsFor returns the ordered pair list for a market.
func (s *Snapshot) PairsFor(m Market) []string {
	switch m {
	case MarketForex:
		return s.Markets.Forex
	case MarketOTC:
		return s.Markets.OTC
	default:
		return nil
	}
}

// Languages returns the supported language codes. Order is unspecified.
func (s *Snapshot) Languages() []string {
	codes := make([]string, 0, len(s.Translations))
	for code := range s.Translations {
		codes = append(codes, code)
	}
	return codes
}

// EmptySnapshot is used when the remote config cannot be fetched; every
// consumer tolerates the empty maps and lists.
func EmptySnapshot() *Snapshot {
	s := &Snapshot{}
	s.Normalize()
	return s
}
