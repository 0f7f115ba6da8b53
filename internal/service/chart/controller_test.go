package chart

import (
	"errors"
	"testing"

	"SignalDesk/internal/domain/models"
	"SignalDesk/pkg/logger"
)

type fakeChart struct {
	renders   []string
	symbols   []string
	symbolErr error
}

func (f *fakeChart) Render(symbol, locale string) error {
	f.renders = append(f.renders, symbol+"|"+locale)
	return nil
}

func (f *fakeChart) SetSymbol(symbol string) error {
	f.symbols = append(f.symbols, symbol)
	return f.symbolErr
}

func TestSymbol(t *testing.T) {
	cases := []struct{ pair, want string }{
		{"EUR/USD", "FX:EURUSD"},
		{"GBP/JPY", "FX:GBPJPY"},
		{"", "FX:EURUSD"},
	}
	for _, c := range cases {
		if got := Symbol(c.pair); got != c.want {
			t.Errorf("Symbol(%q) = %q, want %q", c.pair, got, c.want)
		}
	}
}

func TestShowForexOnly(t *testing.T) {
	f := &fakeChart{}
	c := NewController(f, logger.Nop())

	c.Show(models.MarketForex, "EUR/USD", "ru")
	c.Show(models.MarketOTC, "OTC EUR/USD", "ru")

	if len(f.renders) != 1 || f.renders[0] != "FX:EURUSD|ru" {
		t.Errorf("renders = %v", f.renders)
	}
}

func TestUpdateSymbolFallsBackToRender(t *testing.T) {
	f := &fakeChart{symbolErr: errors.New("no connection")}
	c := NewController(f, logger.Nop())

	c.UpdateSymbol(models.MarketForex, "GBP/USD", "en")

	if len(f.symbols) != 1 {
		t.Fatalf("symbols = %v", f.symbols)
	}
	if len(f.renders) != 1 || f.renders[0] != "FX:GBPUSD|en" {
		t.Errorf("renders = %v, want fallback render", f.renders)
	}
}

func TestUpdateSymbolLiveUpdateSkipsRender(t *testing.T) {
	f := &fakeChart{}
	c := NewController(f, logger.Nop())

	c.UpdateSymbol(models.MarketForex, "GBP/USD", "en")

	if len(f.symbols) != 1 || len(f.renders) != 0 {
		t.Errorf("symbols=%v renders=%v", f.symbols, f.renders)
	}
}

func TestNilChartIsIgnored(t *testing.T) {
	c := NewController(nil, logger.Nop())
	c.Show(models.MarketForex, "EUR/USD", "en")
	c.UpdateSymbol(models.MarketForex, "EUR/USD", "en")
}
