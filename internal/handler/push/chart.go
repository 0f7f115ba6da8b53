package push

import (
	"errors"

	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/view"
)

// ErrNoSubscribers is returned when an incremental chart update has no live
// connection to land on.
var ErrNoSubscribers = errors.New("push: no subscribers")

// ChartView drives the embedded chart by pushing commands over the hub.
// Render is replayed to late joiners; SetSymbol is incremental and only
// works against a live connection.
type ChartView struct {
	hub *Hub
}

// NewChartView creates a push-backed chart collaborator.
func NewChartView(hub *Hub) repository.ChartView {
	return &ChartView{hub: hub}
}

func (c *ChartView) Render(symbol, locale string) error {
	c.hub.Publish(view.Event{Type: "chart.render", Symbol: symbol, Locale: locale})
	return nil
}

func (c *ChartView) SetSymbol(symbol string) error {
	if c.hub.Subscribers() == 0 {
		return ErrNoSubscribers
	}
	c.hub.Publish(view.Event{Type: "chart.symbol", Symbol: symbol})
	return nil
}
