// Package chart drives the opaque charting collaborator.
package chart

import (
	"strings"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/domain/repository"
	"SignalDesk/pkg/logger"
)

const defaultSymbol = "FX:EURUSD"

// Symbol converts a pair identifier to the collaborator's symbol format:
// "FX:" plus the pair with its separator removed.
func Symbol(pair string) string {
	if pair == "" {
		return defaultSymbol
	}
	return "FX:" + strings.ReplaceAll(pair, "/", "")
}

// Controller wraps a ChartView and absorbs its failures: a broken live
// update falls back to a full re-render, and a broken render leaves the
// rest of the page untouched.
type Controller struct {
	chart repository.ChartView
	log   *logger.Logger
}

func NewController(chart repository.ChartView, log *logger.Logger) *Controller {
	return &Controller{chart: chart, log: log}
}

// Show renders the chart for a pair in the given locale. Charts exist for
// the forex market only.
func (c *Controller) Show(m models.Market, pair, locale string) {
	if c.chart == nil || m != models.MarketForex {
		return
	}
	if err := c.chart.Render(Symbol(pair), locale); err != nil {
		c.log.Warn("chart render", logger.Error(err))
	}
}

// UpdateSymbol points the chart at a new pair via the live update call,
// falling back to a full teardown-and-recreate when that fails.
func (c *Controller) UpdateSymbol(m models.Market, pair, locale string) {
	if c.chart == nil || m != models.MarketForex || pair == "" {
		return
	}
	if err := c.chart.SetSymbol(Symbol(pair)); err != nil {
		if rerr := c.chart.Render(Symbol(pair), locale); rerr != nil {
			c.log.Warn("chart recreate", logger.Error(rerr))
		}
	}
}
