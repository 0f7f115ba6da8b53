//go:build wireinject
// +build wireinject

package di

import (
	"SignalDesk/pkg/config"
	"SignalDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideClock,
		ProvideMetrics,

		// Infrastructure
		ProvideStore,
		ProvideSnapshot,
		ProvideArchiver,

		// Push channel
		ProvideHub,
		ProvideView,
		ProvideChartView,

		// Domain services
		ProvideChartController,
		ProvideLocale,
		ProvideLedger,
		ProvideSelector,

		// Use cases and transport
		ProvideSession,
		ProvideSessionHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
