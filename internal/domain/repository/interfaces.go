package repository

import (
	"context"

	"SignalDesk/internal/domain/models"
)

// Archiver is the write-only analytics sink for delivered signals. Archive
// errors are logged and never retried; nothing reads this data back.
type Archiver interface {
	Archive(ctx context.Context, s *models.Signal) error
	Close() error
}

// Metrics records operational counters for the session engine.
type Metrics interface {
	RecordSignalDelivered(market, pair string)
	RecordRejection(reason string)
	SetActiveTickers(n int)
	RecordLatency(op string, seconds float64)
}

// ChartView is the opaque charting collaborator. Both calls may fail; the
// caller degrades silently, falling back from SetSymbol to a full Render.
type ChartView interface {
	Render(symbol, locale string) error
	SetSymbol(symbol string) error
}
