package models

import "time"

// Direction of a delivered signal.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// Confidence bucket of a delivered signal.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// BucketConfidence maps a single uniform draw in [0,1) to a confidence
// bucket: high above 0.7, medium above 0.4, low otherwise.
func BucketConfidence(r float64) Confidence {
	switch {
	case r > 0.7:
		return ConfidenceHigh
	case r > 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// PickDirection maps a uniform draw in [0,1) to a direction: buy above 0.5.
func PickDirection(r float64) Direction {
	if r > 0.5 {
		return DirectionBuy
	}
	return DirectionSell
}

// Signal is a delivered recommendation. Immutable once created.
type Signal struct {
	ID               string     `json:"id"`
	Direction        Direction  `json:"direction"`
	Confidence       Confidence `json:"confidence"`
	Pair             string     `json:"pair"`
	Market           Market     `json:"market"`
	Expiration       int        `json:"expiration"`      // seconds
	ExpirationLabel  string     `json:"expirationLabel"` // "30s" / "5m" card label
	CreatedAt        int64      `json:"createdAt"`       // epoch milliseconds
	DisplayTimestamp string     `json:"timestamp"`       // wall-clock string shown on the card
}

// HistoryKey keys the write-only signal history by (market, pair).
func (s *Signal) HistoryKey() string {
	return string(s.Market) + ":" + s.Pair
}

// CreatedTime returns CreatedAt as a time.Time.
func (s *Signal) CreatedTime() time.Time {
	return time.UnixMilli(s.CreatedAt)
}
