package models

import (
	"errors"
	"time"
)

// Moneyness labels an option strike relative to the underlying future price.
type Moneyness string

const (
	ITM           Moneyness = "ITM"
	ATM           Moneyness = "ATM"
	OTM           Moneyness = "OTM"
	NotApplicable Moneyness = "N/A"
)

// Alertable reports whether the moneyness passes the alert filter.
func (m Moneyness) Alertable() bool {
	return m == ITM || m == ATM
}

// Action is the classified market behaviour behind an OI/price move.
type Action string

const (
	ActionWriting         Action = "WRITING / HEDGING"
	ActionUnwinding       Action = "POSITION UNWINDING / PROFIT BOOKING"
	ActionLongBuildUp     Action = "BUYERS DOMINANT (LONG BUILD-UP)"
	ActionWritersDominant Action = "WRITERS DOMINANT (SHORT / PUT WRITING)"
	ActionShortCovering   Action = "SHORT COVERING"
	ActionLongUnwinding   Action = "LONG UNWINDING"
	ActionIndecisive      Action = "Indecisive Movement"
)

// Bucket is the qualitative size classification of an OI change in lots.
type Bucket string

const (
	BucketExtremeHigh Bucket = "EXTREME HIGH"
	BucketExtraHigh   Bucket = "EXTRA HIGH"
	BucketHigh        Bucket = "HIGH"
	BucketMedium      Bucket = "MEDIUM"
	BucketLow         Bucket = "LOW"
	BucketIgnore      Bucket = "IGNORE"
)

// AlertEvent is the materialized decision to notify. It is produced and
// dispatched within a single tick's processing; the journal keeps a copy for
// the dashboard but the engine holds no reference afterwards.
type AlertEvent struct {
	Symbol      string    `json:"symbol"`
	Underlying  string    `json:"underlying"`
	Action      Action    `json:"action"`
	Bucket      Bucket    `json:"bucket"`
	Lots        int64     `json:"lots"`
	OIPrev      int64     `json:"oi_prev"`
	OIDelta     int64     `json:"oi_delta"`
	OIRoC       float64   `json:"oi_roc"`
	Moneyness   Moneyness `json:"moneyness"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Validate checks alert field constraints before journaling.
func (a *AlertEvent) Validate() error {
	if a.Symbol == "" {
		return errors.New("alert symbol must not be empty")
	}
	if a.Action == "" {
		return errors.New("alert action must not be empty")
	}
	if a.Bucket == "" || a.Bucket == BucketIgnore {
		return errors.New("alert bucket must be an alertable size")
	}
	if a.Lots < 0 {
		return errors.New("alert lots must not be negative")
	}
	if a.Message == "" {
		return errors.New("alert message must not be empty")
	}
	if a.TriggeredAt.IsZero() {
		return errors.New("alert trigger time must be set")
	}
	return nil
}
