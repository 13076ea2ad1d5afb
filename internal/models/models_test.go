package models

import (
	"testing"
	"time"
)

func validAlert() AlertEvent {
	return AlertEvent{
		Symbol:      "BANKNIFTY27JAN2660000CE",
		Underlying:  "BANKNIFTY",
		Action:      ActionLongBuildUp,
		Bucket:      BucketHigh,
		Lots:        120,
		OIPrev:      10000,
		OIDelta:     3600,
		OIRoC:       36,
		Moneyness:   ITM,
		Message:     "alert text",
		TriggeredAt: time.Now(),
	}
}

func TestAlertEventValidate(t *testing.T) {
	a := validAlert()
	if err := a.Validate(); err != nil {
		t.Fatalf("Valid alert rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AlertEvent)
	}{
		{"empty symbol", func(a *AlertEvent) { a.Symbol = "" }},
		{"empty action", func(a *AlertEvent) { a.Action = "" }},
		{"ignore bucket", func(a *AlertEvent) { a.Bucket = BucketIgnore }},
		{"negative lots", func(a *AlertEvent) { a.Lots = -1 }},
		{"empty message", func(a *AlertEvent) { a.Message = "" }},
		{"zero trigger time", func(a *AlertEvent) { a.TriggeredAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAlert()
			tt.mutate(&a)
			if err := a.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestMoneynessAlertable(t *testing.T) {
	if !ITM.Alertable() || !ATM.Alertable() {
		t.Error("ITM and ATM must be alertable")
	}
	if OTM.Alertable() || NotApplicable.Alertable() {
		t.Error("OTM and N/A must not be alertable")
	}
}

func TestTickFieldPresence(t *testing.T) {
	price := 105.5
	oi := int64(10300)

	full := Tick{Symbol: "X", LastTradePrice: &price, OpenInterest: &oi}
	if !full.HasPrice() || !full.HasOI() {
		t.Error("Full tick should report both fields present")
	}

	partial := Tick{Symbol: "X", LastTradePrice: &price}
	if !partial.HasPrice() || partial.HasOI() {
		t.Error("Partial tick should report missing OI only")
	}
}

func TestSymbolStateWarmUp(t *testing.T) {
	if (SymbolState{}).WarmUp() != true {
		t.Error("Zero state must be warm-up")
	}
	if (SymbolState{OIPrev: 10000}).WarmUp() {
		t.Error("State with prior OI is past warm-up")
	}
}
