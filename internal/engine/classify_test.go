package engine

import (
	"testing"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/instrument"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

func TestClassifyActionTable(t *testing.T) {
	tests := []struct {
		name       string
		oiDelta    int64
		priceDelta float64
		want       models.Action
	}{
		{"flat price rising OI", 100, 0, models.ActionWriting},
		{"flat price falling OI", -100, 0, models.ActionUnwinding},
		{"rising price rising OI", 100, 1.5, models.ActionLongBuildUp},
		{"falling price rising OI", 100, -1.5, models.ActionWritersDominant},
		{"rising price falling OI", -100, 1.5, models.ActionShortCovering},
		{"falling price falling OI", -100, -1.5, models.ActionLongUnwinding},
		{"no movement at all", 0, 0, models.ActionIndecisive},
		{"price moved OI flat", 0, 2.0, models.ActionIndecisive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyAction(tt.oiDelta, tt.priceDelta); got != tt.want {
				t.Errorf("classifyAction(%d, %v) = %q, want %q", tt.oiDelta, tt.priceDelta, got, tt.want)
			}
		})
	}
}

func TestClassifyActionDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if classifyAction(500, -0.5) != models.ActionWritersDominant {
			t.Fatal("classifyAction is not deterministic")
		}
	}
}

func TestBucketBounds(t *testing.T) {
	e := newTestEngine(t, nil)

	tests := []struct {
		lots int64
		want models.Bucket
	}{
		{0, models.BucketIgnore},
		{1, models.BucketLow},
		{74, models.BucketLow},
		{75, models.BucketMedium},
		{99, models.BucketMedium},
		{100, models.BucketHigh},
		{150, models.BucketExtraHigh},
		{199, models.BucketExtraHigh},
		{200, models.BucketExtremeHigh},
		{100000, models.BucketExtremeHigh},
	}
	for _, tt := range tests {
		if got := e.bucket(tt.lots); got != tt.want {
			t.Errorf("bucket(%d) = %q, want %q", tt.lots, got, tt.want)
		}
	}
}

func TestLotsFromOIChange(t *testing.T) {
	e := newTestEngine(t, nil)
	bn := mustParse(t, e, "BANKNIFTY27JAN2660000CE") // lot size 30

	if got := e.lotsFromOIChange(bn, 300); got != 10 {
		t.Errorf("lots(300, size 30) = %d, want 10", got)
	}
	if got := e.lotsFromOIChange(bn, -300); got != 10 {
		t.Errorf("lots should use absolute delta, got %d", got)
	}
	if got := e.lotsFromOIChange(bn, 29); got != 0 {
		t.Errorf("lots(29, size 30) = %d, want 0 (floor)", got)
	}
	if got := e.lotsFromOIChange(bn, 0); got != 0 {
		t.Errorf("lots(0) = %d, want 0", got)
	}
}

func TestLotsDefaultAndZeroLotSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Symbols = []string{"XYZ27JAN26500CE"}
	cfg.LotSizes = map[string]int64{"ZEROCO": 0}
	cfg.DefaultLotSize = 75
	e := newTestEngine(t, &cfg)

	// Unconfigured underlying falls back to the default lot size.
	unknown := mustParse(t, e, "XYZ27JAN26500CE")
	if got := e.lotsFromOIChange(unknown, 750); got != 10 {
		t.Errorf("lots with default size = %d, want 10", got)
	}

	// A zero configured lot size yields 0 lots, never a panic.
	zero := instrument.Instrument{Symbol: "ZEROCO27JAN26100CE", Underlying: "ZEROCO"}
	if got := e.lotsFromOIChange(zero, 1000000); got != 0 {
		t.Errorf("lots with zero lot size = %d, want 0", got)
	}
}

func TestMoneyness(t *testing.T) {
	p := instrument.NewParser([]string{"BANKNIFTY"})
	call, err := p.Parse("BANKNIFTY27JAN2660000CE")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	put, err := p.Parse("BANKNIFTY27JAN2660000PE")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	fut, err := p.Parse("BANKNIFTY27JAN26FUT")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		name        string
		inst        instrument.Instrument
		futurePrice float64
		want        models.Moneyness
	}{
		{"future contract", fut, 60000, models.NotApplicable},
		{"unknown underlying", instrument.Instrument{Symbol: "X", OptionType: instrument.Call}, 60000, models.NotApplicable},
		{"unparsed option", instrument.Instrument{Symbol: "X", Underlying: "BANKNIFTY"}, 60000, models.NotApplicable},
		{"future price unknown", call, 0, models.OTM},
		{"exactly at the money", call, 60000, models.ATM},
		{"inside atm band", call, 60250, models.ATM}, // band = 301.25
		{"call below future", call, 61000, models.ITM},
		{"call above future", call, 59000, models.OTM},
		{"put above future", put, 59000, models.ITM},
		{"put below future", put, 61000, models.OTM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMoneyness(tt.inst, tt.futurePrice, 0.005); got != tt.want {
				t.Errorf("classifyMoneyness(%s, %.0f) = %q, want %q", tt.inst.Symbol, tt.futurePrice, got, tt.want)
			}
		})
	}
}

func TestMoneynessIdempotent(t *testing.T) {
	p := instrument.NewParser([]string{"BANKNIFTY"})
	call, err := p.Parse("BANKNIFTY27JAN2660000CE")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	first := classifyMoneyness(call, 60900, 0.005)
	for i := 0; i < 5; i++ {
		if got := classifyMoneyness(call, 60900, 0.005); got != first {
			t.Fatalf("classifyMoneyness changed between calls: %q then %q", first, got)
		}
	}
}
