package engine

import (
	"time"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// SymbolRow is one monitored option in a dashboard snapshot.
type SymbolRow struct {
	Symbol     string           `json:"symbol"`
	Underlying string           `json:"underlying"`
	Strike     int64            `json:"strike"`
	OptionType string           `json:"option_type"`
	Price      float64          `json:"price"`
	OI         int64            `json:"oi"`
	OIDelta    int64            `json:"oi_delta"`
	OIRoC      float64          `json:"oi_roc"`
	Moneyness  models.Moneyness `json:"moneyness"`
}

// Snapshot is a point-in-time view of the engine state for the dashboard.
type Snapshot struct {
	FuturePrices map[string]float64 `json:"future_prices"`
	Symbols      []SymbolRow        `json:"symbols"`
	TakenAt      time.Time          `json:"taken_at"`
}

// Snapshot copies the current per-symbol state and future price cache.
// Rows follow the configured symbol order; futures are omitted from the rows
// since their prices appear in FuturePrices.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := Snapshot{
		FuturePrices: make(map[string]float64, len(e.futures)),
		Symbols:      make([]SymbolRow, 0, len(e.states)),
		TakenAt:      e.now().In(e.loc),
	}
	for name, price := range e.futures {
		snap.FuturePrices[name] = price
	}

	for _, symbol := range e.cfg.Symbols {
		inst := e.instruments[symbol]
		if inst.IsFuture {
			continue
		}
		st := e.states[symbol]

		var oiDelta int64
		var oiRoC float64
		if !st.WarmUp() {
			oiDelta = st.OI - st.OIPrev
			oiRoC = float64(oiDelta) / float64(st.OIPrev) * 100
		}

		snap.Symbols = append(snap.Symbols, SymbolRow{
			Symbol:     symbol,
			Underlying: inst.Underlying,
			Strike:     inst.Strike,
			OptionType: string(inst.OptionType),
			Price:      st.Price,
			OI:         st.OI,
			OIDelta:    oiDelta,
			OIRoC:      oiRoC,
			Moneyness:  classifyMoneyness(inst, e.futures[inst.Underlying], e.cfg.ATMBand),
		})
	}

	return snap
}
