// Package models defines the core domain entities: ticks, instrument state,
// and alert events.
package models

// Tick is a single realtime observation for one instrument as delivered by
// the market-data feed. LastTradePrice and OpenInterest are pointers because
// the feed occasionally emits partial records; a missing required field causes
// the tick to be dropped, never an error.
type Tick struct {
	Symbol         string
	LastTradePrice *float64
	OpenInterest   *int64
}

// HasPrice reports whether the tick carries a last traded price.
func (t Tick) HasPrice() bool {
	return t.LastTradePrice != nil
}

// HasOI reports whether the tick carries an open-interest figure.
func (t Tick) HasOI() bool {
	return t.OpenInterest != nil
}

// SymbolState is the depth-2 sliding window kept per monitored option symbol.
// OIPrev == 0 is the sentinel for "no prior observation": the first update
// after that state is a warm-up sample and produces no signal.
type SymbolState struct {
	Price     float64
	PricePrev float64
	OI        int64
	OIPrev    int64
}

// WarmUp reports whether the state has no usable prior OI observation.
func (s SymbolState) WarmUp() bool {
	return s.OIPrev == 0
}
