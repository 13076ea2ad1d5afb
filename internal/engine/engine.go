// Package engine implements the per-symbol alert decision pipeline: state
// tracking, OI rate-of-change gating, size bucketing, moneyness filtering,
// and action classification.
package engine

import (
	"sync"
	"time"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/instrument"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/logger"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// Sink receives formatted alert text. Implementations must not block the
// caller; the engine fires and forgets.
type Sink interface {
	Dispatch(text string)
}

// Journal records dispatched alerts for later inspection. Optional.
type Journal interface {
	Record(alert *models.AlertEvent) error
}

// Config holds the engine thresholds and instrument universe.
type Config struct {
	Symbols        []string
	LotSizes       map[string]int64
	DefaultLotSize int64
	OIRoCThreshold float64
	MinLots        int64
	ATMBand        float64
	Buckets        []BucketBound
}

// BucketBound maps a minimum lot count to its size label. Bounds are checked
// in order, so they must be sorted by descending MinLots.
type BucketBound struct {
	MinLots int64
	Label   models.Bucket
}

// DefaultBuckets returns the standard size ladder.
func DefaultBuckets() []BucketBound {
	return []BucketBound{
		{MinLots: 200, Label: models.BucketExtremeHigh},
		{MinLots: 150, Label: models.BucketExtraHigh},
		{MinLots: 100, Label: models.BucketHigh},
		{MinLots: 75, Label: models.BucketMedium},
		{MinLots: 1, Label: models.BucketLow},
	}
}

// DefaultConfig returns a config with the standard thresholds and no symbols.
func DefaultConfig() Config {
	return Config{
		DefaultLotSize: 75,
		OIRoCThreshold: 2.0,
		MinLots:        50,
		ATMBand:        0.005,
		Buckets:        DefaultBuckets(),
	}
}

// Engine owns the per-symbol state and the underlying future price cache.
// Ticks are processed one at a time by a single writer; the mutex exists so
// dashboard snapshots can read concurrently with that writer.
type Engine struct {
	cfg     Config
	parser  *instrument.Parser
	sink    Sink
	journal Journal
	loc     *time.Location
	now     func() time.Time

	mu          sync.RWMutex
	states      map[string]*models.SymbolState
	instruments map[string]instrument.Instrument
	futures     map[string]float64
}

// New creates an engine with state pre-allocated for every configured symbol.
// sink may not be nil; journal may be nil to disable journaling.
func New(cfg Config, parser *instrument.Parser, sink Sink, journal Journal) *Engine {
	e := &Engine{
		cfg:         cfg,
		parser:      parser,
		sink:        sink,
		journal:     journal,
		loc:         logger.ExchangeLocation(),
		now:         time.Now,
		states:      make(map[string]*models.SymbolState),
		instruments: make(map[string]instrument.Instrument, len(cfg.Symbols)),
		futures:     make(map[string]float64),
	}

	for _, symbol := range cfg.Symbols {
		inst, err := parser.Parse(symbol)
		if err != nil {
			// Track the symbol anyway; moneyness will be N/A, which
			// suppresses its alerts.
			logger.Warn("Configured symbol %s has unknown shape: %v", symbol, err)
			inst = instrument.Instrument{Symbol: symbol, IsFuture: instrument.IsFutureSymbol(symbol)}
		}
		e.instruments[symbol] = inst
		if !inst.IsFuture {
			e.states[symbol] = &models.SymbolState{}
		}
	}
	for name := range cfg.LotSizes {
		e.futures[name] = 0
	}

	return e
}

// ProcessTick runs one tick through the decision pipeline. It returns the
// dispatched alert, or nil when the tick was absorbed at any stage. It never
// returns an error: malformed and unknown ticks are dropped silently.
func (e *Engine) ProcessTick(tick models.Tick) *models.AlertEvent {
	if tick.Symbol == "" || !tick.HasPrice() {
		return nil
	}
	inst, known := e.instruments[tick.Symbol]
	if !known {
		return nil
	}
	price := *tick.LastTradePrice

	// Futures only feed the underlying price cache; they have no alert path.
	if inst.IsFuture {
		if inst.Underlying != "" && price > 0 {
			e.mu.Lock()
			e.futures[inst.Underlying] = price
			e.mu.Unlock()
		}
		return nil
	}

	if !tick.HasOI() {
		return nil
	}
	oi := *tick.OpenInterest

	e.mu.Lock()
	st := e.states[tick.Symbol]
	st.PricePrev, st.OIPrev = st.Price, st.OI
	st.Price, st.OI = price, oi
	snapshot := *st
	futurePrice := e.futures[inst.Underlying]
	e.mu.Unlock()

	if snapshot.WarmUp() {
		logger.Debug("%s: initializing option data state", tick.Symbol)
		return nil
	}

	oiDelta := snapshot.OI - snapshot.OIPrev
	if oiDelta == 0 {
		return nil
	}
	priceDelta := snapshot.Price - snapshot.PricePrev

	var oiRoC float64
	if snapshot.OIPrev != 0 {
		oiRoC = float64(oiDelta) / float64(snapshot.OIPrev) * 100
	}

	// Gate 1: rate of change above threshold.
	if abs(oiRoC) <= e.cfg.OIRoCThreshold {
		return nil
	}
	logger.Debug("%s: OI RoC %.2f%% > %.2f%%, potential alert", tick.Symbol, oiRoC, e.cfg.OIRoCThreshold)

	// Gate 2: minimum lot count.
	lots := e.lotsFromOIChange(inst, oiDelta)
	if lots <= e.cfg.MinLots {
		return nil
	}

	// Gate 3: size bucket.
	bucket := e.bucket(lots)
	if bucket == models.BucketIgnore {
		return nil
	}

	// Gates 4 and 5: only ITM/ATM strikes are worth a notification.
	moneyness := classifyMoneyness(inst, futurePrice, e.cfg.ATMBand)
	if !moneyness.Alertable() {
		if moneyness == models.OTM && futurePrice == 0 {
			logger.Debug("%s: waiting for future price of %s to check moneyness", tick.Symbol, inst.Underlying)
		}
		return nil
	}

	action := classifyAction(oiDelta, priceDelta)
	triggeredAt := e.now().In(e.loc)

	alert := &models.AlertEvent{
		Symbol:      tick.Symbol,
		Underlying:  inst.Underlying,
		Action:      action,
		Bucket:      bucket,
		Lots:        lots,
		OIPrev:      snapshot.OIPrev,
		OIDelta:     oiDelta,
		OIRoC:       oiRoC,
		Moneyness:   moneyness,
		TriggeredAt: triggeredAt,
	}
	alert.Message = formatAlertMessage(inst, alert, snapshot)

	logger.Info("%s: %s, lots %d, bucket %s, triggering alert", tick.Symbol, moneyness, lots, bucket)
	e.sink.Dispatch(alert.Message)

	if e.journal != nil {
		if err := e.journal.Record(alert); err != nil {
			logger.Warn("Failed to journal alert for %s: %v", tick.Symbol, err)
		}
	}

	return alert
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
