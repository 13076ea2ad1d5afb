package engine

import (
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/instrument"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// classifyAction labels the market behaviour implied by an OI change paired
// with a price change. Total over all delta combinations; the caller filters
// oiDelta == 0 before price moves are considered, so the zero/zero cell is
// unreachable in the pipeline but still classified here.
func classifyAction(oiDelta int64, priceDelta float64) models.Action {
	switch {
	case priceDelta == 0 && oiDelta > 0:
		return models.ActionWriting
	case priceDelta == 0 && oiDelta < 0:
		return models.ActionUnwinding
	case oiDelta > 0 && priceDelta > 0:
		return models.ActionLongBuildUp
	case oiDelta > 0 && priceDelta < 0:
		return models.ActionWritersDominant
	case oiDelta < 0 && priceDelta > 0:
		return models.ActionShortCovering
	case oiDelta < 0 && priceDelta < 0:
		return models.ActionLongUnwinding
	}
	return models.ActionIndecisive
}

// lotSize resolves the contract lot size for an instrument, falling back to
// the default when the underlying is not in the table.
func (e *Engine) lotSize(inst instrument.Instrument) int64 {
	if size, ok := e.cfg.LotSizes[inst.Underlying]; ok {
		return size
	}
	return e.cfg.DefaultLotSize
}

// lotsFromOIChange converts an OI delta into whole lots. A zero lot size
// yields 0 lots rather than an error.
func (e *Engine) lotsFromOIChange(inst instrument.Instrument, oiDelta int64) int64 {
	size := e.lotSize(inst)
	if size == 0 {
		return 0
	}
	if oiDelta < 0 {
		oiDelta = -oiDelta
	}
	return oiDelta / size
}

// bucket classifies a lot count against the configured bounds, highest first.
func (e *Engine) bucket(lots int64) models.Bucket {
	for _, b := range e.cfg.Buckets {
		if lots >= b.MinLots {
			return b.Label
		}
	}
	return models.BucketIgnore
}

// classifyMoneyness labels an option ITM/ATM/OTM against the underlying's
// last future price. Futures and unidentifiable symbols are N/A; an unknown
// future price (0) fails safe to OTM so alerts stay suppressed until the
// first future tick arrives.
func classifyMoneyness(inst instrument.Instrument, futurePrice, atmBand float64) models.Moneyness {
	if inst.IsFuture || inst.Underlying == "" || inst.OptionType == "" {
		return models.NotApplicable
	}
	if futurePrice == 0 {
		return models.OTM
	}

	strike := float64(inst.Strike)
	band := futurePrice * atmBand
	diff := futurePrice - strike
	if diff < 0 {
		diff = -diff
	}
	if diff <= band {
		return models.ATM
	}

	itm := (inst.OptionType == instrument.Call && strike < futurePrice) ||
		(inst.OptionType == instrument.Put && strike > futurePrice)
	if itm {
		return models.ITM
	}
	return models.OTM
}
