package engine

import (
	"fmt"
	"strings"

	"github.com/kalpesh33in-max/banknifty-dashboard/internal/instrument"
	"github.com/kalpesh33in-max/banknifty-dashboard/internal/models"
)

// displayName maps an underlying to the name shown in alert messages.
func displayName(underlying string) string {
	switch underlying {
	case "":
		return "UNKNOWN"
	case "ICICIBANK":
		// Group convention.
		return "ICICI"
	default:
		return underlying
	}
}

func priceArrow(priceDelta float64) string {
	switch {
	case priceDelta > 0:
		return "↑"
	case priceDelta < 0:
		return "↓"
	default:
		return "↔"
	}
}

// formatAlertMessage renders the multi-line option alert text.
func formatAlertMessage(inst instrument.Instrument, alert *models.AlertEvent, st models.SymbolState) string {
	product := displayName(inst.Underlying)
	strike := fmt.Sprintf("%d%s", inst.Strike, inst.OptionType)

	var b strings.Builder
	fmt.Fprintf(&b, "%s | OPTIONSTRIKE: %s %s\n", product, strike, alert.Moneyness)
	fmt.Fprintf(&b, "ACTION: %s\n", alert.Action)
	fmt.Fprintf(&b, "SIZE: %s (%d lots)\n", alert.Bucket, alert.Lots)
	fmt.Fprintf(&b, "EXISTING OI: %d\n", alert.OIPrev)
	fmt.Fprintf(&b, "OI Δ: %d\n", alert.OIDelta)
	fmt.Fprintf(&b, "OI RoC: %.2f%%\n", alert.OIRoC)
	fmt.Fprintf(&b, "PRICE: %s\n", priceArrow(st.Price-st.PricePrev))
	fmt.Fprintf(&b, "TIME: %s\n", alert.TriggeredAt.Format("15:04:05"))
	fmt.Fprintf(&b, "%s %s %s\n", inst.ExpiryYear, product, strike)
	fmt.Fprintf(&b, "LAST PRICE: %.2f", st.Price)
	return b.String()
}
