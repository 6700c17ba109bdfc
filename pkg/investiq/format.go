package investiq

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Indian display units.
var (
	oneCrore = decimal.NewFromInt(10_000_000)
	oneLakh  = decimal.NewFromInt(100_000)
)

// FormatCurrency renders an INR amount using Indian units: crore above one
// crore, lakh above one lakh, plain rupees below.
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(oneCrore):
		return "₹" + d.Div(oneCrore).StringFixed(2) + " Cr"
	case abs.GreaterThanOrEqual(oneLakh):
		return "₹" + d.Div(oneLakh).StringFixed(2) + " L"
	default:
		return "₹" + d.StringFixed(2)
	}
}

// FormatPercent renders a percent value with two decimals.
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// FormatRatio renders a unitless ratio with two decimals.
func FormatRatio(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatVolume renders a share count in Indian units.
func FormatVolume(v float64) string {
	d := decimal.NewFromFloat(v)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(oneCrore):
		return d.Div(oneCrore).StringFixed(2) + " Cr"
	case abs.GreaterThanOrEqual(oneLakh):
		return d.Div(oneLakh).StringFixed(2) + " L"
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
