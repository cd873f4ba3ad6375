package valuation

import "github.com/shopspring/decimal"

// DefaultPlaces is the number of decimal places shown to users
const DefaultPlaces = int32(2)

// Display is a fixed-point rendering of a Result
type Display struct {
	USDTPurchased     string `json:"usdt_purchased"`
	AvailableBOBValue string `json:"available_bob_value"`
	PercentageChange  string `json:"percentage_change"`
}

// Rounded renders the result with the given number of decimal places
func (r *Result) Rounded(places int32) Display {
	return Display{
		USDTPurchased:     FormatAmount(r.USDTPurchased, places),
		AvailableBOBValue: FormatAmount(r.AvailableBOBValue, places),
		PercentageChange:  FormatAmount(r.PercentageChange, places),
	}
}

// FormatAmount renders v with the given number of decimal places.
// Rounding is done on the exact binary value, not on its shortest decimal
// form, so 1.005 renders as "1.00" and 2.675 as "2.67". Negative values
// that round to zero keep their sign ("-0.00")
func FormatAmount(v float64, places int32) string {
	d := decimal.NewFromFloatWithExponent(v, -places)
	s := d.StringFixed(places)

	if v < 0 && d.IsZero() {
		return "-" + s
	}

	return s
}
