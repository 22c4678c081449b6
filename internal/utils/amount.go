package utils

import (
	"fmt"
	"strconv"
)

// FormatAmount renders the natural decimal representation of a monetary
// amount: no trailing zero padding, no exponent for the values at play.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatMoney keeps consistent two-decimal formatting for invoices.
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
