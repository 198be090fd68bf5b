package handler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pricebet/internal/market"
	"pricebet/internal/num"
)

func parseAmount(s string) (num.Int128, error) {
	return num.ParseInt128(strings.TrimSpace(s))
}

func parsePrice(s string) (num.Uint128, error) {
	return num.ParseUint128(strings.TrimSpace(s))
}

// parseScaledDecimal converts a decimal price string like "2.2970" into
// the engine's x10000 scaled integer representation.
func parseScaledDecimal(s string) (num.Uint128, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return num.Uint128{}, err
	}
	scaled := d.Mul(decimal.NewFromInt(market.PriceScale))
	if !scaled.IsInteger() {
		return num.Uint128{}, fmt.Errorf("price %q has more than 4 decimal places", s)
	}
	return num.ParseUint128(scaled.String())
}
