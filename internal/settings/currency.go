package settings

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

const satoshisPerBSV = 100_000_000

// FormatAmount renders a satoshi amount in currency. USD uses usdPerBSV as
// the exchange rate.
func FormatAmount(sats int64, currency string, usdPerBSV float64) (string, error) {
	sign := ""
	if sats < 0 {
		sign = "-"
		sats = -sats
	}

	switch strings.ToUpper(currency) {
	case CurrencySATS:
		return fmt.Sprintf("%s%s sats", sign, humanize.Comma(sats)), nil
	case CurrencyBSV:
		whole := sats / satoshisPerBSV
		frac := sats % satoshisPerBSV
		return fmt.Sprintf("%s%s.%08d BSV", sign, humanize.Comma(whole), frac), nil
	case CurrencyUSD:
		cents := int64(math.Round(float64(sats) / satoshisPerBSV * usdPerBSV * 100))
		return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
}
