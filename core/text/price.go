package text

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinimumPrice replaces a zero price.
const MinimumPrice = "1.00"

var currencyAliases = map[string]string{
	"DLLS": "USD",
	"DLS":  "USD",
	"USD":  "USD",
	"M.N.": "MXN",
	"MN":   "MXN",
	"MXN":  "MXN",
}

var priceCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// NormalizePrice parses a scraped amount such as "$12,500.5" into "12500.50".
// A zero amount is reported as MinimumPrice.
func NormalizePrice(raw string) (string, error) {
	cleaned := priceCleaner.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", fmt.Errorf("empty price")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid price %q: %w", raw, err)
	}

	d = d.Round(2)
	if d.IsZero() {
		return MinimumPrice, nil
	}
	return d.StringFixed(2), nil
}

// NormalizeCurrency maps site specific currency codes to ISO codes.
// Unknown codes are upper-cased and returned unchanged.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if iso, ok := currencyAliases[code]; ok {
		return iso
	}
	return code
}
