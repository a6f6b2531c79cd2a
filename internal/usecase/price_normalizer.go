package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// nonPriceCharsPattern strips everything except digits and the two possible
// separator characters.
var nonPriceCharsPattern = regexp.MustCompile(`[^\d,.]`)

// NormalizePrice converts a locale-formatted price string into a canonical
// non-negative decimal. Strings like "9.280,00" or "4.999,00 den." parse with
// dot as thousands and comma as decimal separator; a lone comma is the
// decimal separator. Unparseable input yields 0: price misses are common
// (promo text, missing price) and must never abort a batch.
func NormalizePrice(raw string) float64 {
	cleaned := nonPriceCharsPattern.ReplaceAllString(raw, "")

	hasComma := strings.Contains(cleaned, ",")
	hasDot := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return 0.0
	}
	return price
}
