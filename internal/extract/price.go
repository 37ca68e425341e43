package extract

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/gridcrawl/gridcrawl/internal/types"
)

// parsePrice converts a currency-formatted string ("RM1,299.90") to a
// float by stripping thousands separators and currency symbols.
func parsePrice(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value in %q", s)
	}
	return strconv.ParseFloat(cleaned, 64)
}

// discountPercent computes (original-sale)/original*100 rounded to two
// decimals. A parse failure on either side omits the discount; it never
// propagates past the item boundary.
func discountPercent(original, sale string) (float64, error) {
	o, err := parsePrice(original)
	if err != nil {
		return 0, &types.PriceParseError{Original: original, Sale: sale, Err: err}
	}
	s, err := parsePrice(sale)
	if err != nil {
		return 0, &types.PriceParseError{Original: original, Sale: sale, Err: err}
	}
	if o == 0 {
		return 0, &types.PriceParseError{Original: original, Sale: sale, Err: fmt.Errorf("original price is zero")}
	}
	return math.Round((o-s)/o*100*100) / 100, nil
}
