package csvbill

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a Brazilian formatted amount such as "1.234,56",
// "R$ 89,90" or "12". Amounts already written with a decimal point and no
// comma ("1234.56") are accepted as well.
func parseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return d.Round(2).InexactFloat64(), nil
}
