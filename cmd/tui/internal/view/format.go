package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const storeTimeout = 5 * time.Second

const dateLayout = "02/01/2006"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatAmount renders an amount in reais, e.g. "R$ 1.234,56".
func FormatAmount(amount float64) string {
	return printer.Sprintf("R$ %v", number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// ParseAmount reads amounts typed as "1.234,56", "1234,56" or "1234.56".
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))

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

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use DD/MM/YYYY", s)
	}

	return t, nil
}

// StoreCtx bounds a single ledger write from the UI.
func StoreCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
