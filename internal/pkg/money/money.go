package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders monetary amounts as locale-grouped strings with two
// fraction digits, e.g. "22,500.00" for English.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter builds a Formatter for a BCP 47 locale such as "en" or "id".
func NewFormatter(locale, currency string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &Formatter{
		printer:  message.NewPrinter(tag),
		currency: currency,
	}, nil
}

// Default formats in English with no currency prefix.
func Default() *Formatter {
	return &Formatter{printer: message.NewPrinter(language.English)}
}

func (f *Formatter) Currency() string {
	return f.currency
}

// Format returns the amount rounded to 2 decimals with thousands grouping.
func (f *Formatter) Format(amount decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
}

// FormatWithCurrency prefixes the formatted amount with the currency code, if any.
func (f *Formatter) FormatWithCurrency(amount decimal.Decimal) string {
	if f.currency == "" {
		return f.Format(amount)
	}
	return f.currency + " " + f.Format(amount)
}
