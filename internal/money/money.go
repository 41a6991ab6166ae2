// Package money formats amounts as localized currency text.
package money

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts in one currency for one locale.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
	scale   int
}

// New creates a formatter for an ISO 4217 code and a BCP 47 locale.
func New(code, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("parsing currency %q: %w", code, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
	}

	p := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)

	return &Formatter{
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
		scale:   scale,
	}, nil
}

// MustNew is like New but panics on invalid input.
func MustNew(code, locale string) *Formatter {
	f, err := New(code, locale)
	if err != nil {
		panic(err)
	}
	return f
}

// Default returns the USD / en-US formatter.
func Default() *Formatter {
	return MustNew("USD", "en-US")
}

// Format returns the amount with the currency symbol, locale grouping and the
// currency's standard number of fraction digits.
func (f *Formatter) Format(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(amount, number.Scale(f.scale)))
}

// Code returns the ISO currency code.
func (f *Formatter) Code() string {
	return f.unit.String()
}
