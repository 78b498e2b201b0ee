package production

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "pt-BR"

// Formatter renders quantities for a locale.
type Formatter struct {
	mu      sync.Mutex
	printer *message.Printer
}

// NewFormatter returns a formatter for a BCP 47 locale; an invalid or
// empty locale uses DefaultLocale.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Kg formats kilograms with up to one decimal and a unit suffix,
// e.g. "1.234,5 kg" for pt-BR.
func (f *Formatter) Kg(kg float64) string {
	return f.Number(kg, 1) + " kg"
}

// Number formats v with grouping and at most decimals fraction digits.
func (f *Formatter) Number(v float64, decimals int) string {
	if f == nil {
		f = NewFormatter(DefaultLocale)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(decimals)))
}

// Int formats an integer with grouping.
func (f *Formatter) Int(v int64) string {
	if f == nil {
		f = NewFormatter(DefaultLocale)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.printer.Sprintf("%d", v)
}

// Percent formats a whole-number percentage.
func (f *Formatter) Percent(p int) string {
	return f.Int(int64(p)) + "%"
}

// FormatKg formats kilograms for locale.
func FormatKg(kg float64, locale string) string {
	return NewFormatter(locale).Kg(kg)
}
