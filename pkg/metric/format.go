package metric

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format controls how a KPI value renders on a card.
type Format string

const (
	FormatPlain    Format = "plain"    // %g
	FormatCount    Format = "count"    // 1,234
	FormatCurrency Format = "currency" // $1,234
	FormatPercent  Format = "percent"  // 12.34%
	FormatDecimal1 Format = "decimal1" // 12.3
	FormatDecimal2 Format = "decimal2" // 12.34
)

var printer = message.NewPrinter(language.English)

// Render formats v for display.
func (f Format) Render(v float64) string {
	switch f {
	case FormatCount:
		return printer.Sprintf("%d", int64(math.Round(v)))
	case FormatCurrency:
		return printer.Sprintf("$%d", int64(math.Round(v)))
	case FormatPercent:
		return fmt.Sprintf("%.2f%%", v)
	case FormatDecimal1:
		return fmt.Sprintf("%.1f", v)
	case FormatDecimal2:
		return fmt.Sprintf("%.2f", v)
	default:
		return fmt.Sprintf("%g", v)
	}
}
