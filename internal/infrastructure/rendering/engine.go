package rendering

import (
	"bytes"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tesoreria/backend/internal/domain/receipt"
)

// esMX groups digits the way Mexican receipts print them
var esMX = message.NewPrinter(language.MustParse("es-MX"))

// TemplateEngine renders document templates with business data. It uses
// Go's html/template with a fixed function map; nothing in the map reads
// the wall clock, so equal data always renders to equal bytes.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a new template engine with the default
// function map.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Money formatting
		"formatMoney":    formatMoney,
		"formatMoneyRaw": formatMoneyRaw,
		"amountInWords":  amountInWordsFunc,

		// Date formatting
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		// String utilities
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,

		// Receipt helpers
		"statusLabel": statusLabel,
	}

	return e
}

// RenderString renders a template string with the provided data
func (e *TemplateEngine) RenderString(name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// =============================================================================
// Template Functions
// =============================================================================

// formatMoney formats a decimal value as currency with symbol
// Example: 1234.56 -> "$1,234.56"
func formatMoney(v interface{}) string {
	return "$" + formatMoneyRaw(v)
}

// formatMoneyRaw formats a decimal value with thousand separators and two
// decimals. Example: 1234.56 -> "1,234.56"
func formatMoneyRaw(v interface{}) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	grouped := esMX.Sprintf("%d", d.IntPart())
	return sign + grouped + "." + decPart
}

// amountInWordsFunc exposes AmountInWords to templates
func amountInWordsFunc(v interface{}) string {
	return AmountInWords(toDecimal(v))
}

// formatDate formats a time as DD/MM/YYYY
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// formatDateTime formats a time as DD/MM/YYYY HH:MM
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}

// statusLabel returns the Spanish display label for a receipt status
func statusLabel(s receipt.Status) string {
	return s.Label()
}

// toDecimal coerces template values into a decimal
func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val != nil {
			return *val
		}
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	case fmt.Stringer:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
	}
	return decimal.Zero
}
