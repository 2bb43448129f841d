package pages

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/platform/validation"
)

// Form reads typed values from a parsed form, collecting parse errors under
// the field name. Empty numeric inputs read as zero.
type Form struct {
	r    *http.Request
	Errs validation.Errors
}

// NewForm wraps a request whose form is already parsed.
func NewForm(r *http.Request) *Form {
	return &Form{r: r, Errs: validation.Errors{}}
}

// String returns a trimmed value.
func (f *Form) String(key string) string {
	return Value(f.r, key)
}

// Bool reads a checkbox.
func (f *Form) Bool(key string) bool {
	return Checked(f.r, key)
}

// Decimal parses a money or quantity input.
func (f *Form) Decimal(key string) decimal.Decimal {
	raw := strings.ReplaceAll(f.String(key), ",", "")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.Errs.Add(key, validation.Label(fieldName(key))+" must be a number")
		return decimal.Zero
	}
	return d
}

// Int parses a whole number input.
func (f *Form) Int(key string) int {
	raw := f.String(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.Errs.Add(key, validation.Label(fieldName(key))+" must be a whole number")
		return 0
	}
	return n
}

// Values returns every value submitted for key, in order.
func (f *Form) Values(key string) []string {
	return f.r.PostForm[key]
}

// Keys returns the submitted field names.
func (f *Form) Keys() []string {
	keys := make([]string, 0, len(f.r.PostForm))
	for key := range f.r.PostForm {
		keys = append(keys, key)
	}
	return keys
}

// fieldName strips a line prefix: "items[0].quantity" -> "quantity".
func fieldName(key string) string {
	if idx := strings.LastIndexByte(key, '.'); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
