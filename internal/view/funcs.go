package view

import (
	"fmt"
	"html/template"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/medistock/medistock/internal/apiclient"
)

var printer = message.NewPrinter(language.English)

// Funcs returns the template function map.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate":  FormatDate,
		"money":       Money,
		"number":      Number,
		"statusClass": StatusClass,
		"humanize":    Humanize,
		"dict":        dict,
		"add":         func(a, b int) int { return a + b },
		"join":        strings.Join,
		"upper":       strings.ToUpper,
		"contains":    containsString,
		"options":     enumOptions,
	}
}

// FormatDate renders dates as "02 Jan 2006"; zero values render empty.
func FormatDate(value any) string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format("02 Jan 2006")
	case *time.Time:
		if v == nil {
			return ""
		}
		return FormatDate(*v)
	case apiclient.Date:
		return FormatDate(v.Time)
	case *apiclient.Date:
		if v == nil {
			return ""
		}
		return FormatDate(v.Time)
	case string:
		d, err := apiclient.ParseDate(v)
		if err != nil {
			return v
		}
		return FormatDate(d.Time)
	}
	return ""
}

// Money renders an amount with two decimals and thousands separators.
func Money(value any) string {
	return grouped(toDecimal(value).StringFixed(2))
}

// Number renders a quantity without trailing zeros.
func Number(value any) string {
	return grouped(toDecimal(value).String())
}

// grouped adds thousands separators to the integer part of a plain decimal
// string. The digits never pass through float64.
func grouped(plain string) string {
	sign := ""
	if strings.HasPrefix(plain, "-") {
		sign, plain = "-", plain[1:]
	}
	whole, frac, hasFrac := strings.Cut(plain, ".")
	out := sign + whole
	if n, ok := new(big.Int).SetString(whole, 10); ok && n.IsInt64() {
		out = sign + printer.Sprintf("%d", n.Int64())
	}
	if hasFrac {
		out += "." + frac
	}
	return out
}

func toDecimal(value any) decimal.Decimal {
	switch v := value.(type) {
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// StatusClass maps backend status values onto badge styles.
func StatusClass(status string) string {
	switch strings.ToUpper(status) {
	case "ACTIVE", "PAID", "COMPLETED", "RECEIVED", "ACCEPTED", "APPROVED":
		return "badge-success"
	case "PENDING", "PARTIAL", "PARTIALLY_PAID", "DRAFT", "ORDERED", "SENT":
		return "badge-warning"
	case "INACTIVE", "CANCELLED", "CANCELED", "OVERDUE", "REJECTED", "EXPIRED", "UNPAID":
		return "badge-danger"
	}
	return "badge-muted"
}

// Humanize turns enum values such as WALK_IN into "Walk in".
func Humanize(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// enumOptions turns enum values into select options labelled with Humanize.
func enumOptions(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Value: v, Label: Humanize(v)})
	}
	return out
}

func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		out[key] = pairs[i+1]
	}
	return out, nil
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
