// Package validation wraps go-playground/validator for HTML forms: field
// errors are keyed by form input name and carry display-ready messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// GeneralKey holds errors that belong to no single field.
const GeneralKey = "general"

// Errors maps form field names to messages.
type Errors map[string]string

// Error implements error.
func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation: ok"
	}
	keys := e.keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation: " + strings.Join(parts, "; ")
}

// UserMessage is the toast text for a failed form.
func (e Errors) UserMessage() string {
	if msg, ok := e[GeneralKey]; ok {
		return msg
	}
	if len(e) == 1 {
		for _, msg := range e {
			return msg
		}
	}
	return "Please correct the highlighted fields."
}

// Add records msg for field unless the field already has an error.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Merge adds every error of other that e does not already hold.
func (e Errors) Merge(other Errors) Errors {
	for field, msg := range other {
		e.Add(field, msg)
	}
	return e
}

// Has reports whether field failed.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Empty reports whether no rule failed.
func (e Errors) Empty() bool { return len(e) == 0 }

// Err returns e as an error, or nil when empty.
func (e Errors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e Errors) keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// As extracts field errors from err.
func As(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared, configured validator.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.Split(field.Tag.Get(tag), ",")[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		instance = v
	})
	return instance
}

// Struct runs tag validation and converts failures into Errors. Nested
// fields are keyed by their namespace without the root, e.g. "items[0].quantity".
func Struct(s any) Errors {
	errs := Errors{}
	err := Validator().Struct(s)
	if err == nil {
		return errs
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs[GeneralKey] = "The form could not be validated."
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fieldKey(fe), Message(fe))
	}
	return errs
}

func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

// Message renders one field error.
func Message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "min":
		if isString(fe) {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s entries", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isString(fe) {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return label + " must be a valid date"
	case "eqfield":
		return label + " does not match"
	case "e164":
		return label + " must be a valid phone number"
	}
	return label + " is invalid"
}

func isString(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}

// Label turns a form field name into a sentence-case label:
// "licenseExpiryDate" -> "License expiry date".
func Label(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		case r == '_':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	label := strings.TrimSuffix(b.String(), " id")
	if label == "Tin" {
		return "TIN"
	}
	return label
}
