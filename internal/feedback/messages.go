package feedback

import (
	"regexp"
	"strings"
)

// User-facing messages.
const (
	PermissionDeniedMessage = "You do not have permission to perform this action."
	NetworkMessage          = "Unable to reach the server. Please check your connection and try again."
	FallbackMessage         = "Operation failed"
)

var statusMessages = map[int]string{
	400: "Invalid request. Please check your input and try again.",
	401: "Your session has expired. Please sign in again.",
	403: PermissionDeniedMessage,
	404: "The requested record was not found.",
	409: "This record conflicts with existing data.",
	422: "Some fields are invalid. Please review the form and try again.",
	429: "Too many requests. Please wait a moment and try again.",
	500: "Something went wrong on the server. Please try again later.",
	503: "The service is temporarily unavailable. Please try again later.",
}

// StatusMessage returns the static message for an HTTP status, if mapped.
func StatusMessage(status int) (string, bool) {
	msg, ok := statusMessages[status]
	return msg, ok
}

const foreignKeyMarker = "violates foreign key constraint"

var foreignKeyTable = regexp.MustCompile(`(?i)(?:on\s+)?table\s+"([^"]+)"`)

// foreignKeyDependents maps the referencing table reported by the database to
// the records that block the operation.
var foreignKeyDependents = map[string]string{
	"sale":            "sales",
	"sales":           "sales",
	"sale_item":       "sales",
	"sale_items":      "sales",
	"purchase":        "purchases",
	"purchases":       "purchases",
	"purchase_item":   "purchases",
	"purchase_items":  "purchases",
	"quotation":       "quotations",
	"quotations":      "quotations",
	"quotation_item":  "quotations",
	"quotation_items": "quotations",
	"credit":          "credits",
	"credits":         "credits",
	"credit_payment":  "credit payments",
	"credit_payments": "credit payments",
	"product":         "products",
	"products":        "products",
	"product_batch":   "product batches",
	"product_batches": "product batches",
	"batch":           "product batches",
	"batches":         "product batches",
	"stock_movement":  "stock movements",
	"stock_movements": "stock movements",
	"customer":        "customers",
	"customers":       "customers",
	"supplier":        "suppliers",
	"suppliers":       "suppliers",
	"user":            "users",
	"users":           "users",
	"user_role":       "user roles",
	"user_roles":      "user roles",
}

// rewriteForeignKey turns a raw constraint violation into a domain sentence.
// It reports false when text is not a foreign key violation.
func rewriteForeignKey(text string) (string, bool) {
	if !strings.Contains(strings.ToLower(text), foreignKeyMarker) {
		return "", false
	}
	dependents := "other records"
	for _, match := range foreignKeyTable.FindAllStringSubmatch(text, -1) {
		// The last quoted table is the referencing one in Postgres messages:
		// update or delete on table "customer" violates ... on table "sale".
		if name, ok := foreignKeyDependents[strings.ToLower(match[1])]; ok {
			dependents = name
		}
	}
	return "Cannot delete this record because it has associated " + dependents +
		". Remove or reassign the related " + dependents + " first.", true
}
