// Package shared holds the rules customers and suppliers have in common:
// the licensed / walk-in discriminator and its license fields.
package shared

// Party types. Licensed parties carry a pharmacy license; walk-in parties
// carry none.
const (
	TypeLicensed = "LICENSED"
	TypeWalkIn   = "WALK_IN"
)

// Types lists the accepted party types in display order.
func Types() []string {
	return []string{TypeLicensed, TypeWalkIn}
}

// licenseFields are dropped from walk-in payloads.
var licenseFields = []string{"licenseNumber", "licenseIssueDate", "licenseExpiryDate", "tin"}
