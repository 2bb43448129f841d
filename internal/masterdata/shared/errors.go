package shared

// Form messages for license rules.
const (
	MsgExpiryAfterIssue = "License expiry date must be after issue date"
	MsgInvalidDate      = "must be a valid date"
)
