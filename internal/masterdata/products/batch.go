package products

import (
	"time"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/platform/validation"
)

// Batch date messages, shared with purchase lines.
const (
	MsgManufacturingInFuture = "Manufacturing date cannot be in the future"
	MsgExpiryBeforeMfg       = "Expiry date must be ahead of manufacturing date"
)

// CheckBatchDates applies the batch date rules to one batch. Keys are
// prefix+"manufacturingDate" and prefix+"expiryDate". The manufacturing date
// is optional; when present it may not be after today and the expiry date
// must be strictly after it.
func CheckBatchDates(errs validation.Errors, prefix, manufacturing, expiry string, today time.Time) {
	mfgKey, expKey := prefix+"manufacturingDate", prefix+"expiryDate"
	exp, expErr := apiclient.ParseDate(expiry)
	switch {
	case expiry == "":
		errs.Add(expKey, "Expiry date is required")
	case expErr != nil:
		errs.Add(expKey, "Expiry date must be a valid date")
	}
	if manufacturing == "" {
		return
	}
	mfg, err := apiclient.ParseDate(manufacturing)
	if err != nil {
		errs.Add(mfgKey, "Manufacturing date must be a valid date")
		return
	}
	if mfg.After(apiclient.NewDate(today).Time) {
		errs.Add(mfgKey, MsgManufacturingInFuture)
	}
	if expiry != "" && expErr == nil && !exp.After(mfg.Time) {
		errs.Add(expKey, MsgExpiryBeforeMfg)
	}
}
