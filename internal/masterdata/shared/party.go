package shared

import (
	"strings"

	"github.com/medistock/medistock/internal/apiclient"
	"github.com/medistock/medistock/internal/platform/validation"
)

// Party is the form shared by customers and suppliers. The type field is
// submitted under an entity specific name (customerType, supplierType).
type Party struct {
	Name              string `form:"name" validate:"required,max=150"`
	Email             string `form:"email" validate:"omitempty,email,max=150"`
	Phone             string `form:"phone" validate:"max=30"`
	Address           string `form:"address" validate:"max=300"`
	ContactPerson     string `form:"contactPerson" validate:"max=150"`
	Type              string `form:"type" validate:"required,oneof=LICENSED WALK_IN"`
	TIN               string `form:"tin" validate:"max=50"`
	LicenseNumber     string `form:"licenseNumber" validate:"max=100"`
	LicenseIssueDate  string `form:"licenseIssueDate"`
	LicenseExpiryDate string `form:"licenseExpiryDate"`
	IsActive          bool   `form:"isActive"`
}

// Normalize trims text fields and upper-cases the type.
func (p Party) Normalize() Party {
	for _, f := range []*string{&p.Name, &p.Email, &p.Phone, &p.Address, &p.ContactPerson, &p.TIN, &p.LicenseNumber, &p.LicenseIssueDate, &p.LicenseExpiryDate} {
		*f = strings.TrimSpace(*f)
	}
	p.Type = strings.ToUpper(strings.TrimSpace(p.Type))
	return p
}

// Licensed reports whether the party is a licensed one.
func (p Party) Licensed() bool { return p.Type == TypeLicensed }

// Validate checks p. Errors on the type field are reported under typeField.
func (p Party) Validate(typeField string) validation.Errors {
	errs := validation.Struct(p)
	if msg, ok := errs["type"]; ok {
		delete(errs, "type")
		errs[typeField] = strings.Replace(msg, "Type", validation.Label(typeField), 1)
	}
	if !p.Licensed() {
		return errs
	}
	if p.LicenseNumber == "" {
		errs.Add("licenseNumber", "License number is required")
	}
	issue, issueOK := requiredDate(errs, "licenseIssueDate", p.LicenseIssueDate)
	expiry, expiryOK := requiredDate(errs, "licenseExpiryDate", p.LicenseExpiryDate)
	if issueOK && expiryOK && !expiry.After(issue.Time) {
		errs.Add("licenseExpiryDate", MsgExpiryAfterIssue)
	}
	return errs
}

func requiredDate(errs validation.Errors, field, value string) (apiclient.Date, bool) {
	if value == "" {
		errs.Add(field, validation.Label(field)+" is required")
		return apiclient.Date{}, false
	}
	d, err := apiclient.ParseDate(value)
	if err != nil {
		errs.Add(field, validation.Label(field)+" "+MsgInvalidDate)
		return apiclient.Date{}, false
	}
	return d, true
}

// Payload builds the create body. Walk-in parties lose every license
// field, and empty optional contact fields are left out. isActive is sent
// only when the box was ticked; the backend defaults new records to active.
func (p Party) Payload(typeField string) map[string]any {
	body := map[string]any{
		"name":    p.Name,
		typeField: p.Type,
	}
	if p.IsActive {
		body["isActive"] = true
	}
	optional := map[string]string{
		"email":             p.Email,
		"phone":             p.Phone,
		"address":           p.Address,
		"contactPerson":     p.ContactPerson,
		"tin":               p.TIN,
		"licenseNumber":     p.LicenseNumber,
		"licenseIssueDate":  p.LicenseIssueDate,
		"licenseExpiryDate": p.LicenseExpiryDate,
	}
	for key, value := range optional {
		if value != "" {
			body[key] = value
		}
	}
	if !p.Licensed() {
		for _, key := range licenseFields {
			delete(body, key)
		}
	}
	return body
}

// UpdatePayload builds the patch body. An unticked box on the edit form
// deactivates the record, so isActive is always sent.
func (p Party) UpdatePayload(typeField string) map[string]any {
	body := p.Payload(typeField)
	body["isActive"] = p.IsActive
	return body
}

// License is the license block of a stored party.
type License struct {
	TIN               string         `json:"tin"`
	LicenseNumber     string         `json:"licenseNumber"`
	LicenseIssueDate  apiclient.Date `json:"licenseIssueDate"`
	LicenseExpiryDate apiclient.Date `json:"licenseExpiryDate"`
}

// Fill copies the license block into the form.
func (l License) Fill(p *Party) {
	p.TIN = l.TIN
	p.LicenseNumber = l.LicenseNumber
	p.LicenseIssueDate = l.LicenseIssueDate.String()
	p.LicenseExpiryDate = l.LicenseExpiryDate.String()
}

// Screen describes how a party entity is presented on its pages.
type Screen struct {
	Singular      string
	Plural        string
	BasePath      string
	TypeField     string
	ContactPerson bool
	CanCreate     bool
	CanEdit       bool
	CanDelete     bool
}
