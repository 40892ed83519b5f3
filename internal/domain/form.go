package domain

import (
	"net/mail"
	"time"
)

// FormStatus is the lifecycle state of an application form.
type FormStatus string

const (
	FormFilled   FormStatus = "FormFilled"
	FormRejected FormStatus = "Rejected"
	FormApproved FormStatus = "Approved"
)

// ApplicationForm is the slice of the account-opening form the ledger needs:
// it links an account to its account type.
type ApplicationForm struct {
	FormID             int64      `json:"form_id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	AccountTypeID      int64      `json:"account_type_id"`
	IFSC               string     `json:"ifsc"`
	Status             FormStatus `json:"status"`
	AccountNumber      string     `json:"account_number,omitempty"`
	DateOfRegistration time.Time  `json:"date_of_registration"`
}

// FormInput is the submitted part of a form.
type FormInput struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	AccountTypeID int64  `json:"account_type_id"`
	IFSC          string `json:"ifsc"`
}

func (f FormInput) Validate() error {
	if f.FullName == "" || len(f.FullName) > 50 {
		return Invalid("full name is required and must be at most 50 characters")
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return Invalid("email is invalid")
	}
	if f.AccountTypeID <= 0 {
		return Invalid("account type is required")
	}
	if f.IFSC == "" {
		return Invalid("ifsc is required")
	}
	return nil
}
