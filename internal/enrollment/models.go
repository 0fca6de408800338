package enrollment

import "github.com/shopspring/decimal"

// Student is an enrolled person's record. Created and updated by an external
// enrollment process; this system only reads it.
type Student struct {
	StudentID string          `json:"studentId"`
	Name      string          `json:"name"`
	Enrolled  bool            `json:"enrolled"`
	Balance   decimal.Decimal `json:"balance"`
}

// Eligibility is the validator's success result. Balance is informational
// only; nothing here debits it.
type Eligibility struct {
	StudentID        string
	Name             string
	Eligible         bool
	EnrollmentStatus string
	Balance          decimal.Decimal
}
