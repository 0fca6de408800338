package payments

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is a transaction's lifecycle state. Pending is reserved by the
// protocol but unused by the current flow; Sent marks a dispatched,
// unconfirmed transaction on the disbursing side; Success and Failed are
// terminal.
type Status string

const (
	StatusPending Status = "Pending"
	StatusSent    Status = "Sent"
	StatusSuccess Status = "Success"
	StatusFailed  Status = "Failed"
)

// Result status strings on the wire are lowercase.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// ParseStatus normalizes a wire status ("success", "Failed", ...) to a
// lifecycle Status. Unrecognized values pass through untouched so a
// counterparty extension never breaks reconciliation.
func ParseStatus(raw string) Status {
	switch strings.ToLower(raw) {
	case "success", "successful":
		return StatusSuccess
	case "failed":
		return StatusFailed
	case "sent":
		return StatusSent
	case "pending":
		return StatusPending
	default:
		return Status(raw)
	}
}

// Transaction is one payment instruction. TransactionID is assigned by the
// disbursing party, globally unique and immutable; rows are never deleted,
// only status-updated.
type Transaction struct {
	TransactionID  string
	StudentID      string
	Amount         decimal.Decimal
	ScheduledDate  time.Time
	Status         Status
	ResponseDetail *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Request is one proposed transaction inside a notification batch.
type Request struct {
	TransactionID string          `json:"transactionId"`
	StudentID     string          `json:"studentId"`
	Amount        decimal.Decimal `json:"amount"`
	ScheduledDate time.Time       `json:"paymentDate"`
}

// Result is the per-request outcome, returned in input order.
type Result struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// StatusUpdate is one webhook callback item reporting a transaction's final
// status on the receiving side.
type StatusUpdate struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}
