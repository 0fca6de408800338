package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is an immutable fact about one inbound operation: who called, what
// they sent, and how it ended. Entries are append-only; nothing in the system
// mutates or deletes them.
type Entry struct {
	ID             uuid.UUID
	Timestamp      time.Time
	Actor          string
	Operation      string
	RequestPayload *string
	ResultCode     int
	ErrorDetail    *string
}
