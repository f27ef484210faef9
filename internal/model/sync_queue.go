package model

import "time"

// Sync queue entry statuses. Transitions are pending -> sent or
// pending -> failed; a failed entry goes back to pending only through an
// explicit retry.
const (
	SyncStatusPending = "pending"
	SyncStatusSent    = "sent"
	SyncStatusFailed  = "failed"
)

// SyncQueue is one outbound delivery of a finalized ticket. Payload is an
// immutable JSON snapshot of the ticket taken at finalize time; later ticket
// edits do not affect it.
type SyncQueue struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TicketID uint   `gorm:"index;not null" json:"ticket_id"`
	Payload  string `gorm:"not null" json:"payload"`
	Status   string `gorm:"index;size:16;not null;default:pending" json:"status"`

	Attempts      int        `gorm:"not null" json:"attempts"`
	LastError     *string    `json:"last_error"`
	LastAttemptAt *time.Time `json:"last_attempt_at"`
	CreatedAt     time.Time  `gorm:"index;not null" json:"created_at"`

	// Associations
	Ticket Ticket `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
