package models

import "time"

// AuditAction is the kind of lifecycle action recorded in the quote audit log
type AuditAction string

const (
	AuditActionDeleted            AuditAction = "deleted"
	AuditActionRestored           AuditAction = "restored"
	AuditActionPermanentlyDeleted AuditAction = "permanently_deleted"
)

// QuoteSnapshot is the customer-identifying data captured at the time of an audited action
type QuoteSnapshot struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Company       string `json:"company,omitempty"`
	JobName       string `json:"jobName"`
}

// QuoteAuditLogEntry is one append-only audit record. QuoteID is kept after the quote row is gone.
type QuoteAuditLogEntry struct {
	ID          int64         `json:"id"`
	QuoteID     int64         `json:"quoteId"`
	Action      AuditAction   `json:"actionType"`
	PerformedBy Performer     `json:"performedBy"`
	PerformedAt time.Time     `json:"performedAt"`
	Snapshot    QuoteSnapshot `json:"snapshot"`
	Details     string        `json:"details,omitempty"`
}

// AuditLogResponse represents the response for audit log listings
type AuditLogResponse struct {
	Entries []QuoteAuditLogEntry `json:"entries"`
}
