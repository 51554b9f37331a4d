package models

import "time"

// Audit outcomes.
const (
	AuditSuccess = "success"
	AuditFailed  = "failed"
)

// AuditEntry records one admin mutation.
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey"                   json:"id"`
	Action    string    `gorm:"size:64;not null;index"       json:"action"`
	Target    string    `gorm:"size:64;index"                json:"target"`
	Outcome   string    `gorm:"size:16;not null"             json:"outcome"`
	Detail    string    `gorm:"type:text"                    json:"detail"`
	RequestID string    `gorm:"size:64"                      json:"request_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"         json:"created_at"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
