package domain

import "time"

// AuditLog records a write performed by a user on the catalog or ledger.
type AuditLog struct {
	ID        int64     `json:"id,string"`
	UserID    string    `gorm:"index;size:128" json:"user_id"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	TargetID  string    `json:"target_id"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (AuditLog) TableName() string {
	return "pos_audit_log"
}

// AuditEvent is published on the event bus by services after a write.
type AuditEvent struct {
	UserID   string
	Action   string
	Target   string
	TargetID string
	Detail   string
}
