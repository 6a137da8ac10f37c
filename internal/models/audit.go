package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit action kinds recorded by the side-effect coordinator.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
)

// AuditEntry captures one auditable mutation: who changed which entity and
// how each field moved. Entries are append-only and never mutated.
type AuditEntry struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ActorID       uint              `gorm:"not null;index" json:"actor_id"`
	ActorRole     string            `gorm:"size:32;not null" json:"actor_role"`
	Action        string            `gorm:"size:20;not null;index" json:"action"`
	EntityType    string            `gorm:"size:64;not null;index:idx_audit_entity" json:"entity_type"`
	EntityID      *uint             `gorm:"index:idx_audit_entity" json:"entity_id"`
	Changes       datatypes.JSONMap `gorm:"type:json" json:"changes"`
	CorrelationID string            `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
}
