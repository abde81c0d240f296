package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the audit trail: one row per significant user action
// (login, remito creation, draft save, user management).
type ActivityLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"index" json:"username"`
	Action     string         `gorm:"index;not null" json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for ActivityLog model
func (ActivityLog) TableName() string {
	return "activity_logs"
}
