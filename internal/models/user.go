package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserAccount represents a warehouse operator account.
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type UserAccount struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	UserCode string `gorm:"index;size:3" json:"userCode"`
	Role     string `gorm:"default:'user'" json:"role"` // admin | supervisor | user

	// Tasks is a JSON string array of duties, e.g. ["Preparador"]
	Tasks datatypes.JSON `json:"tasks"`

	// CurrentSessionID is the session mutex: the only session id the auth
	// middleware accepts. Null means no session. Rotated on every login,
	// cleared on logout.
	CurrentSessionID *string `gorm:"type:uuid" json:"-"`

	// IsSessionActive is display state for the admin user list.
	// Authorization never consults it; CurrentSessionID is authoritative.
	IsSessionActive bool `gorm:"default:false" json:"isSessionActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for UserAccount model
func (UserAccount) TableName() string {
	return "users"
}

// TaskList decodes the Tasks column, treating null as an empty list.
func (u *UserAccount) TaskList() []string {
	var tasks []string
	if len(u.Tasks) == 0 {
		return tasks
	}
	_ = json.Unmarshal(u.Tasks, &tasks)
	return tasks
}

// HasTask reports whether the account carries the given duty.
func (u *UserAccount) HasTask(task string) bool {
	for _, t := range u.TaskList() {
		if t == task {
			return true
		}
	}
	return false
}
