package models

import (
	"time"

	"gorm.io/datatypes"
)

// RemitoStatus defines possible remito statuses
type RemitoStatus string

const (
	RemitoStatusScanned   RemitoStatus = "scanned"   // Items counted, awaiting packaging
	RemitoStatusCompleted RemitoStatus = "completed" // Packed and dispatched
)

// Remito is the finalized dispatch record: what was actually scanned and
// shipped, including the discrepancy report against the expected order.
type Remito struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RemitoNumber string `gorm:"index;not null" json:"remito_number"`

	// Items is the scanned list as JSON: [{code, name, quantity}]
	Items datatypes.JSON `json:"items"`

	// Discrepancies holds the reconciliation report: {missing: [...], extra: [...]}
	Discrepancies datatypes.JSON `json:"discrepancies"`

	// Clarification is the operator's free-text note, mandatory whenever the
	// discrepancy report is non-empty
	Clarification string `gorm:"type:text" json:"clarification"`

	Status     RemitoStatus `gorm:"default:scanned;index" json:"status"`
	CreatedBy  string       `gorm:"index" json:"created_by"`
	PreparedBy string       `json:"prepared_by"`

	// Packaging count, filled in after scanning
	TotalPackages   int    `json:"total_packages"`
	PackagesAddedBy string `json:"packages_added_by"`

	Date      time.Time `gorm:"autoCreateTime;index" json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Remito model
func (Remito) TableName() string {
	return "remitos"
}
