package models

import (
	"time"
)

// Product is the barcode catalog: maps internal codes and retail barcodes to
// descriptions. Looked up on every scanner hit.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"`
	Barcode     string    `gorm:"index" json:"barcode"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Product model
func (Product) TableName() string {
	return "products"
}
