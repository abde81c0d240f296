package models

import (
	"time"

	"gorm.io/datatypes"
)

// PreRemitoStatus defines possible pre-remito statuses
type PreRemitoStatus string

const (
	PreRemitoStatusPending   PreRemitoStatus = "pending"   // Waiting to be scanned
	PreRemitoStatusProcessed PreRemitoStatus = "processed" // Finalized into a remito
)

// PreRemito is the expected order: the baseline item list a dispatch is
// checked against. Pushed by the ERP webhook before scanning begins.
type PreRemito struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderNumber string          `gorm:"uniqueIndex;not null" json:"order_number"`

	// Items holds the expected list as JSON: [{code, description, quantity}]
	Items datatypes.JSON `json:"items"`

	// ScannedItems is the operator's saved draft, cleared on finalization
	ScannedItems datatypes.JSON `json:"scanned_items"`

	Status PreRemitoStatus `gorm:"default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	SalesOrder *SalesOrder `gorm:"foreignKey:PreRemitoAsociado;references:OrderNumber" json:"sales_order,omitempty"`
}

// TableName specifies the table name for PreRemito model
func (PreRemito) TableName() string {
	return "pre_remitos"
}

// SalesOrder links a pre-remito to its sales order (PV) and customer data,
// pushed by the ERP alongside the expected items.
type SalesOrder struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	NumeroPV          string    `gorm:"uniqueIndex;not null" json:"numero_pv"`
	PreRemitoAsociado string    `gorm:"index" json:"pre_remito_asociado"`
	ClienteTienda     string    `json:"cliente_tienda"`
	ClienteCodigo     string    `json:"cliente_codigo"`
	ClienteNombre     string    `json:"cliente_nombre"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for SalesOrder model
func (SalesOrder) TableName() string {
	return "pedidos_ventas"
}
