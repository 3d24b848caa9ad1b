package model

import (
	"github.com/google/uuid"
)

type SupplyItem struct {
	Base
	Name         string     `db:"name" json:"name"`
	Category     string     `db:"category" json:"category"`
	Unit         string     `db:"unit" json:"unit"`
	Quantity     int        `db:"quantity" json:"quantity"`
	ReorderLevel int        `db:"reorder_level" json:"reorder_level"`
	SupplierID   *uuid.UUID `db:"supplier_id" json:"supplier_id,omitempty"`
	Status       string     `db:"status" json:"status"`
}

type CreateSupplyItemRequest struct {
	Name         string     `json:"name" binding:"required,max=200"`
	Category     string     `json:"category" binding:"required,max=100"`
	Unit         string     `json:"unit" binding:"required,max=50"`
	Quantity     int        `json:"quantity" binding:"min=0"`
	ReorderLevel int        `json:"reorder_level" binding:"min=0"`
	SupplierID   *uuid.UUID `json:"supplier_id"`
}

type UpdateSupplyItemRequest struct {
	Name         *string    `json:"name"`
	Category     *string    `json:"category"`
	Unit         *string    `json:"unit"`
	ReorderLevel *int       `json:"reorder_level"`
	SupplierID   *uuid.UUID `json:"supplier_id"`
	Status       *string    `json:"status"`
}

// AdjustStockRequest changes the stock level by a signed delta.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

type SupplyItemFilters struct {
	Category   string
	SupplierID uuid.UUID
	LowStock   bool
}
