package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryCategory string

const (
	InventoryCategoryMedication InventoryCategory = "medication"
	InventoryCategoryVaccine    InventoryCategory = "vaccine"
	InventoryCategorySupply     InventoryCategory = "supply"
	InventoryCategoryEquipment  InventoryCategory = "equipment"
)

// Expiry labels shown next to items with an expiry date
const (
	ExpiryLabelExpired = "Expired"
	ExpiryLabelValid   = "Valid"
)

type InventoryItem struct {
	Base       `yaml:",inline"`
	Name       string            `json:"name" yaml:"name"`
	SKU        string            `json:"sku" yaml:"sku"`
	Category   InventoryCategory `json:"category" yaml:"category"`
	Quantity   int               `json:"quantity" yaml:"quantity"`
	Unit       string            `json:"unit" yaml:"unit"`
	MinStock   int               `json:"min_stock" yaml:"min_stock"`
	Price      decimal.Decimal   `json:"price" yaml:"price"`
	Supplier   string            `json:"supplier,omitempty" yaml:"supplier"`
	ExpiryDate *time.Time        `json:"expiry_date,omitempty" yaml:"expiry_date"`
	Location   string            `json:"location,omitempty" yaml:"location"`
	Notes      string            `json:"notes,omitempty" yaml:"notes"`
}

// LowStock reports whether the item is at or below its minimum stock.
func (i *InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// Expired reports whether the item has an expiry date at or before now.
func (i *InventoryItem) Expired(now time.Time) bool {
	return i.ExpiryDate != nil && !i.ExpiryDate.After(now)
}

// ExpiringWithin reports whether the item expires at or before now+window.
func (i *InventoryItem) ExpiringWithin(now time.Time, window time.Duration) bool {
	return i.ExpiryDate != nil && !i.ExpiryDate.After(now.Add(window))
}

// ExpiryLabel is empty when the item has no expiry date.
func (i *InventoryItem) ExpiryLabel(now time.Time) string {
	if i.ExpiryDate == nil {
		return ""
	}
	if i.Expired(now) {
		return ExpiryLabelExpired
	}
	return ExpiryLabelValid
}

// Value is quantity times unit price.
func (i *InventoryItem) Value() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type InventoryItemView struct {
	*InventoryItem
	LowStock    bool   `json:"low_stock"`
	Expiring    bool   `json:"expiring"`
	ExpiryLabel string `json:"expiry_status,omitempty"`
}

type StockMovement struct {
	ID     uuid.UUID `json:"id" db:"id" yaml:"id"`
	ItemID uuid.UUID `json:"item_id" db:"item_id" yaml:"item_id"`
	Delta  int       `json:"delta" db:"delta" yaml:"delta"`
	Reason string    `json:"reason" db:"reason" yaml:"reason"`
	At     time.Time `json:"at" db:"at" yaml:"at"`
}

type MonthlyUsage struct {
	Label string `json:"label"`
	Used  int    `json:"used"`
}

type ItemUsage struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
	Used   int       `json:"used"`
}

type InventoryAnalytics struct {
	TotalItems    int             `json:"total_items"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
	ExpiringCount int             `json:"expiring_count"`
	MonthlyUsage  []MonthlyUsage  `json:"monthly_usage"`
	TopUsed       []ItemUsage     `json:"top_used"`
}

type InventoryFilters struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Expiring bool   `form:"expiring"`
}

type CreateInventoryItemRequest struct {
	Name       string            `json:"name" binding:"required,max=200"`
	SKU        string            `json:"sku" binding:"required,max=64"`
	Category   InventoryCategory `json:"category" binding:"required,oneof=medication vaccine supply equipment"`
	Quantity   int               `json:"quantity" binding:"gte=0"`
	Unit       string            `json:"unit" binding:"required,max=32"`
	MinStock   int               `json:"min_stock" binding:"gte=0"`
	Price      decimal.Decimal   `json:"price"`
	Supplier   string            `json:"supplier" binding:"max=200"`
	ExpiryDate string            `json:"expiry_date" binding:"omitempty,yyyymmdd"`
	Location   string            `json:"location" binding:"max=200"`
	Notes      string            `json:"notes" binding:"max=2000"`
}

type UpdateInventoryItemRequest struct {
	Name       *string            `json:"name" binding:"omitempty,max=200"`
	SKU        *string            `json:"sku" binding:"omitempty,max=64"`
	Category   *InventoryCategory `json:"category" binding:"omitempty,oneof=medication vaccine supply equipment"`
	Unit       *string            `json:"unit" binding:"omitempty,max=32"`
	MinStock   *int               `json:"min_stock" binding:"omitempty,gte=0"`
	Price      *decimal.Decimal   `json:"price"`
	Supplier   *string            `json:"supplier" binding:"omitempty,max=200"`
	ExpiryDate *string            `json:"expiry_date" binding:"omitempty,yyyymmdd"`
	Location   *string            `json:"location" binding:"omitempty,max=200"`
	Notes      *string            `json:"notes" binding:"omitempty,max=2000"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required,ne=0"`
	Reason string `json:"reason" binding:"required,max=200"`
}
