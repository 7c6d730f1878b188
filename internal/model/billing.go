package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

type BillItem struct {
	Description string          `json:"description" yaml:"description"`
	Quantity    int             `json:"quantity" yaml:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	Total       decimal.Decimal `json:"total" yaml:"total"`
}

type Bill struct {
	Base      `yaml:",inline"`
	PatientID uuid.UUID       `json:"patient_id" yaml:"patient_id"`
	Date      time.Time       `json:"date" yaml:"date"`
	DueDate   time.Time       `json:"due_date" yaml:"due_date"`
	Items     []BillItem      `json:"items" yaml:"items"`
	Subtotal  decimal.Decimal `json:"subtotal" yaml:"subtotal"`
	Tax       decimal.Decimal `json:"tax" yaml:"tax"`
	Total     decimal.Decimal `json:"total" yaml:"total"`
	Status    BillStatus      `json:"status" yaml:"status"`
	PaidAt    *time.Time      `json:"paid_at,omitempty" yaml:"paid_at"`
}

// IsOverdue reports whether the bill is marked overdue or is still pending
// after its due date.
func (b *Bill) IsOverdue(now time.Time) bool {
	switch b.Status {
	case BillStatusOverdue:
		return true
	case BillStatusPending:
		return !b.DueDate.IsZero() && StartOfDay(b.DueDate).Before(StartOfDay(now.In(b.DueDate.Location())))
	}
	return false
}

type BillFilters struct {
	PatientID uuid.UUID `form:"-"`
	Status    string    `form:"status"`
}

type BillItemRequest struct {
	Description string          `json:"description" binding:"required,max=200"`
	Quantity    int             `json:"quantity" binding:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateBillRequest struct {
	PatientID uuid.UUID         `json:"patient_id"`
	Date      string            `json:"date" binding:"omitempty,yyyymmdd"`
	DueDate   string            `json:"due_date" binding:"omitempty,yyyymmdd"`
	Items     []BillItemRequest `json:"items" binding:"required,min=1,dive"`
}
