package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	StaffID    uuid.UUID       `json:"staff_id" db:"staff_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Changes    json.RawMessage `json:"changes,omitempty" db:"changes"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionStatus = "status"
	AuditActionLogin  = "login"

	// Entity types
	AuditEntityAppointment  = "appointment"
	AuditEntityPatient      = "patient"
	AuditEntityBill         = "bill"
	AuditEntityLabResult    = "lab_result"
	AuditEntityInventory    = "inventory_item"
	AuditEntityStaff        = "staff"
	AuditEntityNotification = "notification"
	AuditEntityReport       = "report"
)

type AuditFilters struct {
	StaffID    uuid.UUID  `form:"-"`
	EntityType string     `form:"entity_type"`
	EntityID   uuid.UUID  `form:"-"`
	Action     string     `form:"action"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Pagination
}
