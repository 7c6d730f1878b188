package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

// NewStore wires every repository onto one connection pool. m may be nil.
func NewStore(db *sqlx.DB, m *metrics.Metrics) *repository.Store {
	base := NewBaseRepository(db).WithMetrics(m)
	return &repository.Store{
		Appointments:  NewAppointmentRepository(base),
		Patients:      NewPatientRepository(base),
		Bills:         NewBillRepository(base),
		LabResults:    NewLabResultRepository(base),
		Inventory:     NewInventoryRepository(base),
		Staff:         NewStaffRepository(base),
		Notifications: NewNotificationRepository(base),
		Reports:       NewReportRepository(base),
		Audit:         NewAuditRepository(base),
		Outbox:        NewOutboxRepository(base),
	}
}
