// Package memory implements the repositories over process-local maps. It is the
// default storage driver and is usually seeded with the demo fixture.
package memory

import (
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

// NewStore returns an empty in-memory store.
func NewStore() *repository.Store {
	return &repository.Store{
		Appointments:  NewAppointmentRepository(),
		Patients:      NewPatientRepository(),
		Bills:         NewBillRepository(),
		LabResults:    NewLabResultRepository(),
		Inventory:     NewInventoryRepository(),
		Staff:         NewStaffRepository(),
		Notifications: NewNotificationRepository(),
		Reports:       NewReportRepository(),
		Audit:         NewAuditRepository(),
		Outbox:        NewOutboxRepository(),
	}
}
