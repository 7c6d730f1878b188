package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
)

// All repository interfaces in one file. Get/Update/Delete return
// model.ErrNotFound for unknown ids; unique violations return model.ErrDuplicate.
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Appointment, error)
		ListByVeterinarianAndDate(ctx context.Context, vetID uuid.UUID, date string) ([]*model.Appointment, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	BillRepository interface {
		Create(ctx context.Context, bill *model.Bill) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		Update(ctx context.Context, bill *model.Bill) error
		List(ctx context.Context) ([]*model.Bill, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Bill, error)
	}

	LabResultRepository interface {
		Create(ctx context.Context, result *model.LabResult) error
		Get(ctx context.Context, id uuid.UUID) (*model.LabResult, error)
		Update(ctx context.Context, result *model.LabResult) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.LabResult, error)
	}

	InventoryRepository interface {
		Create(ctx context.Context, item *model.InventoryItem) error
		Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
		GetBySKU(ctx context.Context, sku string) (*model.InventoryItem, error)
		Update(ctx context.Context, item *model.InventoryItem) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.InventoryItem, error)
		AddMovement(ctx context.Context, movement *model.StockMovement) error
		ListMovements(ctx context.Context, since time.Time) ([]*model.StockMovement, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		GetByEmail(ctx context.Context, email string) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Staff, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		Update(ctx context.Context, notification *model.Notification) error
		List(ctx context.Context) ([]*model.Notification, error)
	}

	ReportRepository interface {
		Create(ctx context.Context, report *model.Report) error
		Get(ctx context.Context, id uuid.UUID) (*model.Report, error)
		List(ctx context.Context) ([]*model.Report, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int, error)
		DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingEventsWithLock claims up to limit pending events so that
		// concurrent processors do not publish the same event twice.
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// Store bundles every repository of one storage driver.
type Store struct {
	Appointments  AppointmentRepository
	Patients      PatientRepository
	Bills         BillRepository
	LabResults    LabResultRepository
	Inventory     InventoryRepository
	Staff         StaffRepository
	Notifications NotificationRepository
	Reports       ReportRepository
	Audit         AuditRepository
	Outbox        OutboxRepository
}
