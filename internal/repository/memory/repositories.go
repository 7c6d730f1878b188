package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

type appointmentRepo struct{ t *table[model.Appointment] }

func NewAppointmentRepository() repository.AppointmentRepository {
	return &appointmentRepo{t: newTable(
		func(a *model.Appointment) uuid.UUID { return a.ID },
		func(a *model.Appointment) time.Time { return a.CreatedAt },
		cloneAppointment,
	)}
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error { return r.t.insert(a) }
func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error { return r.t.replace(a) }
func (r *appointmentRepo) Delete(ctx context.Context, id uuid.UUID) error          { return r.t.remove(id) }

func (r *appointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.t.get(id)
}

func (r *appointmentRepo) List(ctx context.Context) ([]*model.Appointment, error) {
	return r.t.find(nil), nil
}

func (r *appointmentRepo) ListByVeterinarianAndDate(ctx context.Context, vetID uuid.UUID, date string) ([]*model.Appointment, error) {
	return r.t.find(func(a *model.Appointment) bool {
		return a.VeterinarianID == vetID && a.Date == date
	}), nil
}

func (r *appointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	return r.t.find(func(a *model.Appointment) bool { return a.PatientID == patientID }), nil
}

type patientRepo struct{ t *table[model.Patient] }

func NewPatientRepository() repository.PatientRepository {
	return &patientRepo{t: newTable(
		func(p *model.Patient) uuid.UUID { return p.ID },
		func(p *model.Patient) time.Time { return p.CreatedAt },
		clonePatient,
	)}
}

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error { return r.t.insert(p) }
func (r *patientRepo) Update(ctx context.Context, p *model.Patient) error { return r.t.replace(p) }
func (r *patientRepo) Delete(ctx context.Context, id uuid.UUID) error     { return r.t.remove(id) }

func (r *patientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return r.t.get(id)
}

func (r *patientRepo) List(ctx context.Context) ([]*model.Patient, error) {
	return r.t.find(nil), nil
}

type billRepo struct{ t *table[model.Bill] }

func NewBillRepository() repository.BillRepository {
	return &billRepo{t: newTable(
		func(b *model.Bill) uuid.UUID { return b.ID },
		func(b *model.Bill) time.Time { return b.CreatedAt },
		cloneBill,
	)}
}

func (r *billRepo) Create(ctx context.Context, b *model.Bill) error { return r.t.insert(b) }
func (r *billRepo) Update(ctx context.Context, b *model.Bill) error { return r.t.replace(b) }

func (r *billRepo) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	return r.t.get(id)
}

func (r *billRepo) List(ctx context.Context) ([]*model.Bill, error) {
	return r.t.find(nil), nil
}

func (r *billRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Bill, error) {
	return r.t.find(func(b *model.Bill) bool { return b.PatientID == patientID }), nil
}

type labResultRepo struct{ t *table[model.LabResult] }

func NewLabResultRepository() repository.LabResultRepository {
	return &labResultRepo{t: newTable(
		func(l *model.LabResult) uuid.UUID { return l.ID },
		func(l *model.LabResult) time.Time { return l.CreatedAt },
		cloneLabResult,
	)}
}

func (r *labResultRepo) Create(ctx context.Context, l *model.LabResult) error { return r.t.insert(l) }
func (r *labResultRepo) Update(ctx context.Context, l *model.LabResult) error { return r.t.replace(l) }
func (r *labResultRepo) Delete(ctx context.Context, id uuid.UUID) error       { return r.t.remove(id) }

func (r *labResultRepo) Get(ctx context.Context, id uuid.UUID) (*model.LabResult, error) {
	return r.t.get(id)
}

func (r *labResultRepo) List(ctx context.Context) ([]*model.LabResult, error) {
	return r.t.find(nil), nil
}

type inventoryRepo struct {
	items     *table[model.InventoryItem]
	movements *table[model.StockMovement]
}

func NewInventoryRepository() repository.InventoryRepository {
	return &inventoryRepo{
		items: newTable(
			func(i *model.InventoryItem) uuid.UUID { return i.ID },
			func(i *model.InventoryItem) time.Time { return i.CreatedAt },
			cloneInventoryItem,
		),
		movements: newTable(
			func(m *model.StockMovement) uuid.UUID { return m.ID },
			func(m *model.StockMovement) time.Time { return m.At },
			cloneStockMovement,
		),
	}
}

// SKU uniqueness is checked under the table lock to avoid a check-then-insert race.
func (r *inventoryRepo) Create(ctx context.Context, item *model.InventoryItem) error {
	r.items.mu.Lock()
	defer r.items.mu.Unlock()

	for _, existing := range r.items.byID {
		if strings.EqualFold(existing.SKU, item.SKU) {
			return model.ErrDuplicate
		}
	}
	if _, exists := r.items.byID[item.ID]; exists {
		return model.ErrDuplicate
	}
	r.items.byID[item.ID] = cloneInventoryItem(item)
	return nil
}

func (r *inventoryRepo) Update(ctx context.Context, item *model.InventoryItem) error {
	r.items.mu.Lock()
	defer r.items.mu.Unlock()

	if _, exists := r.items.byID[item.ID]; !exists {
		return model.ErrNotFound
	}
	for id, existing := range r.items.byID {
		if id != item.ID && strings.EqualFold(existing.SKU, item.SKU) {
			return model.ErrDuplicate
		}
	}
	r.items.byID[item.ID] = cloneInventoryItem(item)
	return nil
}

func (r *inventoryRepo) Delete(ctx context.Context, id uuid.UUID) error { return r.items.remove(id) }

func (r *inventoryRepo) Get(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	return r.items.get(id)
}

func (r *inventoryRepo) GetBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	return r.items.first(func(i *model.InventoryItem) bool { return strings.EqualFold(i.SKU, sku) })
}

func (r *inventoryRepo) List(ctx context.Context) ([]*model.InventoryItem, error) {
	return r.items.find(nil), nil
}

func (r *inventoryRepo) AddMovement(ctx context.Context, m *model.StockMovement) error {
	return r.movements.insert(m)
}

func (r *inventoryRepo) ListMovements(ctx context.Context, since time.Time) ([]*model.StockMovement, error) {
	return r.movements.find(func(m *model.StockMovement) bool { return !m.At.Before(since) }), nil
}

type staffRepo struct{ t *table[model.Staff] }

func NewStaffRepository() repository.StaffRepository {
	return &staffRepo{t: newTable(
		func(s *model.Staff) uuid.UUID { return s.ID },
		func(s *model.Staff) time.Time { return s.CreatedAt },
		cloneStaff,
	)}
}

func (r *staffRepo) Create(ctx context.Context, s *model.Staff) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	for _, existing := range r.t.byID {
		if strings.EqualFold(existing.Contact.Email, s.Contact.Email) {
			return model.ErrDuplicate
		}
	}
	if _, exists := r.t.byID[s.ID]; exists {
		return model.ErrDuplicate
	}
	r.t.byID[s.ID] = cloneStaff(s)
	return nil
}

func (r *staffRepo) Update(ctx context.Context, s *model.Staff) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	if _, exists := r.t.byID[s.ID]; !exists {
		return model.ErrNotFound
	}
	for id, existing := range r.t.byID {
		if id != s.ID && strings.EqualFold(existing.Contact.Email, s.Contact.Email) {
			return model.ErrDuplicate
		}
	}
	r.t.byID[s.ID] = cloneStaff(s)
	return nil
}

func (r *staffRepo) Delete(ctx context.Context, id uuid.UUID) error { return r.t.remove(id) }

func (r *staffRepo) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	return r.t.get(id)
}

func (r *staffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	return r.t.first(func(s *model.Staff) bool { return strings.EqualFold(s.Contact.Email, email) })
}

func (r *staffRepo) List(ctx context.Context) ([]*model.Staff, error) {
	return r.t.find(nil), nil
}

type notificationRepo struct{ t *table[model.Notification] }

func NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepo{t: newTable(
		func(n *model.Notification) uuid.UUID { return n.ID },
		func(n *model.Notification) time.Time { return n.CreatedAt },
		cloneNotification,
	)}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.t.insert(n)
}

func (r *notificationRepo) Update(ctx context.Context, n *model.Notification) error {
	return r.t.replace(n)
}

func (r *notificationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return r.t.get(id)
}

func (r *notificationRepo) List(ctx context.Context) ([]*model.Notification, error) {
	return r.t.find(nil), nil
}

type reportRepo struct{ t *table[model.Report] }

func NewReportRepository() repository.ReportRepository {
	return &reportRepo{t: newTable(
		func(r *model.Report) uuid.UUID { return r.ID },
		func(r *model.Report) time.Time { return r.GeneratedAt },
		cloneReport,
	)}
}

func (r *reportRepo) Create(ctx context.Context, rep *model.Report) error { return r.t.insert(rep) }

func (r *reportRepo) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	return r.t.get(id)
}

func (r *reportRepo) List(ctx context.Context) ([]*model.Report, error) {
	return r.t.find(nil), nil
}

type auditRepo struct{ t *table[model.AuditLog] }

func NewAuditRepository() repository.AuditRepository {
	return &auditRepo{t: newTable(
		func(l *model.AuditLog) uuid.UUID { return l.ID },
		func(l *model.AuditLog) time.Time { return l.CreatedAt },
		cloneAuditLog,
	)}
}

func (r *auditRepo) Create(ctx context.Context, l *model.AuditLog) error { return r.t.insert(l) }

// List returns the requested page, newest first, and the total match count.
func (r *auditRepo) List(ctx context.Context, f *model.AuditFilters) ([]*model.AuditLog, int, error) {
	logs := r.t.find(func(l *model.AuditLog) bool {
		switch {
		case f.StaffID != uuid.Nil && l.StaffID != f.StaffID:
			return false
		case f.EntityType != "" && l.EntityType != f.EntityType:
			return false
		case f.EntityID != uuid.Nil && l.EntityID != f.EntityID:
			return false
		case f.Action != "" && l.Action != f.Action:
			return false
		case f.From != nil && l.CreatedAt.Before(*f.From):
			return false
		case f.To != nil && !l.CreatedAt.Before(f.To.AddDate(0, 0, 1)):
			return false
		}
		return true
	})

	sort.SliceStable(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })

	page := f.Pagination
	page.Normalize()
	start, end := page.Window(len(logs))
	return logs[start:end], len(logs), nil
}

func (r *auditRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.t.removeWhere(func(l *model.AuditLog) bool { return l.CreatedAt.Before(before) }), nil
}

type outboxRepo struct{ t *table[model.OutboxEvent] }

func NewOutboxRepository() repository.OutboxRepository {
	return &outboxRepo{t: newTable(
		func(e *model.OutboxEvent) uuid.UUID { return e.ID },
		func(e *model.OutboxEvent) time.Time { return e.CreatedAt },
		cloneOutboxEvent,
	)}
}

func (r *outboxRepo) Create(ctx context.Context, e *model.OutboxEvent) error { return r.t.insert(e) }

// GetPendingEventsWithLock has no row locks to take in memory; it returns the
// oldest pending events and relies on a single processor per process.
func (r *outboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	events := r.t.find(func(e *model.OutboxEvent) bool { return e.Status == model.OutboxStatusPending })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *outboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	e, ok := r.t.byID[id]
	if !ok {
		return model.ErrNotFound
	}

	now := time.Now()
	e.Status = status
	e.ErrorMessage = errorMessage
	e.UpdatedAt = now
	switch status {
	case model.OutboxStatusProcessed:
		e.ProcessedAt = &now
	case model.OutboxStatusFailed:
		e.RetryCount++
	}
	return nil
}

func (r *outboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.t.removeWhere(func(e *model.OutboxEvent) bool {
		return e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before)
	}), nil
}
