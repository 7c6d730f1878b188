package memory

import (
	"time"

	"github.com/jwalitptl/vet-admin-api/internal/model"
)

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneAppointment(a *model.Appointment) *model.Appointment {
	c := *a
	return &c
}

func clonePatient(p *model.Patient) *model.Patient {
	c := *p
	c.MedicalHistory = make([]model.MedicalRecord, len(p.MedicalHistory))
	for i, rec := range p.MedicalHistory {
		rec.Symptoms = cloneSlice(rec.Symptoms)
		rec.Prescriptions = cloneSlice(rec.Prescriptions)
		c.MedicalHistory[i] = rec
	}
	c.Vaccinations = cloneSlice(p.Vaccinations)
	c.VitalSigns = cloneSlice(p.VitalSigns)
	c.Prescriptions = cloneSlice(p.Prescriptions)
	c.LastVisit = cloneTime(p.LastVisit)
	return &c
}

func cloneBill(b *model.Bill) *model.Bill {
	c := *b
	c.Items = cloneSlice(b.Items)
	c.PaidAt = cloneTime(b.PaidAt)
	return &c
}

func cloneLabResult(r *model.LabResult) *model.LabResult {
	c := *r
	c.Results = cloneSlice(r.Results)
	c.Attachments = cloneSlice(r.Attachments)
	c.CompletedDate = cloneTime(r.CompletedDate)
	return &c
}

func cloneInventoryItem(i *model.InventoryItem) *model.InventoryItem {
	c := *i
	c.ExpiryDate = cloneTime(i.ExpiryDate)
	return &c
}

func cloneStockMovement(m *model.StockMovement) *model.StockMovement {
	c := *m
	return &c
}

func cloneStaff(s *model.Staff) *model.Staff {
	c := *s
	c.Specialties = cloneSlice(s.Specialties)
	if s.Schedule != nil {
		c.Schedule = make(map[model.Weekday]model.WorkingHours, len(s.Schedule))
		for day, hours := range s.Schedule {
			c.Schedule[day] = hours
		}
	}
	c.Qualifications = make([]model.Qualification, len(s.Qualifications))
	for i, q := range s.Qualifications {
		q.Certifications = cloneSlice(q.Certifications)
		c.Qualifications[i] = q
	}
	return &c
}

func cloneNotification(n *model.Notification) *model.Notification {
	c := *n
	return &c
}

func cloneReport(r *model.Report) *model.Report {
	c := *r
	c.Content = cloneSlice(r.Content)
	return &c
}

func cloneAuditLog(l *model.AuditLog) *model.AuditLog {
	c := *l
	c.Changes = cloneSlice(l.Changes)
	return &c
}

func cloneOutboxEvent(e *model.OutboxEvent) *model.OutboxEvent {
	c := *e
	c.Payload = cloneSlice(e.Payload)
	if e.ErrorMessage != nil {
		msg := *e.ErrorMessage
		c.ErrorMessage = &msg
	}
	c.ProcessedAt = cloneTime(e.ProcessedAt)
	return &c
}
