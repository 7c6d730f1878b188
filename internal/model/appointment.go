package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentType string

const (
	AppointmentTypeCheckUp     AppointmentType = "check-up"
	AppointmentTypeVaccination AppointmentType = "vaccination"
	AppointmentTypeSurgery     AppointmentType = "surgery"
	AppointmentTypeDental      AppointmentType = "dental"
	AppointmentTypeEmergency   AppointmentType = "emergency"
	AppointmentTypeFollowUp    AppointmentType = "follow-up"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in-progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no-show"
)

// Active reports whether the appointment still occupies the veterinarian's time.
func (s AppointmentStatus) Active() bool {
	switch s {
	case AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusNoShow:
		return false
	}
	return true
}

// Color is the calendar colour for the status.
func (s AppointmentStatus) Color() string {
	switch s {
	case AppointmentStatusConfirmed:
		return "#34D399"
	case AppointmentStatusInProgress:
		return "#FCD34D"
	case AppointmentStatusCompleted:
		return "#6B7280"
	case AppointmentStatusCancelled:
		return "#EF4444"
	case AppointmentStatusNoShow:
		return "#1F2937"
	default:
		return "#93C5FD"
	}
}

type Appointment struct {
	Base             `yaml:",inline"`
	PatientID        uuid.UUID         `json:"patient_id" yaml:"patient_id"`
	PatientName      string            `json:"patient_name" yaml:"patient_name"`
	OwnerName        string            `json:"owner_name" yaml:"owner_name"`
	VeterinarianID   uuid.UUID         `json:"veterinarian_id" yaml:"veterinarian_id"`
	VeterinarianName string            `json:"veterinarian_name" yaml:"veterinarian_name"`
	Date             string            `json:"date" yaml:"date"`
	StartTime        string            `json:"start_time" yaml:"start_time"`
	EndTime          string            `json:"end_time" yaml:"end_time"`
	Type             AppointmentType   `json:"type" yaml:"type"`
	Status           AppointmentStatus `json:"status" yaml:"status"`
	Reason           string            `json:"reason,omitempty" yaml:"reason"`
	Notes            string            `json:"notes,omitempty" yaml:"notes"`
}

// Window returns the start and end instants of the appointment in loc.
func (a *Appointment) Window(loc *time.Location) (time.Time, time.Time, error) {
	start, err := CombineDateClock(a.Date, a.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := CombineDateClock(a.Date, a.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

type CreateAppointmentRequest struct {
	PatientID      uuid.UUID       `json:"patient_id"`
	VeterinarianID uuid.UUID       `json:"veterinarian_id"`
	Date           string          `json:"date" binding:"required,yyyymmdd"`
	StartTime      string          `json:"start_time" binding:"omitempty,hhmm"`
	EndTime        string          `json:"end_time" binding:"omitempty,hhmm"`
	Type           AppointmentType `json:"type" binding:"required,oneof=check-up vaccination surgery dental emergency follow-up"`
	Reason         string          `json:"reason" binding:"max=500"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	VeterinarianID *uuid.UUID       `json:"veterinarian_id"`
	Date           *string          `json:"date" binding:"omitempty,yyyymmdd"`
	StartTime      *string          `json:"start_time" binding:"omitempty,hhmm"`
	EndTime        *string          `json:"end_time" binding:"omitempty,hhmm"`
	Type           *AppointmentType `json:"type" binding:"omitempty,oneof=check-up vaccination surgery dental emergency follow-up"`
	Reason         *string          `json:"reason" binding:"omitempty,max=500"`
	Notes          *string          `json:"notes" binding:"omitempty,max=1000"`
}

type ChangeAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=scheduled confirmed in-progress completed cancelled no-show"`
}

type AppointmentFilters struct {
	PatientID      uuid.UUID         `form:"-"`
	VeterinarianID uuid.UUID         `form:"-"`
	Status         AppointmentStatus `form:"status"`
	Type           AppointmentType   `form:"type"`
	From           string            `form:"from" binding:"omitempty,yyyymmdd"`
	To             string            `form:"to" binding:"omitempty,yyyymmdd"`
}

type CalendarView string

const (
	CalendarViewMonth CalendarView = "month"
	CalendarViewWeek  CalendarView = "week"
	CalendarViewDay   CalendarView = "day"
)

type CalendarEvent struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	Color       string       `json:"color"`
	Appointment *Appointment `json:"appointment,omitempty"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
