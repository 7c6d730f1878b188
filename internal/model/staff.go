package model

import (
	"strings"
	"time"
)

type StaffRole string

const (
	StaffRoleVeterinarian StaffRole = "veterinarian"
	StaffRoleTechnician   StaffRole = "technician"
	StaffRoleAssistant    StaffRole = "assistant"
	StaffRoleReceptionist StaffRole = "receptionist"
	StaffRoleAdmin        StaffRole = "admin"
)

type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusOnLeave  StaffStatus = "on-leave"
	StaffStatusInactive StaffStatus = "inactive"
)

// Weekday keys used in staff schedules
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// WeekdayOf maps a time.Weekday onto a schedule key.
func WeekdayOf(d time.Weekday) Weekday {
	return Weekday(strings.ToLower(d.String()))
}

// TimeWeekday is the inverse of WeekdayOf. ok is false for unknown keys.
func (w Weekday) TimeWeekday() (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if WeekdayOf(d) == w {
			return d, true
		}
	}
	return 0, false
}

// Title is the capitalised day name, e.g. "Monday".
func (w Weekday) Title() string {
	if d, ok := w.TimeWeekday(); ok {
		return d.String()
	}
	return string(w)
}

type WorkingHours struct {
	Start string `json:"start" yaml:"start" binding:"required,hhmm"`
	End   string `json:"end" yaml:"end" binding:"required,hhmm"`
}

type Contact struct {
	Email     string `json:"email" yaml:"email" binding:"required,email"`
	Phone     string `json:"phone" yaml:"phone" binding:"max=50"`
	Emergency string `json:"emergency,omitempty" yaml:"emergency" binding:"max=200"`
}

type Qualification struct {
	Degree         string   `json:"degree" yaml:"degree"`
	Institution    string   `json:"institution" yaml:"institution"`
	Year           int      `json:"year" yaml:"year"`
	Certifications []string `json:"certifications,omitempty" yaml:"certifications"`
}

type Staff struct {
	Base           `yaml:",inline"`
	Name           string                   `json:"name" yaml:"name"`
	Role           StaffRole                `json:"role" yaml:"role"`
	Specialties    []string                 `json:"specialties,omitempty" yaml:"specialties"`
	Schedule       map[Weekday]WorkingHours `json:"schedule" yaml:"schedule"`
	Contact        Contact                  `json:"contact" yaml:"contact"`
	Qualifications []Qualification          `json:"qualifications,omitempty" yaml:"qualifications"`
	StartDate      time.Time                `json:"start_date" yaml:"start_date"`
	Status         StaffStatus              `json:"status" yaml:"status"`
	ProfileImage   string                   `json:"profile_image,omitempty" yaml:"profile_image"`
	PasswordHash   string                   `json:"-" yaml:"-"`
}

type ScheduleEvent struct {
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	StaffID string    `json:"staff_id"`
	Day     Weekday   `json:"day"`
}

type StaffFilters struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	Search string `form:"search"`
}

type CreateStaffRequest struct {
	Name           string                   `json:"name" binding:"required,max=200"`
	Role           StaffRole                `json:"role" binding:"required,oneof=veterinarian technician assistant receptionist admin"`
	Specialties    []string                 `json:"specialties"`
	Schedule       map[Weekday]WorkingHours `json:"schedule"`
	Contact        Contact                  `json:"contact" binding:"required"`
	Qualifications []Qualification          `json:"qualifications"`
	StartDate      string                   `json:"start_date" binding:"omitempty,yyyymmdd"`
	Status         StaffStatus              `json:"status" binding:"omitempty,oneof=active on-leave inactive"`
	ProfileImage   string                   `json:"profile_image" binding:"omitempty,max=500"`
	Password       string                   `json:"password" binding:"omitempty,min=8,max=72"`
}

type UpdateStaffRequest struct {
	Name           *string         `json:"name" binding:"omitempty,max=200"`
	Role           *StaffRole      `json:"role" binding:"omitempty,oneof=veterinarian technician assistant receptionist admin"`
	Specialties    []string        `json:"specialties"`
	Contact        *Contact        `json:"contact"`
	Qualifications []Qualification `json:"qualifications"`
	Status         *StaffStatus    `json:"status" binding:"omitempty,oneof=active on-leave inactive"`
	ProfileImage   *string         `json:"profile_image" binding:"omitempty,max=500"`
	Password       *string         `json:"password" binding:"omitempty,min=8,max=72"`
}
