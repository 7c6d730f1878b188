package model

import (
	"time"

	"github.com/google/uuid"
)

// Account status labels shown on the patient details page
const (
	AccountStatusActive         = "Active"
	AccountStatusPaymentOverdue = "Payment Overdue"
)

type Owner struct {
	Name    string `json:"name" yaml:"name" binding:"required,max=200"`
	Email   string `json:"email" yaml:"email" binding:"omitempty,email"`
	Phone   string `json:"phone" yaml:"phone" binding:"max=50"`
	Address string `json:"address" yaml:"address" binding:"max=500"`
}

// Patient is the animal under care. Clinical history travels with the record.
type Patient struct {
	Base           `yaml:",inline"`
	Name           string          `json:"name" yaml:"name"`
	Species        string          `json:"species" yaml:"species"`
	Breed          string          `json:"breed" yaml:"breed"`
	Age            int             `json:"age" yaml:"age"`
	Weight         float64         `json:"weight" yaml:"weight"`
	Owner          Owner           `json:"owner" yaml:"owner"`
	MedicalHistory []MedicalRecord `json:"medical_history" yaml:"medical_history"`
	Vaccinations   []Vaccination   `json:"vaccinations" yaml:"vaccinations"`
	VitalSigns     []VitalSigns    `json:"vital_signs" yaml:"vital_signs"`
	Prescriptions  []Prescription  `json:"prescriptions" yaml:"prescriptions"`
	LastVisit      *time.Time      `json:"last_visit,omitempty" yaml:"last_visit"`
}

type MedicalRecord struct {
	ID            uuid.UUID `json:"id" yaml:"id"`
	Date          time.Time `json:"date" yaml:"date"`
	Diagnosis     string    `json:"diagnosis" yaml:"diagnosis"`
	Symptoms      []string  `json:"symptoms" yaml:"symptoms"`
	Treatment     string    `json:"treatment" yaml:"treatment"`
	Prescriptions []string  `json:"prescriptions" yaml:"prescriptions"`
	Notes         string    `json:"notes,omitempty" yaml:"notes"`
	Veterinarian  string    `json:"veterinarian" yaml:"veterinarian"`
}

type PrescriptionStatus string

const (
	PrescriptionStatusActive    PrescriptionStatus = "active"
	PrescriptionStatusCompleted PrescriptionStatus = "completed"
	PrescriptionStatusCancelled PrescriptionStatus = "cancelled"
)

type Prescription struct {
	ID         uuid.UUID          `json:"id" yaml:"id"`
	Medication string             `json:"medication" yaml:"medication"`
	Dosage     string             `json:"dosage" yaml:"dosage"`
	Frequency  string             `json:"frequency" yaml:"frequency"`
	Duration   string             `json:"duration" yaml:"duration"`
	Refills    int                `json:"refills" yaml:"refills"`
	StartDate  time.Time          `json:"start_date" yaml:"start_date"`
	Status     PrescriptionStatus `json:"status" yaml:"status"`
}

type VitalSigns struct {
	Date            time.Time `json:"date" yaml:"date"`
	Temperature     float64   `json:"temperature" yaml:"temperature"`
	HeartRate       int       `json:"heart_rate" yaml:"heart_rate"`
	RespiratoryRate int       `json:"respiratory_rate" yaml:"respiratory_rate"`
	Weight          float64   `json:"weight,omitempty" yaml:"weight"`
}

type Vaccination struct {
	Name           string    `json:"name" yaml:"name"`
	Date           time.Time `json:"date" yaml:"date"`
	ValidityPeriod int       `json:"validity_period" yaml:"validity_period"` // days
	AdministeredBy string    `json:"administered_by,omitempty" yaml:"administered_by"`
}

// NextDue is the date the vaccination stops being valid.
func (v Vaccination) NextDue() time.Time {
	return v.Date.AddDate(0, 0, v.ValidityPeriod)
}

type VaccinationStatus string

const (
	VaccinationStatusDue     VaccinationStatus = "due"
	VaccinationStatusCurrent VaccinationStatus = "current"
	VaccinationStatusOverdue VaccinationStatus = "overdue"
)

type VaccineRecommendation struct {
	Name      string `json:"name"`
	Frequency string `json:"frequency"`
	Required  bool   `json:"required"`
}

type VaccinationScheduleEntry struct {
	VaccineRecommendation
	LastGiven *time.Time        `json:"last_given,omitempty"`
	NextDue   *time.Time        `json:"next_due,omitempty"`
	Status    VaccinationStatus `json:"status"`
}

type PatientDetails struct {
	*Patient
	AccountStatus    string `json:"account_status"`
	OutstandingBills int    `json:"outstanding_bills"`
}

type PatientPortal struct {
	Patient              *Patient       `json:"patient"`
	UpcomingAppointments []*Appointment `json:"upcoming_appointments"`
	ActivePrescriptions  []Prescription `json:"active_prescriptions"`
	LastVisit            *time.Time     `json:"last_visit,omitempty"`
	NextAppointment      *Appointment   `json:"next_appointment,omitempty"`
}

type CreatePatientRequest struct {
	Name    string  `json:"name" binding:"required,max=100"`
	Species string  `json:"species" binding:"required,max=50"`
	Breed   string  `json:"breed" binding:"max=100"`
	Age     int     `json:"age" binding:"gte=0,lte=100"`
	Weight  float64 `json:"weight" binding:"gte=0"`
	Owner   Owner   `json:"owner" binding:"required"`
}

type UpdatePatientRequest struct {
	Name    *string  `json:"name" binding:"omitempty,max=100"`
	Species *string  `json:"species" binding:"omitempty,max=50"`
	Breed   *string  `json:"breed" binding:"omitempty,max=100"`
	Age     *int     `json:"age" binding:"omitempty,gte=0,lte=100"`
	Weight  *float64 `json:"weight" binding:"omitempty,gte=0"`
	Owner   *Owner   `json:"owner"`
}

type AddMedicalRecordRequest struct {
	Date          string   `json:"date" binding:"omitempty,yyyymmdd"`
	Diagnosis     string   `json:"diagnosis" binding:"required,max=500"`
	Symptoms      []string `json:"symptoms"`
	Treatment     string   `json:"treatment" binding:"max=2000"`
	Prescriptions []string `json:"prescriptions"`
	Notes         string   `json:"notes" binding:"max=2000"`
	Veterinarian  string   `json:"veterinarian" binding:"max=200"`
}

type AddVitalSignsRequest struct {
	Date            string  `json:"date" binding:"omitempty,yyyymmdd"`
	Temperature     float64 `json:"temperature" binding:"required,gt=30,lt=45"`
	HeartRate       int     `json:"heart_rate" binding:"required,gt=0,lt=400"`
	RespiratoryRate int     `json:"respiratory_rate" binding:"required,gt=0,lt=200"`
	Weight          float64 `json:"weight" binding:"gte=0"`
}

type AddPrescriptionRequest struct {
	Medication string `json:"medication" binding:"required,max=200"`
	Dosage     string `json:"dosage" binding:"required,max=100"`
	Frequency  string `json:"frequency" binding:"required,max=100"`
	Duration   string `json:"duration" binding:"max=100"`
	Refills    int    `json:"refills" binding:"gte=0,lte=12"`
	StartDate  string `json:"start_date" binding:"omitempty,yyyymmdd"`
}

type UpdatePrescriptionStatusRequest struct {
	Status PrescriptionStatus `json:"status" binding:"required,oneof=active completed cancelled"`
}

type RecordVaccinationRequest struct {
	Name           string `json:"name" binding:"required,max=100"`
	Date           string `json:"date" binding:"omitempty,yyyymmdd"`
	ValidityPeriod int    `json:"validity_period" binding:"required,gt=0"`
	AdministeredBy string `json:"administered_by" binding:"max=200"`
}
