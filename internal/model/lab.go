package model

import (
	"time"

	"github.com/google/uuid"
)

type LabStatus string

const (
	LabStatusPending    LabStatus = "pending"
	LabStatusInProgress LabStatus = "in-progress"
	LabStatusCompleted  LabStatus = "completed"
	LabStatusCancelled  LabStatus = "cancelled"
)

type ResultFlag string

const (
	ResultFlagNormal   ResultFlag = "normal"
	ResultFlagLow      ResultFlag = "low"
	ResultFlagHigh     ResultFlag = "high"
	ResultFlagCritical ResultFlag = "critical"
)

type LabValue struct {
	Parameter      string     `json:"parameter" yaml:"parameter" binding:"required"`
	Value          string     `json:"value" yaml:"value" binding:"required"`
	Unit           string     `json:"unit" yaml:"unit"`
	ReferenceRange string     `json:"reference_range" yaml:"reference_range"`
	Flag           ResultFlag `json:"flag,omitempty" yaml:"flag" binding:"omitempty,oneof=normal low high critical"`
}

type LabResult struct {
	Base          `yaml:",inline"`
	PatientID     uuid.UUID  `json:"patient_id" yaml:"patient_id"`
	PatientName   string     `json:"patient_name" yaml:"patient_name"`
	TestType      string     `json:"test_type" yaml:"test_type"`
	RequestDate   time.Time  `json:"request_date" yaml:"request_date"`
	RequestedBy   string     `json:"requested_by" yaml:"requested_by"`
	Status        LabStatus  `json:"status" yaml:"status"`
	CompletedDate *time.Time `json:"completed_date,omitempty" yaml:"completed_date"`
	Results       []LabValue `json:"results" yaml:"results"`
	Notes         string     `json:"notes,omitempty" yaml:"notes"`
	Attachments   []string   `json:"attachments,omitempty" yaml:"attachments"`
}

// Critical reports whether any result row is flagged critical.
func (r *LabResult) Critical() bool {
	for _, v := range r.Results {
		if v.Flag == ResultFlagCritical {
			return true
		}
	}
	return false
}

type LabStats struct {
	Pending    int          `json:"pending"`
	InProgress int          `json:"in_progress"`
	Completed  int          `json:"completed"`
	Critical   int          `json:"critical"`
	Recent     []*LabResult `json:"recent"`
}

type LabFilters struct {
	Search    string    `form:"search"`
	Status    string    `form:"status"`
	PatientID uuid.UUID `form:"-"`
}

type RequestLabTestRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	TestType    string    `json:"test_type" binding:"required,max=100"`
	RequestedBy string    `json:"requested_by" binding:"max=200"`
	Notes       string    `json:"notes" binding:"max=2000"`
}

type UpdateLabStatusRequest struct {
	Status LabStatus `json:"status" binding:"required,oneof=pending in-progress completed cancelled"`
}

type RecordLabResultsRequest struct {
	Results     []LabValue `json:"results" binding:"required,min=1,dive"`
	Notes       *string    `json:"notes" binding:"omitempty,max=2000"`
	Attachments []string   `json:"attachments"`
}
