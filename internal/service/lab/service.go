package lab

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

// RecentLimit is the number of completed results on the dashboard.
const RecentLimit = 5

type Service struct {
	repo     repository.LabResultRepository
	patients repository.PatientRepository
	now      func() time.Time
}

func NewService(repo repository.LabResultRepository, patients repository.PatientRepository) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		now:      time.Now,
	}
}

func (s *Service) Request(ctx context.Context, req *model.RequestLabTestRequest) (*model.LabResult, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperrors.BadRequest("Patient is required", nil)
	}
	patient, err := s.patients.Get(ctx, req.PatientID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	now := s.now()
	result := &model.LabResult{
		PatientID:   patient.ID,
		PatientName: patient.Name,
		TestType:    strings.TrimSpace(req.TestType),
		RequestDate: now,
		RequestedBy: req.RequestedBy,
		Status:      model.LabStatusPending,
		Results:     []model.LabValue{},
		Notes:       req.Notes,
	}
	result.Touch(now)
	if err := s.repo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to create lab result: %w", err)
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.LabResult, error) {
	result, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("lab result", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lab result: %w", err)
	}
	return result, nil
}

// List filters by patient, status ("all" or empty matches everything) and a
// case-insensitive search over patient name and test type. Newest requests
// come first.
func (s *Service) List(ctx context.Context, filters *model.LabFilters) ([]*model.LabResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}

	q := strings.ToLower(strings.TrimSpace(filters.Search))
	out := make([]*model.LabResult, 0, len(all))
	for _, r := range all {
		if filters.PatientID != uuid.Nil && r.PatientID != filters.PatientID {
			continue
		}
		if filters.Status != "" && filters.Status != "all" && string(r.Status) != filters.Status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.PatientName), q) &&
			!strings.Contains(strings.ToLower(r.TestType), q) &&
			!strings.Contains(strings.ToLower(DisplayName(r.TestType)), q) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LabStatus) (*model.LabResult, error) {
	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result.Status = status
	if status == model.LabStatusCompleted {
		if result.CompletedDate == nil {
			result.CompletedDate = &now
		}
	} else {
		result.CompletedDate = nil
	}
	return s.save(ctx, result, now)
}

// RecordResults stores the result rows, deriving missing flags, and completes
// the test.
func (s *Service) RecordResults(ctx context.Context, id uuid.UUID, req *model.RecordLabResultsRequest) (*model.LabResult, error) {
	result, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.Status == model.LabStatusCancelled {
		return nil, apperrors.Conflict("cannot record results for a cancelled test", nil)
	}
	if len(req.Results) == 0 {
		return nil, apperrors.BadRequest("at least one result is required", nil)
	}

	values := make([]model.LabValue, len(req.Results))
	for i, v := range req.Results {
		if v.Flag == "" {
			v.Flag = DeriveFlag(v.Value, v.ReferenceRange)
		}
		values[i] = v
	}

	now := s.now()
	result.Results = values
	result.Status = model.LabStatusCompleted
	result.CompletedDate = &now
	if req.Notes != nil {
		result.Notes = *req.Notes
	}
	if req.Attachments != nil {
		result.Attachments = req.Attachments
	}
	return s.save(ctx, result, now)
}

func (s *Service) save(ctx context.Context, result *model.LabResult, now time.Time) (*model.LabResult, error) {
	result.Touch(now)
	if err := s.repo.Update(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to update lab result: %w", err)
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return apperrors.NotFound("lab result", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete lab result: %w", err)
	}
	return nil
}

// Stats counts results per status plus critical findings and returns the most
// recently completed results.
func (s *Service) Stats(ctx context.Context) (*model.LabStats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}
	return ComputeStats(all), nil
}

func ComputeStats(results []*model.LabResult) *model.LabStats {
	stats := &model.LabStats{Recent: []*model.LabResult{}}
	var completed []*model.LabResult
	for _, r := range results {
		switch r.Status {
		case model.LabStatusPending:
			stats.Pending++
		case model.LabStatusInProgress:
			stats.InProgress++
		case model.LabStatusCompleted:
			stats.Completed++
			completed = append(completed, r)
		}
		if r.Critical() {
			stats.Critical++
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completedAt(completed[i]).After(completedAt(completed[j]))
	})
	if len(completed) > RecentLimit {
		completed = completed[:RecentLimit]
	}
	stats.Recent = append(stats.Recent, completed...)
	return stats
}

func completedAt(r *model.LabResult) time.Time {
	if r.CompletedDate == nil {
		return time.Time{}
	}
	return *r.CompletedDate
}

// DeriveFlag compares a numeric value with a "min-max" reference range.
// Anything it cannot parse is reported as normal.
func DeriveFlag(value, referenceRange string) model.ResultFlag {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return model.ResultFlagNormal
	}
	low, high, ok := parseRange(referenceRange)
	if !ok {
		return model.ResultFlagNormal
	}
	switch {
	case v < low:
		return model.ResultFlagLow
	case v > high:
		return model.ResultFlagHigh
	default:
		return model.ResultFlagNormal
	}
}

func parseRange(s string) (float64, float64, bool) {
	s = strings.TrimSpace(s)
	// skip a leading sign so "-5-5" splits at the separator
	idx := strings.Index(s[min(1, len(s)):], "-")
	if idx < 0 {
		return 0, 0, false
	}
	idx += min(1, len(s))
	low, err := strconv.ParseFloat(strings.TrimSpace(s[:idx]), 64)
	if err != nil {
		return 0, 0, false
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(s[idx+1:]), 64)
	if err != nil || high < low {
		return 0, 0, false
	}
	return low, high, true
}

// DisplayName turns a test type slug into words: "complete-blood-count"
// becomes "Complete Blood Count".
func DisplayName(testType string) string {
	words := strings.FieldsFunc(testType, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
