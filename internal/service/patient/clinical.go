package patient

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

var (
	dogVaccines = []model.VaccineRecommendation{
		{Name: "Rabies", Frequency: "Annual", Required: true},
		{Name: "DHPP", Frequency: "Every 3 years", Required: true},
		{Name: "Bordetella", Frequency: "Every 6 months", Required: false},
		{Name: "Lyme", Frequency: "Annual", Required: false},
		{Name: "Influenza", Frequency: "Annual", Required: false},
	}
	catVaccines = []model.VaccineRecommendation{
		{Name: "Rabies", Frequency: "Annual", Required: true},
		{Name: "FVRCP", Frequency: "Every 3 years", Required: true},
		{Name: "FeLV", Frequency: "Annual", Required: false},
	}
)

// RecommendedVaccines returns the vaccine list for a species. Cats have their
// own list; every other species uses the dog list.
func RecommendedVaccines(species string) []model.VaccineRecommendation {
	if strings.EqualFold(strings.TrimSpace(species), "cat") {
		return catVaccines
	}
	return dogVaccines
}

// parseDay parses an optional YYYY-MM-DD value, defaulting to today.
func (s *Service) parseDay(value string) (time.Time, error) {
	if value == "" {
		return model.StartOfDay(s.now().In(s.loc)), nil
	}
	d, err := model.ParseDate(value, s.loc)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("invalid date", err)
	}
	return d, nil
}

func (s *Service) AddMedicalRecord(ctx context.Context, id uuid.UUID, req *model.AddMedicalRecordRequest) (*model.MedicalRecord, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	record := model.MedicalRecord{
		ID:            uuid.New(),
		Date:          date,
		Diagnosis:     req.Diagnosis,
		Symptoms:      nonNil(req.Symptoms),
		Treatment:     req.Treatment,
		Prescriptions: nonNil(req.Prescriptions),
		Notes:         req.Notes,
		Veterinarian:  req.Veterinarian,
	}
	patient.MedicalHistory = append(patient.MedicalHistory, record)
	if _, err := s.save(ctx, patient); err != nil {
		return nil, err
	}
	return &record, nil
}

// MedicalHistory returns records newest first. query filters on diagnosis,
// symptoms, treatment and notes.
func (s *Service) MedicalHistory(ctx context.Context, id uuid.UUID, query string) ([]model.MedicalRecord, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.MedicalRecord, 0, len(patient.MedicalHistory))
	for _, r := range patient.MedicalHistory {
		if q != "" && !recordMatches(r, q) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func recordMatches(r model.MedicalRecord, q string) bool {
	fields := append([]string{r.Diagnosis, r.Treatment, r.Notes}, r.Symptoms...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (s *Service) AddVitalSigns(ctx context.Context, id uuid.UUID, req *model.AddVitalSignsRequest) (*model.VitalSigns, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	vitals := model.VitalSigns{
		Date:            date,
		Temperature:     req.Temperature,
		HeartRate:       req.HeartRate,
		RespiratoryRate: req.RespiratoryRate,
		Weight:          req.Weight,
	}
	patient.VitalSigns = append(patient.VitalSigns, vitals)
	if req.Weight > 0 {
		patient.Weight = req.Weight
	}
	if _, err := s.save(ctx, patient); err != nil {
		return nil, err
	}
	return &vitals, nil
}

// VitalSigns returns the chart series oldest first.
func (s *Service) VitalSigns(ctx context.Context, id uuid.UUID) ([]model.VitalSigns, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := append([]model.VitalSigns{}, patient.VitalSigns...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Service) AddPrescription(ctx context.Context, id uuid.UUID, req *model.AddPrescriptionRequest) (*model.Prescription, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	start, err := s.parseDay(req.StartDate)
	if err != nil {
		return nil, err
	}

	rx := model.Prescription{
		ID:         uuid.New(),
		Medication: req.Medication,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		Duration:   req.Duration,
		Refills:    req.Refills,
		StartDate:  start,
		Status:     model.PrescriptionStatusActive,
	}
	patient.Prescriptions = append(patient.Prescriptions, rx)
	if _, err := s.save(ctx, patient); err != nil {
		return nil, err
	}
	return &rx, nil
}

// Prescriptions lists every prescription, or only active ones, newest start
// date first.
func (s *Service) Prescriptions(ctx context.Context, id uuid.UUID, activeOnly bool) ([]model.Prescription, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		return ActivePrescriptions(patient), nil
	}
	out := append([]model.Prescription{}, patient.Prescriptions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, nil
}

// ActivePrescriptions returns the patient's active prescriptions, newest start
// date first.
func ActivePrescriptions(patient *model.Patient) []model.Prescription {
	out := []model.Prescription{}
	for _, rx := range patient.Prescriptions {
		if rx.Status == model.PrescriptionStatusActive {
			out = append(out, rx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (s *Service) UpdatePrescriptionStatus(ctx context.Context, id, rxID uuid.UUID, status model.PrescriptionStatus) (*model.Prescription, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range patient.Prescriptions {
		if patient.Prescriptions[i].ID != rxID {
			continue
		}
		patient.Prescriptions[i].Status = status
		if _, err := s.save(ctx, patient); err != nil {
			return nil, err
		}
		rx := patient.Prescriptions[i]
		return &rx, nil
	}
	return nil, apperrors.NotFound("prescription", nil)
}

func (s *Service) RecordVaccination(ctx context.Context, id uuid.UUID, req *model.RecordVaccinationRequest) (*model.Vaccination, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDay(req.Date)
	if err != nil {
		return nil, err
	}
	if req.ValidityPeriod <= 0 {
		return nil, apperrors.BadRequest("validity period must be positive", nil)
	}

	v := model.Vaccination{
		Name:           strings.TrimSpace(req.Name),
		Date:           date,
		ValidityPeriod: req.ValidityPeriod,
		AdministeredBy: req.AdministeredBy,
	}
	patient.Vaccinations = append(patient.Vaccinations, v)
	if _, err := s.save(ctx, patient); err != nil {
		return nil, err
	}
	return &v, nil
}

// VaccinationSchedule compares the patient's vaccinations with the species
// recommendations.
func (s *Service) VaccinationSchedule(ctx context.Context, id uuid.UUID) ([]model.VaccinationScheduleEntry, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Schedule(patient, s.now()), nil
}

// Schedule reports, per recommended vaccine, the latest dose and its status:
// due when never given, overdue once now is past the next due date, current
// otherwise.
func Schedule(patient *model.Patient, now time.Time) []model.VaccinationScheduleEntry {
	recs := RecommendedVaccines(patient.Species)
	out := make([]model.VaccinationScheduleEntry, 0, len(recs))
	for _, rec := range recs {
		entry := model.VaccinationScheduleEntry{
			VaccineRecommendation: rec,
			Status:                model.VaccinationStatusDue,
		}

		var latest *model.Vaccination
		for i := range patient.Vaccinations {
			v := &patient.Vaccinations[i]
			if strings.EqualFold(v.Name, rec.Name) && (latest == nil || v.Date.After(latest.Date)) {
				latest = v
			}
		}
		if latest != nil {
			given := latest.Date
			due := latest.NextDue()
			entry.LastGiven = &given
			entry.NextDue = &due
			if now.After(due) {
				entry.Status = model.VaccinationStatusOverdue
			} else {
				entry.Status = model.VaccinationStatusCurrent
			}
		}
		out = append(out, entry)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
