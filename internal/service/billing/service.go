package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
)

const DefaultDueDays = 30

type Service struct {
	repo     repository.BillRepository
	patients repository.PatientRepository
	taxRate  decimal.Decimal
	dueDays  int
	loc      *time.Location
	now      func() time.Time
}

func NewService(repo repository.BillRepository, patients repository.PatientRepository, taxRate float64, dueDays int, loc *time.Location) *Service {
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:     repo,
		patients: patients,
		taxRate:  decimal.NewFromFloat(taxRate),
		dueDays:  dueDays,
		loc:      loc,
		now:      time.Now,
	}
}

// Totals computes line totals, subtotal, tax rounded to cents and grand total.
func Totals(items []model.BillItem, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for i := range items {
		items[i].Total = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity)))
		subtotal = subtotal.Add(items[i].Total)
	}
	tax = subtotal.Mul(taxRate).Round(2)
	return subtotal, tax, subtotal.Add(tax)
}

func (s *Service) Create(ctx context.Context, req *model.CreateBillRequest) (*model.Bill, error) {
	if req.PatientID == uuid.Nil {
		return nil, apperrors.BadRequest("Patient is required", nil)
	}
	if len(req.Items) == 0 {
		return nil, apperrors.BadRequest("bill must have at least one item", nil)
	}
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	date := model.StartOfDay(s.now().In(s.loc))
	if req.Date != "" {
		d, err := model.ParseDate(req.Date, s.loc)
		if err != nil {
			return nil, apperrors.BadRequest("invalid date", err)
		}
		date = d
	}
	due := date.AddDate(0, 0, s.dueDays)
	if req.DueDate != "" {
		d, err := model.ParseDate(req.DueDate, s.loc)
		if err != nil {
			return nil, apperrors.BadRequest("invalid due date", err)
		}
		if d.Before(date) {
			return nil, apperrors.BadRequest("due date cannot precede the bill date", nil)
		}
		due = d
	}

	items := make([]model.BillItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apperrors.BadRequest("item quantity must be positive", nil)
		}
		if it.UnitPrice.IsNegative() {
			return nil, apperrors.BadRequest("item price cannot be negative", nil)
		}
		items = append(items, model.BillItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	subtotal, tax, total := Totals(items, s.taxRate)

	bill := &model.Bill{
		PatientID: req.PatientID,
		Date:      date,
		DueDate:   due,
		Items:     items,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		Status:    model.BillStatusPending,
	}
	bill.Touch(s.now())
	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	return bill, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("bill", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// List returns bills newest first, optionally for one patient and one status.
func (s *Service) List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error) {
	var (
		bills []*model.Bill
		err   error
	)
	if filters.PatientID != uuid.Nil {
		bills, err = s.repo.ListByPatient(ctx, filters.PatientID)
	} else {
		bills, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	out := make([]*model.Bill, 0, len(bills))
	for _, b := range bills {
		if filters.Status != "" && filters.Status != "all" && string(b.Status) != filters.Status {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	bill, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Status == model.BillStatusPaid {
		return bill, nil
	}

	now := s.now()
	bill.Status = model.BillStatusPaid
	bill.PaidAt = &now
	bill.Touch(now)
	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}
	return bill, nil
}

// MarkOverdue flips pending bills past their due date to overdue and returns
// the bills it changed.
func (s *Service) MarkOverdue(ctx context.Context) ([]*model.Bill, error) {
	bills, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	now := s.now()
	var changed []*model.Bill
	for _, b := range bills {
		if b.Status != model.BillStatusPending || !b.IsOverdue(now) {
			continue
		}
		b.Status = model.BillStatusOverdue
		b.Touch(now)
		if err := s.repo.Update(ctx, b); err != nil {
			return changed, fmt.Errorf("failed to update bill %s: %w", b.ID, err)
		}
		changed = append(changed, b)
	}
	return changed, nil
}
