package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	"github.com/jwalitptl/vet-admin-api/internal/service/inventory"
	"github.com/jwalitptl/vet-admin-api/internal/service/lab"
)

type Service struct {
	store        *repository.Store
	expiryWindow time.Duration
	loc          *time.Location
	now          func() time.Time
}

func NewService(store *repository.Store, expiryWindowDays int, loc *time.Location) *Service {
	window := inventory.DefaultExpiryWindow
	if expiryWindowDays > 0 {
		window = time.Duration(expiryWindowDays) * 24 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:        store,
		expiryWindow: window,
		loc:          loc,
		now:          time.Now,
	}
}

// Summary collects the figures shown on the clinic dashboard.
func (s *Service) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	now := s.now().In(s.loc)
	today := now.Format(model.DateLayout)
	out := &model.DashboardSummary{
		Date:              today,
		TodayAppointments: []*model.Appointment{},
	}

	apts, err := s.store.Appointments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	for _, a := range apts {
		if a.Date == today {
			out.TodayAppointments = append(out.TodayAppointments, a)
		}
		if !a.Status.Active() {
			continue
		}
		if start, _, err := a.Window(s.loc); err == nil && start.After(now) {
			out.UpcomingCount++
		}
	}
	sort.SliceStable(out.TodayAppointments, func(i, j int) bool {
		return out.TodayAppointments[i].StartTime < out.TodayAppointments[j].StartTime
	})

	results, err := s.store.LabResults.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}
	out.Lab = *lab.ComputeStats(results)

	items, err := s.store.Inventory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	for _, item := range items {
		if item.LowStock() {
			out.LowStockCount++
		}
		if item.ExpiringWithin(now, s.expiryWindow) {
			out.ExpiringCount++
		}
	}

	notifications, err := s.store.Notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	for _, n := range notifications {
		if n.Status == model.NotificationStatusUnread {
			out.UnreadNotifications++
		}
	}

	bills, err := s.store.Bills.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	for _, b := range bills {
		if b.IsOverdue(now) {
			out.OverdueBills++
		}
	}
	return out, nil
}
