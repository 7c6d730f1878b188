package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/email"
	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

const (
	channelEmail  = "email"
	channelBroker = "broker"

	statusSent   = "sent"
	statusFailed = "failed"
)

// Published is the message sent on the notifications topic.
type Published struct {
	ID        uuid.UUID                  `json:"id"`
	Title     string                     `json:"title"`
	Message   string                     `json:"message"`
	Priority  model.NotificationPriority `json:"priority"`
	Link      string                     `json:"link,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

type Service struct {
	repo     repository.NotificationRepository
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo repository.NotificationRepository, emailSvc email.Service, broker messaging.Broker, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	n := &model.Notification{
		Title:     req.Title,
		Message:   req.Message,
		Priority:  req.Priority,
		Link:      req.Link,
		Recipient: req.Recipient,
	}
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Notify stores n as unread and delivers it. Delivery failures are logged and
// never fail the call.
func (s *Service) Notify(ctx context.Context, n *model.Notification) error {
	now := s.now()
	n.Touch(now)
	if n.Date.IsZero() {
		n.Date = now
	}
	if n.Priority == "" {
		n.Priority = model.NotificationPriorityMedium
	}
	n.Status = model.NotificationStatusUnread

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(n.Priority)).Inc()

	s.deliver(ctx, n)
	return nil
}

// NotifyOnce skips n when an unread notification with the same link and title
// already exists. It reports whether n was created.
func (s *Service) NotifyOnce(ctx context.Context, n *model.Notification) (bool, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list notifications: %w", err)
	}
	for _, existing := range all {
		if existing.Status == model.NotificationStatusUnread && existing.Link == n.Link && existing.Title == n.Title {
			return false, nil
		}
	}
	if err := s.Notify(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) deliver(ctx context.Context, n *model.Notification) {
	msg := Published{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
	if err := s.broker.Publish(ctx, messaging.TopicNotifications, msg); err != nil {
		s.logger.Error(err, "Failed to publish notification", "notification_id", n.ID.String())
		s.metrics.NotificationDeliveries.WithLabelValues(channelBroker, statusFailed).Inc()
	} else {
		s.metrics.NotificationDeliveries.WithLabelValues(channelBroker, statusSent).Inc()
	}

	if n.Priority != model.NotificationPriorityHigh || n.Recipient == "" {
		return
	}
	if err := s.emailSvc.SendCustom(ctx, n.Recipient, n.Title, n.Message); err != nil {
		s.logger.Error(err, "Failed to email notification",
			"notification_id", n.ID.String(),
			"recipient", n.Recipient)
		s.metrics.NotificationDeliveries.WithLabelValues(channelEmail, statusFailed).Inc()
		return
	}
	s.metrics.NotificationDeliveries.WithLabelValues(channelEmail, statusSent).Inc()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("notification", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// List returns notifications newest first. An empty or "all" status returns
// every notification.
func (s *Service) List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*model.Notification, 0, len(all))
	for _, n := range all {
		if filters != nil && filters.Status != "" && filters.Status != "all" && string(n.Status) != filters.Status {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	count := 0
	for _, n := range all {
		if n.Status == model.NotificationStatusUnread {
			count++
		}
	}
	return count, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return s.setStatus(ctx, id, model.NotificationStatusRead)
}

func (s *Service) Archive(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return s.setStatus(ctx, id, model.NotificationStatusArchived)
}

// MarkAllRead marks every unread notification read and returns how many
// changed.
func (s *Service) MarkAllRead(ctx context.Context) (int, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	changed := 0
	for _, n := range all {
		if n.Status != model.NotificationStatusUnread {
			continue
		}
		n.Status = model.NotificationStatusRead
		n.Touch(s.now())
		if err := s.repo.Update(ctx, n); err != nil {
			return changed, fmt.Errorf("failed to update notification: %w", err)
		}
		changed++
	}
	return changed, nil
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus) (*model.Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Status == status {
		return n, nil
	}
	n.Status = status
	n.Touch(s.now())
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	return n, nil
}
