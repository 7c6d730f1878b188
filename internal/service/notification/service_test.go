package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/messaging"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

type sentMail struct {
	to, subject string
}

type fakeEmail struct {
	sent []sentMail
	err  error
}

func (f *fakeEmail) SendCustom(_ context.Context, to, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeEmail, *messaging.MemoryBroker) {
	t.Helper()
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })
	mail := &fakeEmail{}
	svc := NewService(memory.NewNotificationRepository(), mail, broker, logger.Nop(), metrics.New("test"))
	return svc, mail, broker
}

func TestNotifyPublishesToBroker(t *testing.T) {
	svc, _, broker := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := broker.Subscribe(ctx, messaging.TopicNotifications)
	require.NoError(t, err)

	n, err := svc.Create(ctx, &model.CreateNotificationRequest{Title: "Lab ready", Message: "CBC for Max"})
	require.NoError(t, err)
	assert.Equal(t, model.NotificationStatusUnread, n.Status)
	assert.Equal(t, model.NotificationPriorityMedium, n.Priority)

	select {
	case raw := <-sub:
		var msg Published
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, n.ID, msg.ID)
		assert.Equal(t, "Lab ready", msg.Title)
	case <-time.After(time.Second):
		t.Fatal("notification was not published")
	}
}

func TestHighPriorityNotificationIsEmailed(t *testing.T) {
	svc, mail, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateNotificationRequest{
		Title: "Low stock", Message: "Rabies vaccine", Priority: model.NotificationPriorityHigh,
		Recipient: "admin@example.test",
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.CreateNotificationRequest{
		Title: "FYI", Message: "x", Priority: model.NotificationPriorityLow, Recipient: "admin@example.test",
	})
	require.NoError(t, err)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, sentMail{to: "admin@example.test", subject: "Low stock"}, mail.sent[0])
}

func TestEmailFailureDoesNotFailNotify(t *testing.T) {
	svc, mail, _ := newTestService(t)
	mail.err = errors.New("smtp down")

	_, err := svc.Create(context.Background(), &model.CreateNotificationRequest{
		Title: "Low stock", Message: "x", Priority: model.NotificationPriorityHigh, Recipient: "a@b.test",
	})
	assert.NoError(t, err)
}

func TestStatusTransitionsAndUnreadCount(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, &model.CreateNotificationRequest{Title: "a", Message: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, &model.CreateNotificationRequest{Title: "b", Message: "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &model.CreateNotificationRequest{Title: "c", Message: "c"})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.MarkRead(ctx, a.ID)
	require.NoError(t, err)
	_, err = svc.Archive(ctx, b.ID)
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	archived, err := svc.List(ctx, &model.NotificationFilters{Status: "archived"})
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, b.ID, archived[0].ID)

	all, err := svc.List(ctx, &model.NotificationFilters{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	changed, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	_, err = svc.MarkRead(ctx, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, title := range []string{"old", "new", "mid"} {
		offset := map[int]int{0: 0, 1: 2, 2: 1}[i]
		require.NoError(t, svc.Notify(ctx, &model.Notification{
			Title: title, Message: title, Date: base.Add(time.Duration(offset) * time.Hour),
		}))
	}

	list, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{list[0].Title, list[1].Title, list[2].Title})
}

func TestNotifyOnceDeduplicatesUnread(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mk := func() *model.Notification {
		return &model.Notification{Title: "Low stock: Gauze", Message: "m", Link: "/inventory/1"}
	}

	created, err := svc.NotifyOnce(ctx, mk())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.NotifyOnce(ctx, mk())
	require.NoError(t, err)
	assert.False(t, created)

	_, err = svc.MarkAllRead(ctx)
	require.NoError(t, err)

	created, err = svc.NotifyOnce(ctx, mk())
	require.NoError(t, err)
	assert.True(t, created)
}
