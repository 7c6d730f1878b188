package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

type notificationRepository struct {
	doc *document[model.Notification]
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{doc: newDocument(base, "notifications",
		func(n *model.Notification) *model.Base { return &n.Base },
		[]string{"status", "priority"},
		func(n *model.Notification) []interface{} {
			return []interface{}{string(n.Status), string(n.Priority)}
		},
	)}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.doc.insert(ctx, notification)
}

func (r *notificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return r.doc.get(ctx, id)
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	return r.doc.update(ctx, notification)
}

func (r *notificationRepository) List(ctx context.Context) ([]*model.Notification, error) {
	return r.doc.list(ctx, "")
}

// reportRow carries the rendered file, which the API model omits from JSON.
type reportRow struct {
	*model.Report
	Content []byte `json:"content"`
}

type reportRepository struct {
	doc *document[model.Report]
}

func NewReportRepository(base BaseRepository) repository.ReportRepository {
	doc := newDocument(base, "reports",
		func(r *model.Report) *model.Base { return &r.Base },
		[]string{"type"},
		func(r *model.Report) []interface{} { return []interface{}{string(r.Type)} },
	)
	doc.encode = func(r *model.Report) ([]byte, error) {
		return json.Marshal(reportRow{Report: r, Content: r.Content})
	}
	doc.decode = func(data []byte) (*model.Report, error) {
		row := reportRow{Report: &model.Report{}}
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, err
		}
		row.Report.Content = row.Content
		return row.Report, nil
	}
	return &reportRepository{doc: doc}
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	return r.doc.insert(ctx, report)
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	return r.doc.get(ctx, id)
}

func (r *reportRepository) List(ctx context.Context) ([]*model.Report, error) {
	return r.doc.list(ctx, "")
}
