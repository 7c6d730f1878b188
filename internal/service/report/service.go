package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
	apperrors "github.com/jwalitptl/vet-admin-api/pkg/errors"
	"github.com/jwalitptl/vet-admin-api/pkg/logger"
	"github.com/jwalitptl/vet-admin-api/pkg/metrics"
)

const DefaultCacheTTL = time.Hour

var titles = map[model.ReportType]string{
	model.ReportTypeFinancial: "Financial Report",
	model.ReportTypeClinical:  "Clinical Statistics",
	model.ReportTypeInventory: "Inventory Status",
	model.ReportTypeStaff:     "Staff Performance",
}

type Service struct {
	store   *repository.Store
	cache   *cache.Cache
	logger  *logger.Logger
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
}

// NewService builds the report generator over every repository of store.
// Rendered bodies are kept in memory for ttl.
func NewService(store *repository.Store, ttl time.Duration, log *logger.Logger, m *metrics.Metrics, loc *time.Location) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:   store,
		cache:   cache.New(ttl, 2*ttl),
		logger:  log,
		metrics: m,
		loc:     loc,
		now:     time.Now,
	}
}

// ResolvePeriod defaults to the first of the current month through today.
func (s *Service) ResolvePeriod(start, end string) (model.Period, error) {
	today := model.StartOfDay(s.now().In(s.loc))
	p := model.Period{
		Start: time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.loc),
		End:   today,
	}
	if start != "" {
		d, err := model.ParseDate(start, s.loc)
		if err != nil {
			return p, apperrors.BadRequest("invalid start date", err)
		}
		p.Start = d
	}
	if end != "" {
		d, err := model.ParseDate(end, s.loc)
		if err != nil {
			return p, apperrors.BadRequest("invalid end date", err)
		}
		p.End = d
	}
	if p.End.Before(p.Start) {
		return p, apperrors.BadRequest("end date cannot precede start date", nil)
	}
	return p, nil
}

// Generate builds, renders and stores a report.
func (s *Service) Generate(ctx context.Context, req *model.GenerateReportRequest, generatedBy string) (*model.Report, error) {
	title, ok := titles[req.Type]
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown report type %q", req.Type), nil)
	}
	if req.Format != model.ReportFormatCSV && req.Format != model.ReportFormatPDF {
		return nil, apperrors.BadRequest(fmt.Sprintf("unknown report format %q", req.Format), nil)
	}
	period, err := s.ResolvePeriod(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	table, err := s.build(ctx, req.Type, period)
	if err != nil {
		return nil, err
	}
	table.Title = title
	table.Subtitle = fmt.Sprintf("%s to %s", period.Start.Format(model.DateLayout), period.End.Format(model.DateLayout))

	var content []byte
	switch req.Format {
	case model.ReportFormatPDF:
		content, err = RenderPDF(table)
	default:
		content, err = RenderCSV(table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	now := s.now()
	report := &model.Report{
		Title:       title,
		Type:        req.Type,
		Period:      period,
		Format:      req.Format,
		GeneratedAt: now,
		GeneratedBy: generatedBy,
		Size:        len(content),
		Content:     content,
	}
	report.Touch(now)
	if err := s.store.Reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}
	s.cache.Set(report.ID.String(), content, cache.DefaultExpiration)
	s.metrics.ReportsGenerated.WithLabelValues(string(req.Type), string(req.Format)).Inc()

	s.logger.Info("report generated", "report_id", report.ID, "type", req.Type, "format", req.Format, "size", len(content))
	return report, nil
}

func (s *Service) build(ctx context.Context, typ model.ReportType, period model.Period) (*model.ReportTable, error) {
	switch typ {
	case model.ReportTypeFinancial:
		return s.financial(ctx, period)
	case model.ReportTypeClinical:
		return s.clinical(ctx, period)
	case model.ReportTypeInventory:
		return s.inventory(ctx)
	case model.ReportTypeStaff:
		return s.staff(ctx, period)
	}
	return nil, apperrors.BadRequest(fmt.Sprintf("unknown report type %q", typ), nil)
}

// List returns report metadata, most recent first.
func (s *Service) List(ctx context.Context) ([]*model.Report, error) {
	reports, err := s.store.Reports.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	sort.SliceStable(reports, func(i, j int) bool { return reports[i].GeneratedAt.After(reports[j].GeneratedAt) })
	return reports, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := s.store.Reports.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.NotFound("report", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// Download returns the report metadata and its rendered body, from the cache
// when it is still warm.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*model.Report, []byte, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if cached, found := s.cache.Get(id.String()); found {
		s.metrics.ReportCacheHits.Inc()
		return report, cached.([]byte), nil
	}
	if len(report.Content) == 0 {
		return nil, nil, apperrors.NotFound("report content", nil)
	}
	s.cache.Set(id.String(), report.Content, cache.DefaultExpiration)
	return report, report.Content, nil
}
