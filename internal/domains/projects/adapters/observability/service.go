package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	types "github.com/clockline/clockline/internal/domains/projects/application/types"
	"github.com/clockline/clockline/internal/domains/projects/domain"
	"github.com/clockline/clockline/internal/domains/projects/ports"
)

const tracerName = "github.com/clockline/clockline/internal/domains/projects/adapters/observability/service"

// Service decorates the projects service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core projects service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Create(ctx context.Context, input types.CreateProjectInput) (*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.Create",
		trace.WithAttributes(attribute.Int64("project.client_id", input.ClientID)))
	defer span.End()

	s.logInfo(ctx, "creating project", slog.Int64("project.client_id", input.ClientID))
	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create project", slog.Int64("project.client_id", input.ClientID))
	}
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "project created", slog.Int64("project.id", result.ID), slog.String("project.name", result.Name))
	return result, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.Get", trace.WithAttributes(attribute.Int64("project.id", id)))
	defer span.End()

	result, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load project", slog.Int64("project.id", id))
	}
	span.SetAttributes(attribute.String("project.status", string(result.Status)))
	return result, nil
}

func (s *Service) List(ctx context.Context, input types.ListInput) ([]*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.List",
		trace.WithAttributes(attribute.Int("page.skip", input.Skip), attribute.Int("page.limit", input.Limit)))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list projects")
	}
	span.SetAttributes(attribute.Int("page.size", len(result)))
	return result, nil
}

func (s *Service) ListByCursor(ctx context.Context, input types.CursorListInput) (*types.CursorPage, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.ListByCursor",
		trace.WithAttributes(attribute.Int("page.limit", input.Limit)))
	defer span.End()

	result, err := s.inner.ListByCursor(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list projects by cursor")
	}
	span.SetAttributes(
		attribute.Int("page.size", len(result.Projects)),
		attribute.Bool("page.has_more", result.NextCursor != ""),
	)
	return result, nil
}

func (s *Service) Update(ctx context.Context, id int64, input types.UpdateProjectInput) (*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.Update", trace.WithAttributes(attribute.Int64("project.id", id)))
	defer span.End()

	s.logInfo(ctx, "updating project", slog.Int64("project.id", id))
	result, err := s.inner.Update(ctx, id, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update project", slog.Int64("project.id", id))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "project updated", slog.Int64("project.id", result.ID))
	return result, nil
}

func (s *Service) Start(ctx context.Context, id int64) (*domain.Project, error) {
	return s.transition(ctx, "start", id, func(ctx context.Context) (*domain.Project, error) {
		return s.inner.Start(ctx, id)
	})
}

func (s *Service) Pause(ctx context.Context, id int64) (*domain.Project, error) {
	return s.transition(ctx, "pause", id, func(ctx context.Context) (*domain.Project, error) {
		return s.inner.Pause(ctx, id)
	})
}

func (s *Service) Complete(ctx context.Context, id int64, input types.CompleteProjectInput) (*domain.Project, error) {
	return s.transition(ctx, "complete", id, func(ctx context.Context) (*domain.Project, error) {
		return s.inner.Complete(ctx, id, input)
	})
}

func (s *Service) Cancel(ctx context.Context, id int64, input types.CancelProjectInput) (*domain.Project, error) {
	return s.transition(ctx, "cancel", id, func(ctx context.Context) (*domain.Project, error) {
		return s.inner.Cancel(ctx, id, input)
	})
}

func (s *Service) Delete(ctx context.Context, id int64, force bool) error {
	mode := "soft"
	if force {
		mode = "purge"
	}
	ctx, span := s.tracer.Start(ctx, "ProjectService.Delete",
		trace.WithAttributes(attribute.Int64("project.id", id), attribute.String("delete.mode", mode)))
	defer span.End()

	s.logInfo(ctx, "deleting project", slog.Int64("project.id", id), slog.String("delete.mode", mode))
	if err := s.inner.Delete(ctx, id, force); err != nil {
		return s.handleError(ctx, span, err, "failed to delete project", slog.Int64("project.id", id))
	}
	s.metrics.recordDeleted(ctx, mode)
	s.logInfo(ctx, "project deleted", slog.Int64("project.id", id), slog.String("delete.mode", mode))
	return nil
}

func (s *Service) Overdue(ctx context.Context) ([]*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.Overdue")
	defer span.End()

	result, err := s.inner.Overdue(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list overdue projects")
	}
	span.SetAttributes(attribute.Int("overdue.count", len(result)))
	return result, nil
}

func (s *Service) Statistics(ctx context.Context) (*types.Statistics, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService.Statistics")
	defer span.End()

	result, err := s.inner.Statistics(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to compute project statistics")
	}
	span.SetAttributes(
		attribute.Int64("projects.active", result.TotalActive),
		attribute.Int64("projects.overdue", result.TotalOverdue),
	)
	return result, nil
}

func (s *Service) transition(ctx context.Context, op string, id int64, call func(context.Context) (*domain.Project, error)) (*domain.Project, error) {
	ctx, span := s.tracer.Start(ctx, "ProjectService."+titleCase(op),
		trace.WithAttributes(attribute.Int64("project.id", id), attribute.String("transition.op", op)))
	defer span.End()

	s.logInfo(ctx, "transitioning project", slog.Int64("project.id", id), slog.String("transition.op", op))
	result, err := call(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "project transition rejected",
			slog.Int64("project.id", id), slog.String("transition.op", op))
	}
	s.metrics.recordTransition(ctx, op, result.Status)
	s.logInfo(ctx, "project transitioned",
		slog.Int64("project.id", result.ID), slog.String("project.status", string(result.Status)))
	return result, nil
}

func titleCase(op string) string {
	switch op {
	case "start":
		return "Start"
	case "pause":
		return "Pause"
	case "complete":
		return "Complete"
	case "cancel":
		return "Cancel"
	}
	return op
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	projectsCreated metric.Int64Counter
	transitions     metric.Int64Counter
	projectsUpdated metric.Int64Counter
	projectsDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("projects.service.created", metric.WithDescription("Number of projects created"))
	transitions, _ := m.Int64Counter("projects.service.transitions", metric.WithDescription("Number of project state transitions"))
	updated, _ := m.Int64Counter("projects.service.updated", metric.WithDescription("Number of project updates"))
	deleted, _ := m.Int64Counter("projects.service.deleted", metric.WithDescription("Number of project deletions"))
	return serviceMetrics{
		projectsCreated: created,
		transitions:     transitions,
		projectsUpdated: updated,
		projectsDeleted: deleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.projectsCreated != nil {
		m.projectsCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, op string, status domain.Status) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("transition.op", op),
			attribute.String("project.status", string(status)),
		))
	}
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	if m.projectsUpdated != nil {
		m.projectsUpdated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context, mode string) {
	if m.projectsDeleted != nil {
		m.projectsDeleted.Add(ctx, 1, metric.WithAttributes(attribute.String("delete.mode", mode)))
	}
}

var _ ports.Service = (*Service)(nil)
