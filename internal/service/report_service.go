package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Tomlord1122/taskhub/internal/domain"
	"github.com/Tomlord1122/taskhub/internal/repository"
)

const (
	DefaultTopPendingLimit = 5
	DefaultMemberPrefix    = "U"
	DefaultMemberSuffix    = "U"
)

// ReportParams are the optional inputs of the parameterised reports.
type ReportParams struct {
	Limit  uint64
	N      *int64
	Prefix string
	Suffix string
}

// ReportService exposes the aggregate reports by name.
type ReportService interface {
	// Names lists every report Run accepts.
	Names() []string
	// Run executes the named report. Unknown names yield domain.ErrNotFound.
	Run(ctx context.Context, name string, params ReportParams) (any, error)
}

type reportFunc func(ctx context.Context, params ReportParams) (any, error)

type reportService struct {
	repo    repository.ReportRepository
	logger  *zap.Logger
	reports map[string]reportFunc
}

func NewReportService(repo repository.ReportRepository, logger *zap.Logger) ReportService {
	s := &reportService{
		repo:   repo,
		logger: logger.Named("reports"),
	}
	s.reports = map[string]reportFunc{
		"users": func(ctx context.Context, _ ReportParams) (any, error) {
			return s.repo.Users(ctx)
		},
		"todos": func(ctx context.Context, _ ReportParams) (any, error) {
			return s.repo.TodosWithCreator(ctx)
		},
		"projects": func(ctx context.Context, _ ReportParams) (any, error) {
			return s.repo.ProjectDetails(ctx)
		},
		"todo-stats": func(ctx context.Context, _ ReportParams) (any, error) {
			return s.repo.TodoStats(ctx)
		},
		"top-pending": func(ctx context.Context, p ReportParams) (any, error) {
			limit := p.Limit
			if limit == 0 {
				limit = DefaultTopPendingLimit
			}
			return s.repo.TopPending(ctx, limit)
		},
		"pending": func(ctx context.Context, p ReportParams) (any, error) {
			if p.N == nil {
				return nil, domain.NewValidationError("n", "This field is required.")
			}
			return s.repo.UsersWithPending(ctx, *p.N)
		},
		"member-name-match": func(ctx context.Context, p ReportParams) (any, error) {
			prefix, suffix := p.Prefix, p.Suffix
			if prefix == "" {
				prefix = DefaultMemberPrefix
			}
			if suffix == "" {
				suffix = DefaultMemberSuffix
			}
			return s.repo.ProjectsWithMemberName(ctx, prefix, suffix)
		},
		"project-wise": func(ctx context.Context, _ ReportParams) (any, error) {
			return s.repo.ProjectWise(ctx)
		},
		"user-wise-projects": func(ctx context.Context, _ ReportParams) (any, error) {
			return s.repo.UserWiseProjectStatus(ctx)
		},
	}
	return s
}

func (s *reportService) Names() []string {
	names := make([]string, 0, len(s.reports))
	for name := range s.reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *reportService) Run(ctx context.Context, name string, params ReportParams) (any, error) {
	report, ok := s.reports[name]
	if !ok {
		return nil, fmt.Errorf("report %q: %w", name, domain.ErrNotFound)
	}

	result, err := report(ctx, params)
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			s.logger.Error("run report", zap.String("report", name), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}
