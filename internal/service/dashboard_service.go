package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

const (
	dashboardUpcomingLimit = 5
	dashboardRecentLimit   = 10
)

// DashboardStore aggregates the metric queries behind the dashboard.
type DashboardStore interface {
	SummaryCounts(ctx context.Context, examinerID *uuid.UUID) (*model.DashboardSummary, error)
	ExamStatusCounts(ctx context.Context, examinerID *uuid.UUID) (map[model.ExamStatus]int, error)
	UpcomingExams(ctx context.Context, examinerID *uuid.UUID, now time.Time, limit int) ([]model.UpcomingExam, error)
	RecentSubmissions(ctx context.Context, examinerID *uuid.UUID, limit int) ([]model.RecentSubmission, error)
}

// DashboardService assembles the examiner/admin overview.
type DashboardService struct {
	store DashboardStore
	log   zerolog.Logger
	now   func() time.Time
}

func NewDashboardService(store DashboardStore, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		store: store,
		log:   log.With().Str("component", "dashboard_service").Logger(),
		now:   time.Now,
	}
}

// Overview returns the caller's dashboard. Examiners see their own
// exams and students; admins see the whole platform.
func (s *DashboardService) Overview(ctx context.Context, callerID uuid.UUID, role model.Role) (*model.DashboardData, error) {
	var scope *uuid.UUID
	if role != model.RoleAdmin {
		scope = &callerID
	}

	summary, err := s.store.SummaryCounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.store.ExamStatusCounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.store.UpcomingExams(ctx, scope, s.now(), dashboardUpcomingLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.RecentSubmissions(ctx, scope, dashboardRecentLimit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardData{
		Summary:           *summary,
		ExamStatusCounts:  statusCounts,
		UpcomingExams:     upcoming,
		RecentSubmissions: recent,
	}, nil
}
