package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/examportal-backend/internal/model"
)

// fakeDashboardStore records the scope each query received.
type fakeDashboardStore struct {
	scopes []*uuid.UUID
}

func (f *fakeDashboardStore) SummaryCounts(_ context.Context, examinerID *uuid.UUID) (*model.DashboardSummary, error) {
	f.scopes = append(f.scopes, examinerID)
	return &model.DashboardSummary{TotalExams: 3}, nil
}

func (f *fakeDashboardStore) ExamStatusCounts(_ context.Context, examinerID *uuid.UUID) (map[model.ExamStatus]int, error) {
	f.scopes = append(f.scopes, examinerID)
	return map[model.ExamStatus]int{model.ExamStatusActive: 1}, nil
}

func (f *fakeDashboardStore) UpcomingExams(_ context.Context, examinerID *uuid.UUID, _ time.Time, _ int) ([]model.UpcomingExam, error) {
	f.scopes = append(f.scopes, examinerID)
	return nil, nil
}

func (f *fakeDashboardStore) RecentSubmissions(_ context.Context, examinerID *uuid.UUID, _ int) ([]model.RecentSubmission, error) {
	f.scopes = append(f.scopes, examinerID)
	return nil, nil
}

func TestDashboardOverviewScoping(t *testing.T) {
	ctx := context.Background()
	examiner := uuid.New()

	t.Run("examiner queries are scoped to the caller", func(t *testing.T) {
		store := &fakeDashboardStore{}
		svc := NewDashboardService(store, zerolog.Nop())

		data, err := svc.Overview(ctx, examiner, model.RoleExaminer)
		if err != nil {
			t.Fatalf("Overview: %v", err)
		}
		if data.Summary.TotalExams != 3 {
			t.Errorf("total exams = %d, want 3", data.Summary.TotalExams)
		}
		if len(store.scopes) != 4 {
			t.Fatalf("queries = %d, want 4", len(store.scopes))
		}
		for i, scope := range store.scopes {
			if scope == nil || *scope != examiner {
				t.Errorf("query %d scope = %v, want examiner ID", i, scope)
			}
		}
	})

	t.Run("admin queries are unscoped", func(t *testing.T) {
		store := &fakeDashboardStore{}
		svc := NewDashboardService(store, zerolog.Nop())

		if _, err := svc.Overview(ctx, examiner, model.RoleAdmin); err != nil {
			t.Fatalf("Overview: %v", err)
		}
		for i, scope := range store.scopes {
			if scope != nil {
				t.Errorf("query %d scope = %v, want nil", i, scope)
			}
		}
	})
}
