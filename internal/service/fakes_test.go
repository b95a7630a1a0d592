package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/examportal-backend/internal/model"
)

// In-memory store fakes. They mirror the guarantees of the SQL layer
// (conditional updates, uniqueness on natural keys) without a database.

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) Update(_ context.Context, u *model.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (f *fakeUserStore) ListStudents(_ context.Context, examinerID *uuid.UUID, limit, offset int) ([]model.User, int, error) {
	var all []model.User
	for _, u := range f.users {
		if u.Role != model.RoleStudent {
			continue
		}
		if examinerID != nil && (u.ExaminerID == nil || *u.ExaminerID != *examinerID) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

type fakeExamStore struct {
	exams       map[uuid.UUID]*model.Exam
	assignments map[uuid.UUID]map[uuid.UUID]bool
	users       *fakeUserStore
}

func newFakeExamStore(users *fakeUserStore) *fakeExamStore {
	return &fakeExamStore{
		exams:       make(map[uuid.UUID]*model.Exam),
		assignments: make(map[uuid.UUID]map[uuid.UUID]bool),
		users:       users,
	}
}

func (f *fakeExamStore) Create(_ context.Context, e *model.Exam) error {
	cp := *e
	f.exams[e.ID] = &cp
	return nil
}

func (f *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExamStore) GetByCode(_ context.Context, code string) (*model.Exam, error) {
	for _, e := range f.exams {
		if e.ExamCode == code && code != "" {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeExamStore) CodeExists(_ context.Context, code string) (bool, error) {
	for _, e := range f.exams {
		if e.ExamCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeExamStore) ListByCreator(_ context.Context, createdBy *uuid.UUID, limit, offset int) ([]model.Exam, int, error) {
	var all []model.Exam
	for _, e := range f.exams {
		if createdBy == nil || e.CreatedBy == *createdBy {
			all = append(all, *e)
		}
	}
	return all, len(all), nil
}

func (f *fakeExamStore) ListAssigned(_ context.Context, studentID uuid.UUID) ([]model.Exam, error) {
	var all []model.Exam
	for examID, students := range f.assignments {
		if students[studentID] {
			if e, ok := f.exams[examID]; ok {
				all = append(all, *e)
			}
		}
	}
	return all, nil
}

func (f *fakeExamStore) Update(_ context.Context, e *model.Exam) error {
	cp := *e
	f.exams[e.ID] = &cp
	return nil
}

func (f *fakeExamStore) SetSchedule(_ context.Context, id uuid.UUID, start time.Time, end *time.Time, status model.ExamStatus) error {
	e := f.exams[id]
	e.ScheduledStartTime = &start
	e.ScheduledEndTime = end
	e.Status = status
	return nil
}

func (f *fakeExamStore) SetCode(_ context.Context, id uuid.UUID, code string, generatedAt time.Time) error {
	e := f.exams[id]
	e.ExamCode = code
	e.CodeGeneratedAt = &generatedAt
	e.Status = model.ExamStatusScheduled
	return nil
}

func (f *fakeExamStore) MarkStarted(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	e := f.exams[id]
	if e.Status == model.ExamStatusActive {
		return false, nil
	}
	e.Status = model.ExamStatusActive
	e.ActualStartTime = &at
	e.CanStudentsJoin = true
	return true, nil
}

func (f *fakeExamStore) MarkEnded(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	e := f.exams[id]
	if e.Status == model.ExamStatusCompleted {
		return false, nil
	}
	e.Status = model.ExamStatusCompleted
	e.ActualEndTime = &at
	e.CanStudentsJoin = false
	return true, nil
}

func (f *fakeExamStore) SetStatus(_ context.Context, id uuid.UUID, status model.ExamStatus) error {
	f.exams[id].Status = status
	return nil
}

func (f *fakeExamStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.exams[id]; !ok {
		return false, nil
	}
	delete(f.exams, id)
	delete(f.assignments, id)
	return true, nil
}

func (f *fakeExamStore) AssignStudents(_ context.Context, examID uuid.UUID, studentIDs []uuid.UUID) (int, error) {
	if f.assignments[examID] == nil {
		f.assignments[examID] = make(map[uuid.UUID]bool)
	}
	n := 0
	for _, sid := range studentIDs {
		if !f.assignments[examID][sid] {
			f.assignments[examID][sid] = true
			n++
		}
	}
	return n, nil
}

func (f *fakeExamStore) UnassignStudent(_ context.Context, examID, studentID uuid.UUID) (bool, error) {
	if !f.assignments[examID][studentID] {
		return false, nil
	}
	delete(f.assignments[examID], studentID)
	return true, nil
}

func (f *fakeExamStore) IsAssigned(_ context.Context, examID, studentID uuid.UUID) (bool, error) {
	return f.assignments[examID][studentID], nil
}

func (f *fakeExamStore) CountAssigned(_ context.Context, examID uuid.UUID) (int, error) {
	return len(f.assignments[examID]), nil
}

func (f *fakeExamStore) ListAssignedStudents(_ context.Context, examID uuid.UUID) ([]model.User, error) {
	var students []model.User
	for sid := range f.assignments[examID] {
		if f.users != nil {
			if u, ok := f.users.users[sid]; ok {
				students = append(students, *u)
			}
		}
	}
	return students, nil
}

type fakeQuestionStore struct {
	questions map[uuid.UUID]*model.Question
	exams     *fakeExamStore
}

func newFakeQuestionStore(exams *fakeExamStore) *fakeQuestionStore {
	return &fakeQuestionStore{
		questions: make(map[uuid.UUID]*model.Question),
		exams:     exams,
	}
}

func (f *fakeQuestionStore) Create(_ context.Context, q *model.Question) error {
	next := 0
	for _, existing := range f.questions {
		if existing.ExamID == q.ExamID && existing.QuestionNumber > next {
			next = existing.QuestionNumber
		}
	}
	q.QuestionNumber = next + 1
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionStore) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Question, error) {
	var all []model.Question
	for _, q := range f.questions {
		if q.ExamID == examID {
			all = append(all, *q)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].QuestionNumber < all[j].QuestionNumber })
	return all, nil
}

func (f *fakeQuestionStore) Update(_ context.Context, q *model.Question) error {
	cp := *q
	f.questions[q.ID] = &cp
	return nil
}

func (f *fakeQuestionStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := f.questions[id]; !ok {
		return false, nil
	}
	delete(f.questions, id)
	return true, nil
}

func (f *fakeQuestionStore) CountByExam(_ context.Context, examID uuid.UUID) (int, error) {
	n := 0
	for _, q := range f.questions {
		if q.ExamID == examID {
			n++
		}
	}
	return n, nil
}

func (f *fakeQuestionStore) SyncExamTotals(ctx context.Context, examID uuid.UUID) error {
	if f.exams == nil {
		return nil
	}
	e, ok := f.exams.exams[examID]
	if !ok {
		return nil
	}
	count := 0
	var marks float64
	for _, q := range f.questions {
		if q.ExamID == examID {
			count++
			marks += q.Marks
		}
	}
	e.TotalQuestions = count
	e.TotalMarks = marks
	return nil
}

type attemptKey struct {
	examID    uuid.UUID
	studentID uuid.UUID
}

type fakeAttemptStore struct {
	attempts  map[uuid.UUID]*model.Attempt
	byPair    map[attemptKey]uuid.UUID
	responses map[uuid.UUID]map[uuid.UUID]*model.AttemptResponse
	exams     *fakeExamStore
}

func newFakeAttemptStore(exams *fakeExamStore) *fakeAttemptStore {
	return &fakeAttemptStore{
		attempts:  make(map[uuid.UUID]*model.Attempt),
		byPair:    make(map[attemptKey]uuid.UUID),
		responses: make(map[uuid.UUID]map[uuid.UUID]*model.AttemptResponse),
		exams:     exams,
	}
}

func (f *fakeAttemptStore) CreateIfAbsent(_ context.Context, a *model.Attempt) (*model.Attempt, error) {
	key := attemptKey{a.ExamID, a.StudentID}
	if _, taken := f.byPair[key]; taken {
		return nil, nil
	}
	cp := *a
	f.attempts[a.ID] = &cp
	f.byPair[key] = a.ID
	out := cp
	return &out, nil
}

func (f *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, ok := f.attempts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAttemptStore) GetByExamAndStudent(_ context.Context, examID, studentID uuid.UUID) (*model.Attempt, error) {
	id, ok := f.byPair[attemptKey{examID, studentID}]
	if !ok {
		return nil, nil
	}
	cp := *f.attempts[id]
	return &cp, nil
}

func (f *fakeAttemptStore) UpsertResponse(_ context.Context, resp *model.AttemptResponse) error {
	if f.responses[resp.AttemptID] == nil {
		f.responses[resp.AttemptID] = make(map[uuid.UUID]*model.AttemptResponse)
	}
	if existing, ok := f.responses[resp.AttemptID][resp.QuestionID]; ok {
		existing.SelectedAnswer = resp.SelectedAnswer
		existing.TimeSpentSec = resp.TimeSpentSec
		existing.AnsweredAt = resp.AnsweredAt
		resp.ID = existing.ID
		return nil
	}
	cp := *resp
	f.responses[resp.AttemptID][resp.QuestionID] = &cp
	return nil
}

func (f *fakeAttemptStore) ListResponses(_ context.Context, attemptID uuid.UUID) ([]model.AttemptResponse, error) {
	var all []model.AttemptResponse
	for _, r := range f.responses[attemptID] {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AnsweredAt.Before(all[j].AnsweredAt) })
	return all, nil
}

func (f *fakeAttemptStore) FinalizeSubmission(_ context.Context, a *model.Attempt, responses []model.AttemptResponse) (bool, error) {
	stored, ok := f.attempts[a.ID]
	if !ok || stored.Status != model.AttemptStatusInProgress {
		return false, nil
	}
	cp := *a
	f.attempts[a.ID] = &cp
	for i := range responses {
		r := responses[i]
		if stored := f.responses[a.ID][r.QuestionID]; stored != nil {
			stored.IsCorrect = r.IsCorrect
			stored.MarksAwarded = r.MarksAwarded
		}
	}
	return true, nil
}

func (f *fakeAttemptStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Attempt, error) {
	var all []model.Attempt
	for _, a := range f.attempts {
		if a.ExamID == examID {
			all = append(all, *a)
		}
	}
	return all, nil
}

func (f *fakeAttemptStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	var all []model.Attempt
	for _, a := range f.attempts {
		if a.StudentID == studentID {
			all = append(all, *a)
		}
	}
	return all, nil
}

func (f *fakeAttemptStore) ListOverdue(_ context.Context, now time.Time, limit int) ([]model.Attempt, error) {
	var all []model.Attempt
	for _, a := range f.attempts {
		if a.Status != model.AttemptStatusInProgress {
			continue
		}
		exam, ok := f.exams.exams[a.ExamID]
		if !ok {
			continue
		}
		deadline := a.StartedAt.Add(time.Duration(exam.DurationMinutes) * time.Minute)
		if !deadline.After(now) {
			all = append(all, *a)
		}
	}
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeAttemptStore) Stats(_ context.Context, examID uuid.UUID) (*model.ExamStats, error) {
	s := &model.ExamStats{ExamID: examID}
	var sumScore, sumPct float64
	first := true
	for _, a := range f.attempts {
		if a.ExamID != examID {
			continue
		}
		s.AttemptsStarted++
		if a.Status == model.AttemptStatusInProgress {
			continue
		}
		s.AttemptsSubmitted++
		if a.IsPassed {
			s.PassedCount++
		} else {
			s.FailedCount++
		}
		sumScore += a.TotalObtainedMarks
		sumPct += a.Percentage
		if first || a.TotalObtainedMarks > s.HighestScore {
			s.HighestScore = a.TotalObtainedMarks
		}
		if first || a.TotalObtainedMarks < s.LowestScore {
			s.LowestScore = a.TotalObtainedMarks
		}
		first = false
	}
	if s.AttemptsSubmitted > 0 {
		s.AverageScore = sumScore / float64(s.AttemptsSubmitted)
		s.AveragePercentage = sumPct / float64(s.AttemptsSubmitted)
	}
	return s, nil
}

type fakePaperCache struct {
	papers map[uuid.UUID]*model.ExamPaper
}

func newFakePaperCache() *fakePaperCache {
	return &fakePaperCache{papers: make(map[uuid.UUID]*model.ExamPaper)}
}

func (f *fakePaperCache) GetPaper(_ context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	return f.papers[examID], nil
}

func (f *fakePaperCache) SetPaper(_ context.Context, examID uuid.UUID, paper *model.ExamPaper, _ time.Duration) error {
	f.papers[examID] = paper
	return nil
}

func (f *fakePaperCache) InvalidatePaper(_ context.Context, examID uuid.UUID) error {
	delete(f.papers, examID)
	return nil
}

type fakePublisher struct {
	events []model.MonitorEvent
}

func (f *fakePublisher) PublishMonitorEvent(_ context.Context, ev model.MonitorEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeSessionStore struct {
	sessions map[string]uuid.UUID
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]uuid.UUID)}
}

func (f *fakeSessionStore) PutSession(_ context.Context, jti string, userID uuid.UUID, _ time.Duration) error {
	f.sessions[jti] = userID
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, jti string) (uuid.UUID, bool, error) {
	id, ok := f.sessions[jti]
	return id, ok, nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, jti string) error {
	delete(f.sessions, jti)
	return nil
}
