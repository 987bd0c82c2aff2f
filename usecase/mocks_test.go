package usecase_test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
)

type MockVideoInfo struct {
	mock.Mock
}

func (m *MockVideoInfo) GetVideoInfo(ctx context.Context, videoURL string) (model.VideoInfo, error) {
	args := m.Called(ctx, videoURL)
	return args.Get(0).(model.VideoInfo), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, req model.DispatchRequest) (model.DispatchResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.DispatchResult), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Debit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount, reference)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal, kind model.LedgerEntryKind, reference string) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, amount, kind, reference)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockJobs struct {
	mock.Mock
}

func (m *MockJobs) Create(ctx context.Context, job *model.VideoJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobs) GetByJobID(ctx context.Context, jobID string) (model.VideoJob, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(model.VideoJob), args.Error(1)
}

func (m *MockJobs) ListByUser(ctx context.Context, userID string, status model.JobStatus) ([]model.VideoJob, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).([]model.VideoJob), args.Error(1)
}

func (m *MockJobs) Transition(ctx context.Context, jobID string, from, to model.JobStatus, reason string) (bool, error) {
	args := m.Called(ctx, jobID, from, to, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobs) Release(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

type MockJobIDs struct {
	mock.Mock
}

func (m *MockJobIDs) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPayments) GetByReference(ctx context.Context, reference string) (model.Payment, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(model.Payment), args.Error(1)
}

func (m *MockPayments) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPayments) Settle(ctx context.Context, s model.Settlement) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockPayments) MarkFailed(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

type MockWebhookEvents struct {
	mock.Mock
}

func (m *MockWebhookEvents) Record(ctx context.Context, evt *model.WebhookEvent) (bool, error) {
	args := m.Called(ctx, evt)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEvents) MarkProcessed(ctx context.Context, evt *model.WebhookEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initialize(ctx context.Context, req repository.PaymentInit) (repository.PaymentAuthorization, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(repository.PaymentAuthorization), args.Error(1)
}

// memoryLedger applies the same conditional debit as the SQL repositories.
type memoryLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

func newMemoryLedger(userID string, balance decimal.Decimal) *memoryLedger {
	return &memoryLedger{balances: map[string]decimal.Decimal{userID: balance}}
}

func (l *memoryLedger) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[userID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return b, nil
}

func (l *memoryLedger) Debit(_ context.Context, userID string, amount decimal.Decimal, _ string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[userID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	if b.LessThan(amount) {
		return decimal.Zero, repository.ErrInsufficientCredits
	}
	l.balances[userID] = b.Sub(amount)
	return l.balances[userID], nil
}

func (l *memoryLedger) Credit(_ context.Context, userID string, amount decimal.Decimal, _ model.LedgerEntryKind, _ string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.balances[userID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	l.balances[userID] = b.Add(amount)
	return l.balances[userID], nil
}

// memoryJobs enforces a unique job id the way the Mongo index does.
type memoryJobs struct {
	mu   sync.Mutex
	jobs map[string]model.VideoJob
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: map[string]model.VideoJob{}}
}

func (s *memoryJobs) Create(_ context.Context, job *model.VideoJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.JobID]; ok {
		return repository.ErrDuplicateJob
	}
	s.jobs[job.JobID] = *job
	return nil
}

func (s *memoryJobs) GetByJobID(_ context.Context, jobID string) (model.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return model.VideoJob{}, repository.ErrNotFound
	}
	return job, nil
}

func (s *memoryJobs) ListByUser(_ context.Context, userID string, status model.JobStatus) ([]model.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.VideoJob
	for _, j := range s.jobs {
		if j.UserID == userID && (status == "" || j.Status == status) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *memoryJobs) Transition(_ context.Context, jobID string, from, to model.JobStatus, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != from {
		return false, nil
	}
	job.Status = to
	job.FailureReason = reason
	s.jobs[jobID] = job
	return true, nil
}

func (s *memoryJobs) Release(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok && job.Status == model.JobWaiting {
		delete(s.jobs, jobID)
	}
	return nil
}
