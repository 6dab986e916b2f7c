package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/procurehq/intake/internal/request/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) List(ctx context.Context) ([]domain.Request, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Request), args.Error(1)
}

func (m *mockRepo) Append(ctx context.Context, req *domain.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockRepo) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Request, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func newService(repo *mockRepo) Service {
	return New(Params{Log: zap.NewNop(), Repo: repo})
}

func TestSummary_Empty(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return([]domain.Request{}, nil)

	summary, err := newService(repo).Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRequests)
	assert.Zero(t, summary.UrgentCount)
	assert.Empty(t, summary.ByMonth)
	assert.Empty(t, summary.TopRequesters)
}

func TestSummary_Aggregates(t *testing.T) {
	january := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 3, 9, 0, 0, 0, time.UTC)

	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return([]domain.Request{
		{RequesterName: "Ada Lovelace", SubmittedAt: january, Urgency: domain.UrgencyNormal},
		{RequesterName: "Ada Lovelace", SubmittedAt: january, Urgency: domain.UrgencyUrgent},
		{RequesterName: "Grace Hopper", SubmittedAt: february, Urgency: domain.UrgencyUrgent},
	}, nil)

	summary, err := newService(repo).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalRequests)
	assert.Equal(t, 2, summary.UrgentCount)
	assert.Equal(t, []MonthCount{
		{Month: "2025-01", Count: 2},
		{Month: "2025-02", Count: 1},
	}, summary.ByMonth)
	assert.Equal(t, []RequesterRank{
		{Requester: "Ada Lovelace", Count: 2},
		{Requester: "Grace Hopper", Count: 1},
	}, summary.TopRequesters)
}

func TestSummary_TopRequestersCapped(t *testing.T) {
	at := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	var requests []domain.Request
	for i := 0; i < 7; i++ {
		name := fmt.Sprintf("Requester %d", i)
		for j := 0; j <= i; j++ {
			requests = append(requests, domain.Request{RequesterName: name, SubmittedAt: at})
		}
	}

	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return(requests, nil)

	summary, err := newService(repo).Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.TopRequesters, 5)
	assert.Equal(t, RequesterRank{Requester: "Requester 6", Count: 7}, summary.TopRequesters[0])
	assert.Equal(t, RequesterRank{Requester: "Requester 2", Count: 3}, summary.TopRequesters[4])
}

func TestSummary_StoreError(t *testing.T) {
	repo := &mockRepo{}
	repo.On("List", mock.Anything).Return(nil, domain.ErrStorageUnavailable)

	_, err := newService(repo).Summary(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
