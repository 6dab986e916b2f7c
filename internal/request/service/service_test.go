package service

import (
	"context"
	"testing"
	"time"

	"github.com/procurehq/intake/internal/clock"
	"github.com/procurehq/intake/internal/config"
	"github.com/procurehq/intake/internal/request/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock objects
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

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

func testConfig() config.Config {
	return config.Config{
		DefaultAddress:    "420 S Hillview Dr, Milpitas, CA 95035",
		DefaultDepartment: "R&D",
		ClassificationCodes: []string{
			"6051 - Lab Supplies (including Chemicals)",
			"6055 - Parts & Tools",
		},
		UrgencyLevels:   []string{domain.UrgencyNormal, domain.UrgencyUrgent},
		PONumberPrefix:  "RD-PO",
		NotifyTransport: config.TransportSMTP,
		Recipients:      []string{"ordering@example.com"},
	}
}

func newService(cfg config.Config, repo *mockRepo, notifier *mockNotifier, at time.Time) domain.Service {
	return New(Params{
		Cfg:      cfg,
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(at),
		Repo:     repo,
		Notifier: notifier,
	})
}

func validSubmit() domain.SubmitRequest {
	return domain.SubmitRequest{
		RequesterName: "Ada Lovelace",
		ItemLink:      "https://vendor.example.com/item/42",
		Quantity:      2,
		AttentionTo:   "Receiving",
		Description:   "Sensors for the flow test rig",
	}
}

func TestSubmit_Success(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	at := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	svc := newService(testConfig(), repo, notifier, at)

	repo.On("Append", mock.Anything, mock.MatchedBy(func(r *domain.Request) bool {
		return r.PONumber == "" &&
			r.Department == "R&D" &&
			r.ShippingAddr == "420 S Hillview Dr, Milpitas, CA 95035" &&
			r.Classification == "6051 - Lab Supplies (including Chemicals)" &&
			r.Urgency == domain.UrgencyNormal &&
			r.SubmittedAt.Equal(at)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Request).PONumber = "RD-PO-2501-0001"
	}).Return(nil)
	notifier.On("Send", mock.Anything, []string{"ordering@example.com"},
		"Purchase request: RD-PO-2501-0001", mock.Anything).Return(nil)

	result, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.True(t, result.Notified)
	assert.Empty(t, result.NotifyError)
	assert.Equal(t, "RD-PO-2501-0001", result.Request.PONumber)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmit_ValidationFailureTouchesNothing(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(testConfig(), repo, notifier, time.Now())

	req := validSubmit()
	req.RequesterName = ""
	req.Description = ""

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Fields, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidRequester)
	assert.ErrorIs(t, err, domain.ErrInvalidDescription)

	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_InvalidQuantity(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(testConfig(), repo, notifier, time.Now())

	req := validSubmit()
	req.Quantity = 0

	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSubmit_UnknownClassification(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(testConfig(), repo, notifier, time.Now())

	req := validSubmit()
	req.Classification = "9999 - Unapproved"

	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidClassification)
}

func TestSubmit_DomainRestrictedEmail(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedEmailDomain = "example.com"
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(cfg, repo, notifier, time.Now())

	req := validSubmit()
	req.RequesterEmail = "ada@elsewhere.org"
	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequesterEmail)

	req.RequesterEmail = ""
	_, err = svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidRequesterEmail)
}

func TestSubmit_DomainCheckIgnoresCase(t *testing.T) {
	// Sign-in already folds case; submission must accept the same address.
	cfg := testConfig()
	cfg.AllowedEmailDomain = "Example.COM"
	cfg.NotifyTransport = config.TransportNone
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(cfg, repo, notifier, time.Now())

	repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	req := validSubmit()
	req.RequesterEmail = "Ada@example.com"

	result, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Saved)
}

func TestSubmit_StorageFailureSkipsNotification(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	at := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	svc := newService(testConfig(), repo, notifier, at)

	repo.On("Append", mock.Anything, mock.Anything).Return(domain.ErrStorageUnavailable)

	result, err := svc.Submit(context.Background(), validSubmit())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.False(t, result.Saved)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_SavedButNotificationFailed(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	at := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	svc := newService(testConfig(), repo, notifier, at)

	repo.On("Append", mock.Anything, mock.Anything).Return(nil)
	notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	result, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.False(t, result.Notified)
	assert.NotEmpty(t, result.NotifyError)
}

func TestSubmit_NotificationsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.NotifyTransport = config.TransportNone
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	at := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC)
	svc := newService(cfg, repo, notifier, at)

	repo.On("Append", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.False(t, result.Notified)
	assert.Empty(t, result.NotifyError)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(testConfig(), repo, notifier, time.Now())

	existing := &domain.Request{PONumber: "RD-PO-2501-0001", RequesterName: "Ada Lovelace"}
	repo.On("FindByIdempotencyKey", mock.Anything, "key-1").Return(existing, nil)

	req := validSubmit()
	req.IdempotencyKey = "key-1"

	result, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Saved)
	assert.Equal(t, "RD-PO-2501-0001", result.Request.PONumber)
	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestList_NewestFirst(t *testing.T) {
	repo := &mockRepo{}
	notifier := &mockNotifier{}
	svc := newService(testConfig(), repo, notifier, time.Now())

	repo.On("List", mock.Anything).Return([]domain.Request{
		{PONumber: "RD-PO-2501-0001"},
		{PONumber: "RD-PO-2501-0002"},
	}, nil)

	requests, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "RD-PO-2501-0002", requests[0].PONumber)
	assert.Equal(t, "RD-PO-2501-0001", requests[1].PONumber)
}
