package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/procurehq/intake/internal/clock"
	"github.com/procurehq/intake/internal/config"
	"github.com/procurehq/intake/internal/notify"
	"github.com/procurehq/intake/internal/notify/render"
	"github.com/procurehq/intake/internal/request/domain"
	"github.com/procurehq/intake/internal/request/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Notifier notify.Provider
}

type Service struct {
	cfg      config.Config
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	notifier notify.Provider
}

func New(p Params) domain.Service {
	return &Service{
		cfg:      p.Cfg,
		log:      p.Log.Named("request.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		notifier: p.Notifier,
	}
}

// Submit runs one submission attempt end to end: validate, append (the
// store allocates the identifier), notify. Persistence and notification
// outcomes are reported independently; a saved record with a failed
// notification is a valid partial success, not an error.
func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.SubmitResult, error) {
	candidate := s.applyDefaults(req)
	if err := s.validate(candidate); err != nil {
		return domain.SubmitResult{}, err
	}

	if candidate.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, candidate.IdempotencyKey)
		if err != nil {
			return domain.SubmitResult{}, err
		}
		if existing != nil {
			s.log.Info("duplicate submission replayed",
				zap.String("po_number", existing.PONumber),
				zap.String("idempotency_key", candidate.IdempotencyKey))
			return domain.SubmitResult{Request: *existing, Saved: true}, nil
		}
	}

	now := s.clock.Now()
	record := domain.Request{
		RequesterName:  candidate.RequesterName,
		RequesterEmail: candidate.RequesterEmail,
		SubmittedAt:    now,
		ItemLink:       candidate.ItemLink,
		Quantity:       candidate.Quantity,
		ShippingAddr:   candidate.ShippingAddr,
		AttentionTo:    candidate.AttentionTo,
		Department:     s.cfg.DefaultDepartment,
		Description:    candidate.Description,
		Classification: candidate.Classification,
		Urgency:        candidate.Urgency,
		IdempotencyKey: candidate.IdempotencyKey,
	}

	if err := s.repo.Append(ctx, &record); err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, candidate.IdempotencyKey)
			if findErr == nil && existing != nil {
				return domain.SubmitResult{Request: *existing, Saved: true}, nil
			}
		}
		return domain.SubmitResult{}, err
	}

	result := domain.SubmitResult{Request: record, Saved: true}

	if !s.notificationsEnabled() {
		return result, nil
	}

	subject := render.Subject(record)
	body, err := render.Body(record)
	if err == nil {
		err = s.notifier.Send(ctx, s.cfg.Recipients, subject, body)
	}
	if err != nil {
		// The record is durably saved at this point. Delivery failure is
		// surfaced as a flag, never as a submission failure.
		s.log.Warn("notification delivery failed",
			zap.String("po_number", record.PONumber),
			zap.Error(err))
		result.NotifyError = err.Error()
		return result, nil
	}

	result.Notified = true
	s.log.Info("purchase request submitted",
		zap.String("po_number", record.PONumber),
		zap.String("requester", record.RequesterName),
		zap.String("urgency", record.Urgency))
	return result, nil
}

// List returns submissions newest first for the summary view. State is
// always re-read from the store; nothing is cached between calls.
func (s *Service) List(ctx context.Context) ([]domain.Request, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(requests)
	return requests, nil
}

func (s *Service) applyDefaults(req domain.SubmitRequest) domain.SubmitRequest {
	req.RequesterName = strings.TrimSpace(req.RequesterName)
	req.RequesterEmail = strings.TrimSpace(req.RequesterEmail)
	req.ItemLink = strings.TrimSpace(req.ItemLink)
	req.ShippingAddr = strings.TrimSpace(req.ShippingAddr)
	req.AttentionTo = strings.TrimSpace(req.AttentionTo)
	req.Description = strings.TrimSpace(req.Description)
	req.Classification = strings.TrimSpace(req.Classification)
	req.Urgency = strings.TrimSpace(req.Urgency)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	if req.ShippingAddr == "" {
		req.ShippingAddr = s.cfg.DefaultAddress
	}
	if req.Classification == "" && len(s.cfg.ClassificationCodes) > 0 {
		req.Classification = s.cfg.ClassificationCodes[0]
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNormal
	}
	return req
}

func (s *Service) validate(req domain.SubmitRequest) error {
	var fields []domain.FieldError

	if req.RequesterName == "" {
		fields = append(fields, domain.FieldError{Field: "requester_name", Err: domain.ErrInvalidRequester})
	}
	switch {
	case req.RequesterEmail == "" && s.cfg.AuthRequired():
		fields = append(fields, domain.FieldError{Field: "requester_email", Err: domain.ErrInvalidRequesterEmail})
	case req.RequesterEmail != "" && !strings.Contains(req.RequesterEmail, "@"):
		fields = append(fields, domain.FieldError{Field: "requester_email", Err: domain.ErrInvalidRequesterEmail})
	case req.RequesterEmail != "" && s.cfg.AuthRequired() &&
		!strings.HasSuffix(strings.ToLower(req.RequesterEmail), "@"+strings.ToLower(s.cfg.AllowedEmailDomain)):
		fields = append(fields, domain.FieldError{Field: "requester_email", Err: domain.ErrInvalidRequesterEmail})
	}
	if req.ItemLink == "" {
		fields = append(fields, domain.FieldError{Field: "item_link", Err: domain.ErrInvalidItemLink})
	}
	if req.Quantity < 1 {
		fields = append(fields, domain.FieldError{Field: "quantity", Err: domain.ErrInvalidQuantity})
	}
	if req.AttentionTo == "" {
		fields = append(fields, domain.FieldError{Field: "attention_to", Err: domain.ErrInvalidAttentionTo})
	}
	if req.Description == "" {
		fields = append(fields, domain.FieldError{Field: "description", Err: domain.ErrInvalidDescription})
	}
	if len(s.cfg.ClassificationCodes) > 0 && !slices.Contains(s.cfg.ClassificationCodes, req.Classification) {
		fields = append(fields, domain.FieldError{Field: "classification", Err: domain.ErrInvalidClassification})
	}
	if len(s.cfg.UrgencyLevels) > 0 && !slices.Contains(s.cfg.UrgencyLevels, req.Urgency) {
		fields = append(fields, domain.FieldError{Field: "urgency", Err: domain.ErrInvalidUrgency})
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (s *Service) notificationsEnabled() bool {
	return s.cfg.NotifyTransport != config.TransportNone && len(s.cfg.Recipients) > 0
}
