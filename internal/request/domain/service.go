package domain

import (
	"context"
	"errors"
)

// SubmitRequest carries the candidate form fields for one submission.
type SubmitRequest struct {
	RequesterName  string
	RequesterEmail string
	ItemLink       string
	Quantity       int
	ShippingAddr   string
	AttentionTo    string
	Description    string
	Classification string
	Urgency        string

	// IdempotencyKey is optional. Resubmitting with the same key returns
	// the originally stored record instead of appending a duplicate.
	IdempotencyKey string
}

// SubmitResult reports the outcome of one submission attempt. Saved and
// Notified are independent: a record can be durably stored while its
// notification fails, and callers must surface both.
type SubmitResult struct {
	Request  Request `json:"request"`
	Saved    bool    `json:"saved"`
	Notified bool    `json:"notified"`

	// NotifyError holds the delivery failure message when Saved is true
	// and Notified is false.
	NotifyError string `json:"notify_error,omitempty"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error)

	// List returns submissions newest first for the summary view.
	List(ctx context.Context) ([]Request, error)
}

// FieldError ties a validation sentinel to the form field it concerns.
type FieldError struct {
	Field string
	Err   error
}

// ValidationError aggregates every failed field of one submission. No
// record is created and no identifier is consumed when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "validation_failed"
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields))
	for _, f := range e.Fields {
		errs = append(errs, f.Err)
	}
	return errs
}

var (
	ErrInvalidRequester      = errors.New("invalid_requester_name")
	ErrInvalidRequesterEmail = errors.New("invalid_requester_email")
	ErrInvalidItemLink       = errors.New("invalid_item_link")
	ErrInvalidQuantity       = errors.New("invalid_quantity")
	ErrInvalidAttentionTo    = errors.New("invalid_attention_to")
	ErrInvalidDescription    = errors.New("invalid_description")
	ErrInvalidClassification = errors.New("invalid_classification")
	ErrInvalidUrgency        = errors.New("invalid_urgency")

	// ErrStorageUnavailable covers an unreachable or rejecting backend.
	// No record may be assumed saved when it is returned.
	ErrStorageUnavailable = errors.New("storage_unavailable")

	// ErrCorruptSequence reports that the most recent stored identifier
	// could not be parsed, so a safe next identifier cannot be derived.
	ErrCorruptSequence = errors.New("corrupt_sequence_state")
)
