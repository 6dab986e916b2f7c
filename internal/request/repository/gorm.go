package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/intake/internal/request/domain"
	"github.com/procurehq/intake/internal/request/sequence"
	"github.com/procurehq/intake/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceCounter is the per-bucket identifier counter. Allocating from it
// inside a transaction replaces the historical "parse the last row and add
// one", which raced under concurrent submissions.
type SequenceCounter struct {
	Bucket    string `gorm:"primaryKey;size:4"`
	Value     int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (SequenceCounter) TableName() string {
	return "sequence_counters"
}

// ErrDuplicateIdempotencyKey reports that a record with the same
// idempotency key landed concurrently.
var ErrDuplicateIdempotencyKey = errors.New("duplicate_idempotency_key")

type gormStore struct {
	db     *gorm.DB
	genID  *snowflake.Node
	prefix string
}

// NewGormStore backs the record store with a database table.
func NewGormStore(conn *gorm.DB, genID *snowflake.Node, prefix string) domain.Repository {
	return &gormStore{db: conn, genID: genID, prefix: prefix}
}

func (s *gormStore) List(ctx context.Context) ([]domain.Request, error) {
	var requests []domain.Request
	err := s.db.WithContext(ctx).
		Order("submitted_at asc, id asc").
		Find(&requests).Error
	if err != nil {
		return nil, storageErr("list requests", err)
	}
	return requests, nil
}

// Append allocates the next identifier and inserts the record in a single
// transaction, so a submission never holds a number without its row.
func (s *gormStore) Append(ctx context.Context, req *domain.Request) error {
	if req.ID == 0 {
		req.ID = s.genID.Generate()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.PONumber == "" {
			po, err := allocatePONumber(tx, s.prefix, req.SubmittedAt)
			if err != nil {
				return err
			}
			req.PONumber = po
		}
		return tx.Create(req).Error
	})
	if err != nil {
		if req.IdempotencyKey != "" && db.IsDuplicateKeyErr(err) {
			return ErrDuplicateIdempotencyKey
		}
		return storageErr("append request", err)
	}
	return nil
}

func allocatePONumber(tx *gorm.DB, prefix string, now time.Time) (string, error) {
	bucket := sequence.Bucket(now)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&SequenceCounter{Bucket: bucket, Value: 0}).Error; err != nil {
		return "", err
	}
	if err := tx.Model(&SequenceCounter{}).
		Where("bucket = ?", bucket).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return "", err
	}
	var counter SequenceCounter
	if err := tx.First(&counter, "bucket = ?", bucket).Error; err != nil {
		return "", err
	}
	return sequence.Format(prefix, bucket, int(counter.Value)), nil
}

func (s *gormStore) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Request, error) {
	if key == "" {
		return nil, nil
	}
	var req domain.Request
	err := s.db.WithContext(ctx).First(&req, "idempotency_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find by idempotency key", err)
	}
	return &req, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}
