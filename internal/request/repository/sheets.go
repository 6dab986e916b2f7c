package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/procurehq/intake/internal/request/domain"
	"github.com/procurehq/intake/internal/request/sequence"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// sheetsStore keeps the summary in a Google Sheets worksheet. The first
// worksheet row is the header; records are appended below it. The mutex
// covers the read-allocate-append cycle so concurrent in-process
// submissions cannot mint the same number.
type sheetsStore struct {
	mu            sync.Mutex
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	prefix        string
}

// NewSheetsService builds the Sheets client. Explicit service-account JSON
// takes precedence; otherwise application default credentials are used.
func NewSheetsService(ctx context.Context, credentialsJSON string) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// NewSheetsStore backs the record store with a cloud spreadsheet.
func NewSheetsStore(svc *sheets.Service, spreadsheetID, worksheet, prefix string) domain.Repository {
	return &sheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		prefix:        prefix,
	}
}

func (s *sheetsStore) List(ctx context.Context) ([]domain.Request, error) {
	rows, err := s.dataRows(ctx)
	if err != nil {
		return nil, err
	}
	requests := make([]domain.Request, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, parseRow(row))
	}
	return requests, nil
}

// Append derives the next identifier from the last data row and appends the
// new row under one lock. A blank worksheet gets the header row first.
func (s *sheetsStore) Append(ctx context.Context, req *domain.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.dataRows(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if err := s.writeHeader(ctx); err != nil {
			return err
		}
	}

	if req.PONumber == "" {
		last := ""
		if n := len(rows); n > 0 && len(rows[n-1]) > 0 {
			last = rows[n-1][0]
		}
		po, err := sequence.Next(s.prefix, last, req.SubmittedAt)
		if err != nil {
			return err
		}
		req.PONumber = po
	}

	_, err = s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.dataRange(), &sheets.ValueRange{
			Values: [][]interface{}{toCellValues(req.Row())},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return storageErr("append worksheet row", err)
	}
	return nil
}

func (s *sheetsStore) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Request, error) {
	return nil, nil
}

func (s *sheetsStore) dataRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.dataRange()).
		Context(ctx).
		Do()
	if err != nil {
		return nil, storageErr("read worksheet", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *sheetsStore) writeHeader(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, fmt.Sprintf("%s!A1", s.worksheet), &sheets.ValueRange{
			Values: [][]interface{}{toCellValues(domain.Columns)},
		}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return storageErr("write worksheet header", err)
	}
	return nil
}

func (s *sheetsStore) dataRange() string {
	return fmt.Sprintf("%s!A2:L", s.worksheet)
}
