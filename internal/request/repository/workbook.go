package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/procurehq/intake/internal/request/domain"
	"github.com/procurehq/intake/internal/request/sequence"
	"github.com/xuri/excelize/v2"
)

// workbookStore keeps the summary in a local xlsx workbook, one record per
// row below a header row. Writes go to a temp file which is renamed over
// the original, so a crashed save never leaves a half-written workbook.
type workbookStore struct {
	mu        sync.Mutex
	path      string
	worksheet string
	prefix    string
}

// NewWorkbookStore backs the record store with a local tabular file.
func NewWorkbookStore(path, worksheet, prefix string) domain.Repository {
	return &workbookStore{path: path, worksheet: worksheet, prefix: prefix}
}

func (s *workbookStore) List(ctx context.Context) ([]domain.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *workbookStore) listLocked() ([]domain.Request, error) {
	f, err := excelize.OpenFile(s.path)
	if os.IsNotExist(err) {
		return []domain.Request{}, nil
	}
	if err != nil {
		return nil, storageErr("open workbook", err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.worksheet)
	if err != nil {
		return nil, storageErr("read workbook", err)
	}
	if len(rows) <= 1 {
		return []domain.Request{}, nil
	}

	requests := make([]domain.Request, 0, len(rows)-1)
	for _, row := range rows[1:] {
		requests = append(requests, parseRow(row))
	}
	return requests, nil
}

// Append derives the next identifier from the last row and writes the new
// row while still holding the store mutex, so two in-process submissions
// can never mint the same number.
func (s *workbookStore) Append(ctx context.Context, req *domain.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, rows, err := s.openForAppend()
	if err != nil {
		return err
	}
	defer f.Close()

	if req.PONumber == "" {
		last := ""
		if n := len(rows); n > 1 && len(rows[n-1]) > 0 {
			last = rows[n-1][0]
		}
		po, err := sequence.Next(s.prefix, last, req.SubmittedAt)
		if err != nil {
			return err
		}
		req.PONumber = po
	}

	cell := fmt.Sprintf("A%d", len(rows)+1)
	values := toCellValues(req.Row())
	if err := f.SetSheetRow(s.worksheet, cell, &values); err != nil {
		return storageErr("write workbook row", err)
	}

	return s.saveAtomically(f)
}

func (s *workbookStore) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Request, error) {
	return nil, nil
}

// openForAppend opens the workbook, creating it with a header row when it
// does not exist yet, and returns the current rows.
func (s *workbookStore) openForAppend() (*excelize.File, [][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if os.IsNotExist(err) {
		f = excelize.NewFile()
		f.SetSheetName("Sheet1", s.worksheet)
		header := toCellValues(domain.Columns)
		if err := f.SetSheetRow(s.worksheet, "A1", &header); err != nil {
			f.Close()
			return nil, nil, storageErr("write workbook header", err)
		}
		return f, [][]string{domain.Columns}, nil
	}
	if err != nil {
		return nil, nil, storageErr("open workbook", err)
	}

	rows, err := f.GetRows(s.worksheet)
	if err != nil {
		f.Close()
		return nil, nil, storageErr("read workbook", err)
	}
	return f, rows, nil
}

func (s *workbookStore) saveAtomically(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storageErr("create workbook dir", err)
	}

	tmp, err := os.CreateTemp(dir, ".intake-*.xlsx")
	if err != nil {
		return storageErr("create temp workbook", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return storageErr("save workbook", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return storageErr("replace workbook", err)
	}
	return nil
}

func toCellValues(row []string) []interface{} {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return values
}

// parseRow rebuilds a record from a tabular row, tolerating short rows and
// malformed cells: display must not break on a hand-edited file.
func parseRow(row []string) domain.Request {
	col := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	quantity, err := strconv.Atoi(col(5))
	if err != nil || quantity < 1 {
		quantity = 1
	}

	submittedAt, err := time.Parse(domain.TimestampLayout, col(3))
	for _, layout := range []string{"2006-01-02 15:04:05 MST", "2006-01-02 15:04:05"} {
		if err == nil {
			break
		}
		submittedAt, err = time.Parse(layout, col(3))
	}

	return domain.Request{
		PONumber:       col(0),
		RequesterName:  col(1),
		RequesterEmail: col(2),
		SubmittedAt:    submittedAt,
		ItemLink:       col(4),
		Quantity:       quantity,
		ShippingAddr:   col(6),
		AttentionTo:    col(7),
		Department:     col(8),
		Description:    col(9),
		Classification: col(10),
		Urgency:        col(11),
	}
}
