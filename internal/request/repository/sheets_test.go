package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/procurehq/intake/internal/request/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeSheetsAPI stands in for the Sheets values endpoints: GET reads the
// data range, PUT writes the header, POST appends rows.
type fakeSheetsAPI struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

func (f *fakeSheetsAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		var body struct {
			Values [][]string `json:"values"`
		}
		switch r.Method {
		case http.MethodGet:
			values := make([][]interface{}, 0, len(f.rows))
			for _, row := range f.rows {
				cells := make([]interface{}, len(row))
				for i, c := range row {
					cells[i] = c
				}
				values = append(values, cells)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"values": values})
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil && len(body.Values) > 0 {
				f.header = body.Values[0]
			}
			json.NewEncoder(w).Encode(map[string]interface{}{})
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				f.rows = append(f.rows, body.Values...)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{})
		default:
			http.Error(w, "unexpected method", http.StatusMethodNotAllowed)
		}
	})
}

func newSheetsTestStore(t *testing.T) (domain.Repository, *fakeSheetsAPI) {
	t.Helper()
	api := &fakeSheetsAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication())
	require.NoError(t, err)
	return NewSheetsStore(svc, "sheet-1", "Requests", "RD-PO"), api
}

func TestSheetsStore_FirstAppendWritesHeader(t *testing.T) {
	store, api := newSheetsTestStore(t)
	ctx := context.Background()

	req := domain.Request{
		RequesterName: "Ada Lovelace",
		SubmittedAt:   time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC),
		ItemLink:      "https://vendor.example.com/item/42",
		Quantity:      1,
	}
	require.NoError(t, store.Append(ctx, &req))
	assert.Equal(t, "RD-PO-2501-0001", req.PONumber)
	assert.Equal(t, domain.Columns, api.header)
	require.Len(t, api.rows, 1)
	assert.Equal(t, "RD-PO-2501-0001", api.rows[0][0])

	second := req
	second.PONumber = ""
	require.NoError(t, store.Append(ctx, &second))
	assert.Equal(t, "RD-PO-2501-0002", second.PONumber)
}

func TestSheetsStore_ListParsesRows(t *testing.T) {
	store, api := newSheetsTestStore(t)

	at := time.Date(2025, time.January, 10, 9, 0, 0, 0, time.FixedZone("PST", -8*3600))
	seed := domain.Request{
		PONumber:       "RD-PO-2501-0001",
		RequesterName:  "Ada Lovelace",
		RequesterEmail: "ada@example.com",
		SubmittedAt:    at,
		ItemLink:       "https://vendor.example.com/item/42",
		Quantity:       2,
		Urgency:        domain.UrgencyUrgent,
	}
	api.rows = append(api.rows, seed.Row())

	requests, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	got := requests[0]
	assert.Equal(t, "RD-PO-2501-0001", got.PONumber)
	assert.Equal(t, "Ada Lovelace", got.RequesterName)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, got.SubmittedAt.Equal(at))
}

func TestSheetsStore_CorruptLastRowSurfaces(t *testing.T) {
	store, api := newSheetsTestStore(t)
	api.rows = append(api.rows, []string{"PO-TYPO-0001", "Ada Lovelace"})

	req := domain.Request{
		RequesterName: "Ada Lovelace",
		SubmittedAt:   time.Date(2025, time.January, 10, 9, 0, 0, 0, time.UTC),
		ItemLink:      "https://vendor.example.com/item/42",
		Quantity:      1,
	}
	err := store.Append(context.Background(), &req)
	assert.ErrorIs(t, err, domain.ErrCorruptSequence)
}
