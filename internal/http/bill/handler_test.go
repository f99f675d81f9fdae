package bill_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/contas/internal/auth"
	"github.com/MrJamesThe3rd/contas/internal/bill"
	billHandler "github.com/MrJamesThe3rd/contas/internal/http/bill"
	"github.com/MrJamesThe3rd/contas/internal/kv/memory"
)

var today = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type billJSON struct {
	ID          string      `json:"id"`
	Description string      `json:"descricao"`
	Amount      float64     `json:"valor"`
	DueDate     time.Time   `json:"dataVencimento"`
	PaidDate    *time.Time  `json:"dataPagamento"`
	Status      bill.Status `json:"status"`
	Category    string      `json:"categoria"`
}

type testServer struct {
	router http.Handler
	ledger *bill.Ledger
}

// newTestServer mounts the handler behind a middleware that trusts the
// X-User header, standing in for the JWT middleware.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ledger := bill.NewLedger(memory.New(), bill.WithClock(func() time.Time { return today }))
	require.NoError(t, ledger.Load(context.Background()))

	svc := bill.NewService(ledger, auth.ContextIdentity{})
	h := billHandler.NewHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-User"); id != "" {
				r = r.WithContext(auth.WithUserID(r.Context(), id))
			}

			next.ServeHTTP(w, r)
		})
	})
	r.Route("/bills", h.Routes)

	return &testServer{router: r, ledger: ledger}
}

func (s *testServer) do(t *testing.T, user, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User", user)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) create(t *testing.T, user, body string) billJSON {
	t.Helper()

	rec := s.do(t, user, http.MethodPost, "/bills", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var b billJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))

	return b
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		user       string
		body       string
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "Success",
			user:       "U1",
			body:       `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-04-05","categoria":"Moradia"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "RFC3339Date",
			user:       "U1",
			body:       `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-04-05T00:00:00Z","categoria":"Moradia"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "ZeroAmount",
			user:       "U1",
			body:       `{"descricao":"Aluguel","valor":0,"dataVencimento":"2025-04-05","categoria":"Moradia"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingDueDate",
			user:       "U1",
			body:       `{"descricao":"Aluguel","valor":10,"categoria":"Moradia"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadDate",
			user:       "U1",
			body:       `{"descricao":"Aluguel","valor":10,"dataVencimento":"05/04/2025","categoria":"Moradia"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MalformedJSON",
			user:       "U1",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NoUser",
			body:       `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-04-05","categoria":"Moradia"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := s.do(t, tt.user, http.MethodPost, "/bills", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus != http.StatusCreated {
				assert.Zero(t, s.ledger.Snapshot().Len())
				return
			}

			got := decode[billJSON](t, rec)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, bill.StatusPending, got.Status)
			assert.True(t, got.DueDate.Equal(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)))
			assert.NotContains(t, rec.Body.String(), "userId")
		})
	}
}

func TestHandler_ListRefreshesOverdue(t *testing.T) {
	s := newTestServer(t)

	s.create(t, "U1", `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-03-05","categoria":"Moradia"}`)
	s.create(t, "U1", `{"descricao":"Energia","valor":150.25,"dataVencimento":"2025-03-20","categoria":"Utilidades"}`)
	s.create(t, "U2", `{"descricao":"Internet","valor":99.9,"dataVencimento":"2025-03-01","categoria":"Utilidades"}`)

	rec := s.do(t, "U1", http.MethodGet, "/bills", "")
	require.Equal(t, http.StatusOK, rec.Code)

	bills := decode[[]billJSON](t, rec)
	require.Len(t, bills, 2)
	assert.Equal(t, bill.StatusOverdue, bills[0].Status)
	assert.Equal(t, bill.StatusPending, bills[1].Status)

	rec = s.do(t, "U1", http.MethodGet, "/bills?status=atrasada", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]billJSON](t, rec), 1)

	rec = s.do(t, "U1", http.MethodGet, "/bills?category=Utilidades&date_from=2025-03-10&date_to=2025-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	filtered := decode[[]billJSON](t, rec)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Energia", filtered[0].Description)
}

func TestHandler_ListInvalidFilter(t *testing.T) {
	s := newTestServer(t)

	for _, q := range []string{"status=paid", "date_from=yesterday", "date_to=2025-13-01"} {
		rec := s.do(t, "U1", http.MethodGet, "/bills?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandler_ListWithoutUserIsEmpty(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "U1", `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-04-05","categoria":"Moradia"}`)

	rec := s.do(t, "", http.MethodGet, "/bills", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_SummaryAndCategories(t *testing.T) {
	s := newTestServer(t)

	s.create(t, "U1", `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-03-05","categoria":"Moradia"}`)
	energia := s.create(t, "U1", `{"descricao":"Energia","valor":150.25,"dataVencimento":"2025-03-20","categoria":"Utilidades"}`)
	s.create(t, "U1", `{"descricao":"Água","valor":60,"dataVencimento":"2025-03-25","categoria":"Utilidades"}`)

	rec := s.do(t, "U1", http.MethodPost, "/bills/"+energia.ID+"/pay", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "U1", http.MethodGet, "/bills/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1410.25,"pagas":150.25,"pendentes":60,"atrasadas":1200}`, rec.Body.String())

	rec = s.do(t, "U1", http.MethodGet, "/bills/summary?category=Utilidades", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":210.25,"pagas":150.25,"pendentes":60,"atrasadas":0}`, rec.Body.String())

	rec = s.do(t, "U1", http.MethodGet, "/bills/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Moradia","Utilidades"]`, rec.Body.String())
}

func TestHandler_GetUpdatePayDelete(t *testing.T) {
	s := newTestServer(t)
	created := s.create(t, "U1", `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-04-05","categoria":"Moradia"}`)
	path := "/bills/" + created.ID

	rec := s.do(t, "U1", http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aluguel", decode[billJSON](t, rec).Description)

	rec = s.do(t, "U2", http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "U1", http.MethodPatch, path, `{"valor":1250.5,"dataVencimento":"2025-04-10"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decode[billJSON](t, rec)
	assert.InDelta(t, 1250.5, updated.Amount, 1e-9)
	assert.True(t, updated.DueDate.Equal(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)))

	rec = s.do(t, "U1", http.MethodPatch, path, `{"descricao":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "U1", http.MethodPatch, path, `{"dataPagamento":"2025-04-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "paid date without paid status")

	rec = s.do(t, "U1", http.MethodPost, path+"/pay", "")
	require.Equal(t, http.StatusOK, rec.Code)

	paid := decode[billJSON](t, rec)
	assert.Equal(t, bill.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidDate)
	assert.True(t, paid.PaidDate.Equal(today))

	rec = s.do(t, "U1", http.MethodPatch, path, `{"status":"pendente"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "paid bills stay paid")

	rec = s.do(t, "U1", http.MethodPatch, path, `{"status":"atrasada"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "overdue is set by the refresh only")

	rec = s.do(t, "U1", http.MethodPatch, path, `{"dataPagamento":"2025-04-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	moved := decode[billJSON](t, rec)
	assert.Equal(t, bill.StatusPaid, moved.Status)
	require.NotNil(t, moved.PaidDate)
	assert.True(t, moved.PaidDate.Equal(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)))

	rec = s.do(t, "U2", http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "U1", http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, "U1", http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "deleting an unknown bill is not an error")

	rec = s.do(t, "U1", http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_RefreshOverdue(t *testing.T) {
	s := newTestServer(t)
	s.create(t, "U1", `{"descricao":"Aluguel","valor":1200,"dataVencimento":"2025-03-05","categoria":"Moradia"}`)

	rec := s.do(t, "U1", http.MethodPost, "/bills/refresh-overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":1}`, rec.Body.String())

	rec = s.do(t, "U1", http.MethodPost, "/bills/refresh-overdue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"updated":0}`, rec.Body.String())
}
