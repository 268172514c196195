package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/homebooks/balances/internal/domain"
	"github.com/homebooks/balances/internal/events"
	"github.com/homebooks/balances/internal/modules/ledger"
	testingpkg "github.com/homebooks/balances/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router  *chi.Mux
	fixture *testingpkg.Ledger
	changes []*events.LedgerChangedData
}

// setupTestEnv creates a ledger database, a bus capturing change events and the routes
func setupTestEnv(t *testing.T) *testEnv {
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	env := &testEnv{fixture: testingpkg.NewLedger(t, db.Conn())}

	bus := events.NewBus(log)
	bus.Subscribe(events.LedgerChanged, func(e *events.Event) {
		env.changes = append(env.changes, e.Data.(*events.LedgerChangedData))
	})

	h := NewHandler(
		ledger.NewJournalRepository(db.Conn(), log),
		map[domain.ProfileKind]domain.CategorySource{
			domain.ProfileAccount: ledger.NewAccountRepository(db.Conn(), log),
			domain.ProfileSaving:  ledger.NewSavingTypeRepository(db.Conn(), log),
		},
		bus,
		log,
	)

	env.router = chi.NewRouter()
	env.router.Route("/api", h.RegisterRoutes)
	return env
}

func TestHandleGetJournals(t *testing.T) {
	env := setupTestEnv(t)
	env.fixture.Journal("home")
	env.fixture.Journal("work")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/journals", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Journals []ledger.Journal `json:"journals"`
			Count    int              `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Count)
	assert.Equal(t, "home", body.Data.Journals[0].Title)
}

func TestHandleGetCategories(t *testing.T) {
	env := setupTestEnv(t)
	j := env.fixture.Journal("home")
	env.fixture.SavingType(j, "index fund")
	env.fixture.SavingType(j, "bonds", 2010)
	env.fixture.Account(j, "cash")

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/categories/savings?journal="+strconv.FormatInt(j, 10), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data struct {
			Categories []domain.Category `json:"categories"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Categories, 2)
	assert.Nil(t, body.Data.Categories[0].Closed)
	require.NotNil(t, body.Data.Categories[1].Closed)
	assert.Equal(t, 2010, *body.Data.Categories[1].Closed)
}

func TestHandleGetCategories_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"unknown kind", "/api/ledger/categories/stocks?journal=1", http.StatusNotFound},
		{"kind without registry", "/api/ledger/categories/pension?journal=1", http.StatusNotFound},
		{"missing journal", "/api/ledger/categories/account", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandlePostChange(t *testing.T) {
	env := setupTestEnv(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/changes", strings.NewReader(`{"journal_id": 3, "source": "incomes"}`))
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, env.changes, 1)
	assert.Equal(t, int64(3), env.changes[0].JournalID)
	assert.Equal(t, "incomes", env.changes[0].Source)
}

func TestHandlePostChange_Invalid(t *testing.T) {
	env := setupTestEnv(t)

	for _, body := range []string{`not json`, `{"journal_id": 0, "source": "incomes"}`, `{"journal_id": 1}`} {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ledger/changes", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, env.changes)
}
