package debugapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goindi/indidriver/internal/indidriver/audit"
	"github.com/goindi/indidriver/pkg/indi"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()

	reg := indi.NewRegistry()
	require.NoError(t, reg.RegisterUnique(indi.RegistryEntry{
		Device: "CCD Simulator", Name: "CONNECTION", Permission: indi.PermRW, Type: indi.TypeSwitch,
	}))

	store, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Record(context.Background(), "CCD Simulator", "CONNECTION", audit.KindAccepted, "applied"))

	return New("127.0.0.1:0", reg, store)
}

func TestListRegistry(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/registry", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var entries []indi.RegistryEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestGetRegistryEntryNotFound(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/registry/CCD Simulator/BOGUS", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRegistryEntryFound(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/registry/CCD%20Simulator/CONNECTION", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CONNECTION")
}

func TestListAudit(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/audit?device=CCD+Simulator&limit=10", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "accepted")
}

func TestListAuditBadLimit(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/audit?limit=notanumber", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
