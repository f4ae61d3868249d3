package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack-app/edutrack-bff/internal/models"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

type stubAuditLister struct {
	entries   []models.AuditLog
	err       error
	lastLimit int
}

func (s *stubAuditLister) ListRecent(_ context.Context, limit int) ([]models.AuditLog, error) {
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

func newAuditRouter(lister *stubAuditLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAuditHandler(lister, nil).Register(router.Group("/audit"), nil)
	return router
}

func TestAuditList(t *testing.T) {
	lister := &stubAuditLister{entries: []models.AuditLog{
		{ID: "id-1", Action: "delete", Entity: "student"},
		{ID: "id-2", Action: "submit", Entity: "department"},
	}}
	router := newAuditRouter(lister)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit?limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, lister.lastLimit)

	var env struct {
		Data []models.AuditLog      `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 2)
	assert.Equal(t, "delete", env.Data[0].Action)
	assert.Equal(t, float64(2), env.Meta["count"])
}

func TestAuditListBadLimitFallsBack(t *testing.T) {
	lister := &stubAuditLister{}
	router := newAuditRouter(lister)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit?limit=lots", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, lister.lastLimit)
}

func TestAuditListPropagatesError(t *testing.T) {
	lister := &stubAuditLister{err: appErrors.ErrInternal}
	router := newAuditRouter(lister)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
