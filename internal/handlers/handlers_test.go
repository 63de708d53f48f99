package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"macromate/internal/cache"
	"macromate/internal/models"
	"macromate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires a full router over an in-memory store, with the external
// collaborators (helpdesk, model, spreadsheets) left unconfigured unless a
// test swaps them in.
type testEnv struct {
	db        *gorm.DB
	store     cache.Store
	macros    *services.MacroService
	feedback  *services.FeedbackService
	templates *services.TemplateService
	router    *gin.Engine
}

func newTestEnv(t *testing.T, qa *services.QAService, exporter func(env *testEnv) *services.ExportService) *testEnv {
	t.Helper()
	dsn := "file:handlers_" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Macro{}, &models.Feedback{}, &models.Template{}))

	env := &testEnv{db: db, store: cache.NewMemoryStore()}
	env.macros = services.NewMacroService(db, env.store, nil)
	env.feedback = services.NewFeedbackService(db, nil)
	env.templates = services.NewTemplateService(db, env.store, nil, 0, nil)

	export := services.NewExportService(env.feedback, nil, nil)
	if exporter != nil {
		export = exporter(env)
	}

	router := gin.New()
	v1 := router.Group("/v1")
	RegisterRoutes(v1,
		NewMacroHandler(env.macros, nil),
		NewFeedbackHandler(env.feedback, export, nil),
		NewQAHandler(qa, env.templates, nil),
	)
	router.GET("/health", Health)
	env.router = router
	return env
}

func (env *testEnv) postJSON(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}
