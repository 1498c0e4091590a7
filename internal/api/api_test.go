package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/documents"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest points the global connection at a throwaway SQLite file and
// builds a router with the same routes the server registers. The nil
// hub makes entity notifications a no-op.
func setupTest(t *testing.T) (*gin.Engine, *documents.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "admin.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.GormDB = db

	store, err := documents.NewStore(t.TempDir())
	require.NoError(t, err)

	agentHandler := NewAgentHandler(nil, store)
	triggerHandler := NewTriggerHandler(nil)
	chainHandler := NewChainHandler(nil)
	documentHandler := NewDocumentHandler(nil, store)
	logHandler := NewLogHandler()

	r := gin.New()
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/agents", agentHandler.GetAgents)
		apiGroup.POST("/agents", agentHandler.CreateAgent)
		apiGroup.GET("/agents/:id", agentHandler.GetAgent)
		apiGroup.PATCH("/agents/:id", agentHandler.UpdateAgent)
		apiGroup.DELETE("/agents/:id", agentHandler.DeleteAgent)
		apiGroup.PATCH("/agents/:id/advanced-settings", agentHandler.UpdateAdvancedSettings)

		apiGroup.GET("/agents/:id/triggers", triggerHandler.GetTriggers)
		apiGroup.POST("/agents/:id/triggers", triggerHandler.CreateTrigger)
		apiGroup.PATCH("/agents/:id/triggers/:triggerId", triggerHandler.UpdateTrigger)
		apiGroup.DELETE("/agents/:id/triggers/:triggerId", triggerHandler.DeleteTrigger)
		apiGroup.POST("/agents/:id/triggers/:triggerId/toggle", triggerHandler.ToggleTrigger)
		apiGroup.POST("/agents/:id/triggers/:triggerId/actions/move", triggerHandler.MoveTriggerAction)

		apiGroup.GET("/agents/:id/chains", chainHandler.GetChains)
		apiGroup.POST("/agents/:id/chains", chainHandler.CreateChain)
		apiGroup.PATCH("/agents/:id/chains/:chainId", chainHandler.UpdateChain)
		apiGroup.DELETE("/agents/:id/chains/:chainId", chainHandler.DeleteChain)
		apiGroup.POST("/agents/:id/chains/:chainId/toggle", chainHandler.ToggleChain)

		apiGroup.GET("/agents/:id/documents", documentHandler.GetDocuments)
		apiGroup.POST("/agents/:id/documents", documentHandler.UploadDocument)
		apiGroup.PATCH("/agents/:id/documents/:docId", documentHandler.PatchDocument)
		apiGroup.DELETE("/agents/:id/documents/:docId", documentHandler.DeleteDocument)

		apiGroup.GET("/logs", logHandler.GetLogs)
	}
	return r, store
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func createTestAgent(t *testing.T, r *gin.Engine) agentResponse {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/api/agents", gin.H{"name": "Sales assistant"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var agent agentResponse
	decodeBody(t, w, &agent)
	return agent
}
