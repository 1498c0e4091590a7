package api

import (
	"net/http"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/documents"
	"github.com/worldwideservice/agent-admin/internal/models"
	"github.com/worldwideservice/agent-admin/internal/ws"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	Hub   *ws.Hub
	Store *documents.Store
}

func NewDocumentHandler(hub *ws.Hub, store *documents.Store) *DocumentHandler {
	return &DocumentHandler{Hub: hub, Store: store}
}

// UploadDocument accepts one multipart file and attaches it to the
// agent, enabled by default.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	key := h.Store.NewKey(file.Filename)
	if err := c.SaveUploadedFile(file, h.Store.Path(key)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file: " + err.Error()})
		return
	}

	doc := models.Document{
		AgentID:    agent.ID,
		StorageKey: key,
		Filename:   file.Filename,
		MimeType:   file.Header.Get("Content-Type"),
		FileSize:   file.Size,
		Enabled:    true,
	}

	err = database.GormDB.Create(&doc).Error
	logAction(agent.ID, "document", doc.ID, "created", err)
	if err != nil {
		// Roll the file back so a failed row never leaks storage.
		_ = h.Store.Remove(key)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("document_created", agent.ID, doc.ID)
	c.JSON(http.StatusCreated, doc)
}

// GetDocuments lists the agent's documents.
func (h *DocumentHandler) GetDocuments(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var docs []models.Document
	if err := database.GormDB.Where("agent_id = ?", agent.ID).Order("uploaded_at ASC").Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if docs == nil {
		docs = []models.Document{}
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) findDocument(c *gin.Context, agentID uint) (*models.Document, bool) {
	docID, ok := parseUintParam(c, "docId")
	if !ok {
		return nil, false
	}

	var doc models.Document
	if err := database.GormDB.Where("id = ? AND agent_id = ?", docID, agentID).First(&doc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return nil, false
	}
	return &doc, true
}

// PatchDocument enables or disables a document.
func (h *DocumentHandler) PatchDocument(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	doc, ok := h.findDocument(c, agent.ID)
	if !ok {
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := database.GormDB.Model(doc).Update("enabled", req.Enabled).Error
	logAction(agent.ID, "document", doc.ID, "updated", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	doc.Enabled = req.Enabled
	h.Hub.NotifyEntity("document_updated", agent.ID, doc.ID)
	c.JSON(http.StatusOK, doc)
}

// DeleteDocument removes the row and the stored file.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	doc, ok := h.findDocument(c, agent.ID)
	if !ok {
		return
	}

	err := database.GormDB.Delete(doc).Error
	logAction(agent.ID, "document", doc.ID, "deleted", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.Remove(doc.StorageKey); err != nil {
		logAction(agent.ID, "document", doc.ID, "deleted", err)
	}

	h.Hub.NotifyEntity("document_deleted", agent.ID, doc.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
