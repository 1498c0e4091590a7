package api

import (
	"net/http"

	"github.com/worldwideservice/agent-admin/internal/crm"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the reference lists every editor session loads
// once: pipelines with stages, users, channels, salesbots, CRM fields
// and the model picker options.
type CatalogHandler struct {
	Catalogs *crm.CatalogService
}

func NewCatalogHandler(catalogs *crm.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalogs: catalogs}
}

func (h *CatalogHandler) GetPipelines(c *gin.Context) {
	pipelines, err := h.Catalogs.Pipelines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pipelines: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, pipelines)
}

func (h *CatalogHandler) GetUsers(c *gin.Context) {
	users, err := h.Catalogs.Users(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *CatalogHandler) GetChannels(c *gin.Context) {
	channels, err := h.Catalogs.Channels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch channels: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (h *CatalogHandler) GetSalesbots(c *gin.Context) {
	bots, err := h.Catalogs.Salesbots(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch salesbots: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, bots)
}

// GetFields returns the custom fields for one entity type, selected by
// the ?entity query parameter (deal by default).
func (h *CatalogHandler) GetFields(c *gin.Context) {
	entity := c.DefaultQuery("entity", "deal")

	var fetch func() ([]crm.Field, error)
	switch entity {
	case "deal":
		fetch = func() ([]crm.Field, error) { return h.Catalogs.DealFields(c.Request.Context()) }
	case "contact":
		fetch = func() ([]crm.Field, error) { return h.Catalogs.ContactFields(c.Request.Context()) }
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity must be \"deal\" or \"contact\""})
		return
	}

	fields, err := fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch fields: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, fields)
}

func (h *CatalogHandler) GetModels(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalogs.Models(c.Request.Context()))
}
