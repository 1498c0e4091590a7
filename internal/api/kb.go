package api

import (
	"net/http"
	"strconv"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"

	"github.com/gin-gonic/gin"
)

// KBHandler serves the knowledge-base catalog the editors browse when
// attaching articles to stages or send_kb_article actions.
type KBHandler struct{}

func NewKBHandler() *KBHandler {
	return &KBHandler{}
}

func (h *KBHandler) GetCategories(c *gin.Context) {
	var categories []models.KBCategory
	if err := database.GormDB.Order("name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if categories == nil {
		categories = []models.KBCategory{}
	}
	c.JSON(http.StatusOK, categories)
}

// GetArticles lists published articles, optionally filtered by
// ?category_id.
func (h *KBHandler) GetArticles(c *gin.Context) {
	query := database.GormDB.Where("published = ?", true)

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}

	var articles []models.KBArticle
	if err := query.Order("title ASC").Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if articles == nil {
		articles = []models.KBArticle{}
	}
	c.JSON(http.StatusOK, articles)
}
