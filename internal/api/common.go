package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"

	"github.com/gin-gonic/gin"
)

// logAction records the outcome of a mutating admin operation. Audit
// failures are logged and swallowed: they must never fail the request
// that triggered them.
func logAction(agentID uint, entityType string, entityID uint, action string, opErr error) {
	entry := models.AgentLog{
		AgentID:    agentID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Success:    opErr == nil,
	}
	if opErr != nil {
		entry.ErrorMessage = opErr.Error()
	}
	if err := database.GormDB.Create(&entry).Error; err != nil {
		log.Printf("Error writing audit log: %v", err)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(value), true
}

// findAgent loads the agent addressed by the :id route param, answering
// 404 itself when it does not exist.
func findAgent(c *gin.Context) (*models.Agent, bool) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return nil, false
	}

	var agent models.Agent
	if err := database.GormDB.First(&agent, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		return nil, false
	}
	return &agent, true
}

type LogHandler struct{}

func NewLogHandler() *LogHandler {
	return &LogHandler{}
}

// GetLogs returns recent audit entries, newest first.
func (h *LogHandler) GetLogs(c *gin.Context) {
	limit := c.DefaultQuery("limit", "50")
	limitInt, _ := strconv.Atoi(limit)

	var logs []models.AgentLog
	if err := database.GormDB.Order("created_at DESC").Limit(limitInt).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}
