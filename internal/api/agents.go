package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/documents"
	"github.com/worldwideservice/agent-admin/internal/models"
	"github.com/worldwideservice/agent-admin/internal/ws"
	"github.com/worldwideservice/agent-admin/pkg/agentcfg"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AgentHandler struct {
	Hub   *ws.Hub
	Store *documents.Store
}

func NewAgentHandler(hub *ws.Hub, store *documents.Store) *AgentHandler {
	return &AgentHandler{Hub: hub, Store: store}
}

// agentResponse carries the settings blobs decoded: normalization
// happens here, at the boundary, so no consumer ever sees the legacy
// double-encoded form.
type agentResponse struct {
	ID               uint                      `json:"id"`
	Name             string                    `json:"name"`
	IsActive         bool                      `json:"is_active"`
	Model            string                    `json:"model"`
	Instructions     string                    `json:"instructions"`
	PipelineSettings agentcfg.PipelineSettings `json:"pipeline_settings"`
	ChannelSettings  agentcfg.ChannelSettings  `json:"channel_settings"`
	KBSettings       agentcfg.KBSettings       `json:"kb_settings"`
	CRMData          agentcfg.CRMData          `json:"crm_data"`
	AdvancedSettings agentcfg.AdvancedSettings `json:"advanced_settings"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

func toAgentResponse(a models.Agent) agentResponse {
	resp := agentResponse{
		ID:           a.ID,
		Name:         a.Name,
		IsActive:     a.IsActive,
		Model:        a.Model,
		Instructions: a.Instructions,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	_ = agentcfg.DecodeBlob(a.PipelineSettings, &resp.PipelineSettings)
	_ = agentcfg.DecodeBlob(a.ChannelSettings, &resp.ChannelSettings)
	_ = agentcfg.DecodeBlob(a.KBSettings, &resp.KBSettings)
	_ = agentcfg.DecodeBlob(a.AdvancedSettings, &resp.AdvancedSettings)
	resp.CRMData = agentcfg.DecodeCRMData(a.CRMData)
	return resp
}

// GetAgents lists all agents.
func (h *AgentHandler) GetAgents(c *gin.Context) {
	var agents []models.Agent
	if err := database.GormDB.Order("created_at ASC").Find(&agents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]agentResponse, 0, len(agents))
	for _, a := range agents {
		responses = append(responses, toAgentResponse(a))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateAgent creates an agent with editor defaults: active, answering
// on all channels, no pipeline restrictions.
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Model string `json:"model"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := req.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	channelDefaults, err := agentcfg.EncodeBlob(agentcfg.ChannelSettings{AllChannels: true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	agent := models.Agent{
		Name:            strings.TrimSpace(req.Name),
		IsActive:        true,
		Model:           model,
		ChannelSettings: channelDefaults,
	}
	if agent.Name == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "agent name is required"})
		return
	}

	err = database.GormDB.Create(&agent).Error
	logAction(agent.ID, "agent", agent.ID, "created", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("agent_created", agent.ID, agent.ID)
	c.JSON(http.StatusCreated, toAgentResponse(agent))
}

// GetAgent returns one agent.
func (h *AgentHandler) GetAgent(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toAgentResponse(*agent))
}

type agentUpdatePayload struct {
	Name             *string         `json:"name"`
	IsActive         *bool           `json:"is_active"`
	Model            *string         `json:"model"`
	Instructions     *string         `json:"instructions"`
	PipelineSettings json.RawMessage `json:"pipeline_settings"`
	ChannelSettings  json.RawMessage `json:"channel_settings"`
	KBSettings       json.RawMessage `json:"kb_settings"`
	CRMData          json.RawMessage `json:"crm_data"`
}

// UpdateAgent merges the provided fields into the agent. Settings blobs
// are normalized and re-encoded before storage; update rules inside
// crm_data are validated the same way trigger actions are.
func (h *AgentHandler) UpdateAgent(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var payload agentUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "agent name is required"})
			return
		}
		agent.Name = name
	}
	if payload.IsActive != nil {
		agent.IsActive = *payload.IsActive
	}
	if payload.Model != nil {
		agent.Model = *payload.Model
	}
	if payload.Instructions != nil {
		agent.Instructions = *payload.Instructions
	}

	type blobTarget struct {
		raw    json.RawMessage
		column *string
		dst    any
	}
	var pipeline agentcfg.PipelineSettings
	var channels agentcfg.ChannelSettings
	var kb agentcfg.KBSettings
	targets := []blobTarget{
		{payload.PipelineSettings, &agent.PipelineSettings, &pipeline},
		{payload.ChannelSettings, &agent.ChannelSettings, &channels},
		{payload.KBSettings, &agent.KBSettings, &kb},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := agentcfg.DecodeBlob(t.raw, t.dst); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		encoded, err := agentcfg.EncodeBlob(t.dst)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		*t.column = encoded
	}

	if len(payload.CRMData) > 0 {
		crmData := agentcfg.DecodeCRMData(payload.CRMData)
		if err := crmData.Validate(); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		encoded, err := agentcfg.EncodeBlob(crmData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		agent.CRMData = encoded
	}

	err := database.GormDB.Save(agent).Error
	logAction(agent.ID, "agent", agent.ID, "updated", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("agent_updated", agent.ID, agent.ID)
	c.JSON(http.StatusOK, toAgentResponse(*agent))
}

// UpdateAdvancedSettings saves the memory/response tuning document.
func (h *AgentHandler) UpdateAdvancedSettings(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var settings agentcfg.AdvancedSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	encoded, err := agentcfg.EncodeBlob(settings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = database.GormDB.Model(agent).Update("advanced_settings", encoded).Error
	logAction(agent.ID, "agent", agent.ID, "updated", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	agent.AdvancedSettings = encoded
	h.Hub.NotifyEntity("agent_updated", agent.ID, agent.ID)
	c.JSON(http.StatusOK, toAgentResponse(*agent))
}

// DeleteAgent removes the agent together with its triggers, chains and
// documents. Stored files are removed after the transaction commits; a
// leftover file is cheaper than a dangling row.
func (h *AgentHandler) DeleteAgent(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var docs []models.Document
	if err := database.GormDB.Where("agent_id = ?", agent.ID).Find(&docs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err := database.GormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chain_id IN (?)",
			tx.Model(&models.Chain{}).Select("id").Where("agent_id = ?", agent.ID),
		).Delete(&models.ChainStep{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", agent.ID).Delete(&models.Chain{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", agent.ID).Delete(&models.Trigger{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", agent.ID).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Agent{}, agent.ID).Error
	})
	logAction(agent.ID, "agent", agent.ID, "deleted", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.Store != nil {
		for _, doc := range docs {
			if err := h.Store.Remove(doc.StorageKey); err != nil {
				logAction(agent.ID, "document", doc.ID, "deleted", err)
			}
		}
	}

	h.Hub.NotifyEntity("agent_deleted", agent.ID, agent.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Agent deleted successfully"})
}
