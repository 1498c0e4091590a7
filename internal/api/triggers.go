package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"
	"github.com/worldwideservice/agent-admin/internal/ws"
	"github.com/worldwideservice/agent-admin/pkg/actions"

	"github.com/gin-gonic/gin"
)

type TriggerHandler struct {
	Hub *ws.Hub
}

func NewTriggerHandler(hub *ws.Hub) *TriggerHandler {
	return &TriggerHandler{Hub: hub}
}

type triggerPayload struct {
	Name          string                  `json:"name"`
	Condition     string                  `json:"condition"`
	IsActive      *bool                   `json:"is_active"`
	Actions       []actions.TriggerAction `json:"actions"`
	CancelMessage string                  `json:"cancel_message"`
	RunLimit      *int                    `json:"run_limit"`
}

type triggerResponse struct {
	ID            uint                    `json:"id"`
	AgentID       uint                    `json:"agent_id"`
	Name          string                  `json:"name"`
	IsActive      bool                    `json:"is_active"`
	Condition     string                  `json:"condition"`
	Actions       []actions.TriggerAction `json:"actions"`
	CancelMessage string                  `json:"cancel_message"`
	RunLimit      *int                    `json:"run_limit"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func toTriggerResponse(t models.Trigger) triggerResponse {
	list := []actions.TriggerAction{}
	if t.Actions != "" {
		// A row with an unreadable action list still has to render; the
		// editor shows it with an empty list rather than erroring out.
		_ = json.Unmarshal([]byte(t.Actions), &list)
	}
	return triggerResponse{
		ID:            t.ID,
		AgentID:       t.AgentID,
		Name:          t.Name,
		IsActive:      t.IsActive,
		Condition:     t.Condition,
		Actions:       list,
		CancelMessage: t.CancelMessage,
		RunLimit:      t.RunLimit,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// validateTriggerPayload runs the full local validation: trimming,
// required fields, and per-action parameter checks. It returns the
// prepared action list; nothing touches the database until it passes.
func validateTriggerPayload(p *triggerPayload) ([]actions.TriggerAction, string) {
	p.Name = strings.TrimSpace(p.Name)
	p.Condition = strings.TrimSpace(p.Condition)

	if p.Name == "" {
		return nil, "trigger name is required"
	}
	if p.Condition == "" {
		return nil, "trigger condition is required"
	}

	prepared, err := actions.PrepareTriggerActions(p.Actions)
	if err != nil {
		return nil, err.Error()
	}
	if len(prepared) == 0 {
		return nil, "at least one action is required"
	}
	return prepared, ""
}

// GetTriggers returns all triggers of an agent.
func (h *TriggerHandler) GetTriggers(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var triggers []models.Trigger
	if err := database.GormDB.Where("agent_id = ?", agent.ID).Order("created_at ASC").Find(&triggers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]triggerResponse, 0, len(triggers))
	for _, t := range triggers {
		responses = append(responses, toTriggerResponse(t))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateTrigger validates and persists a new trigger.
func (h *TriggerHandler) CreateTrigger(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var payload triggerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prepared, msg := validateTriggerPayload(&payload)
	if msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	encoded, err := json.Marshal(prepared)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	trigger := models.Trigger{
		AgentID:       agent.ID,
		Name:          payload.Name,
		IsActive:      true,
		Condition:     payload.Condition,
		Actions:       string(encoded),
		CancelMessage: payload.CancelMessage,
		RunLimit:      payload.RunLimit,
	}
	if payload.IsActive != nil {
		trigger.IsActive = *payload.IsActive
	}

	err = database.GormDB.Create(&trigger).Error
	logAction(agent.ID, "trigger", trigger.ID, "created", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("trigger_created", agent.ID, trigger.ID)
	c.JSON(http.StatusCreated, toTriggerResponse(trigger))
}

func (h *TriggerHandler) findTrigger(c *gin.Context, agentID uint) (*models.Trigger, bool) {
	triggerID, ok := parseUintParam(c, "triggerId")
	if !ok {
		return nil, false
	}

	var trigger models.Trigger
	if err := database.GormDB.Where("id = ? AND agent_id = ?", triggerID, agentID).First(&trigger).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trigger not found"})
		return nil, false
	}
	return &trigger, true
}

// UpdateTrigger validates and overwrites an existing trigger.
func (h *TriggerHandler) UpdateTrigger(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	trigger, ok := h.findTrigger(c, agent.ID)
	if !ok {
		return
	}

	var payload triggerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prepared, msg := validateTriggerPayload(&payload)
	if msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	encoded, err := json.Marshal(prepared)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	trigger.Name = payload.Name
	trigger.Condition = payload.Condition
	trigger.Actions = string(encoded)
	trigger.CancelMessage = payload.CancelMessage
	trigger.RunLimit = payload.RunLimit
	if payload.IsActive != nil {
		trigger.IsActive = *payload.IsActive
	}

	err = database.GormDB.Save(trigger).Error
	logAction(agent.ID, "trigger", trigger.ID, "updated", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("trigger_updated", agent.ID, trigger.ID)
	c.JSON(http.StatusOK, toTriggerResponse(*trigger))
}

// DeleteTrigger removes a trigger.
func (h *TriggerHandler) DeleteTrigger(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	trigger, ok := h.findTrigger(c, agent.ID)
	if !ok {
		return
	}

	err := database.GormDB.Delete(trigger).Error
	logAction(agent.ID, "trigger", trigger.ID, "deleted", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("trigger_deleted", agent.ID, trigger.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Trigger deleted successfully"})
}

// ToggleTrigger flips the active flag through the dedicated endpoint
// the editors' optimistic toggle calls.
func (h *TriggerHandler) ToggleTrigger(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	trigger, ok := h.findTrigger(c, agent.ID)
	if !ok {
		return
	}

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := database.GormDB.Model(trigger).Update("is_active", req.IsActive).Error
	logAction(agent.ID, "trigger", trigger.ID, "toggled", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("trigger_toggled", agent.ID, trigger.ID)
	c.JSON(http.StatusOK, gin.H{"id": trigger.ID, "is_active": req.IsActive})
}

// MoveTriggerAction swaps one action with its neighbour. Boundary moves
// change nothing and still answer 200 with the current list.
func (h *TriggerHandler) MoveTriggerAction(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	trigger, ok := h.findTrigger(c, agent.ID)
	if !ok {
		return
	}

	var req struct {
		Index     int    `json:"index"`
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Direction != string(actions.MoveUp) && req.Direction != string(actions.MoveDown) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be \"up\" or \"down\""})
		return
	}

	var list []actions.TriggerAction
	if trigger.Actions != "" {
		if err := json.Unmarshal([]byte(trigger.Actions), &list); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	if actions.Move(list, req.Index, actions.Direction(req.Direction)) {
		encoded, err := json.Marshal(list)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := database.GormDB.Model(trigger).Update("actions", string(encoded)).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		trigger.Actions = string(encoded)
		h.Hub.NotifyEntity("trigger_updated", agent.ID, trigger.ID)
	}

	c.JSON(http.StatusOK, toTriggerResponse(*trigger))
}
