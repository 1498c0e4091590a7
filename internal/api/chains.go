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
	"github.com/worldwideservice/agent-admin/pkg/schedule"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChainHandler struct {
	Hub *ws.Hub
}

func NewChainHandler(hub *ws.Hub) *ChainHandler {
	return &ChainHandler{Hub: hub}
}

type stepPayload struct {
	DelayValue int                  `json:"delayValue"`
	DelayUnit  string               `json:"delayUnit"`
	Actions    []actions.StepAction `json:"actions"`
}

type chainPayload struct {
	Name             string            `json:"name"`
	IsActive         *bool             `json:"is_active"`
	ConditionType    string            `json:"conditionType"`
	ConditionStages  []int64           `json:"conditionStages"`
	ConditionExclude string            `json:"conditionExclude"`
	Steps            []stepPayload     `json:"steps"`
	Schedule         schedule.Schedule `json:"schedule"`
	RunLimit         *int              `json:"run_limit"`
}

type stepResponse struct {
	ID         uint                 `json:"id"`
	Position   int                  `json:"position"`
	DelayValue int                  `json:"delayValue"`
	DelayUnit  string               `json:"delayUnit"`
	Actions    []actions.StepAction `json:"actions"`
}

type chainResponse struct {
	ID               uint              `json:"id"`
	AgentID          uint              `json:"agent_id"`
	Name             string            `json:"name"`
	IsActive         bool              `json:"is_active"`
	ConditionType    string            `json:"conditionType"`
	ConditionStages  []int64           `json:"conditionStages"`
	ConditionExclude string            `json:"conditionExclude"`
	Steps            []stepResponse    `json:"steps"`
	Schedule         schedule.Schedule `json:"schedule"`
	RunLimit         *int              `json:"run_limit"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func toChainResponse(ch models.Chain) chainResponse {
	stages := []int64{}
	if ch.ConditionStages != "" {
		_ = json.Unmarshal([]byte(ch.ConditionStages), &stages)
	}

	sched, err := schedule.Parse(ch.Schedule)
	if err != nil {
		sched = schedule.Default()
	}

	steps := make([]stepResponse, 0, len(ch.Steps))
	for _, s := range ch.Steps {
		list := []actions.StepAction{}
		if s.Actions != "" {
			_ = json.Unmarshal([]byte(s.Actions), &list)
		}
		steps = append(steps, stepResponse{
			ID:         s.ID,
			Position:   s.Position,
			DelayValue: s.DelayValue,
			DelayUnit:  s.DelayUnit,
			Actions:    list,
		})
	}

	return chainResponse{
		ID:               ch.ID,
		AgentID:          ch.AgentID,
		Name:             ch.Name,
		IsActive:         ch.IsActive,
		ConditionType:    ch.ConditionType,
		ConditionStages:  stages,
		ConditionExclude: ch.ConditionExclude,
		Steps:            steps,
		Schedule:         sched,
		RunLimit:         ch.RunLimit,
		CreatedAt:        ch.CreatedAt,
		UpdatedAt:        ch.UpdatedAt,
	}
}

// buildSteps validates the step payloads and converts them into rows.
// Delay values and units are stored exactly as sent; the scheduler owns
// unit interpretation, not this API.
func buildSteps(payload []stepPayload) ([]models.ChainStep, string) {
	if len(payload) == 0 {
		return nil, "at least one step is required"
	}

	steps := make([]models.ChainStep, 0, len(payload))
	for i, sp := range payload {
		prepared, err := actions.PrepareStepActions(sp.Actions)
		if err != nil {
			return nil, err.Error()
		}
		if len(prepared) == 0 {
			return nil, "every step needs at least one action"
		}

		encoded, err := json.Marshal(prepared)
		if err != nil {
			return nil, err.Error()
		}

		delayValue := sp.DelayValue
		if delayValue <= 0 {
			delayValue = 20
		}
		delayUnit := sp.DelayUnit
		if delayUnit == "" {
			delayUnit = "minutes"
		}

		steps = append(steps, models.ChainStep{
			Position:   i,
			DelayValue: delayValue,
			DelayUnit:  delayUnit,
			Actions:    string(encoded),
		})
	}
	return steps, ""
}

func validateChainPayload(p *chainPayload) ([]models.ChainStep, string) {
	p.Name = strings.TrimSpace(p.Name)
	p.ConditionExclude = strings.TrimSpace(p.ConditionExclude)

	if p.Name == "" {
		return nil, "chain name is required"
	}

	if p.ConditionType == "" {
		p.ConditionType = "all"
	}
	switch p.ConditionType {
	case "all":
	case "specific":
		if len(p.ConditionStages) == 0 {
			return nil, "at least one stage is required for a specific-stage condition"
		}
	default:
		return nil, "conditionType must be \"all\" or \"specific\""
	}

	if p.Schedule == nil {
		p.Schedule = schedule.Default()
	}
	if err := p.Schedule.Validate(); err != nil {
		return nil, err.Error()
	}

	return buildSteps(p.Steps)
}

// GetChains returns all chains of an agent with their steps.
func (h *ChainHandler) GetChains(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var chains []models.Chain
	err := database.GormDB.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("agent_id = ?", agent.ID).
		Order("created_at ASC").
		Find(&chains).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	responses := make([]chainResponse, 0, len(chains))
	for _, ch := range chains {
		responses = append(responses, toChainResponse(ch))
	}
	c.JSON(http.StatusOK, responses)
}

// CreateChain validates and persists a chain with its steps.
func (h *ChainHandler) CreateChain(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}

	var payload chainPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	steps, msg := validateChainPayload(&payload)
	if msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	stagesJSON, err := json.Marshal(payload.ConditionStages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	scheduleJSON, err := payload.Schedule.Encode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	chain := models.Chain{
		AgentID:          agent.ID,
		Name:             payload.Name,
		IsActive:         true,
		ConditionType:    payload.ConditionType,
		ConditionStages:  string(stagesJSON),
		ConditionExclude: payload.ConditionExclude,
		Schedule:         scheduleJSON,
		RunLimit:         payload.RunLimit,
		Steps:            steps,
	}
	if payload.IsActive != nil {
		chain.IsActive = *payload.IsActive
	}

	err = database.GormDB.Create(&chain).Error
	logAction(agent.ID, "chain", chain.ID, "created", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("chain_created", agent.ID, chain.ID)
	c.JSON(http.StatusCreated, toChainResponse(chain))
}

func (h *ChainHandler) findChain(c *gin.Context, agentID uint) (*models.Chain, bool) {
	chainID, ok := parseUintParam(c, "chainId")
	if !ok {
		return nil, false
	}

	var chain models.Chain
	err := database.GormDB.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND agent_id = ?", chainID, agentID).
		First(&chain).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chain not found"})
		return nil, false
	}
	return &chain, true
}

// UpdateChain validates and overwrites a chain, replacing its step set
// in one transaction.
func (h *ChainHandler) UpdateChain(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	chain, ok := h.findChain(c, agent.ID)
	if !ok {
		return
	}

	var payload chainPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	steps, msg := validateChainPayload(&payload)
	if msg != "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msg})
		return
	}

	stagesJSON, err := json.Marshal(payload.ConditionStages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	scheduleJSON, err := payload.Schedule.Encode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = database.GormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chain_id = ?", chain.ID).Delete(&models.ChainStep{}).Error; err != nil {
			return err
		}

		for i := range steps {
			steps[i].ChainID = chain.ID
		}
		if err := tx.Create(&steps).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":              payload.Name,
			"condition_type":    payload.ConditionType,
			"condition_stages":  string(stagesJSON),
			"condition_exclude": payload.ConditionExclude,
			"schedule":          scheduleJSON,
			"run_limit":         payload.RunLimit,
		}
		if payload.IsActive != nil {
			updates["is_active"] = *payload.IsActive
		}
		return tx.Model(&models.Chain{}).Where("id = ?", chain.ID).Updates(updates).Error
	})
	logAction(agent.ID, "chain", chain.ID, "updated", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Reload so the response carries server-assigned step ids.
	updated, ok := h.findChain(c, agent.ID)
	if !ok {
		return
	}

	h.Hub.NotifyEntity("chain_updated", agent.ID, chain.ID)
	c.JSON(http.StatusOK, toChainResponse(*updated))
}

// DeleteChain removes a chain and its steps.
func (h *ChainHandler) DeleteChain(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	chain, ok := h.findChain(c, agent.ID)
	if !ok {
		return
	}

	err := database.GormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chain_id = ?", chain.ID).Delete(&models.ChainStep{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chain{}, chain.ID).Error
	})
	logAction(agent.ID, "chain", chain.ID, "deleted", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("chain_deleted", agent.ID, chain.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Chain deleted successfully"})
}

// ToggleChain flips the active flag through the dedicated endpoint.
func (h *ChainHandler) ToggleChain(c *gin.Context) {
	agent, ok := findAgent(c)
	if !ok {
		return
	}
	chain, ok := h.findChain(c, agent.ID)
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

	err := database.GormDB.Model(&models.Chain{}).Where("id = ?", chain.ID).Update("is_active", req.IsActive).Error
	logAction(agent.ID, "chain", chain.ID, "toggled", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.Hub.NotifyEntity("chain_toggled", agent.ID, chain.ID)
	c.JSON(http.StatusOK, gin.H{"id": chain.ID, "is_active": req.IsActive})
}
