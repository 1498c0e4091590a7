package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAgentDefaults(t *testing.T) {
	r, _ := setupTest(t)

	agent := createTestAgent(t, r)
	assert.True(t, agent.IsActive)
	assert.Equal(t, "gpt-4o-mini", agent.Model)
	assert.True(t, agent.ChannelSettings.AllChannels)
}

func TestCreateAgentRequiresName(t *testing.T) {
	r, _ := setupTest(t)

	w := doRequest(t, r, http.MethodPost, "/api/agents", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/agents", gin.H{"name": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdateAgentPartial(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	path := fmt.Sprintf("/api/agents/%d", agent.ID)

	w := doRequest(t, r, http.MethodPatch, path, gin.H{
		"instructions": "Answer briefly and always in the client's language.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated agentResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, agent.Name, updated.Name)
	assert.Equal(t, agent.Model, updated.Model)
	assert.Equal(t, "Answer briefly and always in the client's language.", updated.Instructions)
}

func TestUpdateAgentNormalizesDoubleEncodedBlob(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	path := fmt.Sprintf("/api/agents/%d", agent.ID)

	// The settings arrive as a JSON string whose content is itself JSON,
	// the way old frontends sent them.
	doubleEncoded, err := json.Marshal(`{"allChannels": false, "channelIds": [11, 12]}`)
	require.NoError(t, err)

	w := doRequest(t, r, http.MethodPatch, path, gin.H{
		"channel_settings": json.RawMessage(doubleEncoded),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated agentResponse
	decodeBody(t, w, &updated)
	assert.False(t, updated.ChannelSettings.AllChannels)
	assert.Equal(t, []int64{11, 12}, updated.ChannelSettings.ChannelIDs)

	// The stored column is plain single-encoded JSON.
	var row models.Agent
	require.NoError(t, database.GormDB.First(&row, agent.ID).Error)
	assert.JSONEq(t, `{"allChannels": false, "channelIds": [11, 12]}`, row.ChannelSettings)
}

func TestUpdateAgentValidatesUpdateRules(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	path := fmt.Sprintf("/api/agents/%d", agent.ID)

	w := doRequest(t, r, http.MethodPatch, path, gin.H{
		"crm_data": gin.H{
			"dealRules": []gin.H{
				{"id": "r1", "fieldId": 101, "condition": "budget confirmed"},
				{"id": "r2", "fieldId": 0, "condition": "city named"},
			},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "deal rule 2")

	// The rejected save left the row untouched.
	var row models.Agent
	require.NoError(t, database.GormDB.First(&row, agent.ID).Error)
	assert.Empty(t, row.CRMData)
}

func TestUpdateAdvancedSettings(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)

	w := doRequest(t, r, http.MethodPatch, fmt.Sprintf("/api/agents/%d/advanced-settings", agent.ID), gin.H{
		"memoryDepth":       30,
		"temperature":       0.4,
		"maxResponseTokens": 800,
		"responseDelaySec":  5,
		"splitLongReplies":  true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated agentResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, 30, updated.AdvancedSettings.MemoryDepth)
	assert.InDelta(t, 0.4, updated.AdvancedSettings.Temperature, 0.001)
	assert.True(t, updated.AdvancedSettings.SplitLongReplies)
}

func TestDeleteAgentCascades(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/agents/%d/triggers", agent.ID), gin.H{
		"name":      "t",
		"condition": "x",
		"actions":   []gin.H{{"action": "send_message", "params": gin.H{"messageText": "hi"}}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/agents/%d/chains", agent.ID), gin.H{
		"name":  "c",
		"steps": []gin.H{stepWith("x")},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/agents/%d", agent.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for name, model := range map[string]any{
		"triggers":    &models.Trigger{},
		"chains":      &models.Chain{},
		"chain_steps": &models.ChainStep{},
	} {
		var count int64
		require.NoError(t, database.GormDB.Model(model).Count(&count).Error)
		assert.Zero(t, count, name)
	}

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/agents/%d", agent.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
