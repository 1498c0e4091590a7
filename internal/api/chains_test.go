package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/worldwideservice/agent-admin/internal/database"
	"github.com/worldwideservice/agent-admin/internal/models"
	"github.com/worldwideservice/agent-admin/pkg/actions"
	"github.com/worldwideservice/agent-admin/pkg/schedule"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepWith(text string) gin.H {
	return gin.H{
		"actions": []gin.H{
			{"actionType": "send_message", "instruction": "", "params": gin.H{"messageText": text}},
		},
	}
}

func TestCreateChainDefaults(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name":  "Follow-up",
		"steps": []gin.H{stepWith("Still thinking it over?")},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created chainResponse
	decodeBody(t, w, &created)
	assert.True(t, created.IsActive)
	assert.Equal(t, "all", created.ConditionType)
	assert.Equal(t, schedule.Default(), created.Schedule)
	require.Len(t, created.Steps, 1)
	assert.Equal(t, 20, created.Steps[0].DelayValue)
	assert.Equal(t, "minutes", created.Steps[0].DelayUnit)
	assert.Equal(t, 0, created.Steps[0].Position)
}

func TestChainDelayUnitStoredVerbatim(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	// Legacy clients send localized unit labels; they are persisted as
	// sent, not mapped onto an enum.
	step := stepWith("hello")
	step["delayValue"] = 45
	step["delayUnit"] = "Минуты"

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name":  "Localized delays",
		"steps": []gin.H{step},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodGet, base, nil)
	var listed []chainResponse
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Steps, 1)
	assert.Equal(t, 45, listed[0].Steps[0].DelayValue)
	assert.Equal(t, "Минуты", listed[0].Steps[0].DelayUnit)
}

func TestCreateChainValidation(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	badSchedule := schedule.Default()[:6]

	cases := []struct {
		name    string
		payload gin.H
		errPart string
	}{
		{
			"missing name",
			gin.H{"name": " ", "steps": []gin.H{stepWith("x")}},
			"name is required",
		},
		{
			"no steps",
			gin.H{"name": "c", "steps": []gin.H{}},
			"at least one step",
		},
		{
			"step without actions",
			gin.H{"name": "c", "steps": []gin.H{{"actions": []gin.H{}}}},
			"at least one action",
		},
		{
			"invalid step action",
			gin.H{"name": "c", "steps": []gin.H{
				{"actions": []gin.H{{"actionType": "run_salesbot", "params": gin.H{}}}},
			}},
			"salesbotId",
		},
		{
			"specific condition without stages",
			gin.H{"name": "c", "conditionType": "specific", "steps": []gin.H{stepWith("x")}},
			"at least one stage",
		},
		{
			"unknown condition type",
			gin.H{"name": "c", "conditionType": "sometimes", "steps": []gin.H{stepWith("x")}},
			"conditionType",
		},
		{
			"truncated schedule",
			gin.H{"name": "c", "schedule": badSchedule, "steps": []gin.H{stepWith("x")}},
			"7 days",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, base, tc.payload)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tc.errPart)
		})
	}

	w := doRequest(t, r, http.MethodGet, base, nil)
	var listed []chainResponse
	decodeBody(t, w, &listed)
	assert.Empty(t, listed)
}

func TestCreateChainSpecificStages(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	sched := schedule.Default()
	sched.Toggle("saturday")

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name":             "Stage-bound",
		"conditionType":    "specific",
		"conditionStages":  []int64{101, 102},
		"conditionExclude": "already paid",
		"schedule":         sched,
		"steps":            []gin.H{stepWith("x")},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created chainResponse
	decodeBody(t, w, &created)
	assert.Equal(t, []int64{101, 102}, created.ConditionStages)
	assert.Equal(t, "already paid", created.ConditionExclude)
	assert.Equal(t, sched, created.Schedule)
}

func TestUpdateChainReplacesSteps(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name":  "Follow-up",
		"steps": []gin.H{stepWith("first")},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created chainResponse
	decodeBody(t, w, &created)
	oldStepID := created.Steps[0].ID

	w = doRequest(t, r, http.MethodPatch, fmt.Sprintf("%s/%d", base, created.ID), gin.H{
		"name": "Follow-up v2",
		"steps": []gin.H{
			stepWith("first rewritten"),
			stepWith("second"),
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated chainResponse
	decodeBody(t, w, &updated)
	assert.Equal(t, "Follow-up v2", updated.Name)
	require.Len(t, updated.Steps, 2)
	assert.Equal(t, 0, updated.Steps[0].Position)
	assert.Equal(t, 1, updated.Steps[1].Position)
	assert.NotEqual(t, oldStepID, updated.Steps[0].ID)

	// The old step rows are gone, not orphaned.
	var count int64
	require.NoError(t, database.GormDB.Model(&models.ChainStep{}).Where("chain_id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestToggleChain(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name":  "c",
		"steps": []gin.H{stepWith("x")},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created chainResponse
	decodeBody(t, w, &created)

	w = doRequest(t, r, http.MethodPost, fmt.Sprintf("%s/%d/toggle", base, created.ID), gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, base, nil)
	var listed []chainResponse
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	assert.False(t, listed[0].IsActive)
}

func TestDeleteChainRemovesSteps(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name":  "c",
		"steps": []gin.H{stepWith("a"), stepWith("b")},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created chainResponse
	decodeBody(t, w, &created)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("%s/%d", base, created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, database.GormDB.Model(&models.ChainStep{}).Where("chain_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestChainStepActionsRoundTrip(t *testing.T) {
	r, _ := setupTest(t)
	agent := createTestAgent(t, r)
	base := fmt.Sprintf("/api/agents/%d/chains", agent.ID)

	w := doRequest(t, r, http.MethodPost, base, gin.H{
		"name": "Mixed actions",
		"steps": []gin.H{
			{"actions": []gin.H{
				{"actionType": "send_message", "instruction": "nudge politely", "params": gin.H{"messageText": "Hi again"}},
				{"actionType": "create_task", "params": gin.H{"taskDescription": "call the client", "dueInDays": 1}},
			}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, r, http.MethodGet, base, nil)
	var listed []chainResponse
	decodeBody(t, w, &listed)
	require.Len(t, listed, 1)
	steps := listed[0].Steps
	require.Len(t, steps, 1)
	require.Len(t, steps[0].Actions, 2)
	assert.Equal(t, "nudge politely", steps[0].Actions[0].Instruction)
	assert.Equal(t, actions.KindCreateTask, steps[0].Actions[1].Kind)
	assert.Equal(t, 1, steps[0].Actions[1].Params.(actions.CreateTaskParams).DueInDays)
}
