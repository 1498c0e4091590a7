package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParamsDefaults(t *testing.T) {
	t.Run("assign_user applyTo", func(t *testing.T) {
		p, err := DecodeParams(KindAssignUser, json.RawMessage(`{"userId": 12}`))
		require.NoError(t, err)
		assert.Equal(t, AssignUserParams{UserID: 12, ApplyTo: "deal"}, p)
	})

	t.Run("send_webhook method", func(t *testing.T) {
		p, err := DecodeParams(KindSendWebhook, json.RawMessage(`{"webhookUrl": "https://hook"}`))
		require.NoError(t, err)
		assert.Equal(t, "POST", p.(SendWebhookParams).Method)
	})

	t.Run("send_kb_article channel", func(t *testing.T) {
		p, err := DecodeParams(KindSendKBArticle, json.RawMessage(`{"articleId": 4}`))
		require.NoError(t, err)
		assert.Equal(t, "chat", p.(SendKBArticleParams).Channel)
	})

	t.Run("explicit values win", func(t *testing.T) {
		p, err := DecodeParams(KindSendWebhook, json.RawMessage(`{"webhookUrl": "https://hook", "method": "PUT"}`))
		require.NoError(t, err)
		assert.Equal(t, "PUT", p.(SendWebhookParams).Method)
	})
}

func TestDecodeParamsEmptyRaw(t *testing.T) {
	// Legacy rows saved without a params field decode as zero records.
	p, err := DecodeParams(KindSendMessage, nil)
	require.NoError(t, err)
	assert.Equal(t, SendMessageParams{}, p)
}

func TestTriggerActionRoundTrip(t *testing.T) {
	original := TriggerAction{
		Kind:   KindAddDealTags,
		Params: AddDealTagsParams{Tags: []string{"priced", "warm"}},
	}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"add_deal_tags","params":{"tags":["priced","warm"]}}`, string(encoded))

	var decoded TriggerAction
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

func TestTriggerActionEmptySlot(t *testing.T) {
	var decoded TriggerAction
	require.NoError(t, json.Unmarshal([]byte(`{"action":"","params":{}}`), &decoded))
	assert.Equal(t, Kind(""), decoded.Kind)
	assert.Nil(t, decoded.Params)
}

func TestTriggerActionUnknownKind(t *testing.T) {
	var decoded TriggerAction
	err := json.Unmarshal([]byte(`{"action":"send_pigeon","params":{}}`), &decoded)
	require.Error(t, err)
}

func TestStepActionRoundTrip(t *testing.T) {
	original := StepAction{
		Kind:        KindSendMessage,
		Instruction: "remind them about the call",
		Params:      SendMessageParams{MessageText: "Hi, still interested?"},
	}

	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded StepAction
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

func TestPrepareTriggerActions(t *testing.T) {
	t.Run("filters empty slots", func(t *testing.T) {
		list := []TriggerAction{
			{},
			{Kind: KindSendMessage, Params: SendMessageParams{MessageText: "hi"}},
			{},
		}
		prepared, err := PrepareTriggerActions(list)
		require.NoError(t, err)
		require.Len(t, prepared, 1)
		assert.Equal(t, KindSendMessage, prepared[0].Kind)
	})

	t.Run("reports index of first invalid action", func(t *testing.T) {
		list := []TriggerAction{
			{Kind: KindSendMessage, Params: SendMessageParams{MessageText: "hi"}},
			{Kind: KindSendWebhook, Params: SendWebhookParams{Method: "POST"}},
		}
		_, err := PrepareTriggerActions(list)
		require.Error(t, err)

		var actionErr *ActionError
		require.ErrorAs(t, err, &actionErr)
		assert.Equal(t, 1, actionErr.Index)

		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "webhookUrl", missing.Field)
	})

	t.Run("all empty yields empty list", func(t *testing.T) {
		prepared, err := PrepareTriggerActions([]TriggerAction{{}, {}})
		require.NoError(t, err)
		assert.Empty(t, prepared)
	})
}

func TestMoveBoundaries(t *testing.T) {
	base := []string{"a", "b", "c"}

	t.Run("first up is a no-op", func(t *testing.T) {
		list := append([]string(nil), base...)
		assert.False(t, Move(list, 0, MoveUp))
		assert.Equal(t, base, list)
	})

	t.Run("last down is a no-op", func(t *testing.T) {
		list := append([]string(nil), base...)
		assert.False(t, Move(list, len(list)-1, MoveDown))
		assert.Equal(t, base, list)
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		list := append([]string(nil), base...)
		assert.False(t, Move(list, -1, MoveDown))
		assert.False(t, Move(list, 3, MoveUp))
		assert.Equal(t, base, list)
	})

	t.Run("middle moves swap neighbours", func(t *testing.T) {
		list := append([]string(nil), base...)
		assert.True(t, Move(list, 1, MoveUp))
		assert.Equal(t, []string{"b", "a", "c"}, list)

		assert.True(t, Move(list, 1, MoveDown))
		assert.Equal(t, []string{"b", "c", "a"}, list)
	})
}
