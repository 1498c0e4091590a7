// Package client is the typed Go client for the admin API. It carries
// the editor-side behaviour the web front end relies on: drafts are
// validated locally before any request goes out, status toggles are
// optimistic with rollback, and the agent-save/document-commit pair
// stays two independent sequential calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/worldwideservice/agent-admin/pkg/actions"
	"github.com/worldwideservice/agent-admin/pkg/agentcfg"
	"github.com/worldwideservice/agent-admin/pkg/schedule"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		locks:   make(map[string]*sync.Mutex),
	}
}

// APIError is any non-2xx answer from the admin API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// IsValidation reports whether the server rejected the request body
// rather than failing to process it.
func (e *APIError) IsValidation() bool {
	return e.Status == http.StatusUnprocessableEntity || e.Status == http.StatusBadRequest
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: string(data)}
		var wire struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &wire) == nil && wire.Error != "" {
			apiErr.Message = wire.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Trigger mirrors the server's trigger response shape.
type Trigger struct {
	ID            uint                    `json:"id"`
	AgentID       uint                    `json:"agent_id"`
	Name          string                  `json:"name"`
	IsActive      bool                    `json:"is_active"`
	Condition     string                  `json:"condition"`
	Actions       []actions.TriggerAction `json:"actions"`
	CancelMessage string                  `json:"cancel_message"`
	RunLimit      *int                    `json:"run_limit"`
}

// Step mirrors one chain step.
type Step struct {
	ID         uint                 `json:"id"`
	Position   int                  `json:"position"`
	DelayValue int                  `json:"delayValue"`
	DelayUnit  string               `json:"delayUnit"`
	Actions    []actions.StepAction `json:"actions"`
}

// Chain mirrors the server's chain response shape.
type Chain struct {
	ID               uint              `json:"id"`
	AgentID          uint              `json:"agent_id"`
	Name             string            `json:"name"`
	IsActive         bool              `json:"is_active"`
	ConditionType    string            `json:"conditionType"`
	ConditionStages  []int64           `json:"conditionStages"`
	ConditionExclude string            `json:"conditionExclude"`
	Steps            []Step            `json:"steps"`
	Schedule         schedule.Schedule `json:"schedule"`
	RunLimit         *int              `json:"run_limit"`
}

// Agent mirrors the server's agent response shape.
type Agent struct {
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
}

// Document mirrors the server's document rows.
type Document struct {
	ID       uint   `json:"id"`
	AgentID  uint   `json:"agent_id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	Enabled  bool   `json:"enabled"`
}

func (c *Client) ListAgents(ctx context.Context) ([]Agent, error) {
	var agents []Agent
	err := c.do(ctx, http.MethodGet, "/api/agents", nil, &agents)
	return agents, err
}

func (c *Client) GetAgent(ctx context.Context, agentID uint) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/agents/%d", agentID), nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) CreateAgent(ctx context.Context, name, model string) (*Agent, error) {
	var agent Agent
	body := map[string]string{"name": name, "model": model}
	if err := c.do(ctx, http.MethodPost, "/api/agents", body, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *Client) DeleteAgent(ctx context.Context, agentID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/agents/%d", agentID), nil, nil)
}

func (c *Client) ListTriggers(ctx context.Context, agentID uint) ([]Trigger, error) {
	var triggers []Trigger
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/agents/%d/triggers", agentID), nil, &triggers)
	return triggers, err
}

func (c *Client) DeleteTrigger(ctx context.Context, agentID, triggerID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/agents/%d/triggers/%d", agentID, triggerID), nil, nil)
}

func (c *Client) ListChains(ctx context.Context, agentID uint) ([]Chain, error) {
	var chains []Chain
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/agents/%d/chains", agentID), nil, &chains)
	return chains, err
}

func (c *Client) DeleteChain(ctx context.Context, agentID, chainID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/agents/%d/chains/%d", agentID, chainID), nil, nil)
}

func (c *Client) ListDocuments(ctx context.Context, agentID uint) ([]Document, error) {
	var docs []Document
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/agents/%d/documents", agentID), nil, &docs)
	return docs, err
}
