package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// AgentUpdate is the partial agent save body. Nil fields are omitted
// and keep their server-side value.
type AgentUpdate struct {
	Name             *string         `json:"name,omitempty"`
	IsActive         *bool           `json:"is_active,omitempty"`
	Model            *string         `json:"model,omitempty"`
	Instructions     *string         `json:"instructions,omitempty"`
	PipelineSettings json.RawMessage `json:"pipeline_settings,omitempty"`
	ChannelSettings  json.RawMessage `json:"channel_settings,omitempty"`
	KBSettings       json.RawMessage `json:"kb_settings,omitempty"`
	CRMData          json.RawMessage `json:"crm_data,omitempty"`
}

// UpdateAgent issues the merged PATCH for basic fields and settings.
func (c *Client) UpdateAgent(ctx context.Context, agentID uint, update AgentUpdate) (*Agent, error) {
	var agent Agent
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/agents/%d", agentID), update, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// PendingUpload is a file queued in the editor but not yet sent.
type PendingUpload struct {
	Filename string
	MimeType string
	Content  []byte
}

// DocumentDraft holds the editor's pending document changes. It lives
// only for the session: nothing here survives a reload until committed.
type DocumentDraft struct {
	Uploads []PendingUpload
	Toggles map[uint]bool // document id -> enabled
	Deletes []uint
}

// DocumentCommitError marks a failure in the document-commit half of an
// agent save. The agent itself was already saved and stays saved.
type DocumentCommitError struct {
	Err error
}

func (e *DocumentCommitError) Error() string {
	return fmt.Sprintf("agent saved, but committing document changes failed: %v", e.Err)
}

func (e *DocumentCommitError) Unwrap() error { return e.Err }

// UploadDocument sends one file as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, agentID uint, upload PendingUpload) (*Document, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/agents/%d/documents", c.BaseURL, agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: string(data)}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SetDocumentEnabled flips one document's enabled flag.
func (c *Client) SetDocumentEnabled(ctx context.Context, agentID, docID uint, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/agents/%d/documents/%d", agentID, docID), body, nil)
}

// DeleteDocument removes one document.
func (c *Client) DeleteDocument(ctx context.Context, agentID, docID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/agents/%d/documents/%d", agentID, docID), nil, nil)
}

// SaveAgentWithDocuments performs the editor's composite save: the
// agent PATCH first, then the pending document changes. The two halves
// are independent; a document failure surfaces as DocumentCommitError
// while the agent save stands. The draft keeps whatever was not yet
// committed so the user can retry.
func (c *Client) SaveAgentWithDocuments(ctx context.Context, agentID uint, update AgentUpdate, docs *DocumentDraft) (*Agent, error) {
	agent, err := c.UpdateAgent(ctx, agentID, update)
	if err != nil {
		return nil, err
	}

	if docs == nil {
		return agent, nil
	}

	for len(docs.Uploads) > 0 {
		upload := docs.Uploads[0]
		if _, err := c.UploadDocument(ctx, agentID, upload); err != nil {
			return agent, &DocumentCommitError{Err: err}
		}
		docs.Uploads = docs.Uploads[1:]
	}

	for docID, enabled := range docs.Toggles {
		if err := c.SetDocumentEnabled(ctx, agentID, docID, enabled); err != nil {
			return agent, &DocumentCommitError{Err: err}
		}
		delete(docs.Toggles, docID)
	}

	for len(docs.Deletes) > 0 {
		docID := docs.Deletes[0]
		if err := c.DeleteDocument(ctx, agentID, docID); err != nil {
			return agent, &DocumentCommitError{Err: err}
		}
		docs.Deletes = docs.Deletes[1:]
	}

	return agent, nil
}
