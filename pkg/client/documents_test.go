package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAgentWithDocumentsCommitsEverything(t *testing.T) {
	var uploads, patches, deletes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/api/agents/1":
			w.Write([]byte(`{"id":1,"name":"a","is_active":true}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/agents/1/documents":
			uploads++
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":10,"agent_id":1,"enabled":true}`))
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/agents/1/documents/"):
			patches++
			w.Write([]byte(`{}`))
		case r.Method == http.MethodDelete:
			deletes++
			w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	name := "Renamed agent"
	docs := &DocumentDraft{
		Uploads: []PendingUpload{{Filename: "a.pdf", Content: []byte("x")}},
		Toggles: map[uint]bool{4: false},
		Deletes: []uint{5},
	}

	agent, err := c.SaveAgentWithDocuments(context.Background(), 1, AgentUpdate{Name: &name}, docs)
	require.NoError(t, err)
	require.NotNil(t, agent)

	assert.Equal(t, 1, uploads)
	assert.Equal(t, 1, patches)
	assert.Equal(t, 1, deletes)

	// A fully committed draft is empty.
	assert.Empty(t, docs.Uploads)
	assert.Empty(t, docs.Toggles)
	assert.Empty(t, docs.Deletes)
}

func TestSaveAgentWithDocumentsKeepsAgentOnCommitFailure(t *testing.T) {
	var uploadCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch && r.URL.Path == "/api/agents/1":
			w.Write([]byte(`{"id":1,"name":"a","is_active":true}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/agents/1/documents":
			uploadCalls++
			if uploadCalls == 1 {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":10}`))
				return
			}
			http.Error(w, `{"error":"disk full"}`, http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL)

	docs := &DocumentDraft{
		Uploads: []PendingUpload{
			{Filename: "a.pdf", Content: []byte("x")},
			{Filename: "b.pdf", Content: []byte("y")},
		},
	}

	agent, err := c.SaveAgentWithDocuments(context.Background(), 1, AgentUpdate{}, docs)
	require.Error(t, err)

	var commitErr *DocumentCommitError
	require.ErrorAs(t, err, &commitErr)

	// The agent save stands even though the document half failed.
	require.NotNil(t, agent)
	assert.Equal(t, uint(1), agent.ID)

	// The committed upload was consumed; the failed one stays queued for
	// a retry.
	require.Len(t, docs.Uploads, 1)
	assert.Equal(t, "b.pdf", docs.Uploads[0].Filename)
}

func TestSaveAgentWithDocumentsStopsWhenAgentSaveFails(t *testing.T) {
	var sawUpload bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			sawUpload = true
		}
		http.Error(w, `{"error":"agent name is required"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()
	c := New(srv.URL)

	docs := &DocumentDraft{Uploads: []PendingUpload{{Filename: "a.pdf"}}}
	_, err := c.SaveAgentWithDocuments(context.Background(), 1, AgentUpdate{}, docs)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, "agent name is required", apiErr.Message)

	assert.False(t, sawUpload, "documents must not be committed when the agent save fails")
	assert.Len(t, docs.Uploads, 1)
}

func TestUploadDocumentSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "pricing.pdf", header.Filename)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":10,"agent_id":1,"filename":"pricing.pdf","enabled":true}`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	doc, err := c.UploadDocument(context.Background(), 1, PendingUpload{
		Filename: "pricing.pdf",
		Content:  []byte("fake pdf body"),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(10), doc.ID)
	assert.True(t, doc.Enabled)
}
