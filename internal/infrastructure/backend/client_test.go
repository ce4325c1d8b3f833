package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/maildraft/internal/domain"
)

func TestHTTPClientSendsPromptAndContext(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("content-type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success","email":"Thanks!"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, srv.Client())
	email, err := client.Generate(context.Background(), domain.GenerateRequest{
		Prompt:  "Write a thank-you note",
		Context: domain.EmailContext{Tone: "formal"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Thanks!", email)
	assert.Equal(t, "Write a thank-you note", got.Prompt)
	assert.Equal(t, "formal", got.Context.Tone)
}

func TestHTTPClientEmptyContextIsObject(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"email":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, srv.Client()).Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw["context"]))
}

func TestHTTPClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "non-2xx", status: http.StatusInternalServerError, body: "boom", wantMsg: "500"},
		{name: "status error body", status: http.StatusOK, body: `{"status":"error","message":"model not loaded"}`, wantMsg: "model not loaded"},
		{name: "missing email", status: http.StatusOK, body: `{"status":"success"}`, wantMsg: "no email"},
		{name: "invalid json", status: http.StatusOK, body: `<html>`, wantMsg: "decode response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, srv.Client()).Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})

			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestHTTPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, nil).Generate(context.Background(), domain.GenerateRequest{Prompt: "hello"})

	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, err.Error(), "backend unreachable")
}

func TestHTTPClientHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewHTTPClient(srv.URL, srv.Client()).Generate(ctx, domain.GenerateRequest{Prompt: "slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
