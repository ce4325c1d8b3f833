package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/doeshing/maildraft/internal/domain"
	"github.com/doeshing/maildraft/internal/ports"
)

// maxErrorBody caps how much of a failed response is echoed into errors.
const maxErrorBody = 512

type generateRequest struct {
	Prompt  string              `json:"prompt"`
	Context domain.EmailContext `json:"context"`
}

type generateResponse struct {
	Status  string `json:"status"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// HTTPClient posts prompts to the backend generation endpoint.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient builds a client for endpoint. Timeouts come from the caller's context.
func NewHTTPClient(endpoint string, client *http.Client) *HTTPClient {
	if endpoint == "" {
		endpoint = domain.DefaultBackendEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{endpoint: endpoint, httpClient: client}
}

// Generate implements ports.GenerationClient.
func (c *HTTPClient) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	body, err := json.Marshal(generateRequest{Prompt: req.Prompt, Context: req.Context})
	if err != nil {
		return "", &domain.GenerationError{Message: "encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &domain.GenerationError{Message: "build request", Err: err}
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.GenerationError{Message: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &domain.GenerationError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(snippet)),
		}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", &domain.GenerationError{Message: "decode response", Err: err}
	}
	if decoded.Status == domain.StatusError {
		msg := decoded.Message
		if msg == "" {
			msg = "backend reported an error"
		}
		return "", &domain.GenerationError{Message: msg}
	}
	if decoded.Email == "" {
		return "", &domain.GenerationError{Message: "backend response has no email"}
	}
	return decoded.Email, nil
}

// Endpoint returns the configured URL.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

var _ ports.GenerationClient = (*HTTPClient)(nil)
