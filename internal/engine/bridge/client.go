// Package bridge drives the reconstruction engine through a small JSON-over-HTTP
// bridge script running inside the engine's own console.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/survey-automation/routebatch/internal/engine"
)

const defaultURL = "http://localhost:8765"

// Client implements engine.Engine by forwarding every call to the bridge
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL, falling back to ROUTEBATCH_BRIDGE_URL and then localhost
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("ROUTEBATCH_BRIDGE_URL")
	}
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Client{
		baseURL: baseURL,
		// engine stages can run for hours; cancellation comes from the context
		httpClient: &http.Client{Timeout: 0},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type callRequest struct {
	Target   string `json:"target"`
	Document string `json:"document,omitempty"`
	Chunk    string `json:"chunk,omitempty"`
	Method   string `json:"method"`
	Params   any    `json:"params,omitempty"`
}

// CallError is an error reported by the engine through the bridge
type CallError struct {
	Method  string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("engine call %s failed: %s", e.Method, e.Message)
}

// call posts one request and returns the "result" member of the response
func (c *Client) call(ctx context.Context, req callRequest) (gjson.Result, error) {
	requestBody, err := json.Marshal(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/call", bytes.NewBuffer(requestBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("bridge returned invalid JSON for %s", req.Method)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.Get("ok").Bool() {
		msg := parsed.Get("error").String()
		if msg == "" {
			msg = "unknown error"
		}
		return gjson.Result{}, &CallError{Method: req.Method, Message: msg}
	}
	logCall(req, time.Since(start))
	return parsed.Get("result"), nil
}

func (c *Client) NewDocument(ctx context.Context) (engine.Document, error) {
	result, err := c.call(ctx, callRequest{Target: "engine", Method: "new_document"})
	if err != nil {
		return nil, err
	}
	id := result.Get("document").String()
	if id == "" {
		return nil, fmt.Errorf("bridge did not return a document id")
	}
	return &document{client: c, id: id}, nil
}

func (c *Client) OpenDocument(ctx context.Context, path string) (engine.Document, error) {
	result, err := c.call(ctx, callRequest{
		Target: "engine",
		Method: "open_document",
		Params: map[string]any{"path": path, "read_only": true},
	})
	if err != nil {
		return nil, err
	}
	id := result.Get("document").String()
	if id == "" {
		return nil, fmt.Errorf("bridge did not return a document id")
	}
	return &document{client: c, id: id}, nil
}

func logCall(req callRequest, elapsed time.Duration) {
	slog.Debug("Engine call",
		"target", req.Target,
		"method", req.Method,
		"chunk", req.Chunk,
		"elapsed", elapsed.Round(time.Millisecond))
}
