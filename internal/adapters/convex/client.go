package convex

// Package convex is a small client for the hosted document database's HTTP function API.
// It backs the external user store and the read/storage routes the HTTP layer proxies.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stepperslife/tickets/internal/domain/usersync"
	"github.com/stepperslife/tickets/internal/ports"
)

// Function paths invoked by this client.
const (
	fnUpdateUser        = "users:updateUser"
	fnGetEvents         = "events:get"
	fnGetTicketByID     = "tickets:getTicketById"
	fnGenerateUploadURL = "storage:generateUploadUrl"
	fnGetStorageURL     = "storage:getUrl"
)

const (
	kindQuery    = "query"
	kindMutation = "mutation"

	maxResponseBytes = 4 << 20
)

var (
	_ ports.UserStore     = (*Client)(nil)
	_ ports.DocumentStore = (*Client)(nil)
)

// Config configures the client.
type Config struct {
	// URL is the deployment URL, e.g. https://happy-otter-123.convex.cloud.
	URL string
	// DeployKey, when set, authorizes calls as the deployment admin.
	DeployKey string
	Timeout   time.Duration
	Client    *http.Client
}

// Client calls deployment functions over HTTP.
type Client struct {
	baseURL   string
	deployKey string
	client    *http.Client
}

// FunctionError is returned when the deployment reports a function failure.
type FunctionError struct {
	Path    string
	Message string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("convex %s: %s", e.Path, e.Message)
}

// NewClient builds a client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("convex url is required")
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:   base,
		deployKey: strings.TrimSpace(cfg.DeployKey),
		client:    hc,
	}, nil
}

type callRequest struct {
	Path   string `json:"path"`
	Args   any    `json:"args"`
	Format string `json:"format"`
}

type callResponse struct {
	Status       string          `json:"status"`
	Value        json.RawMessage `json:"value"`
	ErrorMessage string          `json:"errorMessage"`
}

// UpsertUser creates or updates the user keyed by rec.ExternalUserID.
func (c *Client) UpsertUser(ctx context.Context, rec usersync.SyncRecord) error {
	if rec.ExternalUserID == "" {
		return errors.New("user id is required")
	}
	_, err := c.call(ctx, kindMutation, fnUpdateUser, rec)
	return err
}

// Events lists published events.
func (c *Client) Events(ctx context.Context) (json.RawMessage, error) {
	return c.call(ctx, kindQuery, fnGetEvents, struct{}{})
}

// TicketByID returns the ticket document, or nil when the deployment returns null.
func (c *Client) TicketByID(ctx context.Context, id string) (json.RawMessage, error) {
	v, err := c.call(ctx, kindQuery, fnGetTicketByID, map[string]string{"ticketId": id})
	if err != nil {
		return nil, err
	}
	if isNull(v) {
		return nil, nil
	}
	return v, nil
}

// GenerateUploadURL asks the deployment for a short-lived upload URL.
func (c *Client) GenerateUploadURL(ctx context.Context) (string, error) {
	v, err := c.call(ctx, kindMutation, fnGenerateUploadURL, struct{}{})
	if err != nil {
		return "", err
	}
	return decodeString(fnGenerateUploadURL, v)
}

// StorageURL resolves a storage id. An unknown id yields "".
func (c *Client) StorageURL(ctx context.Context, storageID string) (string, error) {
	v, err := c.call(ctx, kindQuery, fnGetStorageURL, map[string]string{"storageId": storageID})
	if err != nil {
		return "", err
	}
	return decodeString(fnGetStorageURL, v)
}

func (c *Client) call(ctx context.Context, kind, path string, args any) (json.RawMessage, error) {
	body, err := json.Marshal(callRequest{Path: path, Args: args, Format: "json"})
	if err != nil {
		return nil, fmt.Errorf("encode convex %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/"+kind, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create convex request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.deployKey != "" {
		req.Header.Set("Authorization", "Convex "+c.deployKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("convex %s request failed: %w", path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read convex %s response: %w", path, err)
	}

	var out callResponse
	if decodeErr := json.Unmarshal(raw, &out); decodeErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("convex %s: status %d: %s", path, resp.StatusCode, snippet(raw))
		}
		return nil, fmt.Errorf("decode convex %s response: %w", path, decodeErr)
	}

	if out.Status != "success" {
		msg := out.ErrorMessage
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, &FunctionError{Path: path, Message: msg}
	}
	return out.Value, nil
}

func isNull(v json.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeString(path string, v json.RawMessage) (string, error) {
	if isNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("decode convex %s value: %w", path, err)
	}
	return s, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
