// Package gateway is the async boundary to the remote record service. Each
// operation is single-shot: no retry, no caching, typed errors on failure.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edutrack-app/edutrack-bff/pkg/config"
	appErrors "github.com/edutrack-app/edutrack-bff/pkg/errors"
)

const defaultPageLimit = 100

// Client calls the record service wire contract for a named collection.
type Client struct {
	baseURL   string
	projectID string
	publicKey string
	http      *http.Client
	pageLimit int
	logger    *zap.Logger
	observe   func(operation, collection string, d time.Duration, err error)
}

// Option customises a Client.
type Option func(*Client)

// WithObserver wires round-trip instrumentation.
func WithObserver(fn func(operation, collection string, d time.Duration, err error)) Option {
	return func(c *Client) { c.observe = fn }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient constructs a record service client from configuration.
func NewClient(cfg config.RecordHubConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	client := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		projectID: cfg.ProjectID,
		publicKey: cfg.PublicKey,
		http:      &http.Client{Timeout: timeout},
		pageLimit: limit,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type fetchResponse struct {
	Data []map[string]interface{} `json:"data"`
}

type mutationResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
	Message string                 `json:"message"`
}

type deleteRequest struct {
	RecordIDs []int `json:"RecordIds"`
}

// List fetches the records matching the query. On failure the caller must
// leave its previous store contents untouched.
func (c *Client) List(ctx context.Context, collection string, q ListQuery) ([]map[string]interface{}, error) {
	params := buildParams(q, c.pageLimit)
	var result fetchResponse
	if err := c.post(ctx, "fetchRecords", collection, params, &result); err != nil {
		return nil, c.asFetchError(err)
	}
	return result.Data, nil
}

// Create submits a new record and returns it with its server-assigned Id.
func (c *Client) Create(ctx context.Context, collection string, fields map[string]interface{}) (map[string]interface{}, error) {
	var result mutationResponse
	if err := c.post(ctx, "createRecord", collection, fields, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, appErrors.Clone(appErrors.ErrValidation, firstNonEmpty(result.Message, "failed to create record"))
	}
	return result.Data, nil
}

// Update modifies the record identified by fields["Id"]. A missing target
// surfaces as NOT_FOUND so the caller can decide how to reconcile.
func (c *Client) Update(ctx context.Context, collection string, fields map[string]interface{}) (map[string]interface{}, error) {
	var result mutationResponse
	if err := c.post(ctx, "updateRecord", collection, fields, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, appErrors.Clone(appErrors.ErrValidation, firstNonEmpty(result.Message, "failed to update record"))
	}
	return result.Data, nil
}

// Delete removes one record. Deleting an already-deleted record surfaces
// NOT_FOUND distinctly; the controller treats that as success for UI
// purposes.
func (c *Client) Delete(ctx context.Context, collection string, id int) error {
	var result mutationResponse
	if err := c.post(ctx, "deleteRecord", collection, deleteRequest{RecordIDs: []int{id}}, &result); err != nil {
		return err
	}
	if !result.Success {
		return appErrors.Clone(appErrors.ErrTransport, firstNonEmpty(result.Message, "failed to delete record"))
	}
	return nil
}

func (c *Client) post(ctx context.Context, operation, collection string, payload, dest interface{}) error {
	start := time.Now()
	err := c.doPost(ctx, operation, collection, payload, dest)
	if c.observe != nil {
		c.observe(operation, collection, time.Since(start), err)
	}
	return err
}

func (c *Client) doPost(ctx context.Context, operation, collection string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request")
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, operation, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.projectID != "" {
		req.Header.Set("X-Project-Id", c.projectID)
	}
	if c.publicKey != "" {
		req.Header.Set("X-Public-Key", c.publicKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "record service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "read response")
	}

	if resp.StatusCode >= 400 {
		return c.statusError(resp.StatusCode, raw)
	}

	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "decode response")
		}
	}
	return nil
}

func (c *Client) statusError(status int, raw []byte) error {
	message := serverMessage(raw)
	switch {
	case status == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, firstNonEmpty(message, "record not found"))
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, firstNonEmpty(message, "record service rejected the request"))
	default:
		return appErrors.Clone(appErrors.ErrTransport, firstNonEmpty(message, fmt.Sprintf("record service returned status %d", status)))
	}
}

// asFetchError rebrands list() failures so the caller can distinguish a
// failed page load from a failed mutation.
func (c *Client) asFetchError(err error) error {
	appErr := appErrors.FromError(err)
	return appErrors.Wrap(appErr.Err, appErrors.ErrFetch.Code, appErrors.ErrFetch.Status, appErr.Message)
}

func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Message
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
