package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/core/ports/driving"
	"github.com/inklet-labs/marksync/internal/logger"
)

// Ensure FileClient implements the interface.
var _ driven.FileStore = (*FileClient)(nil)

// FileEndpoint configures the host platform's file API.
type FileEndpoint struct {
	// BaseURL is the API root, e.g. "https://api.example.com/v1".
	BaseURL string
	// RateLimit tunes the client-side token bucket. Zero means default.
	RateLimit RateLimitConfig
}

// FileClient performs remote file writes over HTTP. Version preconditions
// travel as If-Match headers; each request is authorized with a token
// pulled from the provider at call time, so a save always goes out under
// the session's most recently validated token.
type FileClient struct {
	endpoint FileEndpoint
	tokens   driving.TokenProvider
	client   *http.Client
	limiter  *RateLimiter
}

// NewFileClient creates a file client. A nil httpClient gets a default
// with a 60 second timeout, generous enough for payload uploads on
// mobile links.
func NewFileClient(endpoint FileEndpoint, tokens driving.TokenProvider, httpClient *http.Client) *FileClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &FileClient{
		endpoint: endpoint,
		tokens:   tokens,
		client:   httpClient,
		limiter:  NewRateLimiter(endpoint.RateLimit),
	}
}

// Replace writes payload over the file identified by fileID. A non-empty
// ifMatch makes the write conditional on the remote version.
func (c *FileClient) Replace(ctx context.Context, fileID, ifMatch string, payload []byte) error {
	target := fmt.Sprintf("%s/files/%s/content", c.endpoint.BaseURL, url.PathEscape(fileID))
	return c.send(ctx, "replace", http.MethodPut, target, ifMatch, payload)
}

// CreateIn creates a new file named name inside folderID. Unconditional.
func (c *FileClient) CreateIn(ctx context.Context, folderID, name string, payload []byte) error {
	target := fmt.Sprintf("%s/folders/%s/files?name=%s",
		c.endpoint.BaseURL, url.PathEscape(folderID), url.QueryEscape(name))
	return c.send(ctx, "create", http.MethodPost, target, "", payload)
}

// send performs one write call and classifies the response.
func (c *FileClient) send(ctx context.Context, op, method, target, ifMatch string, payload []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/octet-stream")
	if ifMatch != "" {
		req.Header.Set("If-Match", ifMatch)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// The write outcome is unknown; surfaced as a local failure the
		// caller treats as transient, never as success.
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	outcome := domain.Classify(resp.StatusCode, resp.Header)
	if outcome.Kind == domain.OutcomeSuccess {
		return nil
	}
	if outcome.Kind == domain.OutcomeRateLimited {
		c.limiter.RecordRateLimitError(outcome.RetryAfter)
	}
	logger.Debug("file %s failed: %s (status %d)", op, outcome.Kind, outcome.StatusCode)
	return &domain.RemoteError{Op: op, Outcome: outcome}
}
