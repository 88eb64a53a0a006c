package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/logger"
)

// Ensure TokenClient implements the interface.
var _ driven.TokenExchanger = (*TokenClient)(nil)

// OAuthEndpoint configures the provider's token endpoint.
type OAuthEndpoint struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// TokenClient exchanges authorization grants and refresh tokens for
// credentials at the provider's token endpoint.
type TokenClient struct {
	endpoint OAuthEndpoint
	client   *http.Client
}

// NewTokenClient creates a token client. A nil httpClient gets a default
// with a 30 second timeout.
func NewTokenClient(endpoint OAuthEndpoint, httpClient *http.Client) *TokenClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenClient{endpoint: endpoint, client: httpClient}
}

// tokenResponse is the provider's token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
}

// ExchangeCode trades an authorization code for a fresh credential.
func (c *TokenClient) ExchangeCode(ctx context.Context, code, verifier string) (*domain.Credential, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", c.endpoint.ClientID)
	data.Set("code", code)
	data.Set("redirect_uri", c.endpoint.RedirectURI)
	if c.endpoint.ClientSecret != "" {
		data.Set("client_secret", c.endpoint.ClientSecret)
	}
	if verifier != "" {
		data.Set("code_verifier", verifier)
	}

	return c.post(ctx, "exchange", data, "")
}

// Refresh trades a refresh token for a fresh credential. When the
// provider omits a rotated refresh token from the response, the supplied
// one is carried forward.
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", c.endpoint.ClientID)
	if c.endpoint.ClientSecret != "" {
		data.Set("client_secret", c.endpoint.ClientSecret)
	}

	return c.post(ctx, "refresh", data, refreshToken)
}

// post performs one token-endpoint call and parses the credential.
func (c *TokenClient) post(ctx context.Context, op string, data url.Values, fallbackRefresh string) (*domain.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	outcome := domain.Classify(resp.StatusCode, resp.Header)
	if outcome.Kind != domain.OutcomeSuccess {
		logger.Debug("token %s failed: %s", op, outcome.Kind)
		return nil, &domain.RemoteError{Op: op, Outcome: outcome}
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, domain.ErrMalformedResponse)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("%s: response missing access token: %w", op, domain.ErrMalformedResponse)
	}

	refresh := parsed.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	kind := parsed.TokenType
	if kind == "" {
		kind = "Bearer"
	}

	cred := domain.NewCredential(parsed.AccessToken, refresh, kind, parsed.Scope, parsed.ExpiresIn)
	return &cred, nil
}
