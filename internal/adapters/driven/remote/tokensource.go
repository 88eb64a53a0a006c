package remote

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/inklet-labs/marksync/internal/core/ports/driving"
)

// TokenSourceAdapter adapts a driving.TokenProvider to oauth2.TokenSource.
// This lets host SDK clients that speak oauth2 consume marksync-managed
// tokens without knowing about the token manager.
type TokenSourceAdapter struct {
	provider driving.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
func NewTokenSource(ctx context.Context, provider driving.TokenProvider) oauth2.TokenSource {
	return &TokenSourceAdapter{
		provider: provider,
		ctx:      ctx,
	}
}

// Token implements oauth2.TokenSource.
// Called by SDK clients when they need an access token.
func (t *TokenSourceAdapter) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
