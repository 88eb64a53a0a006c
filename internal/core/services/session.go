package services

import (
	"context"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driving"
)

// Session is the composition root for one open document. It wires the
// token manager's output into the save engine's outbound calls: a save
// always runs behind a token validated by the same session's provider.
type Session struct {
	tokens driving.TokenProvider
	saver  driving.Saver
}

// NewSession creates a session over an authenticated token provider and a
// save engine.
func NewSession(tokens driving.TokenProvider, saver driving.Saver) *Session {
	return &Session{tokens: tokens, saver: saver}
}

// Token returns a usable access token for the host's own outbound calls
// (downloads, metadata reads).
func (s *Session) Token(ctx context.Context) (string, error) {
	return s.tokens.GetToken(ctx)
}

// Save validates the session's credential, refreshing it if due, then
// performs the save. This ordering guarantees the write goes out under
// the most recently validated token.
func (s *Session) Save(ctx context.Context, req domain.SaveRequest) (*domain.SaveResult, error) {
	if _, err := s.tokens.GetToken(ctx); err != nil {
		return nil, err
	}
	return s.saver.Save(ctx, req)
}
