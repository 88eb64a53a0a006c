package driven

import (
	"context"

	"github.com/inklet-labs/marksync/internal/core/domain"
)

// TokenExchanger performs the provider's token-endpoint calls.
// Remote failures surface as *domain.RemoteError carrying the classified
// outcome; unparseable responses surface wrapping
// domain.ErrMalformedResponse; local transport failures surface as-is.
type TokenExchanger interface {
	// ExchangeCode trades an authorization code (plus its PKCE verifier)
	// for a freshly issued credential.
	ExchangeCode(ctx context.Context, code, verifier string) (*domain.Credential, error)

	// Refresh trades a refresh token for a freshly issued credential.
	// When the provider omits a rotated refresh token from the response,
	// the implementation carries the supplied one forward.
	Refresh(ctx context.Context, refreshToken string) (*domain.Credential, error)
}

// FileStore performs remote file writes. The wire format is owned by the
// host platform's remote API; implementations translate these calls and
// classify every non-2xx response via domain.Classify.
type FileStore interface {
	// Replace writes payload over the file identified by fileID.
	// A non-empty ifMatch makes the write conditional on the remote
	// version matching; empty performs an unconditional overwrite.
	Replace(ctx context.Context, fileID, ifMatch string, payload []byte) error

	// CreateIn creates a new file named name inside folderID.
	// The create is unconditional.
	CreateIn(ctx context.Context, folderID, name string, payload []byte) error
}
