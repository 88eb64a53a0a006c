package authflow

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/logger"
)

var _ driven.InteractiveAuthorizer = (*BrowserAuthorizer)(nil)

// BrowserAuthorizer obtains an authorization grant by sending the user
// through the provider's consent page in their browser, with PKCE.
type BrowserAuthorizer struct {
	// AuthURL is the provider's authorization endpoint.
	AuthURL string
	// ClientID identifies this application to the provider.
	ClientID string
	// Scopes requested during authorization.
	Scopes []string
	// Port for the loopback callback server; 0 picks a free port.
	Port int

	// openURL launches the browser; replaceable in tests.
	openURL func(string) error
}

// NewBrowserAuthorizer creates a browser-based authorizer.
func NewBrowserAuthorizer(authURL, clientID string, scopes []string) *BrowserAuthorizer {
	return &BrowserAuthorizer{
		AuthURL:  authURL,
		ClientID: clientID,
		Scopes:   scopes,
		openURL:  OpenBrowser,
	}
}

// ObtainGrant runs one authorization round-trip: start the callback
// server, open the consent page, and wait for the redirect. The returned
// verifier must accompany the code exchange.
func (a *BrowserAuthorizer) ObtainGrant(ctx context.Context) (string, string, error) {
	state := uuid.NewString()

	server := NewCallbackServer(a.Port, state)
	if err := server.Start(); err != nil {
		return "", "", fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			logger.Warn("stopping callback server: %v", err)
		}
	}()

	verifier := oauth2.GenerateVerifier()
	cfg := oauth2.Config{
		ClientID:    a.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: a.AuthURL},
		RedirectURL: server.RedirectURI(),
		Scopes:      a.Scopes,
	}
	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	open := a.openURL
	if open == nil {
		open = OpenBrowser
	}
	if err := open(authURL); err != nil {
		// The flow can still complete if the user opens the URL manually.
		logger.Warn("opening browser: %v", err)
		logger.Info("open this URL to authorize: %s", authURL)
	}

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return "", "", err
	}
	return code, verifier, nil
}

// OpenBrowser opens the default browser to the given URL.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
