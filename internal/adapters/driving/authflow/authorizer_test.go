package authflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completeFlow pretends to be the user's browser: it parses the consent
// URL and immediately redirects back to the loopback server with a code.
func completeFlow(t *testing.T, code string) func(string) error {
	t.Helper()
	return func(authURL string) error {
		parsed, err := url.Parse(authURL)
		require.NoError(t, err)

		q := parsed.Query()
		redirect := q.Get("redirect_uri")
		state := q.Get("state")
		require.NotEmpty(t, redirect)
		require.NotEmpty(t, state)

		go func() {
			resp, err := http.Get(fmt.Sprintf("%s?code=%s&state=%s", redirect, code, state))
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
}

// Test a full grant round-trip: the consent URL carries PKCE and state,
// and the returned verifier matches the challenge's source.
func TestBrowserAuthorizer_ObtainGrant(t *testing.T) {
	auth := NewBrowserAuthorizer("https://login.example.com/authorize", "client-1", []string{"files.readwrite"})

	var seenURL string
	auth.openURL = func(u string) error {
		seenURL = u
		return completeFlow(t, "auth-code-1")(u)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, verifier, err := auth.ObtainGrant(ctx)

	require.NoError(t, err)
	assert.Equal(t, "auth-code-1", code)
	assert.NotEmpty(t, verifier)

	parsed, err := url.Parse(seenURL)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.NotEmpty(t, q.Get("state"))
}

// Test that each grant attempt uses a fresh state and verifier.
func TestBrowserAuthorizer_FreshStatePerAttempt(t *testing.T) {
	auth := NewBrowserAuthorizer("https://login.example.com/authorize", "client-1", nil)

	var states []string
	auth.openURL = func(u string) error {
		parsed, err := url.Parse(u)
		require.NoError(t, err)
		states = append(states, parsed.Query().Get("state"))
		return completeFlow(t, "auth-code")(u)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, firstVerifier, err := auth.ObtainGrant(ctx)
	require.NoError(t, err)
	_, secondVerifier, err := auth.ObtainGrant(ctx)
	require.NoError(t, err)

	require.Len(t, states, 2)
	assert.NotEqual(t, states[0], states[1])
	assert.NotEqual(t, firstVerifier, secondVerifier)
}

// Test that a cancelled context aborts a flow the user never completes.
func TestBrowserAuthorizer_Cancelled(t *testing.T) {
	auth := NewBrowserAuthorizer("https://login.example.com/authorize", "client-1", nil)
	auth.openURL = func(string) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := auth.ObtainGrant(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

// Test that a browser launch failure does not abort the flow; the user
// can still open the printed URL by hand.
func TestBrowserAuthorizer_BrowserFailureNonFatal(t *testing.T) {
	auth := NewBrowserAuthorizer("https://login.example.com/authorize", "client-1", nil)

	auth.openURL = func(u string) error {
		// Fail the launch, but complete the flow out of band.
		require.NoError(t, completeFlow(t, "auth-code-2")(u))
		return fmt.Errorf("no browser available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, _, err := auth.ObtainGrant(ctx)

	require.NoError(t, err)
	assert.Equal(t, "auth-code-2", code)
}
