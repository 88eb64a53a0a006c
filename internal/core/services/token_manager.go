package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/inklet-labs/marksync/internal/core/domain"
	"github.com/inklet-labs/marksync/internal/core/ports/driven"
	"github.com/inklet-labs/marksync/internal/core/ports/driving"
	"github.com/inklet-labs/marksync/internal/logger"
)

// Ensure TokenManager implements the interface.
var _ driving.TokenProvider = (*TokenManager)(nil)

// TokenManager owns the credential lifecycle for one session.
//
// It tracks the credential's validity window, refreshes it through the
// injected exchanger when the skew window opens, and enforces a bounded
// retry budget for transient refresh failures. The session fails closed
// (credential deleted, ErrAuthRequired returned) only when the refresh
// token is rejected outright, or when the budget is exhausted while the
// access token is also genuinely expired. A transient blip never flaps a
// session whose access token is still good.
//
// Refreshes are single-flight: concurrent GetToken callers share one
// in-flight refresh and observe the same outcome. A waiter's cancellation
// abandons the wait without cancelling the shared refresh; only Close
// cancels it, leaving the credential and retry state untouched. Signing
// out (or in) while a refresh is in flight invalidates that refresh:
// its outcome is discarded when it lands, never applied to the new
// session state.
type TokenManager struct {
	cfg        Config
	store      driven.CredentialStore
	exchanger  driven.TokenExchanger
	authorizer driven.InteractiveAuthorizer
	clock      func() time.Time

	// lifeCtx bounds the shared refresh and persistence calls; it ends
	// when the owning session tears the manager down.
	lifeCtx context.Context
	stop    context.CancelFunc

	mu         sync.Mutex
	cred       *domain.Credential
	retryCount int
	inflight   *refreshCall

	// gen counts session transitions (sign-in, sign-out, restore). A
	// refresh dispatched under an older generation finds its session gone
	// and discards its outcome instead of applying it.
	gen uint64
}

// refreshCall is one shared in-flight refresh.
type refreshCall struct {
	done  chan struct{}
	gen   uint64
	token string
	err   error
}

// NewTokenManager creates a token manager. The authorizer may be nil for
// hosts that only ever restore a persisted credential.
func NewTokenManager(
	store driven.CredentialStore,
	exchanger driven.TokenExchanger,
	authorizer driven.InteractiveAuthorizer,
	cfg Config,
) *TokenManager {
	lifeCtx, stop := context.WithCancel(context.Background())
	return &TokenManager{
		cfg:        cfg.withDefaults(),
		store:      store,
		exchanger:  exchanger,
		authorizer: authorizer,
		clock:      time.Now,
		lifeCtx:    lifeCtx,
		stop:       stop,
	}
}

// Start restores a persisted credential, if one exists. A missing or
// malformed record leaves the session unauthenticated; that is not an
// error. A credential found already expired triggers an eager refresh
// attempt whose failure is handled by the normal retry policy.
func (m *TokenManager) Start(ctx context.Context) error {
	cred, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialNotFound) {
			logger.Warn("credential load failed, starting unauthenticated: %v", err)
		}
		return nil
	}

	m.mu.Lock()
	m.cred = cred
	m.retryCount = 0
	m.gen++
	expired := cred.IsExpiredAt(m.clock())
	m.mu.Unlock()

	logger.Info("credential restored (expires %s)", cred.ExpiresAt().Format(time.RFC3339))

	if expired {
		logger.Debug("restored credential already expired, refreshing eagerly")
		if _, err := m.GetToken(ctx); err != nil && !errors.Is(err, domain.ErrAuthRequired) {
			logger.Warn("eager refresh failed: %v", err)
		}
	}
	return nil
}

// SignIn runs the interactive authorization flow and exchanges the grant
// for a fresh credential, replacing any previous session state.
func (m *TokenManager) SignIn(ctx context.Context) error {
	if m.authorizer == nil {
		return fmt.Errorf("sign in: no interactive authorizer configured: %w", domain.ErrInvalidInput)
	}

	code, verifier, err := m.authorizer.ObtainGrant(ctx)
	if err != nil {
		return fmt.Errorf("obtain grant: %w", err)
	}

	cred, err := m.exchanger.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	m.mu.Lock()
	m.cred = cred
	m.retryCount = 0
	m.gen++
	m.mu.Unlock()

	if err := m.store.Save(ctx, *cred); err != nil {
		logger.Warn("persisting credential failed: %v", err)
	}
	return nil
}

// SignOut deletes the persisted credential and clears the session.
// Sign-out is final: a refresh still in flight at this point has its
// outcome discarded rather than resurrecting the session.
func (m *TokenManager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	m.cred = nil
	m.retryCount = 0
	m.gen++
	m.mu.Unlock()
	return m.store.Delete(ctx)
}

// Close tears the manager down. An in-flight refresh is cancelled and
// leaves the credential and retry count unchanged.
func (m *TokenManager) Close() {
	m.stop()
}

// IsAuthenticated reports whether the session currently holds a credential.
func (m *TokenManager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred != nil
}

// GetToken returns a usable access token, refreshing first when the skew
// window has opened. Safe for concurrent use; concurrent callers during a
// refresh share its outcome and exactly one network call is made.
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()

	if m.cred == nil {
		m.mu.Unlock()
		return "", domain.ErrAuthRequired
	}

	now := m.clock()
	if !m.cred.ShouldRefreshAt(now, m.cfg.RefreshSkew) {
		token := m.cred.AccessToken
		m.mu.Unlock()
		return token, nil
	}

	if !m.cred.HasRefreshToken() {
		// Nothing to refresh with: serve the token out to its expiry,
		// then fail closed.
		if !m.cred.IsExpiredAt(now) {
			token := m.cred.AccessToken
			m.mu.Unlock()
			return token, nil
		}
		m.signOutLocked("credential expired with no refresh token")
		m.mu.Unlock()
		return "", domain.ErrAuthRequired
	}

	call := m.inflight
	if call == nil {
		call = &refreshCall{done: make(chan struct{}), gen: m.gen}
		m.inflight = call
		go m.runRefresh(call, m.cred.RefreshToken)
	}
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		// The shared refresh keeps running for the other waiters.
		return "", ctx.Err()
	case <-call.done:
		return call.token, call.err
	}
}

// runRefresh performs one refresh call and applies its outcome to the
// session state. Runs under the manager's lifetime context so a single
// waiter's cancellation cannot abort it.
func (m *TokenManager) runRefresh(call *refreshCall, refreshToken string) {
	defer close(call.done)

	cred, err := m.exchanger.Refresh(m.lifeCtx, refreshToken)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight = nil

	if m.gen != call.gen {
		// The session was signed out or replaced while the refresh was
		// in flight. Its outcome belongs to a session that no longer
		// exists; applying it would resurrect a signed-out credential.
		logger.Debug("discarding refresh outcome for an ended session")
		call.err = domain.ErrAuthRequired
		return
	}

	switch {
	case err == nil:
		m.cred = cred
		m.retryCount = 0
		call.token = cred.AccessToken
		logger.Debug("refresh succeeded (expires %s)", cred.ExpiresAt().Format(time.RFC3339))
		if saveErr := m.store.Save(m.lifeCtx, *cred); saveErr != nil {
			logger.Warn("persisting refreshed credential failed: %v", saveErr)
		}

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Session teardown mid-refresh: no retry-count increment, no
		// credential change.
		call.err = err

	case domain.IsUnauthorized(err):
		// The refresh token itself was rejected. No retry budget applies.
		logger.Info("refresh token rejected, signing out")
		m.signOutLocked("refresh unauthorized")
		call.err = domain.ErrAuthRequired

	default:
		// The count saturates at the budget; while the old token is
		// unexpired, further failures cannot push the session out.
		if m.retryCount < m.cfg.RetryBudget {
			m.retryCount++
		}
		logger.Debug("refresh failed (attempt %d/%d): %v", m.retryCount, m.cfg.RetryBudget, err)
		if m.retryCount >= m.cfg.RetryBudget && m.cred.IsExpiredAt(m.clock()) {
			logger.Info("retry budget exhausted with expired credential, signing out")
			m.signOutLocked("retry budget exhausted")
			call.err = domain.ErrAuthRequired
			return
		}
		// The old access token is still the best credential we have;
		// keep the session authenticated and defer the next attempt.
		call.token = m.cred.AccessToken
	}
}

// signOutLocked clears the session and best-effort deletes the persisted
// credential. Caller holds m.mu.
func (m *TokenManager) signOutLocked(reason string) {
	m.cred = nil
	m.retryCount = 0
	m.gen++
	if err := m.store.Delete(m.lifeCtx); err != nil {
		logger.Warn("deleting persisted credential (%s) failed: %v", reason, err)
	}
}
