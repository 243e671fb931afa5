// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/runoshun/tasker/internal/domain"
)

// Ensure SessionStore can be handed to the synchronizer and the transport.
var _ domain.SessionHandle = (*SessionStore)(nil)

// SessionStore holds the credential and identity of the current user.
// It is the single writer of session state; all methods are safe for
// concurrent use. mu guards the in-memory state and is never held during
// storage I/O; persistMu orders storage writes with the state changes
// they follow.
// Fields are ordered to minimize memory padding.
type SessionStore struct {
	auth       domain.AuthAPI
	store      domain.CredentialStore
	clock      domain.Clock
	logger     domain.Logger
	identity   *domain.Identity
	credential string
	mu         sync.RWMutex
	persistMu  sync.Mutex
	status     domain.SessionStatus
	restored   bool
}

// NewSessionStore creates a SessionStore in the Initializing state.
func NewSessionStore(auth domain.AuthAPI, store domain.CredentialStore, clock domain.Clock, logger domain.Logger) *SessionStore {
	if clock == nil {
		clock = domain.RealClock{}
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &SessionStore{
		auth:   auth,
		store:  store,
		clock:  clock,
		logger: logger,
		status: domain.SessionInitializing,
	}
}

// Credential returns the current token, or "" when there is none.
func (s *SessionStore) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Status returns the current session status.
func (s *SessionStore) Status() domain.SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Identity returns a copy of the current identity, or nil.
func (s *SessionStore) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIdentity(s.identity)
}

// Snapshot returns a consistent copy of the session state.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Session{
		Identity:   copyIdentity(s.identity),
		Credential: s.credential,
		Status:     s.status,
	}
}

// Restore resolves the Initializing state from the persisted credential.
// Only the first call has an effect. A stored JWT whose exp claim has passed
// is cleared and the session becomes Unauthenticated. A read failure also
// leaves the session Unauthenticated and is returned.
func (s *SessionStore) Restore() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return nil
	}
	s.restored = true
	if s.status != domain.SessionInitializing {
		// Login or logout already resolved the session.
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	// Login, Logout and Invalidate wait on persistMu, so the status stays
	// Initializing until the stored credential has been read.
	cred, err := s.store.Load()
	if err != nil {
		s.resolve("", nil)
		s.logger.Warn(0, "session", fmt.Sprintf("load credential: %v", err))
		return fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.Token == "" {
		s.resolve("", nil)
		s.logger.Debug(0, "session", "no stored credential")
		return nil
	}

	claims := inspectToken(cred.Token)
	if claims.expired(s.clock) {
		s.resolve("", nil)
		s.logger.Info(0, "session", "stored credential expired")
		if err := s.store.Clear(); err != nil {
			s.logger.Warn(0, "session", fmt.Sprintf("clear expired credential: %v", err))
		}
		return nil
	}

	identity := copyIdentity(cred.Identity)
	if identity == nil && claims.subjectID > 0 {
		identity = &domain.Identity{ID: claims.subjectID}
	}
	s.resolve(cred.Token, identity)
	s.logger.Info(0, "session", "restored stored credential")
	return nil
}

// resolve sets the state restored from storage. An empty token means Unauthenticated.
func (s *SessionStore) resolve(token string, identity *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" {
		s.setUnauthenticated()
		return
	}
	s.setAuthenticated(token, identity)
}

// Register creates an account. It does not establish a session.
func (s *SessionStore) Register(ctx context.Context, in domain.RegisterInput) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.auth.Register(ctx, in); err != nil {
		s.logger.Warn(0, "session", fmt.Sprintf("register %s failed: %v", in.Email, err))
		return toAuthError(err, "registration failed")
	}
	s.logger.Info(0, "session", fmt.Sprintf("registered %s", in.Email))
	return nil
}

// Login exchanges credentials for a token. On failure the session is untouched.
// A failure to persist the credential is logged; the session stays usable.
func (s *SessionStore) Login(ctx context.Context, in domain.LoginInput) error {
	in.Email = strings.TrimSpace(in.Email)
	res, err := s.auth.Login(ctx, in)
	if err != nil {
		s.logger.Warn(0, "session", fmt.Sprintf("login %s failed: %v", in.Email, err))
		return toAuthError(err, "login failed")
	}

	identity := res.Identity

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.restored = true
	s.setAuthenticated(res.Token, &identity)
	s.mu.Unlock()

	if err := s.store.Save(domain.StoredCredential{Token: res.Token, Identity: copyIdentity(&identity)}); err != nil {
		s.logger.Warn(0, "session", fmt.Sprintf("save credential: %v", err))
	}
	s.logger.Info(0, "session", fmt.Sprintf("logged in as %s", in.Email))
	return nil
}

// Logout clears the session and the persisted credential. It is idempotent.
// The in-memory session is always cleared; a storage failure is returned.
func (s *SessionStore) Logout() error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.restored = true
	s.setUnauthenticated()
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn(0, "session", fmt.Sprintf("clear credential: %v", err))
		return fmt.Errorf("clear credential: %w", err)
	}
	s.logger.Info(0, "session", "logged out")
	return nil
}

// Invalidate drops the credential after the server rejected it.
func (s *SessionStore) Invalidate(reason string) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.status != domain.SessionAuthenticated {
		s.mu.Unlock()
		return
	}
	s.restored = true
	s.setUnauthenticated()
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn(0, "session", fmt.Sprintf("clear credential: %v", err))
	}
	s.logger.Warn(0, "session", fmt.Sprintf("session invalidated: %s", reason))
}

// setAuthenticated must be called with s.mu held.
func (s *SessionStore) setAuthenticated(token string, identity *domain.Identity) {
	s.credential = token
	s.identity = identity
	s.status = domain.SessionAuthenticated
}

// setUnauthenticated must be called with s.mu held.
func (s *SessionStore) setUnauthenticated() {
	s.credential = ""
	s.identity = nil
	s.status = domain.SessionUnauthenticated
}

func copyIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

// toAuthError maps transport failures to the message shown to the user.
func toAuthError(err error, fallback string) error {
	if domain.IsNetworkError(err) {
		return &domain.AuthError{Message: domain.NetworkErrorMessage}
	}
	if tErr, ok := domain.AsTransportError(err); ok {
		if tErr.Message != "" {
			return &domain.AuthError{Message: tErr.Message}
		}
		return &domain.AuthError{Message: fallback}
	}
	return &domain.AuthError{Message: err.Error()}
}

// tokenClaims holds what the client reads from an unverified token.
type tokenClaims struct {
	expiresAt *jwt.NumericDate
	subjectID int
}

func (c tokenClaims) expired(clock domain.Clock) bool {
	return c.expiresAt != nil && !clock.Now().Before(c.expiresAt.Time)
}

// inspectToken reads exp and sub from a JWT without verifying it.
// Tokens that are not JWTs are treated as opaque and never expire.
func inspectToken(token string) tokenClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return tokenClaims{}
	}

	var out tokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil {
		out.expiresAt = exp
	}
	switch sub := claims["sub"].(type) {
	case string:
		if id, err := strconv.Atoi(sub); err == nil {
			out.subjectID = id
		}
	case float64:
		out.subjectID = int(sub)
	}
	return out
}
