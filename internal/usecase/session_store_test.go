package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/runoshun/tasker/internal/domain"
	"github.com/runoshun/tasker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSessionStore() (*SessionStore, *testutil.MockAuthAPI, *testutil.MockCredentialStore) {
	auth := &testutil.MockAuthAPI{}
	store := &testutil.MockCredentialStore{}
	s := NewSessionStore(auth, store, &testutil.MockClock{NowTime: testNow}, nil)
	return s, auth, store
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionStore_InitialState(t *testing.T) {
	s, _, _ := newTestSessionStore()

	snap := s.Snapshot()
	assert.Equal(t, domain.SessionInitializing, snap.Status)
	assert.Empty(t, snap.Credential)
	assert.Nil(t, snap.Identity)
	assert.Equal(t, domain.RouteLoading, domain.GuardRoute(s.Status()))
}

func TestSessionStore_Login_Success(t *testing.T) {
	s, auth, store := newTestSessionStore()
	auth.LoginResult = &domain.LoginResult{
		Token:    "tok",
		Identity: domain.Identity{ID: 1, Name: "Ann", Email: "a@b.com"},
	}

	err := s.Login(context.Background(), domain.LoginInput{Email: " a@b.com ", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", auth.LastLogin.Email)
	assert.Equal(t, domain.SessionAuthenticated, s.Status())
	assert.Equal(t, "tok", s.Credential())
	assert.Equal(t, &domain.Identity{ID: 1, Name: "Ann", Email: "a@b.com"}, s.Identity())
	require.NotNil(t, store.Stored)
	assert.Equal(t, "tok", store.Stored.Token)
	assert.Equal(t, "Ann", store.Stored.Identity.Name)
	assert.Equal(t, domain.RouteProtected, domain.GuardRoute(s.Status()))
}

func TestSessionStore_Login_Failure(t *testing.T) {
	tests := []struct {
		err     error
		name    string
		message string
	}{
		{&domain.TransportError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}, "server message", "Invalid credentials"},
		{&domain.TransportError{StatusCode: http.StatusBadRequest}, "no server message", "login failed"},
		{&domain.NetworkError{Err: errors.New("connection refused")}, "network", domain.NetworkErrorMessage},
		{errors.New("login response has no token"), "other", "login response has no token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, auth, store := newTestSessionStore()
			require.NoError(t, s.Restore())
			auth.LoginErr = tt.err

			err := s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "bad"})

			var authErr *domain.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.message, authErr.Message)
			assert.Equal(t, domain.SessionUnauthenticated, s.Status())
			assert.Empty(t, s.Credential())
			assert.Nil(t, s.Identity())
			assert.Equal(t, 0, store.SaveCalls)
		})
	}
}

func TestSessionStore_Login_SaveFailureKeepsSession(t *testing.T) {
	s, auth, store := newTestSessionStore()
	auth.LoginResult = &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}
	store.SaveErr = assert.AnError

	err := s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, domain.SessionAuthenticated, s.Status())
}

// slowCredentialStore blocks Save until release is closed.
type slowCredentialStore struct {
	testutil.MockCredentialStore
	saving  chan struct{}
	release chan struct{}
}

func (s *slowCredentialStore) Save(cred domain.StoredCredential) error {
	close(s.saving)
	<-s.release
	return s.MockCredentialStore.Save(cred)
}

func TestSessionStore_Login_ReadsDoNotWaitForSave(t *testing.T) {
	auth := &testutil.MockAuthAPI{LoginResult: &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}}
	store := &slowCredentialStore{saving: make(chan struct{}), release: make(chan struct{})}
	s := NewSessionStore(auth, store, &testutil.MockClock{NowTime: testNow}, nil)

	loggedIn := make(chan error, 1)
	go func() { loggedIn <- s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}) }()
	<-store.saving

	read := make(chan string, 1)
	go func() { read <- s.Credential() }()
	select {
	case got := <-read:
		assert.Equal(t, "tok", got)
	case <-time.After(time.Second):
		t.Fatal("Credential blocked while the credential was being saved")
	}
	assert.Equal(t, domain.SessionAuthenticated, s.Status())

	close(store.release)
	require.NoError(t, <-loggedIn)
	require.NotNil(t, store.Stored)
	assert.Equal(t, "tok", store.Stored.Token)
}

func TestSessionStore_LogoutDuringSaveLeavesStorageCleared(t *testing.T) {
	auth := &testutil.MockAuthAPI{LoginResult: &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}}
	store := &slowCredentialStore{saving: make(chan struct{}), release: make(chan struct{})}
	s := NewSessionStore(auth, store, &testutil.MockClock{NowTime: testNow}, nil)

	loggedIn := make(chan error, 1)
	go func() { loggedIn <- s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}) }()
	<-store.saving

	loggedOut := make(chan error, 1)
	go func() { loggedOut <- s.Logout() }()
	close(store.release)

	require.NoError(t, <-loggedIn)
	require.NoError(t, <-loggedOut)
	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
	assert.Nil(t, store.Stored, "the later logout wins in storage too")
}

func TestSessionStore_Register(t *testing.T) {
	s, auth, _ := newTestSessionStore()

	err := s.Register(context.Background(), domain.RegisterInput{Name: " Ann ", Email: "a@b.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, 1, auth.RegisterCalls)
	assert.Equal(t, "Ann", auth.LastRegister.Name)
	// Registering does not log in
	assert.Empty(t, s.Credential())
	assert.NotEqual(t, domain.SessionAuthenticated, s.Status())
}

func TestSessionStore_Register_Failure(t *testing.T) {
	s, auth, _ := newTestSessionStore()
	auth.RegisterErr = &domain.TransportError{StatusCode: http.StatusBadRequest, Message: "Email already exists"}

	err := s.Register(context.Background(), domain.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "pw"})

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Email already exists", authErr.Message)
}

func TestSessionStore_Register_NetworkFailure(t *testing.T) {
	s, auth, _ := newTestSessionStore()
	auth.RegisterErr = &domain.NetworkError{Err: context.DeadlineExceeded}

	err := s.Register(context.Background(), domain.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "pw"})

	assert.EqualError(t, err, domain.NetworkErrorMessage)
}

func TestSessionStore_Logout(t *testing.T) {
	s, auth, store := newTestSessionStore()
	auth.LoginResult = &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}
	require.NoError(t, s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}))

	require.NoError(t, s.Logout())

	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
	assert.Empty(t, s.Credential())
	assert.Nil(t, s.Identity())
	assert.Nil(t, store.Stored)

	// Idempotent
	require.NoError(t, s.Logout())
	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
}

func TestSessionStore_Logout_StorageFailureStillClearsSession(t *testing.T) {
	s, auth, store := newTestSessionStore()
	auth.LoginResult = &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}
	require.NoError(t, s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}))
	store.ClearErr = assert.AnError

	err := s.Logout()

	assert.Error(t, err)
	assert.Empty(t, s.Credential())
	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
}

func TestSessionStore_Restore_NoCredential(t *testing.T) {
	s, _, _ := newTestSessionStore()

	require.NoError(t, s.Restore())

	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
	assert.Equal(t, domain.RouteLogin, domain.GuardRoute(s.Status()))
}

func TestSessionStore_Restore_StoredCredential(t *testing.T) {
	s, _, store := newTestSessionStore()
	store.Stored = &domain.StoredCredential{
		Token:    "opaque-token",
		Identity: &domain.Identity{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}

	require.NoError(t, s.Restore())

	assert.Equal(t, domain.SessionAuthenticated, s.Status())
	assert.Equal(t, "opaque-token", s.Credential())
	assert.Equal(t, "Bob", s.Identity().Name)
}

func TestSessionStore_Restore_IdentityFromTokenSubject(t *testing.T) {
	tests := []struct {
		sub  any
		name string
	}{
		{"7", "string subject"},
		{7, "numeric subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, store := newTestSessionStore()
			store.Stored = &domain.StoredCredential{
				Token: signToken(t, jwt.MapClaims{"sub": tt.sub, "exp": testNow.Add(time.Hour).Unix()}),
			}

			require.NoError(t, s.Restore())

			assert.Equal(t, domain.SessionAuthenticated, s.Status())
			require.NotNil(t, s.Identity())
			assert.Equal(t, 7, s.Identity().ID)
		})
	}
}

func TestSessionStore_Restore_ExpiredToken(t *testing.T) {
	s, _, store := newTestSessionStore()
	store.Stored = &domain.StoredCredential{
		Token:    signToken(t, jwt.MapClaims{"sub": "1", "exp": testNow.Add(-time.Minute).Unix()}),
		Identity: &domain.Identity{ID: 1},
	}

	require.NoError(t, s.Restore())

	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
	assert.Empty(t, s.Credential())
	assert.Nil(t, store.Stored)
	assert.Equal(t, 1, store.ClearCalls)
}

func TestSessionStore_Restore_LoadError(t *testing.T) {
	s, _, store := newTestSessionStore()
	store.LoadErr = assert.AnError

	err := s.Restore()

	assert.Error(t, err)
	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
}

func TestSessionStore_Restore_RunsOnce(t *testing.T) {
	s, _, store := newTestSessionStore()

	require.NoError(t, s.Restore())
	store.Stored = &domain.StoredCredential{Token: "late"}
	require.NoError(t, s.Restore())

	assert.Equal(t, 1, store.LoadCalls)
	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
}

func TestSessionStore_Restore_AfterLoginIsNoop(t *testing.T) {
	s, auth, store := newTestSessionStore()
	auth.LoginResult = &domain.LoginResult{Token: "fresh", Identity: domain.Identity{ID: 1}}
	require.NoError(t, s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}))
	store.Stored = &domain.StoredCredential{Token: "stale"}

	require.NoError(t, s.Restore())

	assert.Equal(t, "fresh", s.Credential())
	assert.Equal(t, 0, store.LoadCalls)
}

func TestSessionStore_Invalidate(t *testing.T) {
	logger := &testutil.MockLogger{}
	auth := &testutil.MockAuthAPI{LoginResult: &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}}
	store := &testutil.MockCredentialStore{}
	s := NewSessionStore(auth, store, nil, logger)
	require.NoError(t, s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}))

	s.Invalidate("Token has expired")

	assert.Equal(t, domain.SessionUnauthenticated, s.Status())
	assert.Empty(t, s.Credential())
	assert.Nil(t, store.Stored)
	assert.Equal(t, 1, logger.Count("WARN"))

	// No-op when already unauthenticated
	s.Invalidate("again")
	assert.Equal(t, 1, logger.Count("WARN"))
}

func TestSessionStore_SnapshotInvariant(t *testing.T) {
	s, auth, _ := newTestSessionStore()
	auth.LoginResult = &domain.LoginResult{Token: "tok", Identity: domain.Identity{ID: 1}}

	check := func() {
		snap := s.Snapshot()
		assert.Equal(t, snap.Credential != "", snap.IsAuthenticated())
		if !snap.IsAuthenticated() {
			assert.Nil(t, snap.Identity)
		}
	}

	check()
	require.NoError(t, s.Restore())
	check()
	require.NoError(t, s.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"}))
	check()
	s.Invalidate("expired")
	check()
}

func TestInspectToken(t *testing.T) {
	t.Run("opaque token", func(t *testing.T) {
		c := inspectToken("not-a-jwt")
		assert.Nil(t, c.expiresAt)
		assert.Zero(t, c.subjectID)
		assert.False(t, c.expired(&testutil.MockClock{NowTime: testNow}))
	})

	t.Run("token without exp never expires", func(t *testing.T) {
		c := inspectToken(signToken(t, jwt.MapClaims{"sub": "3"}))
		assert.Equal(t, 3, c.subjectID)
		assert.False(t, c.expired(&testutil.MockClock{NowTime: testNow}))
	})
}
