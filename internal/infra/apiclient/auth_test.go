package apiclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/runoshun/tasker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_Login(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"access_token field", `{"access_token":"abc","user":{"id":1,"name":"Ann","email":"a@b.com"}}`},
		{"token field", `{"token":"abc","user":{"id":1,"name":"Ann","email":"a@b.com"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, reqs := newFakeServer(t, http.StatusOK, tt.body)
			c := NewAuthClient(New(srv.URL+"/api", time.Second, nil, nil))

			res, err := c.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"})

			require.NoError(t, err)
			assert.Equal(t, "abc", res.Token)
			assert.Equal(t, domain.Identity{ID: 1, Name: "Ann", Email: "a@b.com"}, res.Identity)
			assert.Equal(t, "/api/auth/login", (*reqs)[0].Path)
			assert.JSONEq(t, `{"email":"a@b.com","password":"pw"}`, (*reqs)[0].Body)
		})
	}
}

func TestAuthClient_Login_NoToken(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `{"user":{"id":1}}`)
	c := NewAuthClient(New(srv.URL, time.Second, nil, nil))

	_, err := c.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "pw"})

	assert.Error(t, err)
}

func TestAuthClient_Login_InvalidCredentials(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
	c := NewAuthClient(New(srv.URL, time.Second, nil, nil))

	_, err := c.Login(context.Background(), domain.LoginInput{Email: "a@b.com", Password: "bad"})

	tErr, ok := domain.AsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", tErr.Message)
}

func TestAuthClient_Register(t *testing.T) {
	srv, reqs := newFakeServer(t, http.StatusCreated, `{"message":"User created successfully"}`)
	c := NewAuthClient(New(srv.URL, time.Second, nil, nil))

	err := c.Register(context.Background(), domain.RegisterInput{Name: "Ann", Email: "a@b.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "/auth/register", (*reqs)[0].Path)
	assert.JSONEq(t, `{"name":"Ann","email":"a@b.com","password":"pw"}`, (*reqs)[0].Body)
}
