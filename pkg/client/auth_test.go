package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/streetvoice-api/internal/dto"
)

type authAPIStub struct {
	registered []string
	token      *dto.TokenResponse
	err        error
	logoutErr  error
	logouts    int
	googleSeen string
}

func (s *authAPIStub) Register(ctx context.Context, email, password string) error {
	s.registered = append(s.registered, email)
	return s.err
}

func (s *authAPIStub) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	return s.token, s.err
}

func (s *authAPIStub) LoginGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error) {
	s.googleSeen = idToken
	return s.token, s.err
}

func (s *authAPIStub) Logout(ctx context.Context) error {
	s.logouts++
	return s.logoutErr
}

func TestAuthenticatorRegisterChecksConfirmation(t *testing.T) {
	api := &authAPIStub{}
	auth := NewAuthenticator(api, nil, nil)

	err := auth.Register(context.Background(), "a@b.c", "secret1", "secret2")
	assert.ErrorIs(t, err, ErrValidationRejected)
	assert.Equal(t, "Passwords do not match", DetailOr(err, ""))
	assert.Empty(t, api.registered)

	require.NoError(t, auth.Register(context.Background(), " a@b.c ", "secret1", "secret1"))
	assert.Equal(t, []string{"a@b.c"}, api.registered)
}

func TestAuthenticatorLandingPaths(t *testing.T) {
	cases := []struct {
		name string
		resp dto.TokenResponse
		want string
	}{
		{"incomplete profile", dto.TokenResponse{AccessToken: "t", ProfileComplete: false, Role: "Admin"}, PathProfile},
		{"admin", dto.TokenResponse{AccessToken: "t", ProfileComplete: true, Role: "Admin"}, PathAdminDashboard},
		{"citizen", dto.TokenResponse{AccessToken: "t", ProfileComplete: true, Role: "User"}, PathMain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := NewTokenStore("http://api.example.test", "")
			require.NoError(t, err)
			resp := tc.resp
			auth := NewAuthenticator(&authAPIStub{token: &resp}, store, nil)

			path, err := auth.Login(context.Background(), "a@b.c", "pw")
			require.NoError(t, err)
			assert.Equal(t, tc.want, path)

			token, ok := store.AccessToken()
			require.True(t, ok)
			assert.Equal(t, "t", token)
		})
	}
}

func TestAuthenticatorGoogleKeepsSession(t *testing.T) {
	store, err := NewTokenStore("http://api.example.test", "")
	require.NoError(t, err)
	session := &OAuthSession{}
	api := &authAPIStub{token: &dto.TokenResponse{AccessToken: "jwt", ProfileComplete: true, Role: "User"}}
	auth := NewAuthenticator(api, store, session)

	path, err := auth.LoginGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, PathMain, path)
	assert.Equal(t, "id-token", api.googleSeen)
	idToken, ok := session.IDToken()
	assert.True(t, ok)
	assert.Equal(t, "id-token", idToken)

	_, err = auth.LoginGoogle(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidationRejected)
}

func TestAuthenticatorLogoutClearsEvenOnAPIFailure(t *testing.T) {
	store, err := NewTokenStore("http://api.example.test", "")
	require.NoError(t, err)
	require.NoError(t, store.Save("jwt"))
	session := &OAuthSession{}
	session.SetIDToken("id-token")

	api := &authAPIStub{logoutErr: transportError(errors.New("offline"))}
	auth := NewAuthenticator(api, store, session)

	err = auth.Logout(context.Background())
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, api.logouts)
	_, ok := store.AccessToken()
	assert.False(t, ok)
	_, ok = session.IDToken()
	assert.False(t, ok)

	_, err = NewResolver(store, session).ResolveToken(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthenticatorLoginFailureStoresNothing(t *testing.T) {
	store, err := NewTokenStore("http://api.example.test", "")
	require.NoError(t, err)
	auth := NewAuthenticator(&authAPIStub{err: statusError(401, []byte(`{"detail":"Invalid credentials"}`))}, store, nil)

	_, err = auth.Login(context.Background(), "a@b.c", "wrong")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, "Invalid credentials", DetailOr(err, ""))
	_, ok := store.AccessToken()
	assert.False(t, ok)
}
