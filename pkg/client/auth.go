package client

import (
	"context"
	"strings"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
)

type authAPI interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*dto.TokenResponse, error)
	LoginGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context) error
}

type tokenKeeper interface {
	Save(token string) error
	Clear() error
}

// Authenticator signs users in and out and keeps the credential stores in
// step with the API.
type Authenticator struct {
	api     authAPI
	store   tokenKeeper
	session *OAuthSession
}

// NewAuthenticator builds an Authenticator. session may be nil when Google
// sign-in is unused.
func NewAuthenticator(api authAPI, store tokenKeeper, session *OAuthSession) *Authenticator {
	return &Authenticator{api: api, store: store, session: session}
}

// Register creates a password account once the confirmation matches.
func (a *Authenticator) Register(ctx context.Context, email, password, confirm string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return localError(KindValidationRejected, "Email and password are required.")
	}
	if password != confirm {
		return localError(KindValidationRejected, "Passwords do not match")
	}
	return a.api.Register(ctx, strings.TrimSpace(email), password)
}

// Login signs in with a password and returns the landing path.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", localError(KindValidationRejected, "Email and password are required.")
	}
	res, err := a.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return "", err
	}
	return a.finish(res)
}

// LoginGoogle exchanges a Google ID token and returns the landing path. The
// ID token stays in the OAuth session as a fallback credential.
func (a *Authenticator) LoginGoogle(ctx context.Context, idToken string) (string, error) {
	if strings.TrimSpace(idToken) == "" {
		return "", localError(KindValidationRejected, "Google sign-in did not return a token.")
	}
	res, err := a.api.LoginGoogle(ctx, idToken)
	if err != nil {
		return "", err
	}
	if a.session != nil {
		a.session.SetIDToken(idToken)
	}
	return a.finish(res)
}

// Logout ends the session on the API and forgets every local credential,
// even when the API call fails.
func (a *Authenticator) Logout(ctx context.Context) error {
	apiErr := a.api.Logout(ctx)
	if a.session != nil {
		a.session.Clear()
	}
	if err := a.store.Clear(); err != nil {
		return err
	}
	return apiErr
}

func (a *Authenticator) finish(res *dto.TokenResponse) (string, error) {
	if res.AccessToken == "" {
		return "", localError(KindRequestFailed, "No access token in response.")
	}
	if err := a.store.Save(res.AccessToken); err != nil {
		return "", &Error{Kind: KindRequestFailed, Detail: "Failed to store session.", Err: err}
	}
	return LandingPath(res), nil
}

// LandingPath picks the page to open after sign-in.
func LandingPath(res *dto.TokenResponse) string {
	role, err := models.ParseRole(res.Role)
	if err != nil {
		role = models.RoleUser
	}
	return landingFor(res.ProfileComplete, role)
}
