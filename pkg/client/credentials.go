package client

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// AccessTokenCookie names the cookie the password-login token is kept in.
const AccessTokenCookie = "access_token"

// CredentialProvider yields the bearer token for an authorized call. It
// returns an error matching ErrUnauthenticated when no credential exists.
type CredentialProvider interface {
	ResolveToken(ctx context.Context) (string, error)
}

// StaticToken is a fixed credential. The empty token is unauthenticated.
type StaticToken string

// ResolveToken implements CredentialProvider.
func (t StaticToken) ResolveToken(context.Context) (string, error) {
	if t == "" {
		return "", ErrUnauthenticated
	}
	return string(t), nil
}

type sessionFile struct {
	AccessToken string    `yaml:"access_token"`
	SavedAt     time.Time `yaml:"saved_at"`
}

// TokenStore keeps the access token in a cookie jar scoped to the API origin
// and mirrors it to a YAML file so it survives restarts.
type TokenStore struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	origin *url.URL
	path   string
}

// NewTokenStore builds a store for the API at baseURL. An empty path keeps the
// token in memory only. A token already saved at path is loaded into the jar.
func NewTokenStore(baseURL, path string) (*TokenStore, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	s := &TokenStore{jar: jar, origin: &url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: "/"}, path: path}

	saved, err := s.readFile()
	if err != nil {
		return nil, err
	}
	if saved.AccessToken != "" {
		s.setCookie(saved.AccessToken, 0)
	}
	return s, nil
}

// Jar is the cookie jar to install on the HTTP client.
func (s *TokenStore) Jar() http.CookieJar {
	if s == nil {
		return nil
	}
	return s.jar
}

// AccessToken returns the token held in the cookie jar.
func (s *TokenStore) AccessToken() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.jar.Cookies(s.origin) {
		if c.Name == AccessTokenCookie && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// Save stores the token in the jar and the session file.
func (s *TokenStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCookie(token, 0)
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(sessionFile{AccessToken: token, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the token from the jar and deletes the session file.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCookie("", -1)
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *TokenStore) setCookie(value string, maxAge int) {
	s.jar.SetCookies(s.origin, []*http.Cookie{{
		Name:   AccessTokenCookie,
		Value:  value,
		Path:   "/",
		MaxAge: maxAge,
	}})
}

func (s *TokenStore) readFile() (sessionFile, error) {
	var saved sessionFile
	if s.path == "" {
		return saved, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return saved, nil
		}
		return saved, fmt.Errorf("read session file: %w", err)
	}
	if err := yaml.Unmarshal(data, &saved); err != nil {
		return saved, fmt.Errorf("decode session file: %w", err)
	}
	return saved, nil
}

// OAuthSession holds the identity token of an active Google sign-in.
type OAuthSession struct {
	mu      sync.RWMutex
	idToken string
}

// IDToken returns the session identity token.
func (s *OAuthSession) IDToken() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idToken, s.idToken != ""
}

// SetIDToken records the identity token issued by the provider.
func (s *OAuthSession) SetIDToken(token string) {
	s.mu.Lock()
	s.idToken = token
	s.mu.Unlock()
}

// Clear ends the session.
func (s *OAuthSession) Clear() {
	s.SetIDToken("")
}

type accessTokenSource interface {
	AccessToken() (string, bool)
}

type identityTokenSource interface {
	IDToken() (string, bool)
}

// Resolver prefers the stored access token and falls back to the OAuth
// session identity token.
type Resolver struct {
	store   accessTokenSource
	session identityTokenSource
}

// NewResolver builds a resolver. Either source may be nil.
func NewResolver(store accessTokenSource, session identityTokenSource) *Resolver {
	return &Resolver{store: store, session: session}
}

// ResolveToken implements CredentialProvider.
func (r *Resolver) ResolveToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.store != nil {
		if token, ok := r.store.AccessToken(); ok {
			return token, nil
		}
	}
	if r.session != nil {
		if token, ok := r.session.IDToken(); ok {
			return token, nil
		}
	}
	return "", ErrUnauthenticated
}
