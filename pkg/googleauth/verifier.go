package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken covers every reason an ID token is not accepted.
var ErrInvalidToken = errors.New("invalid google id token")

var validIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// Identity is the verified subset of the ID token claims.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier validates Google ID tokens through the tokeninfo endpoint.
type Verifier struct {
	endpoint string
	clientID string
	http     *http.Client
	now      func() time.Time
}

// NewVerifier builds a verifier. An empty clientID disables the audience check.
func NewVerifier(endpoint, clientID string, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Verifier{endpoint: endpoint, clientID: clientID, http: &http.Client{Timeout: timeout}, now: time.Now}
}

type tokenInfo struct {
	Aud           string `json:"aud"`
	Iss           string `json:"iss"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Exp           string `json:"exp"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify checks the token with Google and returns the caller identity.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, fmt.Errorf("build tokeninfo request: %w", err)
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrInvalidToken, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode tokeninfo: %v", ErrInvalidToken, err)
	}
	if err := v.check(info); err != nil {
		return nil, err
	}

	return &Identity{
		Subject: info.Sub,
		Email:   strings.ToLower(info.Email),
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

func (v *Verifier) check(info tokenInfo) error {
	if _, ok := validIssuers[info.Iss]; !ok {
		return fmt.Errorf("%w: issuer %q", ErrInvalidToken, info.Iss)
	}
	if v.clientID != "" && info.Aud != v.clientID {
		return fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}
	exp, err := strconv.ParseInt(info.Exp, 10, 64)
	if err != nil || v.now().After(time.Unix(exp, 0)) {
		return fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return nil
}
