package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/repository"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/googleauth"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	createErr error
	findErr   error
	created   []*models.User
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	m := &mockAuthRepo{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.users[user.ID] = user
	m.created = append(m.created, user)
	return nil
}

type mockVerifier struct {
	identity *googleauth.Identity
	err      error
	calls    int
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*googleauth.Identity, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "streetvoice"}
}

func passwordUser(t *testing.T, id, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	return &models.User{ID: id, Email: email, PasswordHash: &h}
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	require.NoError(t, svc.Register(context.Background(), dto.RegisterRequest{Email: " Amy@Example.com ", Password: "hunter22"}))
	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.Equal(t, "amy@example.com", created.Email)
	require.NotNil(t, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*created.PasswordHash), []byte("hunter22")))

	err := svc.Register(context.Background(), dto.RegisterRequest{Email: "amy@example.com", Password: "other"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrEmailTaken))
	assert.Equal(t, "Email already registered", appErrors.FromError(err).Message)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, nil, testAuthConfig())
	err := svc.Register(context.Background(), dto.RegisterRequest{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestAuthServiceLogin(t *testing.T) {
	admin := models.RoleAdmin
	user := passwordUser(t, "u1", "amy@example.com", "hunter22")
	user.Role = &admin
	user.ProfileComplete = true
	svc := NewAuthService(newMockAuthRepo(user), nil, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "AMY@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.True(t, resp.ProfileComplete)
	assert.Equal(t, "Admin", resp.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "amy@example.com", claims.Subject)
	assert.Equal(t, "streetvoice", claims.Issuer)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	googleOnly := &models.User{ID: "g1", Email: "google@example.com"}
	svc := NewAuthService(newMockAuthRepo(passwordUser(t, "u1", "amy@example.com", "hunter22"), googleOnly), nil, nil, nil, testAuthConfig())

	cases := []dto.LoginRequest{
		{Email: "amy@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "hunter22"},
		{Email: "google@example.com", Password: "anything"},
	}
	for _, req := range cases {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err, req.Email)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials), req.Email)
		assert.Equal(t, 401, appErrors.FromError(err).Status)
	}
}

func TestAuthServiceAuthenticateReloadsUser(t *testing.T) {
	user := passwordUser(t, "u1", "amy@example.com", "hunter22")
	repo := newMockAuthRepo(user)
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	token, _, err := svc.IssueToken(user)
	require.NoError(t, err)

	principal, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, principal.Role)
	assert.False(t, principal.ProfileComplete)

	// profile completes after the token was issued
	admin := models.RoleAdmin
	dept := models.Department(models.TagRoad)
	user.Role = &admin
	user.Department = &dept
	user.ProfileComplete = true

	principal, err = svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, principal.Role)
	require.NotNil(t, principal.Department)
	assert.Equal(t, dept, *principal.Department)
	assert.True(t, principal.ProfileComplete)
}

func TestAuthServiceAuthenticateRejectsInvalidTokens(t *testing.T) {
	user := passwordUser(t, "u1", "amy@example.com", "pw")
	svc := NewAuthService(newMockAuthRepo(user), nil, nil, nil, testAuthConfig())

	_, err := svc.Authenticate(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	other := NewAuthService(newMockAuthRepo(user), nil, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	foreign, _, err := other.IssueToken(user)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), foreign)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := svc.IssueToken(user)
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.Authenticate(context.Background(), expired)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), unsigned)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceAuthenticateDeletedUser(t *testing.T) {
	user := passwordUser(t, "u1", "amy@example.com", "pw")
	repo := newMockAuthRepo(user)
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())
	token, _, err := svc.IssueToken(user)
	require.NoError(t, err)
	delete(repo.users, "u1")

	_, err = svc.Authenticate(context.Background(), token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceGoogleFallbackCreatesUser(t *testing.T) {
	repo := newMockAuthRepo()
	verifier := &mockVerifier{identity: &googleauth.Identity{Subject: "g-1", Email: "New@Example.com", Name: "New Person"}}
	svc := NewAuthService(repo, verifier, nil, nil, testAuthConfig())

	principal, err := svc.Authenticate(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", principal.Email)
	assert.Equal(t, models.RoleUser, principal.Role)
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].PasswordHash)
	assert.Equal(t, "New Person", repo.created[0].FullName)

	// second sight reuses the row
	_, err = svc.Authenticate(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, 2, verifier.calls)
}

func TestAuthServiceLoginWithGoogle(t *testing.T) {
	existing := &models.User{ID: "u1", Email: "amy@example.com", ProfileComplete: true}
	repo := newMockAuthRepo(existing)
	verifier := &mockVerifier{identity: &googleauth.Identity{Email: "amy@example.com"}}
	svc := NewAuthService(repo, verifier, nil, nil, testAuthConfig())

	resp, err := svc.LoginWithGoogle(context.Background(), "id-token")
	require.NoError(t, err)
	assert.True(t, resp.ProfileComplete)
	assert.Equal(t, "User", resp.Role)
	assert.Empty(t, repo.created)
}

func TestAuthServiceLoginWithGoogleErrors(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), &mockVerifier{err: googleauth.ErrInvalidToken}, nil, nil, testAuthConfig())
	_, err := svc.LoginWithGoogle(context.Background(), "bad")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	svc = NewAuthService(newMockAuthRepo(), &mockVerifier{err: errors.New("dial tcp: timeout")}, nil, nil, testAuthConfig())
	_, err = svc.LoginWithGoogle(context.Background(), "tok")
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))

	_, err = svc.LoginWithGoogle(context.Background(), " ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	svc = NewAuthService(newMockAuthRepo(), nil, nil, nil, testAuthConfig())
	_, err = svc.LoginWithGoogle(context.Background(), "tok")
	assert.True(t, errors.Is(err, appErrors.ErrUnavailable))
}
