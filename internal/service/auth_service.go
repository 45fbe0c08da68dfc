package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	"github.com/noah-isme/streetvoice-api/internal/repository"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/googleauth"
)

const tokenTypeBearer = "bearer"

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type idTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleauth.Identity, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo      authUserRepository
	google    idTokenVerifier
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance. A nil verifier disables
// Google sign-in and the Google token fallback.
func NewAuthService(repo authUserRepository, google idTokenVerifier, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{repo: repo, google: google, validator: validate, logger: logger, config: config, now: time.Now}
}

// Register creates a password account.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) error {
	req.Email = normaliseEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	hashed := string(hash)

	user := &models.User{ID: uuid.NewString(), Email: req.Email, PasswordHash: &hashed}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return appErrors.ErrEmailTaken
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return nil
}

// Login authenticates a password account and returns an access token.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	req.Email = normaliseEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	// Google-only accounts have no password to compare against.
	if user.PasswordHash == nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	return s.tokenResponse(user)
}

// LoginWithGoogle exchanges a verified Google ID token for an access token,
// creating the account on first sight.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	user, err := s.userFromGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(user)
}

// Authenticate resolves a bearer token into the current principal. The
// token is tried as a StreetVoice access token first and as a Google ID
// token second; the user row is always re-read.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, jwtErr := s.ValidateToken(token)
	if jwtErr == nil {
		user, err := s.lookupClaims(ctx, claims)
		if err != nil {
			return nil, err
		}
		return models.PrincipalFromUser(user), nil
	}

	if s.google == nil {
		return nil, jwtErr
	}
	user, err := s.userFromGoogle(ctx, token)
	if err != nil {
		return nil, err
	}
	return models.PrincipalFromUser(user), nil
}

// ValidateToken parses and validates a StreetVoice access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

// IssueToken signs an access token for the user.
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) tokenResponse(user *models.User) (*dto.TokenResponse, error) {
	token, _, err := s.IssueToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &dto.TokenResponse{
		AccessToken:     token,
		TokenType:       tokenTypeBearer,
		ProfileComplete: user.ProfileComplete,
		Role:            string(user.EffectiveRole()),
	}, nil
}

func (s *AuthService) lookupClaims(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if claims.UserID != "" {
		user, err = s.repo.FindByID(ctx, claims.UserID)
	} else {
		user, err = s.repo.FindByEmail(ctx, normaliseEmail(claims.Subject))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

func (s *AuthService) userFromGoogle(ctx context.Context, idToken string) (*models.User, error) {
	if s.google == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "Google sign-in is not configured")
	}
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, googleauth.ErrInvalidToken) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to verify Google token")
	}

	email := normaliseEmail(identity.Email)
	user, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	user = &models.User{
		ID:            uuid.NewString(),
		Email:         email,
		FullName:      identity.Name,
		ProfilePicURL: identity.Picture,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// lost a race with a concurrent first sign-in
			existing, findErr := s.repo.FindByEmail(ctx, email)
			if findErr == nil {
				return existing, nil
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	s.logger.Info("user created from google sign-in", zap.String("user_id", user.ID))
	return user, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
