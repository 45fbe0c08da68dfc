package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
)

const profileImagesFolder = "profiles"

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CompleteProfile(ctx context.Context, id string, update models.ProfileUpdate) error
}

// ProfileConfig governs profile completion.
type ProfileConfig struct {
	AdminSignupCode string
}

// ProfileService completes user profiles once after sign-up.
type ProfileService struct {
	repo      profileRepository
	images    imageStore
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	config    ProfileConfig
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, images imageStore, audit *AuditService, validate *validator.Validate, logger *zap.Logger, config ProfileConfig) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, images: images, audit: audit, validator: validate, logger: logger, config: config}
}

// Complete records the caller's profile. The optional picture is stored
// before the row is updated and removed again if the update fails.
func (s *ProfileService) Complete(ctx context.Context, actor *models.Principal, req dto.CompleteProfileRequest, picture *Upload, meta RequestMeta) (*dto.CompleteProfileResponse, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Zone = strings.TrimSpace(req.Zone)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "full_name and phone are required")
	}

	update, err := s.buildUpdate(req)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.ProfileComplete {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Profile already completed")
	}

	if picture != nil && len(picture.Data) > 0 {
		url, err := s.images.StoreImage(ctx, profileImagesFolder, *picture)
		if err != nil {
			return nil, err
		}
		update.ProfilePicURL = url
	}

	if err := s.repo.CompleteProfile(ctx, actor.UserID, update); err != nil {
		if update.ProfilePicURL != "" {
			s.images.Remove(ctx, update.ProfilePicURL)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Profile already completed")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete profile")
	}

	newValues := map[string]string{"role": string(update.Role), "zone": update.Zone}
	if update.Department != nil {
		newValues["department"] = update.Department.String()
	}
	s.audit.Record(ctx, actor, AuditEntry{
		Action:     models.AuditActionProfile,
		Resource:   "user",
		ResourceID: actor.UserID,
		New:        newValues,
	}, meta)
	s.logger.Info("profile completed", zap.String("user_id", actor.UserID), zap.String("role", string(update.Role)))

	return &dto.CompleteProfileResponse{
		Message:         "Profile completed successfully",
		ProfileComplete: true,
		Role:            string(update.Role),
	}, nil
}

func (s *ProfileService) buildUpdate(req dto.CompleteProfileRequest) (models.ProfileUpdate, error) {
	role := models.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return models.ProfileUpdate{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid role")
		}
		role = parsed
	}

	update := models.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     role,
		Zone:     req.Zone,
	}
	if role != models.RoleAdmin {
		return update, nil
	}

	if strings.TrimSpace(req.Department) == "" || req.Zone == "" {
		return models.ProfileUpdate{}, appErrors.Clone(appErrors.ErrValidation, "Admins must provide a department and location")
	}
	department, err := models.ParseDepartment(req.Department)
	if err != nil {
		return models.ProfileUpdate{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid department")
	}
	if code := s.config.AdminSignupCode; code != "" {
		if subtle.ConstantTimeCompare([]byte(code), []byte(strings.TrimSpace(req.AdminCode))) != 1 {
			return models.ProfileUpdate{}, appErrors.Clone(appErrors.ErrForbidden, "Invalid admin code")
		}
	}
	update.Department = &department
	update.AdminCode = strings.TrimSpace(req.AdminCode)
	return update, nil
}
