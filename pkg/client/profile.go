package client

import (
	"context"
	"strings"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	"github.com/noah-isme/streetvoice-api/internal/models"
)

// Landing paths of the front end.
const (
	PathProfile        = "/profile-page"
	PathAdminDashboard = "/admin/dashboard"
	PathMain           = "/main"
)

type profileCompleter interface {
	CompleteProfile(ctx context.Context, p ProfileSubmission) (*dto.CompleteProfileResponse, error)
}

// ProfileForm holds the profile completion values. Department, Zone and
// AdminCode apply to admins only.
type ProfileForm struct {
	FullName   string
	Phone      string
	Role       models.Role
	Department string
	Zone       string
	AdminCode  string
	ProfilePic *File
}

func (f ProfileForm) role() (models.Role, error) {
	if strings.TrimSpace(string(f.Role)) == "" {
		return models.RoleUser, nil
	}
	return models.ParseRole(string(f.Role))
}

// Validate checks the form locally.
func (f ProfileForm) Validate() error {
	if strings.TrimSpace(f.FullName) == "" || strings.TrimSpace(f.Phone) == "" {
		return localError(KindValidationRejected, "Full name and phone are required.")
	}
	role, err := f.role()
	if err != nil {
		return &Error{Kind: KindValidationRejected, Detail: "Invalid role.", Err: err}
	}
	if role == models.RoleAdmin {
		if strings.TrimSpace(f.Department) == "" || strings.TrimSpace(f.Zone) == "" {
			return localError(KindValidationRejected, "Admins must provide a department and location.")
		}
		if _, err := models.ParseDepartment(f.Department); err != nil {
			return &Error{Kind: KindValidationRejected, Detail: "Invalid department.", Err: err}
		}
	}
	if !f.ProfilePic.Empty() && !isImage(f.ProfilePic) {
		return localError(KindValidationRejected, "The profile picture must be an image.")
	}
	return nil
}

// Submit completes the profile and returns the landing path for the role.
// The form is never modified, so a failed submit keeps every value.
func (f ProfileForm) Submit(ctx context.Context, api profileCompleter) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	role, _ := f.role()
	sub := ProfileSubmission{
		FullName: strings.TrimSpace(f.FullName),
		Phone:    strings.TrimSpace(f.Phone),
		Role:     role,
		Zone:     strings.TrimSpace(f.Zone),
	}
	if role == models.RoleAdmin {
		sub.Department = strings.TrimSpace(f.Department)
		sub.AdminCode = strings.TrimSpace(f.AdminCode)
	}
	if !f.ProfilePic.Empty() {
		sub.ProfilePic = f.ProfilePic
	}

	res, err := api.CompleteProfile(ctx, sub)
	if err != nil {
		return "", err
	}
	stored := role
	if res.Role != "" {
		if parsed, err := models.ParseRole(res.Role); err == nil {
			stored = parsed
		}
	}
	return landingFor(true, stored), nil
}

func landingFor(profileComplete bool, role models.Role) string {
	switch {
	case !profileComplete:
		return PathProfile
	case role == models.RoleAdmin:
		return PathAdminDashboard
	default:
		return PathMain
	}
}
