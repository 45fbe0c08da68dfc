package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens. The subject is
// the account email.
type JWTClaims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller, always rebuilt from the users table.
type Principal struct {
	UserID          string
	Email           string
	Role            Role
	Department      *Department
	Zone            string
	ProfileComplete bool
}

// PrincipalFromUser builds the caller view of a stored user.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		UserID:          u.ID,
		Email:           u.Email,
		Role:            u.EffectiveRole(),
		Department:      u.Department,
		Zone:            u.Zone,
		ProfileComplete: u.ProfileComplete,
	}
}
