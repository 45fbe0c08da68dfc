package models

import "time"

// User represents an account stored in the users table. Role and department
// stay nil until the profile is completed.
type User struct {
	ID              string      `db:"id" json:"id"`
	Email           string      `db:"email" json:"email"`
	PasswordHash    *string     `db:"password_hash" json:"-"`
	FullName        string      `db:"full_name" json:"full_name"`
	Phone           string      `db:"phone" json:"phone"`
	Role            *Role       `db:"role" json:"role,omitempty"`
	Department      *Department `db:"department" json:"department,omitempty"`
	Zone            string      `db:"zone" json:"zone"`
	AdminCode       string      `db:"admin_code" json:"-"`
	ProfilePicURL   string      `db:"profile_pic_url" json:"profile_pic_url,omitempty"`
	ProfileComplete bool        `db:"profile_complete" json:"profile_complete"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// EffectiveRole returns the stored role, or RoleUser before completion.
func (u *User) EffectiveRole() Role {
	if u == nil || u.Role == nil {
		return RoleUser
	}
	return *u.Role
}

// ProfileUpdate is applied once when a user completes their profile.
type ProfileUpdate struct {
	FullName      string
	Phone         string
	Role          Role
	Department    *Department
	Zone          string
	AdminCode     string
	ProfilePicURL string
}
