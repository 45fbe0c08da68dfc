package dto

// CompleteProfileRequest is bound from the multipart form of PUT /complete-profile.
// The zone travels as the `location` field.
type CompleteProfileRequest struct {
	FullName   string `form:"full_name" validate:"required,max=120"`
	Phone      string `form:"phone" validate:"required,max=32"`
	Role       string `form:"role" validate:"omitempty,max=16"`
	Department string `form:"department" validate:"omitempty,max=32"`
	Zone       string `form:"location" validate:"omitempty,max=120"`
	AdminCode  string `form:"admin_code" validate:"omitempty,max=64"`
}

// CompleteProfileResponse acknowledges a completed profile.
type CompleteProfileResponse struct {
	Message         string `json:"message"`
	ProfileComplete bool   `json:"profile_complete"`
	Role            string `json:"role"`
}
