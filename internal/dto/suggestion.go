package dto

// SuggestionRequest captures POST /suggestion payload.
type SuggestionRequest struct {
	Tag         string `json:"tag" validate:"required,max=32"`
	Location    string `json:"location" validate:"required,max=255"`
	Description string `json:"description" validate:"required,max=4000"`
}

// SuggestionResponse carries the model's markdown answer.
type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// ContactRequest captures POST /contact payload.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=4000"`
}
