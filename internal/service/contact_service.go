package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/streetvoice-api/internal/dto"
	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
)

// ContactService accepts messages from the public contact form.
type ContactService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(validate *validator.Validate, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContactService{validator: validate, logger: logger}
}

// Submit validates and records a contact message.
func (s *ContactService) Submit(ctx context.Context, req dto.ContactRequest) (*dto.MessageResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, a valid email and message are required")
	}
	s.logger.Info("contact message received",
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.Int("length", len(req.Message)),
	)
	return &dto.MessageResponse{Message: "Your message has been received."}, nil
}
