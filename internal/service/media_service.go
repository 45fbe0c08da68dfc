package service

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/streetvoice-api/pkg/errors"
	"github.com/noah-isme/streetvoice-api/pkg/imaging"
	"github.com/noah-isme/streetvoice-api/pkg/storage"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type fileStore interface {
	Save(name string, data []byte) (string, error)
	Delete(name string) error
}

// MediaConfig controls image normalisation and public URLs.
type MediaConfig struct {
	PublicPath   string
	MaxSizeBytes int64
	Quality      int
	MaxWidth     int
}

// MediaService normalises uploaded images to JPEG and stores them.
type MediaService struct {
	store  fileStore
	config MediaConfig
	logger *zap.Logger
}

// NewMediaService constructs a MediaService.
func NewMediaService(store fileStore, config MediaConfig, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PublicPath == "" {
		config.PublicPath = "/uploads"
	}
	return &MediaService{store: store, config: config, logger: logger}
}

// StoreImage validates, compresses and saves an image under folder and
// returns its public URL.
func (s *MediaService) StoreImage(ctx context.Context, folder string, upload Upload) (string, error) {
	if len(upload.Data) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "Image is required")
	}
	if s.config.MaxSizeBytes > 0 && int64(len(upload.Data)) > s.config.MaxSizeBytes {
		return "", appErrors.ErrPayloadTooLarge
	}
	if !imaging.IsImageType(upload.ContentType) && !imaging.IsImageType(imaging.Sniff(upload.Data)) {
		return "", appErrors.Clone(appErrors.ErrValidation, "File must be an image")
	}

	result, err := imaging.CompressJPEG(upload.Data, imaging.Options{Quality: s.config.Quality, MaxWidth: s.config.MaxWidth})
	if err != nil {
		if errors.Is(err, imaging.ErrNotImage) {
			return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "File must be an image")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process image")
	}

	name := path.Join(folder, uuid.NewString()+".jpg")
	stored, err := s.store.Save(name, result.Data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}

	s.logger.Debug("image stored",
		zap.String("name", stored),
		zap.Int("original_bytes", len(upload.Data)),
		zap.Int("stored_bytes", len(result.Data)),
		zap.Int("width", result.Width),
	)
	return storage.URL(s.config.PublicPath, stored), nil
}

// Remove deletes a previously stored image by its public URL. Failures are logged.
func (s *MediaService) Remove(ctx context.Context, publicURL string) {
	prefix := strings.TrimSuffix(storage.URL(s.config.PublicPath, ""), "/") + "/"
	name := strings.TrimPrefix(publicURL, prefix)
	if name == "" || name == publicURL {
		return
	}
	if err := s.store.Delete(name); err != nil {
		s.logger.Warn("failed to delete image", zap.String("url", publicURL), zap.Error(err))
	}
}
