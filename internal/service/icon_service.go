package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/veland/larder/larder-backend/internal/repository/storage"
)

const (
	MaxIconSize     = 2 * 1024 * 1024 // 2MB
	MinIconWidth    = 32
	MinIconHeight   = 32
	IconSize        = 256
	IconJPEGQuality = 85
	IconURLExpiry   = 24 * time.Hour
)

var (
	ErrIconTooLarge             = errors.New("file too large. Maximum size is 2MB")
	ErrIconInvalidFormat        = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrIconTooSmall             = errors.New("image too small. Minimum 32x32 pixels")
	ErrIconInvalidData          = errors.New("invalid image data")
	ErrIconStorageNotConfigured = errors.New("icon storage not configured")
)

// allowedIconExtensions maps extensions to content types
var allowedIconExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// IconService processes uploaded space icons and stores them in S3
type IconService struct {
	storage storage.IconRepository
}

// NewIconService creates a new IconService
func NewIconService(storage storage.IconRepository) *IconService {
	return &IconService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured).
func (s *IconService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the upload and returns the decoded image
func (s *IconService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxIconSize {
		return nil, ErrIconTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedIconExtensions[ext]; !ok {
		return nil, ErrIconInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrIconInvalidData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinIconWidth || bounds.Dy() < MinIconHeight {
		return nil, ErrIconTooSmall
	}

	return img, nil
}

// ProcessAndUpload crops the upload to a square icon, stores it, and
// returns the object key to record on the space.
func (s *IconService) ProcessAndUpload(ctx context.Context, spaceID uuid.UUID, data []byte, filename string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrIconStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return "", err
	}

	icon := imaging.Fill(img, IconSize, IconSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, icon, &jpeg.Options{Quality: IconJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode icon: %w", err)
	}

	objectPath := fmt.Sprintf("spaces/%s/icon_%s.jpg", spaceID, uuid.New())

	key, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("failed to upload icon: %w", err)
	}

	return key, nil
}

// PresignedURL resolves a stored icon key to a temporary download URL.
// Keys that are not object paths (emoji or built-in icon names) pass
// through unchanged.
func (s *IconService) PresignedURL(ctx context.Context, iconKey string) (string, error) {
	if iconKey == "" || !strings.HasPrefix(iconKey, "spaces/") {
		return iconKey, nil
	}
	if !s.IsEnabled() {
		return "", ErrIconStorageNotConfigured
	}
	return s.storage.GeneratePresignedURL(ctx, iconKey, IconURLExpiry)
}

// Delete removes a stored icon; non-object keys are ignored.
func (s *IconService) Delete(ctx context.Context, iconKey string) error {
	if iconKey == "" || !strings.HasPrefix(iconKey, "spaces/") {
		return nil
	}
	if !s.IsEnabled() {
		return ErrIconStorageNotConfigured
	}
	return s.storage.Delete(ctx, iconKey)
}
