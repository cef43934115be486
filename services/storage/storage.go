// Package storage keeps appointment file bytes in Cloudinary; Mongo holds
// only the metadata.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"

	"curaconnect/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// StorageService defines the interface for storage operations.
type StorageService interface {
	// Upload stores the file under the appointment's folder and returns the
	// storage handle and a secure download URL.
	Upload(ctx context.Context, file multipart.File, appointmentID, name string) (publicID, url string, err error)
	// Delete removes the stored file.
	Delete(ctx context.Context, publicID string) error
}

// CloudinaryStorage implements StorageService on Cloudinary.
type CloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage builds the storage service from the process configuration.
func NewCloudinaryStorage() (*CloudinaryStorage, error) {
	cfg := config.AppConfig
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStorage{cld: cld}, nil
}

func (s *CloudinaryStorage) Upload(ctx context.Context, file multipart.File, appointmentID, name string) (string, string, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       "appointments/" + appointmentID,
		PublicID:     name,
		ResourceType: "auto",
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}
	return resp.PublicID, resp.SecureURL, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", publicID, err)
	}
	return nil
}
