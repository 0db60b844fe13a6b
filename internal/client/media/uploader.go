package media

import (
	"context"
	"fmt"
	"os"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/models"
)

// Uploader stores a validated file and reports where it ended up.
type Uploader interface {
	Upload(ctx context.Context, f File) (*models.Upload, error)
}

// APIUploader posts files to the API's media endpoints.
type APIUploader struct {
	api api.Media
}

func NewAPIUploader(m api.Media) *APIUploader {
	return &APIUploader{api: m}
}

func (u *APIUploader) Upload(ctx context.Context, f File) (*models.Upload, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer fh.Close()

	part := api.File{Name: f.Name, ContentType: f.ContentType, Body: fh}
	if f.Kind() == models.MediaVideo {
		return u.api.UploadVideo(ctx, part)
	}
	return u.api.UploadImage(ctx, part)
}
