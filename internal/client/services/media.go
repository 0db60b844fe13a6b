package services

import (
	"context"
	"fmt"

	"github.com/guia-app/guia/internal/client/api"
	"github.com/guia-app/guia/internal/client/media"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/logging"
)

const msgUploadFailed = "Could not upload media"

type MediaService interface {
	// Prepare inspects local files and checks them against the upload
	// limits.
	Prepare(paths []string) ([]media.File, error)
	// Upload stores files one by one and returns their uploads in order.
	Upload(ctx context.Context, files []media.File) ([]models.Upload, error)
	Delete(ctx context.Context, filePath string) error
	Info(ctx context.Context, filePath string) (*models.MediaInfo, error)
}

type mediaService struct {
	api      api.Media
	uploader media.Uploader
	notify   Notifier
	logger   logging.Logger
}

// NewMediaService uploads through uploader, falling back to the API when
// it is nil.
func NewMediaService(m api.Media, uploader media.Uploader, notify Notifier, logger logging.Logger) MediaService {
	if uploader == nil {
		uploader = media.NewAPIUploader(m)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &mediaService{api: m, uploader: uploader, notify: notifierOrNop(notify), logger: logger}
}

func (s *mediaService) Prepare(paths []string) ([]media.File, error) {
	if len(paths) > media.MaxFiles {
		s.notify.Error(media.ErrTooManyFiles.Error(), "")
		return nil, media.ErrTooManyFiles
	}
	files := make([]media.File, 0, len(paths))
	for _, p := range paths {
		f, err := media.Inspect(p)
		if err == nil {
			err = media.Validate(f)
		}
		if err != nil {
			s.notify.Error("Some files are invalid: "+err.Error(), "")
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *mediaService) Upload(ctx context.Context, files []media.File) ([]models.Upload, error) {
	if err := media.ValidateAll(files); err != nil {
		s.notify.Error(err.Error(), "")
		return nil, err
	}
	out := make([]models.Upload, 0, len(files))
	for _, f := range files {
		up, err := s.uploader.Upload(ctx, f)
		if err != nil {
			s.logger.Error(ctx, "media upload failed", "file", f.Name, "error", err)
			s.notify.Error(msgUploadFailed, "")
			return nil, fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		out = append(out, *up)
	}
	return out, nil
}

func (s *mediaService) Delete(ctx context.Context, filePath string) error {
	if err := s.api.DeleteMedia(ctx, filePath); err != nil {
		s.notify.Error(api.Message(err, "Could not delete media"), "")
		return fmt.Errorf("failed to delete media %s: %w", filePath, err)
	}
	return nil
}

func (s *mediaService) Info(ctx context.Context, filePath string) (*models.MediaInfo, error) {
	info, err := s.api.MediaInfo(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get media info %s: %w", filePath, err)
	}
	return info, nil
}
