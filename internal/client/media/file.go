package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/guia-app/guia/internal/client/models"
)

const (
	// MaxFileSize is the largest accepted upload, 50MB.
	MaxFileSize = 50 << 20
	// MaxFiles is the most files a single post may carry.
	MaxFiles = 10
)

var (
	ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
	VideoTypes = []string{"video/mp4", "video/webm", "video/ogg"}
)

var (
	ErrNoFile          = errors.New("no file selected")
	ErrTooLarge        = fmt.Errorf("file too large, max %dMB", MaxFileSize>>20)
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooManyFiles    = fmt.Errorf("at most %d files per post", MaxFiles)
)

// File is a local file picked for upload.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// Kind returns the media class of f, or "" if its type is not accepted.
func (f File) Kind() models.MediaKind {
	return KindOf(f.ContentType)
}

// KindOf maps a content type to a media class.
func KindOf(contentType string) models.MediaKind {
	switch {
	case slices.Contains(ImageTypes, contentType):
		return models.MediaImage
	case slices.Contains(VideoTypes, contentType):
		return models.MediaVideo
	}
	return ""
}

// Inspect stats path and sniffs its content type.
func Inspect(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return File{}, ErrNoFile
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s: %w", path, ErrNoFile)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to detect type of %s: %w", path, err)
	}
	contentType, _, _ := strings.Cut(mt.String(), ";")

	return File{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: strings.TrimSpace(contentType),
		Size:        info.Size(),
	}, nil
}

// Validate checks one file against the size and type limits.
func Validate(f File) error {
	if f.Path == "" && f.Name == "" {
		return ErrNoFile
	}
	if f.Size > MaxFileSize {
		return fmt.Errorf("%s: %w", f.Name, ErrTooLarge)
	}
	if f.Kind() == "" {
		return fmt.Errorf("%s (%s): %w", f.Name, f.ContentType, ErrUnsupportedType)
	}
	return nil
}

// ValidateAll checks a post's attachments. The first problem is returned.
func ValidateAll(files []File) error {
	if len(files) > MaxFiles {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if err := Validate(f); err != nil {
			return err
		}
	}
	return nil
}
