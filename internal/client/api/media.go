package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/guia-app/guia/internal/client/models"
)

func (c *Client) UploadImage(ctx context.Context, f File) (*models.Upload, error) {
	return c.uploadOne(ctx, "image", f)
}

func (c *Client) UploadVideo(ctx context.Context, f File) (*models.Upload, error) {
	return c.uploadOne(ctx, "video", f)
}

func (c *Client) uploadOne(ctx context.Context, kind string, f File) (*models.Upload, error) {
	body, contentType, err := multipartBody("file", []File{f}, nil)
	if err != nil {
		return nil, err
	}

	var out models.Upload
	err = c.do(ctx, call{method: http.MethodPost, path: []string{"media", "upload", kind}, raw: body, rawType: contentType, out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadMultiple(ctx context.Context, files []File, kind models.MediaKind) ([]models.Upload, error) {
	var fields map[string]string
	if kind != "" {
		fields = map[string]string{"type": string(kind)}
	}
	body, contentType, err := multipartBody("files", files, fields)
	if err != nil {
		return nil, err
	}

	var out []models.Upload
	err = c.do(ctx, call{method: http.MethodPost, path: []string{"media", "upload", "multiple"}, raw: body, rawType: contentType, out: &out})
	return out, err
}

func (c *Client) DeleteMedia(ctx context.Context, filePath string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: []string{"media", "delete"}, body: filePathBody{FilePath: filePath}})
}

func (c *Client) MediaInfo(ctx context.Context, filePath string) (*models.MediaInfo, error) {
	var out models.MediaInfo
	err := c.do(ctx, call{method: http.MethodGet, path: []string{"media", "info"}, query: filePathQuery{FilePath: filePath}, out: &out})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type filePathBody struct {
	FilePath string `json:"file_path"`
}

// multipartBody encodes files under field, followed by the plain fields, as
// one in-memory multipart form.
func multipartBody(field string, files []File, fields map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		if f.ContentType != "" {
			h.Set("Content-Type", f.ContentType)
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form part: %w", err)
		}
		if _, err := io.Copy(part, f.Body); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
