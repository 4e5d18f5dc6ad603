package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/travel-journal/internal/domain"
)

// UploadPhoto sends one image as a multipart request tagged with its owning
// trip or experience. The image bytes are read fully from r. Failures after
// the token check are reported as domain.ErrUpload; photos uploaded earlier
// in the same batch stay persisted on the server.
func (c *Client) UploadPhoto(ctx context.Context, owner domain.PhotoOwner, r io.Reader, filename, mimeType string) (domain.Photo, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return domain.Photo{}, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField(owner.FormField(), owner.ID.String()); err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: %v", domain.ErrUpload, filename, err)
	}
	part, err := createImagePart(form, filename, mimeType)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: %v", domain.ErrUpload, filename, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: read image: %v", domain.ErrUpload, filename, err)
	}
	if err := form.Close(); err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: %v", domain.ErrUpload, filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/photo", nil), &buf)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: %v", domain.ErrUpload, filename, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: %v", domain.ErrUpload, filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Photo{}, fmt.Errorf("%w: %s: status %d", domain.ErrUpload, filename, resp.StatusCode)
	}

	var photo domain.Photo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&photo); err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %s: decode response: %v", domain.ErrUpload, filename, err)
	}
	return photo, nil
}

// DeletePhoto removes a photo by id. Succeeds only on an explicit 204; any
// other status leaves the photo considered present.
func (c *Client) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	query := url.Values{"id": []string{id.String()}}
	if err := c.doDelete(ctx, "/api/photo", query); err != nil {
		return fmt.Errorf("api.Client.DeletePhoto: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// createImagePart adds the file part with its real content type.
// multipart.Writer.CreateFormFile hardcodes application/octet-stream, so the
// part header is built by hand the same way.
func createImagePart(form *multipart.Writer, filename, mimeType string) (io.Writer, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", mimeType)
	return form.CreatePart(h)
}
