// Package photostore keeps person photos on local disk or in S3.
package photostore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
	"github.com/google/uuid"
)

// MaxBytes is the largest accepted photo.
const MaxBytes = 5 << 20

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Store saves an object and returns the URL it is served from.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Key builds the object key for a person photo, validating the content type.
func Key(churchID, personID int64, contentType string) (string, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", apperr.Validation("unsupported photo type %q", contentType)
	}
	return fmt.Sprintf("churches/%d/persons/%d/%s%s", churchID, personID, uuid.NewString(), ext), nil
}

// Local writes under Root and serves from URLPrefix.
type Local struct {
	Root      string
	URLPrefix string
}

func NewLocal(root, urlPrefix string) *Local {
	if urlPrefix == "" {
		urlPrefix = "/photos"
	}
	return &Local{Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (l *Local) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	clean := path.Clean("/" + key)
	dst := filepath.Join(l.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create photo dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}
	if _, err := io.Copy(f, io.LimitReader(body, MaxBytes+1)); err != nil {
		f.Close()
		return "", fmt.Errorf("write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return l.URLPrefix + clean, nil
}
