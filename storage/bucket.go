package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"courtside/errors"

	"github.com/gabriel-vasile/mimetype"
)

// Bucket stores uploaded images (avatars, game covers) on disk and
// hands out URL paths for serving them.
type Bucket struct {
	root string
	log  *slog.Logger
}

func NewBucket(root string, log *slog.Logger) (*Bucket, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket root: %w", err)
	}
	return &Bucket{root: root, log: log}, nil
}

// Upload writes the payload under the given object path after
// sniffing its content. Only images are accepted; the declared file
// extension is ignored.
func (b *Bucket) Upload(objectPath string, data []byte) error {
	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		b.log.Warn("rejected non-image upload", "path", objectPath, "mime", detected.String())
		return errors.ErrUnsupportedImage
	}

	fullPath := filepath.Join(b.root, filepath.Clean(objectPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0o644)
}

// Open returns the stored payload for an object path.
func (b *Bucket) Open(objectPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.root, filepath.Clean(objectPath)))
	if os.IsNotExist(err) {
		return nil, errors.ErrNotFound
	}
	return data, err
}

// PublicURL maps an object path to the URL path the API serves it
// under.
func (b *Bucket) PublicURL(objectPath string) string {
	return "/media/" + strings.TrimPrefix(filepath.ToSlash(objectPath), "/")
}
