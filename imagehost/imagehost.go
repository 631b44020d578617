// Package imagehost forwards uploaded images to a third-party host and
// returns the public URL.
package imagehost

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MaxImageSize is the largest upload accepted, in bytes.
const MaxImageSize = 2 << 20

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
)

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Check validates the file extension and size before anything is sent to
// the host.
func Check(filename string, size int64) error {
	if !allowedExt[strings.ToLower(filepath.Ext(filename))] {
		return ErrUnsupportedType
	}
	if size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}
