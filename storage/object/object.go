// Package object stores uploaded diagram images in an S3-compatible bucket,
// falling back to inline data URIs when the bucket is unreachable or not
// configured. Uploads are best effort: any storage error means "use the
// fallback", never "fail the request".
package object

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/youwenshao/staffroom/core"
)

// allowed diagram extensions
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
}

var ErrUnsupportedType = fmt.Errorf("unsupported file type")

type (
	// Store puts an object and returns its publicly readable URL.
	Store interface {
		Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	}

	Uploader struct {
		store   Store // nil when storage is not configured
		timeout time.Duration
		log     core.Logger
	}
)

func NewUploader(store Store, conf *core.Config, log core.Logger) *Uploader {
	timeout := conf.Storage.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Uploader{store: store, timeout: timeout, log: log}
}

// AllowedFile reports whether filename has a supported diagram extension.
func AllowedFile(filename string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(filename))]
}

// UploadDiagram stores the diagram and returns a reference to embed in the
// plan document: the object URL on success, or a self-contained data URI
// when storage is unavailable. The store call is bounded by a timeout so
// the fallback path never blocks the request.
func (u *Uploader) UploadDiagram(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if !AllowedFile(filename) {
		return "", ErrUnsupportedType
	}

	if u.store == nil {
		return DataURI(contentType, data), nil
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	key := diagramKey(filename)
	url, err := u.store.Put(ctx, key, contentType, data)
	if err != nil {
		u.log.Warn(fmt.Sprintf("diagram upload failed, embedding inline: %v", err), err)
		return DataURI(contentType, data), nil
	}
	return url, nil
}

// DataURI encodes data as a self-contained base64 data URI.
func DataURI(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

func diagramKey(filename string) string {
	return fmt.Sprintf("diagrams/%s-%s", uuid.New(), sanitizeFilename(filename))
}

// sanitizeFilename keeps a safe subset of the original name for readable keys.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
