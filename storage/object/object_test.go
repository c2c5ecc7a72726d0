package object

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youwenshao/staffroom/core"
	logsvc "github.com/youwenshao/staffroom/services/logger"
)

type stubStore struct {
	url string
	err error

	gotKey         string
	gotContentType string
	gotData        []byte
}

func (s *stubStore) Put(_ context.Context, key, contentType string, data []byte) (string, error) {
	s.gotKey, s.gotContentType, s.gotData = key, contentType, data
	return s.url, s.err
}

func newUploader(t *testing.T, store Store) *Uploader {
	t.Helper()
	conf := &core.Config{TestMode: true, Storage: core.StorageConfig{Timeout: time.Second}}
	return NewUploader(store, conf, logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf))
}

func TestAllowedFile(t *testing.T) {
	for _, name := range []string{"court.png", "drill.JPG", "a.jpeg", "b.gif", "c.svg"} {
		assert.True(t, AllowedFile(name), name)
	}
	for _, name := range []string{"malware.exe", "notes.pdf", "noext", "", "png"} {
		assert.False(t, AllowedFile(name), name)
	}
}

func TestUploader_UploadDiagram(t *testing.T) {
	ctx := context.Background()
	data := []byte("fakepixels")

	t.Run("unsupported type", func(t *testing.T) {
		u := newUploader(t, nil)
		_, err := u.UploadDiagram(ctx, "malware.exe", "application/octet-stream", data)
		assert.Equal(t, ErrUnsupportedType, err)
	})

	t.Run("no store configured falls back to data URI", func(t *testing.T) {
		u := newUploader(t, nil)
		url, err := u.UploadDiagram(ctx, "court.png", "image/png", data)
		require.NoError(t, err)
		assert.Equal(t, DataURI("image/png", data), url)
	})

	t.Run("store URL wins", func(t *testing.T) {
		store := &stubStore{url: "https://bucket.example.com/diagrams/x-court.png"}
		u := newUploader(t, store)
		url, err := u.UploadDiagram(ctx, "court.png", "image/png", data)
		require.NoError(t, err)
		assert.Equal(t, store.url, url)
		assert.Equal(t, "image/png", store.gotContentType)
		assert.Equal(t, data, store.gotData)
		assert.True(t, strings.HasPrefix(store.gotKey, "diagrams/"), store.gotKey)
		assert.True(t, strings.HasSuffix(store.gotKey, "-court.png"), store.gotKey)
	})

	t.Run("store failure falls back to data URI", func(t *testing.T) {
		u := newUploader(t, &stubStore{err: errors.New("bucket unreachable")})
		url, err := u.UploadDiagram(ctx, "court.png", "image/png", data)
		require.NoError(t, err)
		assert.Equal(t, DataURI("image/png", data), url)
	})
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,aGk=", DataURI("image/png", []byte("hi")))
}

func Test_sanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"court.png", "court.png"},
		{"../etc/passwd", "passwd"},
		{"my diagram (v2).png", "my_diagram__v2_.png"},
		{"運球.png", "__.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in))
	}
}
