// Package evidence stores the photos attached to violation records.
package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethpandaops/parkoor/pkg/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultExt is used when the uploaded file name has no extension.
const DefaultExt = ".jpg"

// ErrNotFound is returned by Serve for unknown or disallowed names.
var ErrNotFound = errors.New("evidence: not found")

// Store persists evidence photos under generated names.
type Store interface {
	// Put writes body under a fresh name derived from the original file
	// name's extension and returns the public path of the stored photo.
	// The write is complete when Put returns without error.
	Put(ctx context.Context, originalName string, body io.Reader) (string, error)

	// Serve writes the photo stored under name to w, or redirects to it.
	Serve(w http.ResponseWriter, r *http.Request, name string) error
}

// NewStore returns the enabled backend. publicPrefix is prepended to stored
// names to build the path handed back to clients, e.g. "/parking/uploads".
func NewStore(
	log logrus.FieldLogger,
	cfg *config.StorageConfig,
	publicPrefix string,
) (Store, error) {
	publicPrefix = strings.TrimRight(publicPrefix, "/")

	switch {
	case cfg.S3.Enabled:
		return newS3Store(log, &cfg.S3, publicPrefix), nil
	case cfg.Local.Enabled:
		return newLocalStore(log, &cfg.Local, publicPrefix)
	default:
		return nil, errors.New("no evidence storage backend enabled")
	}
}

// FileName generates an opaque file name for an upload: a random UUID in
// hex plus the lower-cased extension of originalName, or DefaultExt.
func FileName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" || ext == "." || !validExt(ext) {
		ext = DefaultExt
	}

	id := uuid.New()

	return fmt.Sprintf("%x%s", id[:], ext)
}

func validExt(ext string) bool {
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}

	return len(ext) <= 16
}

// isAllowedName accepts only single path segments without traversal.
func isAllowedName(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}

	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}

	return path.Clean(name) == name
}

// contentType returns a MIME type based on file extension.
func contentType(name string) string {
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		return "application/octet-stream"
	}

	return ct
}
