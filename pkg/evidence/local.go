package evidence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ethpandaops/parkoor/pkg/config"
	"github.com/ethpandaops/parkoor/pkg/fsutil"
	"github.com/sirupsen/logrus"
)

// localStore keeps photos in a directory on the local filesystem.
type localStore struct {
	log          logrus.FieldLogger
	dir          string
	owner        *fsutil.OwnerConfig
	publicPrefix string
}

var _ Store = (*localStore)(nil)

func newLocalStore(
	log logrus.FieldLogger,
	cfg *config.LocalStorageConfig,
	publicPrefix string,
) (*localStore, error) {
	owner, err := fsutil.ParseOwner(cfg.Owner)
	if err != nil {
		return nil, fmt.Errorf("parsing storage.local.owner: %w", err)
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving upload dir: %w", err)
	}

	if err := fsutil.MkdirAll(dir, 0o755, owner); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	return &localStore{
		log:          log.WithField("component", "evidence-local"),
		dir:          dir,
		owner:        owner,
		publicPrefix: publicPrefix,
	}, nil
}

func (l *localStore) Put(
	ctx context.Context,
	originalName string,
	body io.Reader,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := FileName(originalName)

	n, err := fsutil.WriteFrom(filepath.Join(l.dir, name), body, 0o644, l.owner)
	if err != nil {
		return "", fmt.Errorf("writing evidence %s: %w", name, err)
	}

	l.log.WithFields(logrus.Fields{
		"name":  name,
		"bytes": n,
	}).Debug("Stored evidence photo")

	return l.publicPrefix + "/" + name, nil
}

func (l *localStore) Serve(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) error {
	if !isAllowedName(name) {
		return ErrNotFound
	}

	full := filepath.Join(l.dir, name)

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return ErrNotFound
	}

	http.ServeFile(w, r, full)

	return nil
}
