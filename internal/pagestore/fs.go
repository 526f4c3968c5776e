package pagestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/teleperson/demo-generator/internal/errs"
)

// FS keeps each page as <dir>/<key>.html.
type FS struct {
	dir string
}

var _ Store = (*FS)(nil)

func NewFS(dir string) *FS {
	return &FS{dir: dir}
}

// Dir returns the directory pages are written to.
func (s *FS) Dir() string { return s.dir }

func (s *FS) path(key string) string {
	return filepath.Join(s.dir, key+".html")
}

// Save creates the directory on demand and writes the page through a
// temporary file so readers never see a partial page.
func (s *FS) Save(_ context.Context, key, html string) error {
	if err := checkSaveKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errs.Wrap(errs.IOFailure, err, "create prototype directory")
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return errs.Wrap(errs.IOFailure, err, "save prototype %s", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return errs.Wrap(errs.IOFailure, err, "save prototype %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.IOFailure, err, "save prototype %s", key)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errs.Wrap(errs.IOFailure, err, "save prototype %s", key)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errs.Wrap(errs.IOFailure, err, "save prototype %s", key)
	}
	return nil
}

func (s *FS) Load(_ context.Context, key string) (string, error) {
	if err := checkLoadKey(key); err != nil {
		return "", err
	}
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", notFound(key)
	}
	if err != nil {
		return "", errs.Wrap(errs.IOFailure, err, "load prototype %s", key)
	}
	return string(b), nil
}
