package docstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores documents as files under a root directory.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir, creating the directory if
// needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs}, nil
}

func (l *Local) resolve(user, name string) (string, string, error) {
	p, err := Path(user, name)
	if err != nil {
		return "", "", err
	}
	return p, filepath.Join(l.root, filepath.FromSlash(p)), nil
}

func (l *Local) Get(_ context.Context, user, name string) ([]byte, error) {
	p, full, err := l.resolve(user, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(p)
	}
	return data, err
}

// Put writes to a temporary file and renames it over the document so
// readers never see a partial write.
func (l *Local) Put(_ context.Context, user, name string, data []byte) error {
	_, full, err := l.resolve(user, name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (l *Local) Exists(_ context.Context, user, name string) (bool, error) {
	_, full, err := l.resolve(user, name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *Local) Delete(_ context.Context, user, name string) error {
	_, full, err := l.resolve(user, name)
	if err != nil {
		return err
	}
	err = os.Remove(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

var _ Store = (*Local)(nil)
