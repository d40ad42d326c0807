package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger stores documents in an embedded BadgerDB keyed by "<user>/<name>".
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures a Badger store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool
}

// NewBadger opens a BadgerDB-backed Store. Close it when done.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("docstore: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(slogLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, user, name string) ([]byte, error) {
	p, err := Path(user, name)
	if err != nil {
		return nil, err
	}
	var val []byte
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(p))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, notFound(p)
	}
	return val, err
}

func (b *Badger) Put(_ context.Context, user, name string, data []byte) error {
	p, err := Path(user, name)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(p), data)
	})
}

func (b *Badger) Exists(_ context.Context, user, name string) (bool, error) {
	p, err := Path(user, name)
	if err != nil {
		return false, err
	}
	err = b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(p))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *Badger) Delete(_ context.Context, user, name string) error {
	p, err := Path(user, name)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(p))
	})
}

// Close closes the underlying database.
func (b *Badger) Close() error {
	return b.db.Close()
}

// slogLogger routes badger's warnings and errors to slog and drops the rest.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...any)   { slog.Error("badger", "msg", logf(f, v...)) }
func (slogLogger) Warningf(f string, v ...any) { slog.Warn("badger", "msg", logf(f, v...)) }
func (slogLogger) Infof(string, ...any)        {}
func (slogLogger) Debugf(string, ...any)       {}

func logf(f string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(f, v...))
}

var _ Store = (*Badger)(nil)
