// Package docstore stores small per-user JSON documents such as chat
// histories and schedule lists.
//
// A document is addressed by a user id and a name; backends map the pair to
// the path "<user>/<name>". Local keeps documents on disk, S3 in any
// S3-compatible bucket, Badger in an embedded BadgerDB, and Memory in a map
// for tests.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Well-known document names.
const (
	ChatHistory   = "chat_hist.json"
	TodoList      = "todo_list.json"
	Schedule      = "schedule.txt"
	GreetingAudio = "good_morning.wav"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("docstore: not found")

	// ErrInvalidPath is returned for empty ids or ids containing a path
	// separator or "..".
	ErrInvalidPath = errors.New("docstore: invalid path")
)

// Store is implemented by every backend. Implementations are safe for
// concurrent use.
type Store interface {
	// Get returns the document. It returns an error wrapping ErrNotFound if
	// the document does not exist.
	Get(ctx context.Context, user, name string) ([]byte, error)

	// Put creates or overwrites the document.
	Put(ctx context.Context, user, name string, data []byte) error

	// Exists reports whether the document exists.
	Exists(ctx context.Context, user, name string) (bool, error)

	// Delete removes the document. Deleting a missing document is not an
	// error.
	Delete(ctx context.Context, user, name string) error
}

// Path returns "<user>/<name>" after validating both segments.
func Path(user, name string) (string, error) {
	if err := checkSegment(user); err != nil {
		return "", fmt.Errorf("%w: user %q", err, user)
	}
	if err := checkSegment(name); err != nil {
		return "", fmt.Errorf("%w: name %q", err, name)
	}
	return user + "/" + name, nil
}

func checkSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return ErrInvalidPath
	}
	return nil
}

func notFound(path string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}
