package docstore

import (
	"fmt"
	"io"
)

// Backend kinds accepted by Config.Kind.
const (
	KindLocal  = "local"
	KindS3     = "s3"
	KindBadger = "badger"
	KindMemory = "memory"
)

// Config selects and configures a backend.
type Config struct {
	// Kind is one of "local", "s3", "badger" or "memory". Default "local".
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`

	// Dir is the root directory for local and badger.
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`

	// Bucket and Prefix locate documents for s3.
	Bucket string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`

	S3 S3Options `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// Open creates the configured store. The returned closer releases backend
// resources and is never nil.
func Open(cfg Config) (Store, io.Closer, error) {
	switch cfg.Kind {
	case "", KindLocal:
		if cfg.Dir == "" {
			return nil, nil, fmt.Errorf("docstore: dir is required for %s", KindLocal)
		}
		s, err := NewLocal(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case KindS3:
		if cfg.Bucket == "" {
			return nil, nil, fmt.Errorf("docstore: bucket is required for %s", KindS3)
		}
		return NewS3(NewS3Client(cfg.S3), cfg.Bucket, cfg.Prefix), nopCloser{}, nil
	case KindBadger:
		s, err := NewBadger(BadgerOptions{Dir: cfg.Dir})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case KindMemory:
		return NewMemory(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("docstore: unknown kind %q", cfg.Kind)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
