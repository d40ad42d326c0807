package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// DefaultChunkDuration is the amount of audio carried by one emitted chunk.
const DefaultChunkDuration = 100 * time.Millisecond

// ErrRecording is returned by Start when the recorder is already running.
var ErrRecording = errors.New("audio: recorder already started")

// Recorder reads PCM16 audio from Source and emits base64 chunks in
// SessionFormat.
//
// The zero Format means the source is already in SessionFormat.
type Recorder struct {
	Source        io.Reader
	Format        Format
	ChunkDuration time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start begins reading from Source in a new goroutine. Each emitted chunk is
// passed to onChunk from that goroutine, in order. When Source reaches EOF the
// remaining audio is emitted as a shorter final chunk and the recorder stops
// by itself.
func (r *Recorder) Start(ctx context.Context, onChunk func(chunk string)) error {
	if r.Source == nil {
		return errors.New("audio: recorder has no source")
	}
	src := r.Format
	if src == (Format{}) {
		src = SessionFormat
	}
	conv, err := newConverter(src, SessionFormat)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		select {
		case <-r.done:
		default:
			return ErrRecording
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.err = nil

	chunkDur := r.ChunkDuration
	if chunkDur <= 0 {
		chunkDur = DefaultChunkDuration
	}
	slog.Debug("audio: recorder started", "format", src, "chunk", chunkDur)

	go func() {
		defer close(done)
		err := r.loop(ctx, conv, src, chunkDur, onChunk)
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
	}()
	return nil
}

// Stop cancels recording and waits for the reading goroutine to exit. A Read
// already in progress on Source is allowed to finish. Stop returns the read
// error that ended recording, if any; stopping a recorder that was never
// started returns nil.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.err
	r.err = nil
	return err
}

// Recording reports whether the reading goroutine is running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (r *Recorder) loop(ctx context.Context, conv *converter, src Format, chunkDur time.Duration, onChunk func(string)) error {
	in := make([]byte, src.BytesInDuration(chunkDur))
	size := SessionFormat.BytesInDuration(chunkDur)
	var pending []byte

	emit := func(b []byte) {
		onChunk(base64.StdEncoding.EncodeToString(b))
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		n, readErr := io.ReadFull(r.Source, in)
		if n > 0 {
			pcm, err := conv.convert(in[:n])
			if err != nil {
				return err
			}
			pending = append(pending, pcm...)
			for len(pending) >= size {
				if ctx.Err() != nil {
					return nil
				}
				emit(pending[:size])
				pending = pending[size:]
			}
		}
		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			if len(pending) > 0 && ctx.Err() == nil {
				emit(pending)
			}
			slog.Debug("audio: recorder source drained")
			return nil
		default:
			return readErr
		}
	}
}
