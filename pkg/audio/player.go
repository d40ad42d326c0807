package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// ErrPlayerClosed is returned by Play before Reset or after Close.
var ErrPlayerClosed = errors.New("audio: player closed")

// Player writes decoded audio deltas to Sink in the order they are played.
//
// Reset opens the player. Play queues audio. Stop discards everything queued
// but keeps the player open, which is what barge-in needs: the assistant
// stops talking and later deltas play normally. Close ends playback.
type Player struct {
	Sink io.Writer

	mu     sync.Mutex
	queue  [][]byte
	wake   chan struct{}
	closed chan struct{}
	exited chan struct{}
	err    error
}

// Reset discards any queued audio and (re)starts the playback goroutine.
func (p *Player) Reset() {
	p.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	p.err = nil
	p.wake = make(chan struct{}, 1)
	p.closed = make(chan struct{})
	p.exited = make(chan struct{})
	go p.run(p.wake, p.closed, p.exited)
}

// Play decodes a base64 PCM16 chunk and queues it for playback.
func (p *Player) Play(b64 string) error {
	pcm, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("audio: decode delta: %w", err)
	}
	if len(pcm) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed == nil {
		return ErrPlayerClosed
	}
	p.queue = append(p.queue, pcm)
	select {
	case p.wake <- struct{}{}:
	default:
	}
	return nil
}

// Stop discards queued audio. A chunk already being written to Sink
// completes.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	err := p.err
	p.err = nil
	return err
}

// Close stops the playback goroutine and waits for it to exit. Queued audio
// is discarded.
func (p *Player) Close() error {
	p.mu.Lock()
	closed, exited := p.closed, p.exited
	p.closed = nil
	p.queue = nil
	p.mu.Unlock()
	if closed == nil {
		return nil
	}
	close(closed)
	<-exited
	return nil
}

// Queued returns the number of chunks waiting to be written.
func (p *Player) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Player) run(wake <-chan struct{}, closed <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	for {
		select {
		case <-closed:
			return
		case <-wake:
		}
		for {
			pcm, ok := p.next(closed)
			if !ok {
				break
			}
			if _, err := p.Sink.Write(pcm); err != nil {
				slog.Warn("audio: player write failed", "error", err)
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
			}
		}
	}
}

func (p *Player) next(closed <-chan struct{}) ([]byte, bool) {
	select {
	case <-closed:
		return nil, false
	default:
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, false
	}
	pcm := p.queue[0]
	p.queue = p.queue[1:]
	return pcm, true
}
