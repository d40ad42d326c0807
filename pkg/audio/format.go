package audio

import (
	"fmt"
	"time"
)

// SessionFormat is the PCM format the realtime session expects on both
// directions: 24 kHz, mono, 16-bit signed little-endian.
var SessionFormat = Format{SampleRate: 24000}

// Format describes a 16-bit signed integer PCM stream.
type Format struct {
	// SampleRate is the sample rate in Hz (e.g., 24000, 48000).
	SampleRate int `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"`

	// Stereo indicates 2 interleaved channels if true, mono if false.
	Stereo bool `yaml:"stereo,omitempty" json:"stereo,omitempty"`
}

// Channels returns the number of channels.
func (f Format) Channels() int {
	if f.Stereo {
		return 2
	}
	return 1
}

// FrameBytes returns the size of one frame (one sample per channel).
func (f Format) FrameBytes() int {
	return 2 * f.Channels()
}

// BytesInDuration returns the number of bytes in d, rounded down to a whole
// frame.
func (f Format) BytesInDuration(d time.Duration) int {
	frames := int(time.Duration(f.SampleRate) * d / time.Second)
	return frames * f.FrameBytes()
}

// Duration returns the playback duration of n bytes.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate == 0 {
		return 0
	}
	frames := n / f.FrameBytes()
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

func (f Format) String() string {
	ch := "mono"
	if f.Stereo {
		ch = "stereo"
	}
	return fmt.Sprintf("L16/%dHz/%s", f.SampleRate, ch)
}

func (f Format) validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("audio: invalid sample rate %d", f.SampleRate)
	}
	return nil
}
