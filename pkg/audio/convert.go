package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// converter turns PCM16 in one format into PCM16 in another. It keeps the
// resampler state across calls so a stream can be converted chunk by chunk.
type converter struct {
	src, dst  Format
	resampler resampling.Resampler
}

func newConverter(src, dst Format) (*converter, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	if err := dst.validate(); err != nil {
		return nil, err
	}
	c := &converter{src: src, dst: dst}
	if src.SampleRate != dst.SampleRate {
		rs, err := resampling.New(&resampling.Config{
			InputRate:  float64(src.SampleRate),
			OutputRate: float64(dst.SampleRate),
			Channels:   dst.Channels(),
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return nil, fmt.Errorf("audio: create resampler: %w", err)
		}
		c.resampler = rs
	}
	return c, nil
}

// convert converts whole frames of pcm. A trailing partial frame is dropped.
// The returned slice does not alias pcm.
func (c *converter) convert(pcm []byte) ([]byte, error) {
	pcm = pcm[:len(pcm)/c.src.FrameBytes()*c.src.FrameBytes()]
	buf := make([]byte, 0, len(pcm)*2)
	switch {
	case c.src.Stereo && !c.dst.Stereo:
		buf = stereoToMono(buf, pcm)
	case !c.src.Stereo && c.dst.Stereo:
		buf = monoToStereo(buf, pcm)
	default:
		buf = append(buf, pcm...)
	}
	if c.resampler == nil || len(buf) == 0 {
		return buf, nil
	}
	out, err := c.resampler.Process(toFloat(buf))
	if err != nil {
		return nil, fmt.Errorf("audio: resample: %w", err)
	}
	return fromFloat(buf[:0], out), nil
}

func stereoToMono(dst, src []byte) []byte {
	for i := 0; i+3 < len(src); i += 4 {
		l := int16(src[i]) | int16(src[i+1])<<8
		r := int16(src[i+2]) | int16(src[i+3])<<8
		m := int16((int32(l) + int32(r)) / 2)
		dst = append(dst, byte(m), byte(m>>8))
	}
	return dst
}

func monoToStereo(dst, src []byte) []byte {
	for i := 0; i+1 < len(src); i += 2 {
		dst = append(dst, src[i], src[i+1], src[i], src[i+1])
	}
	return dst
}

// toFloat converts PCM16 samples to floats in [-1, 1).
func toFloat(pcm []byte) []float64 {
	out := make([]float64, len(pcm)/2)
	for i := range out {
		s := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		out[i] = float64(s) / 32768.0
	}
	return out
}

// fromFloat appends samples as PCM16 to dst, clipping out-of-range values.
func fromFloat(dst []byte, samples []float64) []byte {
	for _, f := range samples {
		var s int16
		switch {
		case f >= 1.0:
			s = 32767
		case f < -1.0:
			s = -32768
		default:
			s = int16(f * 32767.0)
		}
		dst = append(dst, byte(s), byte(s>>8))
	}
	return dst
}
