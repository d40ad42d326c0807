package audio

import (
	"testing"
	"time"
)

func TestFormat_BytesInDuration(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		d      time.Duration
		want   int
	}{
		{"session 100ms", SessionFormat, 100 * time.Millisecond, 4800},
		{"48k stereo 100ms", Format{SampleRate: 48000, Stereo: true}, 100 * time.Millisecond, 19200},
		{"16k mono 20ms", Format{SampleRate: 16000}, 20 * time.Millisecond, 640},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.BytesInDuration(tt.d); got != tt.want {
				t.Errorf("BytesInDuration(%v) = %d, want %d", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormat_Duration(t *testing.T) {
	if got := SessionFormat.Duration(4800); got != 100*time.Millisecond {
		t.Errorf("Duration(4800) = %v, want 100ms", got)
	}
	if got := (Format{}).Duration(4800); got != 0 {
		t.Errorf("zero format Duration = %v, want 0", got)
	}
}

func TestFormat_String(t *testing.T) {
	if got := (Format{SampleRate: 48000, Stereo: true}).String(); got != "L16/48000Hz/stereo" {
		t.Errorf("String() = %q", got)
	}
	if got := SessionFormat.String(); got != "L16/24000Hz/mono" {
		t.Errorf("String() = %q", got)
	}
}

func TestConvert_StereoToMono(t *testing.T) {
	c, err := newConverter(Format{SampleRate: 24000, Stereo: true}, SessionFormat)
	if err != nil {
		t.Fatalf("newConverter: %v", err)
	}
	// L=100 R=200, L=-100 R=-300
	in := []byte{100, 0, 200, 0, 0x9c, 0xff, 0xd4, 0xfe}
	out, err := c.convert(in)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := []int16{150, -200}
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	for i, w := range want {
		got := int16(out[i*2]) | int16(out[i*2+1])<<8
		if got != w {
			t.Errorf("sample[%d] = %d, want %d", i, got, w)
		}
	}
}

func TestConvert_MonoToStereo(t *testing.T) {
	c, err := newConverter(SessionFormat, Format{SampleRate: 24000, Stereo: true})
	if err != nil {
		t.Fatalf("newConverter: %v", err)
	}
	out, err := c.convert([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := []byte{1, 2, 1, 2, 3, 4, 3, 4}
	if string(out) != string(want) {
		t.Errorf("convert = %v, want %v", out, want)
	}
}

func TestConvert_DropsPartialFrame(t *testing.T) {
	c, err := newConverter(SessionFormat, SessionFormat)
	if err != nil {
		t.Fatalf("newConverter: %v", err)
	}
	out, err := c.convert([]byte{1, 2, 3})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}

func TestConvert_InvalidFormat(t *testing.T) {
	if _, err := newConverter(Format{SampleRate: 0}, SessionFormat); err == nil {
		t.Error("expected error for zero sample rate")
	}
}

func TestFloatRoundTrip(t *testing.T) {
	in := []byte{0x00, 0x40, 0x00, 0xc0} // 16384, -16384
	out := fromFloat(nil, toFloat(in))
	for i := 0; i < len(in); i += 2 {
		a := int16(in[i]) | int16(in[i+1])<<8
		b := int16(out[i]) | int16(out[i+1])<<8
		if d := int(a) - int(b); d > 1 || d < -1 {
			t.Errorf("sample %d: %d -> %d", i/2, a, b)
		}
	}
}

func TestFromFloat_Clips(t *testing.T) {
	out := fromFloat(nil, []float64{2.0, -2.0})
	hi := int16(out[0]) | int16(out[1])<<8
	lo := int16(out[2]) | int16(out[3])<<8
	if hi != 32767 || lo != -32768 {
		t.Errorf("clipped = %d, %d", hi, lo)
	}
}
