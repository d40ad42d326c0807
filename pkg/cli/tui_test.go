package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConsole_Conversation(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.User("내일 병원 가요")
	c.AssistantDelta("몇 시")
	c.AssistantDelta("에 가세요?")
	c.Status("recording")
	c.Error(errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"내일 병원 가요", "몇 시", "에 가세요?", "recording", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// The delta line is ended before the status line.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("lines = %d, want 4:\n%s", len(lines), out)
	}
}

func TestConsole_Box(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Box("Sources", []string{"short", strings.Repeat("x", 50)}, 10)
	out := buf.String()
	if !strings.Contains(out, "Sources") || !strings.Contains(out, "short") {
		t.Errorf("box = %s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 11)) {
		t.Errorf("long line not truncated: %s", out)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
		{"안녕하세요", 4, "안녕"},
	}
	for _, tt := range tests {
		if got := truncateString(tt.s, tt.width); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}
