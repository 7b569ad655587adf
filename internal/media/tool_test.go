package media

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestTool builds a Tool whose commands are served by run instead of real
// binaries.
func newTestTool(run runCommandFunc) *Tool {
	return &Tool{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		logger:      testLogger(),
		run:         run,
	}
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single line", "Conversion failed!", "Conversion failed!"},
		{"multi line", "frame=1\nframe=2\nConversion failed!\n", "Conversion failed!"},
		{"trailing blanks", "Conversion failed!\n\n  \n", "Conversion failed!"},
		{"whitespace only", " \n \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lastLine(tt.in); got != tt.want {
				t.Errorf("lastLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
