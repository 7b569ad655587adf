// Package media classifies, normalizes and shrinks fetched media files by
// driving ffmpeg and ffprobe.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"tgvidbot/internal/config"
)

// runCommandFunc executes a command and returns captured stdout and stderr.
type runCommandFunc func(ctx context.Context, name string, args []string) (stdout, stderr string, err error)

func runCommand(ctx context.Context, name string, args []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Tool invokes the encoder and probe binaries.
type Tool struct {
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
	run         runCommandFunc
}

// NewTool resolves the encoder and probe binaries. The encoder is required;
// a missing probe binary only disables stream classification, which then
// fails open to video.
func NewTool(cfg config.MediaConfig, logger *slog.Logger) (*Tool, error) {
	ffmpegPath, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg %q not found: %w", cfg.FFmpegPath, err)
	}

	ffprobePath, err := exec.LookPath(cfg.FFprobePath)
	if err != nil {
		logger.Warn("ffprobe not found, stream classification disabled",
			"ffprobe_path", cfg.FFprobePath,
			"error", err,
		)
		ffprobePath = ""
	}

	return &Tool{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
		run:         runCommand,
	}, nil
}

// lastLine returns the final non-empty line of tool output; ffmpeg reports
// the failure cause there.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// wrapToolErr attaches the tool's last stderr line to an exec error.
func wrapToolErr(err error, stderr string) error {
	if line := lastLine(stderr); line != "" {
		return fmt.Errorf("%w: %s", err, line)
	}
	return err
}
