// Package fetch downloads media from user URLs by driving an external
// yt-dlp style extraction tool.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"tgvidbot/internal/config"
	"tgvidbot/internal/domain"
)

// streamFormat selects the best available combined video+audio stream,
// leaning mp4 so most results skip re-encoding.
const streamFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// outputTemplate names downloads after the media title, truncated so
// pathological titles cannot blow past filesystem limits.
const outputTemplate = "%(title).200s.%(ext)s"

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

// Fetcher retrieves media into a workspace directory.
type Fetcher struct {
	binPath  string
	proxyURL string
	timeout  time.Duration
	logger   *slog.Logger
	run      runCommandFunc
}

// New creates a Fetcher. The extraction binary must be present.
func New(cfg config.FetchConfig, logger *slog.Logger) (*Fetcher, error) {
	binPath, err := exec.LookPath(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("extraction tool %q not found: %w", cfg.BinaryPath, err)
	}

	return &Fetcher{
		binPath:  binPath,
		proxyURL: cfg.ProxyURL,
		timeout:  cfg.Timeout,
		logger:   logger,
		run:      runCommand,
	}, nil
}

// Fetch downloads the URL's media into workDir and returns the resulting
// artifact. The wait is unbounded unless a fetch timeout is configured.
func (f *Fetcher) Fetch(ctx context.Context, url, workDir string) (*domain.MediaArtifact, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	f.logger.Info("fetching media", "url", url)

	stdout, stderr, err := f.run(ctx, f.binPath, buildArgs(url, workDir, f.proxyURL))
	if err != nil {
		return nil, domain.NewFetchError(url, strings.TrimSpace(stderr), err)
	}

	path := reportedPath(stdout)
	if path == "" {
		// The tool exited cleanly without printing a path; fall back to the
		// file it left in the workspace.
		path, err = newestFile(workDir)
		if err != nil {
			return nil, domain.NewFetchError(url, strings.TrimSpace(stderr), err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewFetchError(url, strings.TrimSpace(stderr), err)
	}

	f.logger.Info("fetch complete",
		"url", url,
		"path", path,
		"size_bytes", info.Size(),
	)

	return &domain.MediaArtifact{
		Path:      path,
		SizeBytes: info.Size(),
	}, nil
}

// buildArgs assembles the tool invocation: best stream merged into mp4, a
// bounded title-derived filename, single item only, quiet, independent of
// any host-level tool configuration, final path printed for collection, and
// the proxy applied when one is configured.
func buildArgs(url, workDir, proxyURL string) []string {
	args := []string{
		"--ignore-config",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-f", streamFormat,
		"--merge-output-format", "mp4",
		"-o", filepath.Join(workDir, outputTemplate),
		"--no-simulate",
		"--print", "after_move:filepath",
	}
	if proxyURL != "" {
		args = append(args, "--proxy", proxyURL)
	}
	return append(args, url)
}

// reportedPath extracts the tool-printed final file path, if any.
func reportedPath(stdout string) string {
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// newestFile returns the most recently modified regular file in dir.
func newestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		newest    string
		newestMod time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", domain.ErrNoMediaFile
	}
	return newest, nil
}
