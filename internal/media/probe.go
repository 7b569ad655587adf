package media

import (
	"context"
	"encoding/json"
	"strconv"

	"tgvidbot/internal/domain"
)

// ffprobe JSON wire types. Numbers under format arrive as strings.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Inspect probes a finished artifact for upload metadata. Probe failures
// are logged and yield nil; metadata never blocks delivery.
func (t *Tool) Inspect(ctx context.Context, path string) *domain.MediaInfo {
	if t.ffprobePath == "" {
		return nil
	}

	stdout, stderr, err := t.run(ctx, t.ffprobePath, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	})
	if err != nil {
		t.logger.Warn("artifact probe failed",
			"path", path,
			"error", wrapToolErr(err, stderr),
		)
		return nil
	}

	info, err := parseProbeOutput([]byte(stdout))
	if err != nil {
		t.logger.Warn("artifact probe output unparseable", "path", path, "error", err)
		return nil
	}
	return info
}

// parseProbeOutput converts ffprobe JSON into MediaInfo, taking dimensions
// from the first video stream that carries them.
func parseProbeOutput(data []byte) (*domain.MediaInfo, error) {
	var parsed ffprobeOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}

	info := &domain.MediaInfo{}
	if parsed.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			info.Duration = dur
		}
	}
	for _, s := range parsed.Streams {
		if s.CodecType != "video" {
			continue
		}
		if info.Width == 0 && s.Width > 0 {
			info.Width = s.Width
		}
		if info.Height == 0 && s.Height > 0 {
			info.Height = s.Height
		}
	}
	return info, nil
}
