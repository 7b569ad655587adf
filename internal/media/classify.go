package media

import (
	"context"
	"strings"
)

// HasVideoStream reports whether the file contains a video stream, by asking
// ffprobe for the first video stream's codec type. Classification fails
// open: when the probe is unavailable or errors, the file is assumed to be
// video, since over-processing audio costs one normalization attempt while
// the reverse would silently strip the visual stream. A clean probe with
// empty output is a definite "no video stream".
func (t *Tool) HasVideoStream(ctx context.Context, path string) bool {
	if t.ffprobePath == "" {
		return true
	}

	stdout, stderr, err := t.run(ctx, t.ffprobePath, []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		path,
	})
	if err != nil {
		t.logger.Warn("stream probe failed, assuming video",
			"path", path,
			"error", wrapToolErr(err, stderr),
		)
		return true
	}

	return strings.TrimSpace(stdout) != ""
}
