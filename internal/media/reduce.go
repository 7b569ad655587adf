package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"tgvidbot/internal/domain"
)

const (
	reducePreset = "veryfast"
	reduceCRF    = "28"
	// reduceScale caps width at 1280 and keeps the computed height even, as
	// 4:2:0 chroma subsampling requires.
	reduceScale = "scale='min(1280,iw)':-2"

	compressedSuffix = "_compressed.mp4"
)

// ReduceIfNeeded returns the artifact unchanged when it already fits
// capBytes. Otherwise it makes exactly one compression pass at reduced
// resolution and quality. A nil result is terminal: the pass failed or its
// output was still over the cap, and no further attempt is made. Audio
// artifacts are never reduced.
func (t *Tool) ReduceIfNeeded(ctx context.Context, art *domain.MediaArtifact, capBytes int64) *domain.MediaArtifact {
	if art.Kind != domain.KindVideo {
		return art
	}
	if art.WithinCap(capBytes) {
		return art
	}

	outPath := compressedPath(art.Path)
	t.logger.Info("video over delivery cap, compressing",
		"input", art.Path,
		"size_bytes", art.SizeBytes,
		"cap_bytes", capBytes,
		"output", outPath,
	)

	_, stderr, err := t.run(ctx, t.ffmpegPath, []string{
		"-y",
		"-i", art.Path,
		"-vf", reduceScale,
		"-c:v", "libx264",
		"-preset", reducePreset,
		"-crf", reduceCRF,
		"-c:a", "aac",
		"-b:a", aacBitrate,
		outPath,
	})
	if err != nil {
		t.logger.Error("compression failed",
			"input", art.Path,
			"error", wrapToolErr(err, stderr),
		)
		return nil
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.logger.Error("compressed file missing", "output", outPath, "error", err)
		return nil
	}
	if info.Size() > capBytes {
		t.logger.Info("compressed video still over cap",
			"output", outPath,
			"size_bytes", info.Size(),
			"cap_bytes", capBytes,
		)
		return nil
	}

	return &domain.MediaArtifact{
		Path:      outPath,
		SizeBytes: info.Size(),
		HasVideo:  true,
		Kind:      domain.KindVideo,
	}
}

// compressedPath names the single compression pass output.
func compressedPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + compressedSuffix
}
