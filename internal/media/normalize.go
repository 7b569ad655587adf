package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"tgvidbot/internal/domain"
)

const (
	videoPreset = "fast"
	videoCRF    = "23"
	aacBitrate  = "128k"
	mp3Bitrate  = "192k"
	videoOutExt = ".mp4"
	audioOutExt = ".mp3"
)

// Normalize produces a delivery-ready artifact. Video already in an mp4
// container passes through untouched; other video re-encodes to H.264/AAC
// mp4; anything without a video stream has its audio extracted to MP3. A
// non-zero encoder exit is fatal for the request.
func (t *Tool) Normalize(ctx context.Context, art *domain.MediaArtifact) (*domain.MediaArtifact, error) {
	if art.HasVideo {
		return t.normalizeVideo(ctx, art)
	}
	return t.extractAudio(ctx, art)
}

func (t *Tool) normalizeVideo(ctx context.Context, art *domain.MediaArtifact) (*domain.MediaArtifact, error) {
	if strings.EqualFold(filepath.Ext(art.Path), videoOutExt) {
		out := *art
		out.Kind = domain.KindVideo
		return &out, nil
	}

	outPath := replaceExt(art.Path, videoOutExt)
	t.logger.Info("re-encoding to mp4", "input", art.Path, "output", outPath)

	_, stderr, err := t.run(ctx, t.ffmpegPath, []string{
		"-y",
		"-i", art.Path,
		"-c:v", "libx264",
		"-preset", videoPreset,
		"-crf", videoCRF,
		"-c:a", "aac",
		"-b:a", aacBitrate,
		outPath,
	})
	if err != nil {
		return nil, domain.NewTranscodeError("normalize video", wrapToolErr(err, stderr))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, domain.NewTranscodeError("normalize video", err)
	}

	return &domain.MediaArtifact{
		Path:      outPath,
		SizeBytes: info.Size(),
		HasVideo:  true,
		Kind:      domain.KindVideo,
	}, nil
}

func (t *Tool) extractAudio(ctx context.Context, art *domain.MediaArtifact) (*domain.MediaArtifact, error) {
	outPath := replaceExt(art.Path, audioOutExt)
	if outPath == art.Path {
		// Input is already named .mp3; write next to it instead of over it.
		outPath = strings.TrimSuffix(art.Path, filepath.Ext(art.Path)) + "_audio" + audioOutExt
	}
	t.logger.Info("extracting audio to mp3", "input", art.Path, "output", outPath)

	_, stderr, err := t.run(ctx, t.ffmpegPath, []string{
		"-y",
		"-i", art.Path,
		"-vn",
		"-c:a", "libmp3lame",
		"-b:a", mp3Bitrate,
		outPath,
	})
	if err != nil {
		return nil, domain.NewTranscodeError("extract audio", wrapToolErr(err, stderr))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, domain.NewTranscodeError("extract audio", err)
	}

	return &domain.MediaArtifact{
		Path:      outPath,
		SizeBytes: info.Size(),
		HasVideo:  false,
		Kind:      domain.KindAudio,
	}, nil
}

// replaceExt swaps the file extension, handling extensionless names.
func replaceExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}
