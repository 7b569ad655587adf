// Package pipeline sequences the media preparation stages for one request:
// fetch, stream classification, normalization, size reduction if the video
// is over the delivery cap, and delivery. Each run owns one workspace that
// is torn down on every exit path.
package pipeline

import (
	"context"
	"log/slog"

	"tgvidbot/internal/domain"
	"tgvidbot/internal/workspace"
)

// Fetcher retrieves the URL's media into the workspace directory.
type Fetcher interface {
	Fetch(ctx context.Context, url, workDir string) (*domain.MediaArtifact, error)
}

// MediaProcessor classifies, normalizes and shrinks fetched media files.
type MediaProcessor interface {
	HasVideoStream(ctx context.Context, path string) bool
	Normalize(ctx context.Context, art *domain.MediaArtifact) (*domain.MediaArtifact, error)
	ReduceIfNeeded(ctx context.Context, art *domain.MediaArtifact, capBytes int64) *domain.MediaArtifact
	Inspect(ctx context.Context, path string) *domain.MediaInfo
}

// Deliverer consumes one request's terminal outcome. Exactly one method is
// invoked per run.
type Deliverer interface {
	DeliverVideo(ctx context.Context, req *domain.MediaRequest, art *domain.MediaArtifact) error
	DeliverAudio(ctx context.Context, req *domain.MediaRequest, art *domain.MediaArtifact) error
	ReportFailure(ctx context.Context, req *domain.MediaRequest, reason domain.FailureReason)
}

// Pipeline orchestrates media preparation runs. All collaborators are
// injected at construction; the pipeline itself holds no mutable state, so
// one instance serves concurrent requests.
type Pipeline struct {
	workspaces *workspace.Manager
	fetcher    Fetcher
	media      MediaProcessor
	capBytes   int64
	logger     *slog.Logger
}

// New creates a pipeline delivering artifacts no larger than capBytes.
func New(
	workspaces *workspace.Manager,
	fetcher Fetcher,
	media MediaProcessor,
	capBytes int64,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		workspaces: workspaces,
		fetcher:    fetcher,
		media:      media,
		capBytes:   capBytes,
		logger:     logger,
	}
}

// Run prepares the requested media and reports the outcome through deliver.
// Every run ends in exactly one deliverer call; stage failures are mapped to
// a short user-facing reason while the full detail goes to the log.
func (p *Pipeline) Run(ctx context.Context, req *domain.MediaRequest, deliver Deliverer) {
	logger := p.logger.With("request_id", req.ID)

	ws, err := p.workspaces.Create()
	if err != nil {
		p.fail(ctx, req, deliver, logger, "workspace", err)
		return
	}
	defer ws.Cleanup()

	logger.Info("pipeline started",
		"url", req.SourceURL,
		"workspace", ws.Dir(),
	)

	art, err := p.fetcher.Fetch(ctx, req.SourceURL, ws.Dir())
	if err != nil {
		p.fail(ctx, req, deliver, logger, "fetch", err)
		return
	}

	// Classification never fails the run; it only selects which
	// normalization path to take.
	art.HasVideo = p.media.HasVideoStream(ctx, art.Path)
	logger.Info("streams classified", "path", art.Path, "has_video", art.HasVideo)

	art, err = p.media.Normalize(ctx, art)
	if err != nil {
		p.fail(ctx, req, deliver, logger, "normalize", err)
		return
	}
	logger.Info("media normalized", "kind", art.Kind, "size_bytes", art.SizeBytes)

	if art.Kind == domain.KindVideo {
		reduced := p.media.ReduceIfNeeded(ctx, art, p.capBytes)
		if reduced == nil {
			p.fail(ctx, req, deliver, logger, "reduce",
				&domain.SizeExceededError{Kind: art.Kind, SizeBytes: art.SizeBytes})
			return
		}
		art = reduced
	} else if !art.WithinCap(p.capBytes) {
		// Audio is never size-reduced; an oversized result is terminal.
		p.fail(ctx, req, deliver, logger, "reduce",
			&domain.SizeExceededError{Kind: art.Kind, SizeBytes: art.SizeBytes})
		return
	}

	// Upload metadata is a nicety; a failed probe never blocks delivery.
	art.Info = p.media.Inspect(ctx, art.Path)
	if art.Info != nil {
		logger.Info("artifact probed",
			"duration_s", art.Info.DurationSeconds(),
			"width", art.Info.Width,
			"height", art.Info.Height,
		)
	}

	if err := p.deliverArtifact(ctx, req, deliver, art); err != nil {
		logger.Error("pipeline failed",
			"stage", "deliver",
			"reason", domain.ReasonDelivery,
			"error", err,
		)
		deliver.ReportFailure(ctx, req, domain.ReasonDelivery)
		return
	}

	logger.Info("pipeline complete",
		"kind", art.Kind,
		"path", art.Path,
		"size_bytes", art.SizeBytes,
	)
}

func (p *Pipeline) deliverArtifact(ctx context.Context, req *domain.MediaRequest, deliver Deliverer, art *domain.MediaArtifact) error {
	if art.Kind == domain.KindAudio {
		return deliver.DeliverAudio(ctx, req, art)
	}
	return deliver.DeliverVideo(ctx, req, art)
}

// fail classifies err into a user-facing reason, logs the full detail, and
// reports the reason through the deliverer.
func (p *Pipeline) fail(ctx context.Context, req *domain.MediaRequest, deliver Deliverer, logger *slog.Logger, stage string, err error) {
	reason := classify(err)
	logger.Error("pipeline failed",
		"stage", stage,
		"reason", reason,
		"error", err,
	)
	deliver.ReportFailure(ctx, req, reason)
}
