package domain

// MediaKind distinguishes the two deliverable artifact types.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// MediaArtifact is a media file produced by one pipeline stage. Each stage
// either returns a new artifact pointing at a new file inside the request's
// workspace or fails; superseded artifacts stay on disk until the workspace
// is torn down.
type MediaArtifact struct {
	Path      string
	SizeBytes int64
	HasVideo  bool
	Kind      MediaKind
	Info      *MediaInfo
}

// WithinCap reports whether the artifact fits under the delivery size cap.
func (a *MediaArtifact) WithinCap(capBytes int64) bool {
	return a.SizeBytes <= capBytes
}

// MediaInfo carries probe metadata attached to the final artifact. Used to
// enrich the upload; absence never fails a request.
type MediaInfo struct {
	Duration float64
	Width    int
	Height   int
}

// DurationSeconds returns the rounded whole-second duration.
func (i *MediaInfo) DurationSeconds() int {
	if i == nil || i.Duration <= 0 {
		return 0
	}
	return int(i.Duration + 0.5)
}
