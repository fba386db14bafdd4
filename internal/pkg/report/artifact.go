package report

import (
	"context"
	"errors"
)

var (
	// ErrReportUnavailable means the provider never produced a report
	// reference within the poll budget.
	ErrReportUnavailable = errors.New("report: provider report unavailable")

	// ErrUploadFailed means the artifact could not be persisted. Callers must
	// not email a link that was never stored.
	ErrUploadFailed = errors.New("report: artifact upload failed")
)

// Artifact is the deliverable vehicle-history report: a hosted URL, raw PDF
// bytes, or both when a converted PDF has been persisted to a public store.
type Artifact struct {
	VIN        string
	ObjectName string
	URL        string
	PDF        []byte
}

// Hosted reports whether the artifact can be delivered as a link.
func (a *Artifact) Hosted() bool {
	return a != nil && a.URL != ""
}

// ArtifactProvider materializes the deliverable report for a VIN. The concrete
// strategy (conversion, link passthrough, caching) is chosen by configuration.
type ArtifactProvider interface {
	Materialize(ctx context.Context, vin, descriptor string) (*Artifact, error)
}

// ArtifactStore persists materialized artifacts keyed by VIN so webhook
// redeliveries and repeat purchases reuse the stored report instead of
// re-converting. Lookup returns (nil, nil) on a cache miss. Save sets the
// artifact's URL when the backing store hosts objects publicly.
type ArtifactStore interface {
	Lookup(ctx context.Context, vin string) (*Artifact, error)
	Save(ctx context.Context, artifact *Artifact) error
}
