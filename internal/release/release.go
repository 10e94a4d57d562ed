package release

import (
	"context"
	"time"
)

// Release is a transient view of one release at the source. It is never
// persisted as-is; the fetch use case maps it into a FeedLog.
type Release struct {
	ExternalID  string
	Name        string
	TagName     string
	URL         string
	Body        string
	PublishedAt time.Time
}

// DisplayName returns the release name, falling back to the tag name when
// the source left the name empty.
func (r Release) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.TagName
}

// Source lists releases for a repository. Implementations translate
// transport failures into the typed errors in the github package and do not
// retry; retry is the caller's responsibility.
type Source interface {
	ListReleases(ctx context.Context, owner, repo string) ([]Release, error)
	GetRelease(ctx context.Context, owner, repo, externalID string) (Release, error)
}
