package release

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultLimit bounds how many releases a single fetch may return.
const DefaultLimit = 20

// Finder fetches, orders and bounds the release list of a repository
// relative to a cursor.
type Finder struct {
	source Source
}

func NewFinder(source Source) *Finder {
	return &Finder{source: source}
}

// List returns releases published strictly after sinceExclusive (all
// releases when nil), in ascending publishedAt order. When more than limit
// releases qualify, only the most recent limit items are kept, still
// ascending. Recency wins over completeness for feeds that were silent for
// a long time.
func (f *Finder) List(ctx context.Context, owner, repo string, sinceExclusive *time.Time, limit int) ([]Release, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	releases, err := f.source.ListReleases(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("list releases %s/%s: %w", owner, repo, err)
	}

	sort.Slice(releases, func(i, j int) bool {
		if releases[i].PublishedAt.Equal(releases[j].PublishedAt) {
			return releases[i].ExternalID < releases[j].ExternalID
		}
		return releases[i].PublishedAt.Before(releases[j].PublishedAt)
	})

	if sinceExclusive != nil {
		filtered := releases[:0]
		for _, r := range releases {
			if r.PublishedAt.After(*sinceExclusive) {
				filtered = append(filtered, r)
			}
		}
		releases = filtered
	}

	// Truncate from the head so the newest limit releases survive.
	if len(releases) > limit {
		releases = releases[len(releases)-limit:]
	}

	for i := range releases {
		releases[i].Name = releases[i].DisplayName()
	}

	return releases, nil
}
