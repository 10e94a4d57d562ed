package github

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"github.com/tri-star/chase-light-sub003/internal/release"
)

// AtomSource reads a repository's public releases.atom feed. It needs no
// API token, which makes it the fallback when none is configured, at the
// cost of shallower history and no per-release lookup endpoint.
type AtomSource struct {
	httpClient *http.Client
	baseURL    string
	sanitizer  *bluemonday.Policy
}

func NewAtomSource(httpClient *http.Client, baseURL string) *AtomSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = "https://github.com"
	}
	return &AtomSource{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (s *AtomSource) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	feed, err := s.fetchFeed(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	releases := make([]release.Release, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.GUID == "" {
			continue
		}
		releases = append(releases, s.toRelease(item))
	}
	return releases, nil
}

func (s *AtomSource) GetRelease(ctx context.Context, owner, repo, externalID string) (release.Release, error) {
	feed, err := s.fetchFeed(ctx, owner, repo)
	if err != nil {
		return release.Release{}, err
	}
	for _, item := range feed.Items {
		if item != nil && item.GUID == externalID {
			return s.toRelease(item), nil
		}
	}
	return release.Release{}, &StatusError{StatusCode: http.StatusNotFound, sentinel: ErrSourceNotFound}
}

func (s *AtomSource) fetchFeed(ctx context.Context, owner, repo string) (*gofeed.Feed, error) {
	endpoint := fmt.Sprintf("%s/%s/%s/releases.atom", s.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml, application/xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse releases.atom: %w", err)
	}
	return feed, nil
}

func (s *AtomSource) toRelease(item *gofeed.Item) release.Release {
	rel := release.Release{
		ExternalID: item.GUID,
		Name:       item.Title,
		URL:        item.Link,
		Body:       s.stripHTML(item.Content),
	}
	// Atom tags carry the version in the entry ID suffix:
	// tag:github.com,2008:Repository/23096959/v1.2.3
	if idx := strings.LastIndex(item.GUID, "/"); idx >= 0 {
		rel.TagName = item.GUID[idx+1:]
	}
	if item.PublishedParsed != nil {
		rel.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		rel.PublishedAt = item.UpdatedParsed.UTC()
	}
	return rel
}

func (s *AtomSource) stripHTML(content string) string {
	if content == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(content)))
}
