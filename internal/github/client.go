package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/release"
)

const defaultAPIBase = "https://api.github.com"

// Client is a thin wrapper over the GitHub releases REST API. It classifies
// failures into the typed errors in this package and never retries.
type Client struct {
	httpClient *http.Client
	apiBase    string
	token      string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithAPIBase(apiBase string) Option {
	return func(c *Client) { c.apiBase = strings.TrimSuffix(apiBase, "/") }
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    defaultAPIBase,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiRelease struct {
	ID          int64      `json:"id"`
	Name        *string    `json:"name"`
	TagName     string     `json:"tag_name"`
	HTMLURL     string     `json:"html_url"`
	Body        *string    `json:"body"`
	Draft       bool       `json:"draft"`
	PublishedAt *time.Time `json:"published_at"`
}

func (c *Client) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=100",
		c.apiBase, url.PathEscape(owner), url.PathEscape(repo))

	var apiReleases []apiRelease
	if err := c.getJSON(ctx, endpoint, &apiReleases); err != nil {
		return nil, err
	}

	releases := make([]release.Release, 0, len(apiReleases))
	for _, r := range apiReleases {
		// Drafts have no published_at and are invisible to watchers.
		if r.Draft || r.PublishedAt == nil {
			continue
		}
		releases = append(releases, toRelease(r))
	}
	return releases, nil
}

func (c *Client) GetRelease(ctx context.Context, owner, repo, externalID string) (release.Release, error) {
	if _, err := strconv.ParseInt(externalID, 10, 64); err != nil {
		return release.Release{}, fmt.Errorf("release id %q: %w", externalID, err)
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/%s",
		c.apiBase, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(externalID))

	var r apiRelease
	if err := c.getJSON(ctx, endpoint, &r); err != nil {
		return release.Release{}, err
	}
	return toRelease(r), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toRelease(r apiRelease) release.Release {
	rel := release.Release{
		ExternalID: strconv.FormatInt(r.ID, 10),
		TagName:    r.TagName,
		URL:        r.HTMLURL,
	}
	if r.Name != nil {
		rel.Name = *r.Name
	}
	if r.Body != nil {
		rel.Body = *r.Body
	}
	if r.PublishedAt != nil {
		rel.PublishedAt = r.PublishedAt.UTC()
	}
	return rel
}

// ParseRepoURL extracts owner and repository name from a GitHub repository
// URL such as https://github.com/golang/go or the short form golang/go.
func ParseRepoURL(sourceURL string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(sourceURL, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if u, parseErr := url.Parse(trimmed); parseErr == nil && u.Host != "" {
		trimmed = strings.TrimPrefix(u.Path, "/")
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("invalid repository url: %s", sourceURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
