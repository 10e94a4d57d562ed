// Package summarizer turns raw release notes into structured findings using
// an LLM provider.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/model"
)

// ErrSummarization marks retryable analysis failures (provider errors,
// unparseable output).
var ErrSummarization = errors.New("summarization failed")

// Summarizer analyzes a release body into zero or more findings.
type Summarizer interface {
	Analyze(ctx context.Context, body string) ([]model.FeedLogItem, error)
}

type service struct {
	provider    Provider
	rateLimiter *RateLimiter
	language    string
}

// New creates a Summarizer on top of the given provider.
func New(provider Provider, rateLimiter *RateLimiter, language string) Summarizer {
	return &service{
		provider:    provider,
		rateLimiter: rateLimiter,
		language:    language,
	}
}

type analyzedItem struct {
	Summary string `json:"summary"`
	Link    *struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"link"`
}

func (s *service) Analyze(ctx context.Context, body string) ([]model.FeedLogItem, error) {
	body = strings.TrimSpace(HTMLToText(body))
	if body == "" {
		return nil, nil
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	prompt := GetAnalyzePrompt(s.language)
	raw, err := s.provider.Complete(ctx, prompt, body)
	if err != nil {
		logger.Warn("release analysis failed", "module", "summarizer", "provider", s.provider.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	parsed, err := parseItems(raw)
	if err != nil {
		logger.Warn("release analysis output unparseable", "module", "summarizer", "provider", s.provider.Name(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSummarization, err)
	}

	items := make([]model.FeedLogItem, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Summary) == "" {
			continue
		}
		item := model.FeedLogItem{Summary: strings.TrimSpace(p.Summary)}
		if p.Link != nil && p.Link.URL != "" {
			title := p.Link.Title
			url := p.Link.URL
			item.LinkTitle = &title
			item.LinkURL = &url
		}
		items = append(items, item)
	}
	return items, nil
}

// parseItems decodes the provider output, tolerating Markdown code fences
// some models insist on emitting.
func parseItems(raw string) ([]analyzedItem, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return nil, nil
	}

	var items []analyzedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}
