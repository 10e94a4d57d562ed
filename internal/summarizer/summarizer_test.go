package summarizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type providerStub struct {
	response string
	err      error
	lastBody string
}

func (p *providerStub) Complete(ctx context.Context, systemPrompt, content string) (string, error) {
	p.lastBody = content
	return p.response, p.err
}

func (p *providerStub) Name() string { return "stub" }

func TestAnalyze_ParsesItems(t *testing.T) {
	provider := &providerStub{response: `[
		{"summary": "added streaming mode", "link": {"title": "#12", "url": "https://github.com/o/r/pull/12"}},
		{"summary": "fixed reconnect loop", "link": null}
	]`}
	sum := New(provider, NewRateLimiter(0), "en-US")

	items, err := sum.Analyze(context.Background(), "## Changes\n- streaming\n- reconnect")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "added streaming mode", items[0].Summary)
	require.NotNil(t, items[0].LinkURL)
	require.Equal(t, "https://github.com/o/r/pull/12", *items[0].LinkURL)
	require.Equal(t, "fixed reconnect loop", items[1].Summary)
	require.Nil(t, items[1].LinkURL)
}

func TestAnalyze_ToleratesCodeFences(t *testing.T) {
	provider := &providerStub{response: "```json\n[{\"summary\": \"one change\", \"link\": null}]\n```"}
	sum := New(provider, NewRateLimiter(0), "en-US")

	items, err := sum.Analyze(context.Background(), "body")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "one change", items[0].Summary)
}

func TestAnalyze_EmptyBodySkipsProvider(t *testing.T) {
	provider := &providerStub{response: "should not be called"}
	sum := New(provider, NewRateLimiter(0), "en-US")

	items, err := sum.Analyze(context.Background(), "   ")
	require.NoError(t, err)
	require.Nil(t, items)
	require.Empty(t, provider.lastBody)
}

func TestAnalyze_EmptyResultSet(t *testing.T) {
	provider := &providerStub{response: "[]"}
	sum := New(provider, NewRateLimiter(0), "en-US")

	items, err := sum.Analyze(context.Background(), "chore: bump deps")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestAnalyze_ProviderErrorIsRetryable(t *testing.T) {
	provider := &providerStub{err: errors.New("overloaded")}
	sum := New(provider, NewRateLimiter(0), "en-US")

	_, err := sum.Analyze(context.Background(), "body")
	require.ErrorIs(t, err, ErrSummarization)
}

func TestAnalyze_GarbageOutputIsRetryable(t *testing.T) {
	provider := &providerStub{response: "Sure! Here are the changes:"}
	sum := New(provider, NewRateLimiter(0), "en-US")

	_, err := sum.Analyze(context.Background(), "body")
	require.ErrorIs(t, err, ErrSummarization)
}

func TestAnalyze_SkipsBlankSummaries(t *testing.T) {
	provider := &providerStub{response: `[{"summary": "  "}, {"summary": "kept"}]`}
	sum := New(provider, NewRateLimiter(0), "en-US")

	items, err := sum.Analyze(context.Background(), "body")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "kept", items[0].Summary)
}

func TestAnalyze_StripsHTMLBeforeProviderCall(t *testing.T) {
	provider := &providerStub{response: "[]"}
	sum := New(provider, NewRateLimiter(0), "en-US")

	_, err := sum.Analyze(context.Background(), "<p>first</p><p>second</p><script>alert(1)</script>")
	require.NoError(t, err)
	require.Equal(t, "first\nsecond", provider.lastBody)
}

func TestHTMLToText_PlainTextPassesThrough(t *testing.T) {
	require.Equal(t, "- bullet one\n- bullet two", HTMLToText("- bullet one\n- bullet two"))
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Provider: ProviderOpenAI, Model: "gpt-4o"})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewProvider(Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.ErrorIs(t, err, ErrMissingModel)

	_, err = NewProvider(Config{Provider: "mystery", APIKey: "k", Model: "m"})
	require.ErrorIs(t, err, ErrInvalidProvider)

	p, err := NewProvider(Config{Provider: ProviderAnthropic, APIKey: "k", Model: "m"})
	require.NoError(t, err)
	require.Equal(t, ProviderAnthropic, p.Name())
}
