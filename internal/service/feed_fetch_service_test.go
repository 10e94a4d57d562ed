package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/release"
	"github.com/tri-star/chase-light-sub003/internal/repository"
	"github.com/tri-star/chase-light-sub003/internal/repository/testutil"
	"github.com/tri-star/chase-light-sub003/internal/service"
)

type sourceStub struct {
	releases []release.Release
	err      error
}

func (s *sourceStub) ListReleases(ctx context.Context, owner, repo string) ([]release.Release, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]release.Release, len(s.releases))
	copy(out, s.releases)
	return out, nil
}

func (s *sourceStub) GetRelease(ctx context.Context, owner, repo, externalID string) (release.Release, error) {
	for _, r := range s.releases {
		if r.ExternalID == externalID {
			return r, nil
		}
	}
	return release.Release{}, errors.New("not found")
}

func publishedAt(d int) time.Time {
	return time.Date(2026, 2, d, 0, 0, 0, 0, time.UTC)
}

func TestFeedFetchService_CreatesLogsAndAdvancesCursor(t *testing.T) {
	conn := testutil.NewTestDB(t)
	feedRepo := repository.NewFeedRepository(conn)
	logRepo := repository.NewFeedLogRepository(conn)
	feedID := testutil.SeedFeed(t, conn, model.Feed{Name: "repo1", SourceURL: "https://github.com/octo/repo1"})

	source := &sourceStub{releases: []release.Release{
		{ExternalID: "2", Name: "v2.0.0", PublishedAt: publishedAt(2), Body: "changelog"},
		{ExternalID: "1", Name: "", TagName: "v1.0.0", PublishedAt: publishedAt(1)},
	}}
	svc := service.NewFeedFetchService(feedRepo, logRepo, release.NewFinder(source), 20)

	created, err := svc.Execute(context.Background(), feedID)
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Equal(t, "v1.0.0", created[0].Title)
	require.Equal(t, "v2.0.0", created[1].Title)
	require.Equal(t, model.FeedLogStatusWait, created[0].Status)
	require.NotNil(t, created[1].Body)

	feed, err := feedRepo.GetByID(context.Background(), feedID)
	require.NoError(t, err)
	require.NotNil(t, feed.Cursor)
	require.True(t, feed.Cursor.Equal(publishedAt(2)))
}

func TestFeedFetchService_RerunCreatesNoDuplicates(t *testing.T) {
	conn := testutil.NewTestDB(t)
	feedRepo := repository.NewFeedRepository(conn)
	logRepo := repository.NewFeedLogRepository(conn)
	feedID := testutil.SeedFeed(t, conn, model.Feed{Name: "repo1", SourceURL: "https://github.com/octo/repo1"})

	source := &sourceStub{releases: []release.Release{
		{ExternalID: "1", Name: "v1.0.0", PublishedAt: publishedAt(1)},
	}}
	svc := service.NewFeedFetchService(feedRepo, logRepo, release.NewFinder(source), 20)

	created, err := svc.Execute(context.Background(), feedID)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// The cursor filtered the release; nothing new is created.
	created, err = svc.Execute(context.Background(), feedID)
	require.NoError(t, err)
	require.Empty(t, created)

	logs, err := logRepo.ListPending(context.Background(), []string{model.FeedLogStatusWait})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestFeedFetchService_CursorNeverRegresses(t *testing.T) {
	conn := testutil.NewTestDB(t)
	feedRepo := repository.NewFeedRepository(conn)
	logRepo := repository.NewFeedLogRepository(conn)

	cursor := publishedAt(10)
	feedID := testutil.SeedFeed(t, conn, model.Feed{
		Name:      "repo1",
		SourceURL: "https://github.com/octo/repo1",
		Cursor:    &cursor,
	})

	// All remaining releases are older than the stored cursor.
	source := &sourceStub{releases: []release.Release{
		{ExternalID: "1", Name: "v1.0.0", PublishedAt: publishedAt(1)},
	}}
	svc := service.NewFeedFetchService(feedRepo, logRepo, release.NewFinder(source), 20)

	created, err := svc.Execute(context.Background(), feedID)
	require.NoError(t, err)
	require.Empty(t, created)

	feed, err := feedRepo.GetByID(context.Background(), feedID)
	require.NoError(t, err)
	require.NotNil(t, feed.Cursor)
	require.True(t, feed.Cursor.Equal(cursor))
}

func TestFeedFetchService_MissingFeed(t *testing.T) {
	conn := testutil.NewTestDB(t)
	svc := service.NewFeedFetchService(
		repository.NewFeedRepository(conn),
		repository.NewFeedLogRepository(conn),
		release.NewFinder(&sourceStub{}),
		20,
	)

	_, err := svc.Execute(context.Background(), 424242)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestFeedFetchService_InvalidSourceURL(t *testing.T) {
	conn := testutil.NewTestDB(t)
	feedRepo := repository.NewFeedRepository(conn)
	feedID := testutil.SeedFeed(t, conn, model.Feed{Name: "bad", SourceURL: "https://example.com/not-github"})

	svc := service.NewFeedFetchService(
		feedRepo,
		repository.NewFeedLogRepository(conn),
		release.NewFinder(&sourceStub{}),
		20,
	)

	_, err := svc.Execute(context.Background(), feedID)
	require.ErrorIs(t, err, service.ErrInvalid)
}
