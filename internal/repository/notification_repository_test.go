package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/repository"
	"github.com/tri-star/chase-light-sub003/internal/repository/testutil"
)

func TestNotificationRepository_CreateAndGet(t *testing.T) {
	conn := testutil.NewTestDB(t)
	repo := repository.NewNotificationRepository(conn)

	userID := testutil.SeedUser(t, conn, "alice@example.com")
	feedID := testutil.SeedFeed(t, conn, model.Feed{UserID: userID, Name: "repo1", SourceURL: "https://github.com/o/r"})
	logID := testutil.SeedFeedLog(t, conn, model.FeedLog{FeedID: feedID, ExternalKey: "a", Title: "v1.0.0"})

	created, err := repo.Create(context.Background(), model.Notification{
		UserID: userID,
		Items: []model.NotificationItem{
			{FeedLogID: logID, FeedName: "repo1", Title: "v1.0.0"},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	fetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, userID, fetched.UserID)
	require.Len(t, fetched.Items, 1)
	require.Equal(t, "repo1", fetched.Items[0].FeedName)
	require.Equal(t, "v1.0.0", fetched.Items[0].Title)
	require.Equal(t, logID, fetched.Items[0].FeedLogID)
}

func TestNotificationRepository_CreateRejectsEmptyItems(t *testing.T) {
	conn := testutil.NewTestDB(t)
	repo := repository.NewNotificationRepository(conn)
	userID := testutil.SeedUser(t, conn, "alice@example.com")

	_, err := repo.Create(context.Background(), model.Notification{UserID: userID})
	require.Error(t, err)
}

func TestNotificationRepository_LatestCreatedAt(t *testing.T) {
	conn := testutil.NewTestDB(t)
	repo := repository.NewNotificationRepository(conn)

	userID := testutil.SeedUser(t, conn, "alice@example.com")
	feedID := testutil.SeedFeed(t, conn, model.Feed{UserID: userID, Name: "repo1", SourceURL: "https://github.com/o/r"})
	logID := testutil.SeedFeedLog(t, conn, model.FeedLog{FeedID: feedID, ExternalKey: "a", Title: "v1"})

	latest, err := repo.LatestCreatedAt(context.Background(), userID)
	require.NoError(t, err)
	require.Nil(t, latest)

	before := time.Now().UTC().Add(-time.Second)
	_, err = repo.Create(context.Background(), model.Notification{
		UserID: userID,
		Items:  []model.NotificationItem{{FeedLogID: logID, FeedName: "repo1", Title: "v1"}},
	})
	require.NoError(t, err)

	latest, err = repo.LatestCreatedAt(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.True(t, latest.After(before))
}
