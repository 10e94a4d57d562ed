package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tri-star/chase-light-sub003/internal/logger"
	"github.com/tri-star/chase-light-sub003/internal/metrics"
	"github.com/tri-star/chase-light-sub003/internal/model"
	"github.com/tri-star/chase-light-sub003/internal/repository"
)

// NotificationService aggregates feed logs created since each user's last
// digest into at most one new notification per user. The watermark is the
// creation time of the user's previous notification, so multiple runs per
// day never duplicate a digest.
type NotificationService interface {
	Run(ctx context.Context) error
}

type notificationService struct {
	users         repository.UserRepository
	feeds         repository.FeedRepository
	logs          repository.FeedLogRepository
	notifications repository.NotificationRepository
}

func NewNotificationService(
	users repository.UserRepository,
	feeds repository.FeedRepository,
	logs repository.FeedLogRepository,
	notifications repository.NotificationRepository,
) NotificationService {
	return &notificationService{
		users:         users,
		feeds:         feeds,
		logs:          logs,
		notifications: notifications,
	}
}

func (s *notificationService) Run(ctx context.Context) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		if err := s.notifyUser(ctx, user); err != nil {
			// One broken user must not block the rest of the batch.
			logger.Error("user digest failed",
				"module", "service", "action", "notify", "resource", "notification",
				"user_id", user.ID, "error", err)
		}
	}
	return nil
}

func (s *notificationService) notifyUser(ctx context.Context, user model.User) error {
	watermark, err := s.notifications.LatestCreatedAt(ctx, user.ID)
	if err != nil {
		return err
	}
	since := time.Time{}
	if watermark != nil {
		since = *watermark
	}

	logs, err := s.logs.ListCreatedSince(ctx, user.ID, since)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	feeds, err := s.feeds.ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	feedNames := make(map[int64]string, len(feeds))
	for _, feed := range feeds {
		feedNames[feed.ID] = feed.Name
	}

	// ListCreatedSince returns logs in ascending date order already.
	notification := model.Notification{UserID: user.ID}
	for _, log := range logs {
		notification.Items = append(notification.Items, model.NotificationItem{
			FeedLogID: log.ID,
			FeedName:  feedNames[log.FeedID],
			Title:     log.Title,
		})
	}

	created, err := s.notifications.Create(ctx, notification)
	if err != nil {
		return err
	}

	metrics.NotificationsCreated.Inc()
	logger.Info("user digest created",
		"module", "service", "action", "notify", "resource", "notification",
		"user_id", user.ID, "notification_id", created.ID, "items", len(created.Items))
	return nil
}
