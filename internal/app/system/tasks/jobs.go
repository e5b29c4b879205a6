// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	memberstore "github.com/dalemusser/teamspace/internal/app/store/members"
	notificationstore "github.com/dalemusser/teamspace/internal/app/store/notifications"
	"github.com/dalemusser/teamspace/internal/app/store/oauthstate"
	"go.uber.org/zap"
)

// Job is one periodic maintenance task. The workers runner owns the
// ticker; Run receives a bounded context and returns any error for the
// runner to log.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// NotificationPruneJob deletes read notifications older than retention.
func NotificationPruneJob(store *notificationstore.Store, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "notification-prune",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := store.PruneRead(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned read notifications",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// InvitationExpiryJob marks pending invitations past their expiry as
// expired so they can no longer be redeemed.
func InvitationExpiryJob(store *memberstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "invitation-expiry",
		Interval: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			count, err := store.ExpireStale(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("expired stale invitations", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// OAuthStateCleanupJob removes expired OAuth state tokens. This is a
// backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(store *oauthstate.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "oauth-state-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := store.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired OAuth states", zap.Int64("count", count))
			}
			return nil
		},
	}
}
