package notification

import (
	"context"
	"fmt"
	"time"

	"chargehub/config"
	"chargehub/models"
	"chargehub/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationService queues realtime notifications for drivers and hosts.
// Delivery is best effort: callers log enqueue failures and move on.
type NotificationService interface {
	Notify(ctx context.Context, payload models.NotificationPayload) error
}

// AsynqNotificationService enqueues notification tasks on the shared Redis
// task queue; the background worker fans them out.
type AsynqNotificationService struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqNotificationService builds the service with its own asynq client.
func NewAsynqNotificationService(logger *zap.Logger) *AsynqNotificationService {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	return &AsynqNotificationService{Client: client, Logger: logger}
}

func (s *AsynqNotificationService) Notify(ctx context.Context, payload models.NotificationPayload) error {
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = time.Now()
	}
	task, opts, err := tasks.NewNotificationTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
