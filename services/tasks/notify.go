package tasks

import (
	"encoding/json"

	"chargehub/models"

	"github.com/hibiken/asynq"
)

const TypeNotifySend = "notify:send"

// NewNotificationTask wraps a notification payload for the async worker.
func NewNotificationTask(payload models.NotificationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotifySend, b)
	opts := []asynq.Option{asynq.MaxRetry(3)}

	return task, opts, nil
}
