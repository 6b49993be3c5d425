package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"chargehub/config"
	"chargehub/models"
	"chargehub/services/tasks"
	"chargehub/utils"

	"github.com/hibiken/asynq"
)

// InitNotifyWorker runs the async notification worker in background. Tasks
// are fanned out to per-user Redis channels for realtime consumers.
func InitNotifyWorker() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotifySend, handleNotifyTask)

	go func() {
		log.Println("[NotifyWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotifyWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotifyWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleNotifyTask(ctx context.Context, task *asynq.Task) error {
	var p models.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[NotifyWorker] invalid payload: %v", err)
		return err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("user:%s:events", p.UserID)
	if err := utils.GetNotifyClient().Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish notification for user %s: %w", p.UserID, err)
	}
	return nil
}
