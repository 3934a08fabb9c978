package infra

import (
	"fmt"

	"github.com/hibiken/asynq"

	"backoffice/internal/config"
	"backoffice/internal/logger"
)

var asynqClient *asynq.Client

// InitQueue creates the task queue producer client.
func InitQueue(cfg config.RedisConfig) *asynq.Client {
	asynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	logger.Get().Info("task queue client initialized")
	return asynqClient
}

// GetQueue returns the shared queue client.
func GetQueue() *asynq.Client {
	return asynqClient
}

// CloseQueue releases the queue client's connections.
func CloseQueue() error {
	if asynqClient == nil {
		return nil
	}
	return asynqClient.Close()
}
