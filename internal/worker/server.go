package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"backoffice/internal/config"
	"backoffice/internal/worker/handlers"
	"backoffice/internal/worker/tasks"
)

// Server consumes background tasks from Redis.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewServer(
	redisCfg config.RedisConfig,
	docCfg config.DocumentConfig,
	extractor handlers.Extractor,
	logger *zap.Logger,
) *Server {
	concurrency := docCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     fmt.Sprintf("%s:%d", redisCfg.Host, redisCfg.Port),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueDocuments: 5,
				"default":            1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				logger.Error("task failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
		},
	)

	mux := asynq.NewServeMux()
	documentHandler := handlers.NewDocumentHandler(extractor, logger)
	mux.HandleFunc(tasks.TypeExtractDocument, documentHandler.HandleExtractDocument)

	return &Server{
		server: srv,
		mux:    mux,
		logger: logger,
	}
}

// Run starts the worker and blocks until shutdown.
func (s *Server) Run() error {
	s.logger.Info("worker server starting")
	return s.server.Run(s.mux)
}

// Start runs the worker in the background.
func (s *Server) Start() error {
	s.logger.Info("worker server starting in background")
	return s.server.Start(s.mux)
}

// Shutdown stops the worker gracefully.
func (s *Server) Shutdown() {
	s.logger.Info("worker server stopping")
	s.server.Shutdown()
}
