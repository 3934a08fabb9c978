package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/api"
	"backoffice/internal/audit"
	"backoffice/internal/config"
	"backoffice/internal/documents"
	"backoffice/internal/entities"
	"backoffice/internal/infra"
	"backoffice/internal/logger"
	"backoffice/internal/tenant"
	"backoffice/internal/worker"
)

func main() {
	loadEnvFile()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	cfg, err := config.Load(env, "")
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting backoffice",
		zap.String("env", env),
		zap.String("mode", cfg.Server.Mode),
	)

	db, err := infra.InitDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer infra.CloseDatabase()

	if cfg.Database.AutoMigrate {
		if err := runMigrations(db); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	} else {
		logger.Info("auto-migrate disabled, skipping")
	}

	if _, err := infra.InitRedis(&cfg.Redis); err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	defer infra.CloseRedis()

	infra.InitQueue(cfg.Redis)
	defer infra.CloseQueue()

	gin.SetMode(cfg.Server.Mode)

	router, workerServer := api.SetupRouter(db, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := workerServer.Run(); err != nil {
			logger.Fatal("worker server failed", zap.Error(err))
		}
	}()

	gracefulShutdown(server, workerServer)
}

// loadEnvFile walks up from the working directory and the executable
// directory looking for a .env file.
func loadEnvFile() {
	if path := resolveEnvPath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("load env file %s: %v\n", path, err)
		}
	}
}

func resolveEnvPath() string {
	for _, path := range collectEnvCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func collectEnvCandidates() []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}

	traverse := func(start string) {
		dir := filepath.Clean(start)
		for i := 0; i < 8; i++ {
			if dir == "" || dir == string(filepath.Separator) || dir == "." {
				break
			}
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if wd, err := os.Getwd(); err == nil {
		traverse(wd)
	}
	if exe, err := os.Executable(); err == nil {
		traverse(filepath.Dir(exe))
	}

	return candidates
}

func runMigrations(db *gorm.DB) error {
	logger.Info("running schema migrations")
	if err := db.AutoMigrate(
		&entities.Client{},
		&entities.Broker{},
		&entities.Company{},
		&entities.Currency{},
		&entities.Poliza{},
		&tenant.RoutingConfig{},
		&audit.AuditLog{},
		&documents.PolicyDocument{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	logger.Info("schema migrations complete")
	return nil
}

func gracefulShutdown(server *http.Server, workerServer *worker.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}

	workerServer.Shutdown()

	logger.Info("shutdown complete")
}
