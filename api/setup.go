package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditHandler "backoffice/api/handlers/audit"
	documentsHandler "backoffice/api/handlers/documents"
	registryHandler "backoffice/api/handlers/registry"
	tenantcfgHandler "backoffice/api/handlers/tenantcfg"
	"backoffice/internal/audit"
	"backoffice/internal/auth"
	"backoffice/internal/config"
	"backoffice/internal/dispatch"
	"backoffice/internal/documents"
	"backoffice/internal/infra"
	"backoffice/internal/local"
	"backoffice/internal/logger"
	"backoffice/internal/middleware"
	"backoffice/internal/tenant"
	"backoffice/internal/velneo"
	"backoffice/internal/worker"
)

// SetupRouter wires every service and returns the HTTP router plus the
// background worker that consumes document extraction tasks.
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *worker.Server) {
	log := logger.Get()

	recorder := audit.NewDBRecorder(db, log)

	configStore := tenant.NewConfigStore(db)
	configCache := newConfigCache(cfg)
	configService := tenant.NewConfigService(configStore, configCache, recorder, log)

	localStore := local.NewStore(db, log)
	remoteClient := velneo.NewClient(cfg.Velneo, configService, log)

	documentService := documents.NewService(db, cfg.Document, infra.GetQueue(), recorder, log)

	dispatcher := dispatch.New(dispatch.Config{
		Policy:          newRoutingPolicy(cfg, configService),
		Remote:          remoteClient,
		Local:           localStore,
		Extractor:       documentService,
		Recorder:        recorder,
		Logger:          log,
		FallbackEnabled: cfg.Dispatch.FallbackEnabled,
		MirrorWrites:    cfg.Dispatch.MirrorWrites,
	})
	documentService.SetExtractRunner(dispatcher.ExtractDocument)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, infra.GetRedis())
	limiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	handlers := Handlers{
		Registry:  registryHandler.NewHandler(dispatcher, log),
		TenantCfg: tenantcfgHandler.NewHandler(configService, log),
		Documents: documentsHandler.NewHandler(documentService, dispatcher, log),
		Audit:     auditHandler.NewHandler(recorder, log),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	RegisterRoutes(router, handlers, jwtService, limiter, log)

	workerServer := worker.NewServer(cfg.Redis, cfg.Document, dispatcher, log)
	return router, workerServer
}

// newConfigCache prefers Redis so that cache invalidation reaches every
// instance; a single-process deployment without Redis degrades to the
// in-memory cache.
func newConfigCache(cfg *config.Config) tenant.ConfigCache {
	ttl := cfg.Dispatch.ConfigCacheTTLDuration()
	if client := infra.GetRedis(); client != nil {
		return tenant.NewRedisConfigCache(client, ttl)
	}
	return tenant.NewInMemoryConfigCache(ttl)
}

// newRoutingPolicy selects how tenant routing configuration is obtained.
func newRoutingPolicy(cfg *config.Config, service tenant.ConfigService) dispatch.RoutingPolicy {
	if cfg.Dispatch.Policy == "static" {
		mode, _ := tenant.NormalizeMode(cfg.Dispatch.Mode)
		return dispatch.NewStaticPolicy(mode, 30*time.Second)
	}
	return dispatch.NewStorePolicy(service)
}
