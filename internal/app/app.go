package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/controller"
	"stackwise_backend/internal/repository"
	"stackwise_backend/internal/service"
	"stackwise_backend/pkg/configwatcher"
	"stackwise_backend/pkg/database"
	"stackwise_backend/pkg/logger"
	"stackwise_backend/pkg/monitoring"
	"stackwise_backend/pkg/security"
	"stackwise_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	services *services
}

type repositories struct {
	item        *repository.ItemRepository
	engineState *repository.EngineStateRepository
}

type services struct {
	contentPool *service.ContentPoolService
	revision    *service.RevisionService
	timePattern *service.TimePatternService
	metrics     *service.MetricsService
	mode        *service.ModeService
	memory      *service.MemoryService
	generator   *service.GoalGeneratorService
	scheduler   *service.ScheduleService
	restructure *service.RestructureService
	forecast    *service.ForecastService
	digest      *service.DigestService
	engine      *service.EngineService
}

type controllers struct {
	engine *controller.EngineController
	item   *controller.ItemController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		item:        repository.NewItemRepository(db),
		engineState: repository.NewEngineStateRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.contentPool = service.NewContentPoolService(repos.item)
	s.revision = service.NewRevisionService()
	s.timePattern = service.NewTimePatternService()
	s.metrics = service.NewMetricsService()
	s.mode = service.NewModeService(cfg.Engine)
	s.memory = service.NewMemoryService()
	s.generator = service.NewGoalGeneratorService(s.revision, nil)
	s.scheduler = service.NewScheduleService()
	s.restructure = service.NewRestructureService()
	s.forecast = service.NewForecastService()
	s.digest = service.NewDigestService()

	s.engine = service.NewEngineService(
		repos.engineState,
		s.contentPool,
		s.generator,
		s.scheduler,
		s.timePattern,
		s.metrics,
		s.mode,
		s.memory,
		s.restructure,
		s.forecast,
		s.digest,
		service.SystemClock{},
		cfg.Engine,
	)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		engine: controller.NewEngineController(s.engine, repos.engineState),
		item:   controller.NewItemController(repos.item),
		health: controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 后台定时触发同步周期，周期本身带间隔幂等保护
func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			if err := s.engine.RunSyncCycle(); err != nil {
				logger.Log.Error("sync cycle error", zap.Error(err))
			}
		}
	}()

	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(cfg interface{}) {
		if newCfg, ok := cfg.(*config.Config); ok {
			a.Config.Engine = newCfg.Engine
			logger.Log.Info("Engine config reloaded",
				zap.Int("preferredDailyLoad", newCfg.Engine.PreferredDailyLoad))
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("stackwise-engine", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
