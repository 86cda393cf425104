// 手动触发一次目标引擎同步周期
//
// 同步已集成到主应用的后台定时任务中（每分钟检查一次触发条件）。
// 此脚本仅用于手动触发，例如首次部署或批量导入新内容后。
//
// 用法: go run scripts/run_sync.go

package main

import (
	"log"

	"stackwise_backend/internal/config"
	"stackwise_backend/internal/repository"
	"stackwise_backend/internal/service"
	"stackwise_backend/pkg/database"
	"stackwise_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	itemRepo := repository.NewItemRepository(db)
	stateRepo := repository.NewEngineStateRepository(db)
	revision := service.NewRevisionService()

	engine := service.NewEngineService(
		stateRepo,
		service.NewContentPoolService(itemRepo),
		service.NewGoalGeneratorService(revision, nil),
		service.NewScheduleService(),
		service.NewTimePatternService(),
		service.NewMetricsService(),
		service.NewModeService(cfg.Engine),
		service.NewMemoryService(),
		service.NewRestructureService(),
		service.NewForecastService(),
		service.NewDigestService(),
		service.SystemClock{},
		cfg.Engine,
	)

	if err := engine.RunSyncCycle(); err != nil {
		log.Fatalf("同步周期执行失败: %v", err)
	}
	log.Println("同步周期执行完成")
}
