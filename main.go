// @title StackWise 目标引擎 API
// @version 1.0
// @description StackWise 学习追踪应用的目标引擎服务。

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"

	"stackwise_backend/internal/app"
	"stackwise_backend/internal/config"
	"stackwise_backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
