package app

import (
	"stackwise_backend/docs"
	"stackwise_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 内容池
		items := api.Group("/items")
		{
			items.POST("", c.item.Create)
			items.GET("", c.item.List)
			items.GET("/:id", c.item.Get)
			items.DELETE("/:id", c.item.Delete)
		}

		// 目标引擎
		engine := api.Group("/engine")
		{
			engine.POST("/sync", c.engine.Sync)
			engine.POST("/actions/complete", c.engine.CompleteAction)
			engine.POST("/actions/start", c.engine.StartAction)
			engine.POST("/actions/reschedule", c.engine.RescheduleAction)
			engine.POST("/mood", c.engine.SetMood)

			engine.GET("/goals", c.engine.GetGoal)
			engine.GET("/goals/today", c.engine.GetGoal)
			engine.GET("/schedule", c.engine.GetSchedule)
			engine.GET("/metrics", c.engine.GetMetrics)
			engine.GET("/forecast", c.engine.GetForecast)
			engine.GET("/digest", c.engine.GetDigest)
			engine.GET("/memory", c.engine.GetMemory)
			engine.GET("/widget", c.engine.GetWidget)

			engine.GET("/config", c.engine.GetConfig)
			engine.PUT("/config", c.engine.UpdateConfig)

			engine.GET("/export", c.engine.Export)
			engine.POST("/import", c.engine.Import)
		}
	}
}
