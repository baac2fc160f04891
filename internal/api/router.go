// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	"github.com/StoryPact/ScenePactMCP/internal/di"
	"github.com/StoryPact/ScenePactMCP/internal/services"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	// 只从容器获取服务，不再创建新实例
	container := di.GetContainer()

	configService, ok := container.Get("config").(*services.ConfigService)
	if !ok {
		return nil, fmt.Errorf("配置服务未正确初始化")
	}

	handler := NewHandler(configService)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(recoveryMiddleware())
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())

	// 健康检查
	r.GET("/health", handler.Health)

	// WebSocket 支持
	r.GET("/ws/validate", handler.ValidateStream)

	// ===============================
	// API 路由
	// ===============================
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/validate", handler.ValidateContract)
		apiGroup.POST("/validate/batch", handler.ValidateBatch)
		apiGroup.POST("/split", handler.SplitContract)
		apiGroup.GET("/markers", handler.GetMarkers)
		apiGroup.GET("/settings", handler.GetSettings)
		apiGroup.PUT("/settings", handler.UpdateSettings)
	}

	return r, nil
}
