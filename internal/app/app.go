// internal/app/app.go
package app

import (
	"fmt"

	"github.com/StoryPact/ScenePactMCP/internal/di"
	"github.com/StoryPact/ScenePactMCP/internal/services"
	"github.com/StoryPact/ScenePactMCP/internal/utils"

	// 注册LLM提供者
	_ "github.com/StoryPact/ScenePactMCP/internal/llm/providers/openai"
)

// InitServices 按依赖顺序初始化所有服务并注册进容器。
// LLM 服务未就绪不算失败：验证与确定性拆分不依赖它。
func InitServices() error {
	container := di.GetContainer()

	// 1. LLM服务（可以未就绪）
	llmService, err := services.NewLLMService()
	if err != nil {
		return fmt.Errorf("初始化LLM服务失败: %w", err)
	}
	container.Register("llm", llmService)

	if !llmService.IsReady() {
		utils.GetLogger().Warn("LLM service not ready; assisted split will fall back", map[string]interface{}{
			"state": llmService.ReadyState(),
		})
	}

	// 2. 配置服务：装配验证器与拆分器
	configService := services.NewConfigService(llmService)
	container.Register("config", configService)

	return nil
}
