// internal/services/config_service.go
package services

import (
	"fmt"
	"sync"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	"github.com/StoryPact/ScenePactMCP/internal/utils"
)

// ConfigService 管理运行期设置。
// 验证器与拆分器是持有不可变参数的纯服务，
// 设置变更时不就地修改它们，而是整体重建并换掉实例。
type ConfigService struct {
	mu        sync.RWMutex
	llm       *LLMService
	validator *ValidatorService
	splitter  *SplitterService
}

// Settings 对外暴露的设置视图
type Settings struct {
	LLMProvider string                   `json:"llm_provider"`
	LLMReady    bool                     `json:"llm_ready"`
	ReadyState  string                   `json:"ready_state"`
	Validator   config.ValidatorTunables `json:"validator"`
	Splitter    config.SplitterTunables  `json:"splitter"`
}

// UpdateSettingsRequest 设置更新请求
type UpdateSettingsRequest struct {
	LLMProvider string                    `json:"llm_provider,omitempty"`
	LLMConfig   map[string]string         `json:"llm_config,omitempty"`
	Validator   *config.ValidatorTunables `json:"validator,omitempty"`
	Splitter    *config.SplitterTunables  `json:"splitter,omitempty"`
}

// NewConfigService 创建配置服务并完成初始服务装配
func NewConfigService(llmService *LLMService) *ConfigService {
	return &ConfigService{
		llm:       llmService,
		validator: NewValidatorService(),
		splitter:  NewSplitterService(llmService),
	}
}

// Validator 返回当前验证器实例
func (s *ConfigService) Validator() *ValidatorService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validator
}

// Splitter 返回当前拆分器实例
func (s *ConfigService) Splitter() *SplitterService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.splitter
}

// LLM 返回 LLM 服务
func (s *ConfigService) LLM() *LLMService {
	return s.llm
}

// GetSettings 返回当前设置
func (s *ConfigService) GetSettings() *Settings {
	cfg := config.GetCurrentConfig()
	settings := &Settings{
		LLMProvider: cfg.LLMProvider,
		Validator:   cfg.Validator,
		Splitter:    cfg.Splitter,
	}
	if s.llm != nil {
		settings.LLMReady = s.llm.IsReady()
		settings.ReadyState = s.llm.ReadyState()
	}
	return settings
}

// UpdateSettings 应用设置变更并重建受影响的服务
func (s *ConfigService) UpdateSettings(req *UpdateSettingsRequest) (*Settings, error) {
	if req.LLMProvider != "" && req.LLMConfig != nil {
		if err := config.UpdateLLMConfig(req.LLMProvider, req.LLMConfig); err != nil {
			return nil, fmt.Errorf("保存LLM配置失败: %w", err)
		}
		if err := s.llm.UpdateProvider(req.LLMProvider, req.LLMConfig); err != nil {
			return nil, fmt.Errorf("切换LLM提供者失败: %w", err)
		}
	}

	if req.Validator != nil || req.Splitter != nil {
		cfg := config.GetCurrentConfig()
		validatorTunables := cfg.Validator
		splitterTunables := cfg.Splitter
		if req.Validator != nil {
			validatorTunables = *req.Validator
		}
		if req.Splitter != nil {
			splitterTunables = *req.Splitter
		}
		if err := config.UpdateTunables(validatorTunables, splitterTunables); err != nil {
			return nil, fmt.Errorf("保存可调参数失败: %w", err)
		}

		s.mu.Lock()
		s.validator = NewValidatorService()
		s.splitter = NewSplitterService(s.llm)
		s.mu.Unlock()

		utils.GetLogger().Info("tunables updated, services rebuilt", nil)
	}

	return s.GetSettings(), nil
}
