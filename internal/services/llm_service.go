// internal/services/llm_service.go
package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	"github.com/StoryPact/ScenePactMCP/internal/llm"
	"github.com/StoryPact/ScenePactMCP/internal/markers"
	"github.com/StoryPact/ScenePactMCP/internal/models"
	"github.com/StoryPact/ScenePactMCP/internal/utils"
)

var ErrLLMNotReady = errors.New("llm service not ready")

// LLMService 提供统一的大语言模型调用接口。
// 本仓库中它只有一个调用方：AI 辅助节拍拆分。
type LLMService struct {
	providerMutex sync.RWMutex
	provider      llm.Provider
	providerName  string
	cache         *LLMCache
	isReady       bool
	readyState    string
	defaultModel  string
}

// LLMCache 带过期时间的响应缓存
type LLMCache struct {
	cache      map[string]*CacheEntry
	mutex      sync.RWMutex
	expiration time.Duration
}

type CacheEntry struct {
	Response  string
	CreatedAt time.Time
}

// NewLLMService 创建一个新的LLM服务
func NewLLMService() (*LLMService, error) {
	service := createBaseLLMService()

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "Failed to retrieve configuration"
		return service, nil
	}

	if cfg.LLMProvider == "" || cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "API key not configured"
		return service, nil
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("Initialization failed: %v", err)
		return service, nil // 返回未就绪服务而不是错误
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.defaultModel = cfg.LLMConfig["default_model"]
	service.isReady = true
	service.readyState = "Ready"

	return service, nil
}

// NewLLMServiceWithProvider 使用指定的提供者创建LLM服务（测试用）
func NewLLMServiceWithProvider(provider llm.Provider) *LLMService {
	service := createBaseLLMService()
	if provider == nil {
		service.providerName = "empty"
		service.readyState = "提供商未初始化"
		return service
	}
	service.provider = provider
	service.providerName = provider.GetName()
	service.isReady = true
	service.readyState = "Ready"
	return service
}

func createBaseLLMService() *LLMService {
	return &LLMService{
		readyState: "Uninitialized",
		cache: &LLMCache{
			cache:      make(map[string]*CacheEntry),
			expiration: 30 * time.Minute,
		},
	}
}

// IsReady 返回服务是否已就绪
func (s *LLMService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.provider != nil && s.isReady
}

// ReadyState 返回就绪状态描述
func (s *LLMService) ReadyState() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.readyState
}

// GetProviderName 返回当前提供者名称
func (s *LLMService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// UpdateProvider 运行期切换提供者（设置接口调用）
func (s *LLMService) UpdateProvider(name string, llmConfig map[string]string) error {
	provider, err := llm.GetProvider(name, llmConfig)
	if err != nil {
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()

	s.provider = provider
	s.providerName = name
	s.defaultModel = llmConfig["default_model"]
	s.isReady = true
	s.readyState = "Ready"
	return nil
}

func (s *LLMService) generateCacheKey(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *LLMService) checkCache(key string) (string, bool) {
	s.cache.mutex.RLock()
	defer s.cache.mutex.RUnlock()

	entry, ok := s.cache.cache[key]
	if !ok || time.Since(entry.CreatedAt) > s.cache.expiration {
		return "", false
	}
	return entry.Response, true
}

func (s *LLMService) saveToCache(key, response string) {
	s.cache.mutex.Lock()
	defer s.cache.mutex.Unlock()

	s.cache.cache[key] = &CacheEntry{
		Response:  response,
		CreatedAt: time.Now(),
	}
}

// CreateStructuredCompletion 要求模型输出 JSON 并解析到 outputSchema。
// 模型返回的文本先经过 cleanJSONString 清洗再解析。
func (s *LLMService) CreateStructuredCompletion(ctx context.Context, prompt string, systemPrompt string, outputSchema interface{}) error {
	s.providerMutex.RLock()
	if !s.isReady || s.provider == nil {
		s.providerMutex.RUnlock()
		return fmt.Errorf("%w: %s", ErrLLMNotReady, s.readyState)
	}
	provider := s.provider
	model := s.defaultModel
	s.providerMutex.RUnlock()

	cacheKey := s.generateCacheKey(prompt, systemPrompt, model)
	if cached, ok := s.checkCache(cacheKey); ok {
		if json.Unmarshal([]byte(cached), outputSchema) == nil {
			return nil
		}
	}

	structuredSystemPrompt := systemPrompt
	if structuredSystemPrompt != "" {
		structuredSystemPrompt += "\n\n"
	}
	structuredSystemPrompt += "Return your response in valid JSON format, following the provided output schema, without adding explanations or preambles."

	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: structuredSystemPrompt,
		Temperature:  0.3,
		Model:        model,
	})
	if err != nil {
		return err
	}

	text := cleanJSONString(resp.Text)
	if err := json.Unmarshal([]byte(text), outputSchema); err != nil {
		return fmt.Errorf("failed to parse AI response into structured data: %w\nAI return: %s", err, text)
	}

	s.saveToCache(cacheKey, text)
	return nil
}

// ---- LLM 返回的 JSON 清洗 ----

var jsonNoiseReplacer = strings.NewReplacer(
	"```json", "",
	"```", "",
	"\uFEFF", "",
	"\u00A0", " ",
	"：", ":",
	"，", ",",
	"【", "[",
	"】", "]",
	"｛", "{",
	"｝", "}",
)

// cleanJSONString 去除模型输出里常见的前后噪声（markdown 围栏、前言、
// 全角标点），再用括号配对截出第一个完整的 JSON 值。
func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = jsonNoiseReplacer.Replace(s)

	// 移除零宽字符及除换行/制表符外的控制字符
	s = strings.Map(func(r rune) rune {
		switch r {
		case '​', '‌', '‍', '⁠':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	// 丢弃第一个 { 或 [ 之前的所有内容
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	s = s[start:]

	isArray := s[0] == '['

	// 括号计数匹配，截取第一个完整值
	balance := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		if isArray {
			if c == '[' {
				balance++
			} else if c == ']' {
				balance--
			}
		} else {
			if c == '{' {
				balance++
			} else if c == '}' {
				balance--
			}
		}
		if balance == 0 {
			return strings.TrimSpace(s[:i+1])
		}
	}

	// 没找到匹配的结束符，退回找最后一个
	end := strings.LastIndexAny(s, "]}")
	if end >= 0 {
		return strings.TrimSpace(s[:end+1])
	}
	return strings.TrimSpace(s)
}

// CleanLLMJSONResponse 提供给外部调用的JSON清洗助手
func CleanLLMJSONResponse(raw string) string {
	return cleanJSONString(raw)
}

// ---- AI 辅助拆分的结构化输出 ----

// BeatProposal 模型提议的单个节拍
type BeatProposal struct {
	Title       string `json:"title"`
	Summary     string `json:"summary,omitempty"`
	StartMoment string `json:"start_moment"`
	EndMoment   string `json:"end_moment"`
}

// BeatPlanProposal 模型提议的完整节拍计划
type BeatPlanProposal struct {
	Beats []BeatProposal `json:"beats"`
}

// ProposeBeatPlan 请求模型把场景契约拆成 beatCount 个节拍。
// 只返回原始提议，形状校验与归一化由拆分器负责。
func (s *LLMService) ProposeBeatPlan(ctx context.Context, contract *models.SceneContract, beatCount int) (*BeatPlanProposal, error) {
	locale := contract.Locale
	if locale == "" {
		locale = markers.DetectLocale(contract.StartCondition + contract.EndCondition)
	}

	var prompt, systemPrompt string
	switch locale {
	case "ko":
		prompt = fmt.Sprintf(`다음 장면 계약을 정확히 %d개의 비트로 나누어 주세요.
각 비트는 제목(title), 시작 시점(start_moment), 끝 시점(end_moment)을 가져야 하며,
비트 i의 끝 시점은 비트 i+1의 시작 시점과 같은 순간을 가리켜야 합니다.

장소: %s
시간: %s
시작: %s
끝: %s
반드시 포함할 내용: %s`,
			beatCount, contract.Location, contract.Timeframe,
			contract.StartCondition, contract.EndCondition,
			strings.Join(contract.MustInclude, " / "))
		systemPrompt = `당신은 소설 장면 구성 전문가입니다. {"beats":[{"title":"","start_moment":"","end_moment":""}]} 형태의 JSON만 반환하세요.`
	case "zh":
		prompt = fmt.Sprintf(`请把下面的场景契约精确拆分为 %d 个节拍。
每个节拍包含 title、start_moment、end_moment，
第 i 拍的 end_moment 必须与第 i+1 拍的 start_moment 指向同一时刻。

地点: %s
时间: %s
开始: %s
结束: %s
必须包含: %s`,
			beatCount, contract.Location, contract.Timeframe,
			contract.StartCondition, contract.EndCondition,
			strings.Join(contract.MustInclude, " / "))
		systemPrompt = `你是小说场景结构专家。只返回 {"beats":[{"title":"","start_moment":"","end_moment":""}]} 形状的 JSON。`
	default:
		prompt = fmt.Sprintf(`Split the following scene contract into exactly %d beats.
Each beat needs a title, a start_moment and an end_moment, and beat i's
end_moment must describe the same instant as beat i+1's start_moment.

Location: %s
Timeframe: %s
Start: %s
End: %s
Must include: %s`,
			beatCount, contract.Location, contract.Timeframe,
			contract.StartCondition, contract.EndCondition,
			strings.Join(contract.MustInclude, " / "))
		systemPrompt = `You are an expert in novel scene construction. Respond ONLY with JSON shaped like {"beats":[{"title":"","start_moment":"","end_moment":""}]}.`
	}

	proposal := &BeatPlanProposal{}
	if err := s.CreateStructuredCompletion(ctx, prompt, systemPrompt, proposal); err != nil {
		return nil, err
	}

	utils.GetLogger().Debug("beat plan proposal received", map[string]interface{}{
		"beats": len(proposal.Beats),
	})
	return proposal, nil
}
