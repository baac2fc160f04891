// internal/api/handlers.go
package api

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/StoryPact/ScenePactMCP/internal/markers"
	"github.com/StoryPact/ScenePactMCP/internal/models"
	"github.com/StoryPact/ScenePactMCP/internal/services"
)

// Handler API处理器
type Handler struct {
	Config   *services.ConfigService
	response *ResponseHelper
}

// NewHandler 创建API处理器
func NewHandler(configService *services.ConfigService) *Handler {
	return &Handler{
		Config:   configService,
		response: NewResponseHelper(),
	}
}

// ---- 验证 ----

// ValidateRequest 单次验证请求
type ValidateRequest struct {
	Contract models.SceneContract `json:"contract" binding:"required"`
	Text     string               `json:"text"`
}

// ValidateResponse 单次验证响应
type ValidateResponse struct {
	Result *models.ValidationResult `json:"result"`
	Report string                   `json:"report,omitempty"`
}

// ValidateContract POST /api/validate
// 对 (契约, 生成文本) 打分。生成文本再畸形也不报错，只给低分。
func (h *Handler) ValidateContract(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, "请求格式错误: "+err.Error())
		return
	}

	result := h.Config.Validator().ValidateContract(&req.Contract, req.Text)

	resp := &ValidateResponse{Result: result}
	if c.Query("report") == "1" {
		resp.Report = result.FormatReport()
	}
	h.response.Success(c, resp)
}

// BatchValidateRequest 批量验证请求：同一契约拆出的多个节拍
type BatchValidateRequest struct {
	Contract models.SceneContract `json:"contract" binding:"required"`
	Items    []BatchValidateItem  `json:"items" binding:"required"`
}

// BatchValidateItem 一个节拍与它的生成文本
type BatchValidateItem struct {
	Beat models.Beat `json:"beat"`
	Text string      `json:"text"`
}

// BatchValidateResponse 批量验证响应，顺序与请求一致
type BatchValidateResponse struct {
	Results []*models.ValidationResult `json:"results"`
}

// ValidateBatch POST /api/validate/batch
// 节拍之间互不依赖，并行验证
func (h *Handler) ValidateBatch(c *gin.Context) {
	var req BatchValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, "请求格式错误: "+err.Error())
		return
	}

	validator := h.Config.Validator()
	results := make([]*models.ValidationResult, len(req.Items))

	var wg sync.WaitGroup
	for i := range req.Items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = validator.ValidateBeat(&req.Items[i].Beat, &req.Contract, req.Items[i].Text)
		}(i)
	}
	wg.Wait()

	h.response.Success(c, &BatchValidateResponse{Results: results})
}

// ---- 拆分 ----

// SplitContract POST /api/split
// assisted=1 时先尝试 AI 辅助拆分，失败回退并在结果里注明原因
func (h *Handler) SplitContract(c *gin.Context) {
	var contract models.SceneContract
	if err := c.ShouldBindJSON(&contract); err != nil {
		h.response.BadRequest(c, "请求格式错误: "+err.Error())
		return
	}

	splitter := h.Config.Splitter()

	var plan *models.BeatPlan
	var err error
	if c.Query("assisted") == "1" {
		timeout := 30 * time.Second
		if ms := c.Query("timeout_ms"); ms != "" {
			if parsed, perr := time.ParseDuration(ms + "ms"); perr == nil && parsed > 0 {
				timeout = parsed
			}
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		plan, err = splitter.SplitAssisted(ctx, &contract)
	} else {
		plan, err = splitter.Split(&contract)
	}

	if err != nil {
		h.response.Error(c, err)
		return
	}
	h.response.Success(c, plan)
}

// ---- 标记表 ----

// markerView 标记表的只读视图
type markerView struct {
	Locale     string                  `json:"locale"`
	Categories []markerCategoryView    `json:"categories"`
}

type markerCategoryView struct {
	Name     string           `json:"name"`
	Kind     markers.Kind     `json:"kind"`
	Severity markers.Severity `json:"severity"`
	Patterns []string         `json:"patterns"`
}

// GetMarkers GET /api/markers?locale=ko
func (h *Handler) GetMarkers(c *gin.Context) {
	locale := c.DefaultQuery("locale", "ko")
	lib := markers.Builtin(locale)

	view := &markerView{Locale: lib.Locale()}
	for _, cat := range lib.Categories() {
		cv := markerCategoryView{Name: cat.Name, Kind: cat.Kind, Severity: cat.Severity}
		for _, p := range cat.Patterns {
			cv.Patterns = append(cv.Patterns, p.String())
		}
		view.Categories = append(view.Categories, cv)
	}
	h.response.Success(c, view)
}

// ---- 设置 ----

// GetSettings GET /api/settings
func (h *Handler) GetSettings(c *gin.Context) {
	h.response.Success(c, h.Config.GetSettings())
}

// UpdateSettings PUT /api/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.response.BadRequest(c, "请求格式错误: "+err.Error())
		return
	}

	settings, err := h.Config.UpdateSettings(&req)
	if err != nil {
		h.response.Error(c, err)
		return
	}
	h.response.Success(c, settings, "设置已更新")
}

// ---- 健康检查 ----

// Health GET /health
func (h *Handler) Health(c *gin.Context) {
	stats := make(map[string]map[string]int)
	for _, locale := range markers.BuiltinLocales() {
		stats[locale] = markers.Builtin(locale).Stats()
	}

	h.response.Success(c, gin.H{
		"status":        "ok",
		"llm_ready":     h.Config.LLM().IsReady(),
		"llm_state":     h.Config.LLM().ReadyState(),
		"marker_tables": stats,
	})
}
