// internal/services/splitter_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	apperrors "github.com/StoryPact/ScenePactMCP/internal/errors"
	"github.com/StoryPact/ScenePactMCP/internal/markers"
	"github.com/StoryPact/ScenePactMCP/internal/models"
	"github.com/StoryPact/ScenePactMCP/internal/utils"
)

// SplitterService 把超长的场景契约拆成首尾相接的节拍链，
// 让生成器每次只需要在较短的篇幅内保持连贯。
// 确定性算法永远可用；AI 辅助路径失败时静默回退，
// 回退产物在形状上与成功的辅助拆分无法区分。
type SplitterService struct {
	llm      *LLMService
	tunables config.SplitterTunables
}

// NewSplitterService 创建拆分服务。llmService 可以为 nil，
// 此时 AI 辅助拆分直接回退到确定性算法。
func NewSplitterService(llmService *LLMService) *SplitterService {
	return &SplitterService{
		llm:      llmService,
		tunables: config.GetCurrentConfig().Splitter,
	}
}

// NewSplitterServiceWith 注入参数创建拆分服务（测试用）
func NewSplitterServiceWith(llmService *LLMService, tunables config.SplitterTunables) *SplitterService {
	return &SplitterService{llm: llmService, tunables: tunables}
}

// NeedsSplit 目标字数超过阈值的契约才需要拆分
func (s *SplitterService) NeedsSplit(contract *models.SceneContract) bool {
	return contract.TargetWordCount > s.tunables.SplitThresholdWords
}

// RecommendedBeatCount 推荐节拍数 = ceil(目标字数 / 单拍目标字数)
func (s *SplitterService) RecommendedBeatCount(contract *models.SceneContract) int {
	target := s.tunables.BeatTargetWords
	count := (contract.TargetWordCount + target - 1) / target
	if count < 1 {
		count = 1
	}
	return count
}

// Split 确定性拆分：不依赖任何外部服务，总是可用。
// 字数均分（余数给靠前的节拍），必含内容按原顺序连续分片，
// 内部边界合成"第 i 拍结束/第 i+1 拍开始"的同一句话，
// 链式与守恒不变式在构造上成立。
func (s *SplitterService) Split(contract *models.SceneContract) (*models.BeatPlan, error) {
	if err := contract.Validate(); err != nil {
		return nil, apperrors.NewContractError("无法拆分不合法的契约", err)
	}

	locale := contract.Locale
	if locale == "" {
		locale = markers.DetectLocale(contract.StartCondition + contract.EndCondition)
	}

	if !s.NeedsSplit(contract) {
		// 不需要拆分：返回等同于整个契约的单一节拍
		beat := models.Beat{
			ID:              uuid.NewString(),
			BeatNumber:      1,
			Title:           contract.Title,
			TargetWordCount: contract.TargetWordCount,
			StartMoment:     contract.StartCondition,
			EndMoment:       contract.EndCondition,
			MustInclude:     append([]string(nil), contract.MustInclude...),
			Forbidden:       append([]string(nil), models.BaseForbidden...),
			Status:          models.BeatPending,
		}
		return &models.BeatPlan{
			ContractID: contract.ID,
			Beats:      []models.Beat{beat},
			Source:     models.SplitDeterministic,
		}, nil
	}

	n := s.RecommendedBeatCount(contract)
	beats := s.buildBeats(contract, n, phaseTitles(locale, n), nil, locale)

	return &models.BeatPlan{
		ContractID: contract.ID,
		Beats:      beats,
		Source:     models.SplitDeterministic,
	}, nil
}

// SplitAssisted 先请模型提议节拍标题与边界，
// 形状校验通过就用模型的边界，任何结构性失败都无条件回退。
// 回退不是错误：FallbackReason 只是给调用方（和测试）看的记录。
func (s *SplitterService) SplitAssisted(ctx context.Context, contract *models.SceneContract) (*models.BeatPlan, error) {
	if err := contract.Validate(); err != nil {
		return nil, apperrors.NewContractError("无法拆分不合法的契约", err)
	}

	if !s.NeedsSplit(contract) {
		return s.Split(contract)
	}

	plan, reason := s.tryAssisted(ctx, contract)
	if reason == "" {
		return plan, nil
	}

	// SplitFallback：记录原因，走确定性算法
	utils.GetLogger().Warn("assisted split fell back to deterministic", map[string]interface{}{
		"reason": reason,
	})
	plan, err := s.Split(contract)
	if err != nil {
		return nil, err
	}
	plan.FallbackReason = reason
	return plan, nil
}

// tryAssisted 返回 (计划, "") 或 (nil, 回退原因)
func (s *SplitterService) tryAssisted(ctx context.Context, contract *models.SceneContract) (*models.BeatPlan, string) {
	if s.llm == nil || !s.llm.IsReady() {
		return nil, "llm_unavailable"
	}

	n := s.RecommendedBeatCount(contract)

	proposal, err := s.llm.ProposeBeatPlan(ctx, contract, n)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, "timeout"
		}
		return nil, "proposal_failed: " + err.Error()
	}

	if len(proposal.Beats) != n {
		return nil, fmt.Sprintf("beat_count_mismatch: got %d, want %d", len(proposal.Beats), n)
	}

	titles := make([]string, n)
	boundaries := make([]string, 0, n-1)
	for i, pb := range proposal.Beats {
		if pb.Title == "" || pb.StartMoment == "" || pb.EndMoment == "" {
			return nil, fmt.Sprintf("missing_fields: beat %d", i+1)
		}
		titles[i] = pb.Title
		if i < n-1 {
			// 归一化在这里完成：相邻边界取前一拍的结束时刻，
			// 模型提议的下一拍开始时刻被覆盖，链式不变式由构造保证
			boundaries = append(boundaries, pb.EndMoment)
		}
	}

	locale := contract.Locale
	if locale == "" {
		locale = markers.DetectLocale(contract.StartCondition + contract.EndCondition)
	}

	beats := s.buildBeats(contract, n, titles, boundaries, locale)
	return &models.BeatPlan{
		ContractID: contract.ID,
		Beats:      beats,
		Source:     models.SplitAssisted,
	}, ""
}

// buildBeats 由标题与内部边界构造节拍链。
// boundaries 为 nil 时按 locale 模板合成内部边界。
// 字数与必含内容的分配始终是确定性的，与拆分来源无关。
func (s *SplitterService) buildBeats(contract *models.SceneContract, n int, titles []string, boundaries []string, locale string) []models.Beat {
	if boundaries == nil {
		boundaries = make([]string, 0, n-1)
		for i := 1; i < n; i++ {
			boundaries = append(boundaries, synthesizeBoundary(locale, i))
		}
	}

	wordBase := contract.TargetWordCount / n
	wordRem := contract.TargetWordCount % n

	includeBase := len(contract.MustInclude) / n
	includeRem := len(contract.MustInclude) % n

	beats := make([]models.Beat, 0, n)
	includeOffset := 0
	for i := 0; i < n; i++ {
		words := wordBase
		if i < wordRem {
			words++ // 余数分给靠前的节拍
		}

		includeCount := includeBase
		if i < includeRem {
			includeCount++
		}
		includeSlice := append([]string(nil), contract.MustInclude[includeOffset:includeOffset+includeCount]...)
		includeOffset += includeCount

		start := contract.StartCondition
		if i > 0 {
			start = boundaries[i-1]
		}
		end := contract.EndCondition
		if i < n-1 {
			end = boundaries[i]
		}

		beats = append(beats, models.Beat{
			ID:              uuid.NewString(),
			BeatNumber:      i + 1,
			Title:           titles[i],
			TargetWordCount: words,
			StartMoment:     start,
			EndMoment:       end,
			MustInclude:     includeSlice,
			Forbidden:       append([]string(nil), models.BaseForbidden...),
			Status:          models.BeatPending,
		})
	}
	return beats
}

// 各语言的五段式阶段名
var phaseNames = map[string][]string{
	"ko": {"발단", "전개", "위기", "절정", "결말"},
	"zh": {"开端", "发展", "转折", "高潮", "结局"},
	"en": {"Opening", "Rising", "Turn", "Climax", "Denouement"},
}

// 节拍数少于五时从五段式里选哪些阶段
var phaseSelection = map[int][]int{
	2: {0, 4},
	3: {0, 1, 4},
	4: {0, 1, 3, 4},
	5: {0, 1, 2, 3, 4},
}

var partFormats = map[string]string{
	"ko": "제%d부",
	"zh": "第%d部",
	"en": "Part %d",
}

// phaseTitles 给 n 个节拍分配通用阶段标题
func phaseTitles(locale string, n int) []string {
	names, ok := phaseNames[locale]
	if !ok {
		names = phaseNames["en"]
	}
	format, ok := partFormats[locale]
	if !ok {
		format = partFormats["en"]
	}

	titles := make([]string, 0, n)
	if sel, ok := phaseSelection[n]; ok {
		for _, idx := range sel {
			titles = append(titles, names[idx])
		}
		return titles
	}
	for i := 1; i <= n; i++ {
		titles = append(titles, fmt.Sprintf(format, i))
	}
	return titles
}

var boundaryFormats = map[string]string{
	"ko": "%d번째 비트가 끝나고 %d번째 비트가 시작되는 지점",
	"zh": "第%d拍结束、第%d拍开始的时刻",
	"en": "the moment beat %d ends and beat %d begins",
}

// synthesizeBoundary 合成第 i 拍与第 i+1 拍之间的共享边界句。
// 相邻两拍引用同一个字符串，链式不变式天然成立。
func synthesizeBoundary(locale string, i int) string {
	format, ok := boundaryFormats[locale]
	if !ok {
		format = boundaryFormats["en"]
	}
	return fmt.Sprintf(format, i, i+1)
}
