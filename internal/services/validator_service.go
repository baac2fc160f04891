// internal/services/validator_service.go
package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	"github.com/StoryPact/ScenePactMCP/internal/markers"
	"github.com/StoryPact/ScenePactMCP/internal/models"
	"github.com/StoryPact/ScenePactMCP/internal/textkit"
	"github.com/StoryPact/ScenePactMCP/internal/utils"
)

// ValidatorService 把任意生成文本对照场景契约打分。
// 五项检查彼此独立、全部执行、无副作用；
// 服务本身无状态，可被任意数量的 goroutine 并发调用。
type ValidatorService struct {
	tunables  config.ValidatorTunables
	libraries map[string]*markers.Library
}

// NewValidatorService 用当前配置与内置标记表创建验证器
func NewValidatorService() *ValidatorService {
	cfg := config.GetCurrentConfig()

	libraries := make(map[string]*markers.Library)
	for _, locale := range markers.BuiltinLocales() {
		libraries[locale] = markers.Builtin(locale)
	}
	// 自定义表按 locale 覆盖内置表
	for _, path := range cfg.MarkerTableFiles {
		lib, err := markers.LoadFile(path)
		if err != nil {
			// 表损坏只告警，不拖垮整个验证器
			utils.GetLogger().Warn("加载标记表失败", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		libraries[lib.Locale()] = lib
	}

	return &ValidatorService{
		tunables:  cfg.Validator,
		libraries: libraries,
	}
}

// NewValidatorServiceWith 注入参数与标记表创建验证器（测试用）
func NewValidatorServiceWith(tunables config.ValidatorTunables, libraries map[string]*markers.Library) *ValidatorService {
	if libraries == nil {
		libraries = make(map[string]*markers.Library)
		for _, locale := range markers.BuiltinLocales() {
			libraries[locale] = markers.Builtin(locale)
		}
	}
	return &ValidatorService{tunables: tunables, libraries: libraries}
}

// libraryFor 选择契约语言对应的标记表；契约未指定时按文本检测
func (s *ValidatorService) libraryFor(contract *models.SceneContract, text string) *markers.Library {
	locale := contract.Locale
	if locale == "" {
		locale = markers.DetectLocale(text)
	}
	if lib, ok := s.libraries[locale]; ok {
		return lib
	}
	return markers.Builtin(locale)
}

// ValidateBeat 验证节拍：把节拍还原成子契约后走同一条验证管线
func (s *ValidatorService) ValidateBeat(beat *models.Beat, parent *models.SceneContract, text string) *models.ValidationResult {
	return s.ValidateContract(beat.Contract(parent), text)
}

// ValidateContract 对 (契约, 生成文本) 打分。
// 永不因为生成文本畸形而报错——空串、乱码都只是低分；
// 唯一的短路是契约本身不合法（契约错误，见 models.SceneContract.Validate）。
func (s *ValidatorService) ValidateContract(contract *models.SceneContract, text string) *models.ValidationResult {
	result := &models.ValidationResult{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}

	if err := contract.Validate(); err != nil {
		result.Score = 0
		result.IsValid = false
		result.Violations = []models.Violation{{
			Kind:        models.ViolationContractError,
			Severity:    models.SeverityCritical,
			Description: fmt.Sprintf("contract is mis-specified: %v", err),
			Suggestion:  "fix the scene contract before generating text",
		}}
		result.Suggestions = []string{"fix the scene contract before generating text"}
		return result
	}

	lib := s.libraryFor(contract, text)

	var violations []models.Violation
	var warnings []models.Warning

	// 五项检查全部执行，不短路：每一项都提供独立的诊断信息
	result.Checks.StartCondition = s.checkStart(contract, text, &violations)
	result.Checks.EndCondition = s.checkEnd(contract, text, &violations, &warnings)
	result.Checks.MustInclude = s.checkMustInclude(contract, text, &violations)
	result.Checks.Scope = s.checkScope(contract, text, lib, &violations, &warnings)
	result.Checks.TimeJump = s.checkTimeJump(text, lib, &violations, &warnings)

	result.Violations = violations
	result.Warnings = warnings
	result.Score = s.score(violations, warnings)
	result.IsValid = result.Score >= s.tunables.PassScore && !result.HasCritical()
	result.Suggestions = buildSuggestions(violations)

	return result
}

// ---- 检查 1: 开始条件 ----

func (s *ValidatorService) checkStart(contract *models.SceneContract, text string, violations *[]models.Violation) models.CheckResult {
	if strings.TrimSpace(contract.StartCondition) == "" {
		return models.CheckResult{Passed: true, Detail: "no start condition specified"}
	}

	window := textkit.NormalizeQuotes(headRunes(text, s.tunables.StartWindowChars))
	want := textkit.NormalizeQuotes(contract.StartCondition)

	if strings.Contains(window, want) {
		return models.CheckResult{Passed: true, Detail: "exact match"}
	}
	// 整窗 Jaccard 会被无关内容稀释，逐句比较
	windowRunes := []rune(window)
	best := 0.0
	for _, span := range splitSentences(windowRunes) {
		if sim := textkit.Similarity(string(windowRunes[span.start:span.end]), want); sim > best {
			best = sim
		}
	}
	if c := textkit.Containment(want, window); c > best {
		best = c
	}
	if best >= s.tunables.StartSimilarity {
		return models.CheckResult{Passed: true, Detail: fmt.Sprintf("keyword similarity %.2f", best)}
	}

	*violations = append(*violations, models.Violation{
		Kind:        models.ViolationStartMissing,
		Severity:    models.SeverityMajor,
		Description: fmt.Sprintf("text does not open with the required start condition: %q", contract.StartCondition),
		Suggestion:  "begin the scene at the specified starting moment",
	})
	return models.CheckResult{Passed: false, Detail: "start condition not found in opening window"}
}

// ---- 检查 2: 结束条件与越界续写 ----

func (s *ValidatorService) checkEnd(contract *models.SceneContract, text string, violations *[]models.Violation, warnings *[]models.Warning) models.CheckResult {
	window := textkit.NormalizeQuotes(tailRunes(text, s.tunables.EndWindowChars))
	want := textkit.NormalizeQuotes(contract.EndCondition)
	windowRunes := []rune(window)

	matchEnd, how := s.locateEnd(window, windowRunes, want, contract.NormalizedKind())
	if matchEnd < 0 {
		*violations = append(*violations, models.Violation{
			Kind:        models.ViolationEndMissing,
			Severity:    models.SeverityCritical,
			Description: fmt.Sprintf("required end condition never occurs: %q", contract.EndCondition),
			Suggestion:  "end the scene exactly at the specified ending moment",
		})
		return models.CheckResult{Passed: false, Detail: "end condition not found in closing window"}
	}

	// 找到了结束点之后，检查后面还拖了多少内容
	trailing := strings.TrimSpace(string(windowRunes[matchEnd:]))
	overrun := len([]rune(trailing))

	switch {
	case overrun > s.tunables.OverrunGraceChars:
		*violations = append(*violations, models.Violation{
			Kind:     models.ViolationEndExceeded,
			Severity: models.SeverityCritical,
			Description: fmt.Sprintf("text continues %d chars past the end condition; the scene must stop there",
				overrun),
			Suggestion: "cut everything after the end condition",
		})
		return models.CheckResult{Passed: false, Detail: fmt.Sprintf("found (%s) but overran by %d chars", how, overrun)}
	case overrun > 0:
		*warnings = append(*warnings, models.Warning{
			Kind:        models.ViolationEndExceeded,
			Description: fmt.Sprintf("%d trailing chars after the end condition", overrun),
			Suggestion:  "consider trimming the trailing text",
		})
		return models.CheckResult{Passed: true, Detail: fmt.Sprintf("found (%s), %d trailing chars", how, overrun)}
	default:
		return models.CheckResult{Passed: true, Detail: fmt.Sprintf("found (%s), clean ending", how)}
	}
}

// locateEnd 在窗口内定位结束条件，返回匹配结束处的 rune 下标与命中方式。
// 依次尝试：精确子串 → 对白相似度（dialogue 契约）→ 句级关键词相似度 →
// 核心短语逐字匹配。找不到返回 -1。
func (s *ValidatorService) locateEnd(window string, windowRunes []rune, want string, kind models.EndConditionKind) (int, string) {
	// 结束条件应当出现在结尾，取最后一次出现
	if idx := strings.LastIndex(window, want); idx >= 0 {
		return len([]rune(window[:idx])) + len([]rune(want)), "exact"
	}

	if kind == models.EndKindDialogue {
		wantQuote := want
		if quoted := textkit.ExtractQuoted(want); len(quoted) > 0 {
			wantQuote = quoted[len(quoted)-1]
		}
		spans := textkit.ExtractQuoted(window)
		for i := len(spans) - 1; i >= 0; i-- {
			if textkit.Similarity(spans[i], wantQuote) >= s.tunables.DialogueSimilarity {
				if idx := strings.LastIndex(window, spans[i]); idx >= 0 {
					return len([]rune(window[:idx])) + len([]rune(spans[i])) + 1, "dialogue" // +1 收尾引号
				}
			}
		}
	}

	// 从结尾往前逐句比较关键词相似度
	sentences := splitSentences(windowRunes)
	for i := len(sentences) - 1; i >= 0; i-- {
		if textkit.Similarity(string(windowRunes[sentences[i].start:sentences[i].end]), want) >= s.tunables.EndSimilarity {
			return sentences[i].end, "similarity"
		}
	}

	if core := corePhrase(want); core != "" {
		if idx := strings.LastIndex(window, core); idx >= 0 {
			return len([]rune(window[:idx])) + len([]rune(core)), "core phrase"
		}
	}

	return -1, ""
}

type sentenceSpan struct {
	start, end int
}

// splitSentences 按句末标点把 rune 序列切成句子区间
func splitSentences(runes []rune) []sentenceSpan {
	var spans []sentenceSpan
	start := 0
	for i, r := range runes {
		switch r {
		case '。', '！', '？', '.', '!', '?', '\n':
			if i > start {
				spans = append(spans, sentenceSpan{start: start, end: i + 1})
			}
			start = i + 1
		}
	}
	if start < len(runes) {
		spans = append(spans, sentenceSpan{start: start, end: len(runes)})
	}
	return spans
}

// corePhrase 提取结束条件的核心短语：
// 优先取 5–50 字符的引号片段，否则取最后一个子句。
func corePhrase(want string) string {
	for _, q := range textkit.ExtractQuoted(want) {
		n := len([]rune(q))
		if n >= 5 && n <= 50 {
			return q
		}
	}

	clauses := strings.FieldsFunc(want, func(r rune) bool {
		return r == ',' || r == '，' || r == '、' || r == '。' || r == '.'
	})
	for i := len(clauses) - 1; i >= 0; i-- {
		clause := strings.TrimSpace(clauses[i])
		if len([]rune(clause)) >= 4 {
			return clause
		}
	}
	return ""
}

// ---- 检查 3: 必含内容覆盖 ----

func (s *ValidatorService) checkMustInclude(contract *models.SceneContract, text string, violations *[]models.Violation) models.CheckResult {
	total := len(contract.MustInclude)
	if total == 0 {
		return models.CheckResult{Passed: true, Detail: "no required content"}
	}

	normText := textkit.NormalizeQuotes(text)
	var missing []string
	for _, item := range contract.MustInclude {
		if strings.Contains(normText, textkit.NormalizeQuotes(item)) {
			continue
		}
		if textkit.Containment(item, text) >= s.tunables.IncludeSimilarity {
			continue
		}
		missing = append(missing, item)
	}

	found := total - len(missing)
	need := int(math.Ceil(s.tunables.CoverageRatio * float64(total)))
	detail := fmt.Sprintf("%d/%d found (need %d)", found, total, need)

	if found >= need {
		return models.CheckResult{Passed: true, Detail: detail}
	}

	severity := models.SeverityMinor
	switch {
	case len(missing) > total/2:
		severity = models.SeverityCritical
	case len(missing) > 1:
		severity = models.SeverityMajor
	}

	*violations = append(*violations, models.Violation{
		Kind:        models.ViolationIncludeMissing,
		Severity:    severity,
		Description: fmt.Sprintf("required content missing: %s", strings.Join(missing, "; ")),
		Suggestion:  "work the listed required content into the scene",
	})
	return models.CheckResult{Passed: false, Detail: detail}
}

// ---- 检查 4: 范围漂移（地点/时间背景） ----

func (s *ValidatorService) checkScope(contract *models.SceneContract, text string, lib *markers.Library, violations *[]models.Violation, warnings *[]models.Warning) models.CheckResult {
	drifted := 0

	record := func(hit markers.Hit, expected, what string) {
		if hit.Captured == "" || expected == "" {
			// 捕不到目的地、或契约本就没声明背景时，切换短语只能算可疑
			*warnings = append(*warnings, models.Warning{
				Kind:        models.ViolationScopeDrift,
				Description: fmt.Sprintf("%s marker %q", what, hit.Expression),
				Suggestion:  "keep the scene within its declared setting",
			})
			return
		}
		if strings.Contains(expected, hit.Captured) || strings.Contains(hit.Captured, expected) {
			return // 切换目标就是契约里的地点/时段，不算漂移
		}
		drifted++
		*violations = append(*violations, models.Violation{
			Kind:     models.ViolationScopeDrift,
			Severity: models.SeverityMajor,
			Description: fmt.Sprintf("unexpected %s %q (contract specifies %q)",
				what, hit.Captured, expected),
			Suggestion: "keep the scene within its declared setting",
		})
	}

	for _, hit := range lib.MatchKind(text, markers.KindLocationChange) {
		record(hit, contract.Location, "location change")
	}
	for _, hit := range lib.MatchKind(text, markers.KindTimeframeShift) {
		record(hit, contract.Timeframe, "timeframe shift")
	}

	if drifted > 0 {
		return models.CheckResult{Passed: false, Detail: fmt.Sprintf("%d unexpected scope changes", drifted)}
	}
	return models.CheckResult{Passed: true}
}

// ---- 检查 5: 时间跳跃 ----

func (s *ValidatorService) checkTimeJump(text string, lib *markers.Library, violations *[]models.Violation, warnings *[]models.Warning) models.CheckResult {
	hits := lib.MatchKind(text, markers.KindTimeJump)
	hits = append(hits, lib.MatchKind(text, markers.KindSceneBreak)...)

	failed := 0
	for _, hit := range hits {
		switch hit.Severity {
		case markers.SeverityHigh, markers.SeverityMedium:
			failed++
			*violations = append(*violations, models.Violation{
				Kind:        models.ViolationTimeJump,
				Severity:    models.SeverityCritical,
				Description: fmt.Sprintf("time jump marker %q (%s severity)", hit.Expression, hit.Severity),
				Suggestion:  "the scene must stay continuous in time; remove the jump",
			})
		default:
			*warnings = append(*warnings, models.Warning{
				Kind:        models.ViolationTimeJump,
				Description: fmt.Sprintf("weak time transition %q", hit.Expression),
				Suggestion:  "verify the transition does not skip story time",
			})
		}
	}

	if failed > 0 {
		return models.CheckResult{Passed: false, Detail: fmt.Sprintf("%d disqualifying time markers", failed)}
	}
	if len(hits) > 0 {
		return models.CheckResult{Passed: true, Detail: fmt.Sprintf("%d weak markers", len(hits))}
	}
	return models.CheckResult{Passed: true}
}

// ---- 评分与建议 ----

func (s *ValidatorService) score(violations []models.Violation, warnings []models.Warning) int {
	score := 100
	for _, v := range violations {
		switch v.Severity {
		case models.SeverityCritical:
			score -= s.tunables.CriticalPenalty
		case models.SeverityMajor:
			score -= s.tunables.MajorPenalty
		case models.SeverityMinor:
			score -= s.tunables.MinorPenalty
		}
	}
	score -= len(warnings) * s.tunables.WarningPenalty

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// suggestionOrder 建议的固定输出顺序：每种违规类型一条，不随命中数重复
var suggestionOrder = []models.ViolationKind{
	models.ViolationContractError,
	models.ViolationStartMissing,
	models.ViolationEndMissing,
	models.ViolationEndExceeded,
	models.ViolationIncludeMissing,
	models.ViolationScopeDrift,
	models.ViolationTimeJump,
}

func buildSuggestions(violations []models.Violation) []string {
	byKind := make(map[models.ViolationKind]string, len(violations))
	for _, v := range violations {
		if _, seen := byKind[v.Kind]; !seen && v.Suggestion != "" {
			byKind[v.Kind] = v.Suggestion
		}
	}

	suggestions := make([]string, 0, len(byKind))
	for _, kind := range suggestionOrder {
		if s, ok := byKind[kind]; ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

// ---- 窗口辅助 ----

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
