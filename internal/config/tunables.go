// internal/config/tunables.go
package config

// 阈值都是经验常量，没有推导依据，按配置默认值对待而不是固定不变式。
// 全部可以用环境变量覆盖，也可以通过设置接口在运行期调整。

// ValidatorTunables 验证器的可调参数
type ValidatorTunables struct {
	// 检查窗口（按字符计）
	StartWindowChars int `json:"start_window_chars"` // 开始条件只看开头这么多字符
	EndWindowChars   int `json:"end_window_chars"`   // 结束条件只看结尾这么多字符

	// 相似度阈值
	StartSimilarity    float64 `json:"start_similarity"`
	EndSimilarity      float64 `json:"end_similarity"`
	DialogueSimilarity float64 `json:"dialogue_similarity"`
	IncludeSimilarity  float64 `json:"include_similarity"`

	// 必含内容的覆盖比例要求
	CoverageRatio float64 `json:"coverage_ratio"`

	// 结束条件之后允许的余量字符数，超过即判越界续写
	OverrunGraceChars int `json:"overrun_grace_chars"`

	// 评分
	PassScore       int `json:"pass_score"`
	CriticalPenalty int `json:"critical_penalty"`
	MajorPenalty    int `json:"major_penalty"`
	MinorPenalty    int `json:"minor_penalty"`
	WarningPenalty  int `json:"warning_penalty"`
}

// SplitterTunables 节拍拆分器的可调参数
type SplitterTunables struct {
	// 超过该字数的契约才需要拆分
	SplitThresholdWords int `json:"split_threshold_words"`
	// 单个节拍的目标字数（决定推荐节拍数）
	BeatTargetWords int `json:"beat_target_words"`
}

// DefaultValidatorTunables 验证器参数默认值（可被环境变量覆盖）
func DefaultValidatorTunables() ValidatorTunables {
	return ValidatorTunables{
		StartWindowChars:   getEnvInt("VALIDATOR_START_WINDOW", 1000),
		EndWindowChars:     getEnvInt("VALIDATOR_END_WINDOW", 2000),
		StartSimilarity:    getEnvFloat("VALIDATOR_START_SIMILARITY", 0.6),
		EndSimilarity:      getEnvFloat("VALIDATOR_END_SIMILARITY", 0.7),
		DialogueSimilarity: getEnvFloat("VALIDATOR_DIALOGUE_SIMILARITY", 0.8),
		IncludeSimilarity:  getEnvFloat("VALIDATOR_INCLUDE_SIMILARITY", 0.7),
		CoverageRatio:      getEnvFloat("VALIDATOR_COVERAGE_RATIO", 0.8),
		OverrunGraceChars:  getEnvInt("VALIDATOR_OVERRUN_GRACE", 50),
		PassScore:          getEnvInt("VALIDATOR_PASS_SCORE", 80),
		CriticalPenalty:    getEnvInt("VALIDATOR_CRITICAL_PENALTY", 30),
		MajorPenalty:       getEnvInt("VALIDATOR_MAJOR_PENALTY", 15),
		MinorPenalty:       getEnvInt("VALIDATOR_MINOR_PENALTY", 5),
		WarningPenalty:     getEnvInt("VALIDATOR_WARNING_PENALTY", 2),
	}
}

// DefaultSplitterTunables 拆分器参数默认值（可被环境变量覆盖）
func DefaultSplitterTunables() SplitterTunables {
	return SplitterTunables{
		SplitThresholdWords: getEnvInt("SPLITTER_THRESHOLD_WORDS", 3000),
		BeatTargetWords:     getEnvInt("SPLITTER_BEAT_TARGET_WORDS", 2500),
	}
}

// withDefaults 把零值字段补成默认值，容忍旧版本保存的不完整配置文件
func (t ValidatorTunables) withDefaults() ValidatorTunables {
	def := DefaultValidatorTunables()
	if t.StartWindowChars <= 0 {
		t.StartWindowChars = def.StartWindowChars
	}
	if t.EndWindowChars <= 0 {
		t.EndWindowChars = def.EndWindowChars
	}
	if t.StartSimilarity <= 0 {
		t.StartSimilarity = def.StartSimilarity
	}
	if t.EndSimilarity <= 0 {
		t.EndSimilarity = def.EndSimilarity
	}
	if t.DialogueSimilarity <= 0 {
		t.DialogueSimilarity = def.DialogueSimilarity
	}
	if t.IncludeSimilarity <= 0 {
		t.IncludeSimilarity = def.IncludeSimilarity
	}
	if t.CoverageRatio <= 0 {
		t.CoverageRatio = def.CoverageRatio
	}
	if t.OverrunGraceChars <= 0 {
		t.OverrunGraceChars = def.OverrunGraceChars
	}
	if t.PassScore <= 0 {
		t.PassScore = def.PassScore
	}
	if t.CriticalPenalty <= 0 {
		t.CriticalPenalty = def.CriticalPenalty
	}
	if t.MajorPenalty <= 0 {
		t.MajorPenalty = def.MajorPenalty
	}
	if t.MinorPenalty <= 0 {
		t.MinorPenalty = def.MinorPenalty
	}
	if t.WarningPenalty <= 0 {
		t.WarningPenalty = def.WarningPenalty
	}
	return t
}

func (t SplitterTunables) withDefaults() SplitterTunables {
	def := DefaultSplitterTunables()
	if t.SplitThresholdWords <= 0 {
		t.SplitThresholdWords = def.SplitThresholdWords
	}
	if t.BeatTargetWords <= 0 {
		t.BeatTargetWords = def.BeatTargetWords
	}
	return t
}
