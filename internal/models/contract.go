// internal/models/contract.go
package models

import (
	"strings"
)

// EndConditionKind 结束条件的类型
// dialogue: 以台词结束 / action: 以动作结束 / narration: 以叙述结束
type EndConditionKind string

const (
	EndKindDialogue  EndConditionKind = "dialogue"
	EndKindAction    EndConditionKind = "action"
	EndKindNarration EndConditionKind = "narration"
)

// SceneContract 表示一个写作单元的作者约定：
// 场景发生的地点与时间、登场人物、必须出现的内容，
// 以及生成文本必须在哪里开始、在哪里停止。
type SceneContract struct {
	ID               string           `json:"id,omitempty"`
	Title            string           `json:"title,omitempty"`
	Location         string           `json:"location"`
	Timeframe        string           `json:"timeframe"`
	Participants     []string         `json:"participants,omitempty"`
	StartCondition   string           `json:"start_condition"`
	EndCondition     string           `json:"end_condition"`
	EndConditionKind EndConditionKind `json:"end_condition_kind"`
	MustInclude      []string         `json:"must_include,omitempty"`
	TargetWordCount  int              `json:"target_word_count"`

	// Locale 为空时按文本内容自动检测（ko/zh/en）
	Locale string `json:"locale,omitempty"`
}

// Validate 检查契约本身是否合法。
// 空的结束条件是契约错误，不是运行时异常：
// 没有结束条件就无法判定"该停在哪里"，所有检查都失去意义。
func (c *SceneContract) Validate() error {
	if strings.TrimSpace(c.EndCondition) == "" {
		return ErrEmptyEndCondition
	}
	if c.TargetWordCount <= 0 {
		return ErrInvalidWordCount
	}
	return nil
}

// NormalizedKind 返回规范化的结束条件类型，未知值按 narration 处理
func (c *SceneContract) NormalizedKind() EndConditionKind {
	switch c.EndConditionKind {
	case EndKindDialogue, EndKindAction, EndKindNarration:
		return c.EndConditionKind
	default:
		return EndKindNarration
	}
}
