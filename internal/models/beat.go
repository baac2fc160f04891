// internal/models/beat.go
package models

// BeatStatus 单个节拍的生成状态
type BeatStatus string

const (
	BeatPending   BeatStatus = "pending"
	BeatCompleted BeatStatus = "completed"
)

// 每个节拍无条件携带的禁止项。
// 生成器在单个节拍内不允许跳时间、换地点或提前写下一拍的内容。
var BaseForbidden = []string{
	"time jump",
	"location change",
	"next-beat content",
}

// Beat 是把超长场景契约拆分后得到的子契约。
// 相邻节拍通过 StartMoment/EndMoment 首尾相接（链式边界），
// 这样各节拍可以独立生成，拼起来仍是连续的一场戏。
type Beat struct {
	ID              string     `json:"id"`
	BeatNumber      int        `json:"beat_number"`
	Title           string     `json:"title"`
	TargetWordCount int        `json:"target_word_count"`
	StartMoment     string     `json:"start_moment"`
	EndMoment       string     `json:"end_moment"`
	MustInclude     []string   `json:"must_include,omitempty"`
	Forbidden       []string   `json:"forbidden"`
	Status          BeatStatus `json:"status"`
}

// SplitSource 标记节拍计划来自哪条路径
type SplitSource string

const (
	SplitDeterministic SplitSource = "deterministic"
	SplitAssisted      SplitSource = "assisted"
)

// BeatPlan 是一次拆分的完整结果。
// FallbackReason 非空表示 AI 辅助拆分失败、已静默回退到确定性算法；
// 回退产出的计划在形状上与"成功"的辅助拆分没有任何区别。
type BeatPlan struct {
	ContractID     string      `json:"contract_id,omitempty"`
	Beats          []Beat      `json:"beats"`
	Source         SplitSource `json:"source"`
	FallbackReason string      `json:"fallback_reason,omitempty"`
}

// Contract 把节拍还原成可直接送入验证器的场景契约。
// 节拍的起止时刻即是子契约的开始/结束条件。
func (b *Beat) Contract(parent *SceneContract) *SceneContract {
	sub := &SceneContract{
		ID:               b.ID,
		Title:            b.Title,
		StartCondition:   b.StartMoment,
		EndCondition:     b.EndMoment,
		EndConditionKind: EndKindNarration,
		MustInclude:      b.MustInclude,
		TargetWordCount:  b.TargetWordCount,
	}
	if parent != nil {
		sub.Location = parent.Location
		sub.Timeframe = parent.Timeframe
		sub.Participants = parent.Participants
		sub.Locale = parent.Locale
		// 只有收尾节拍继承父契约的结束条件类型；
		// 中间节拍的边界是合成的叙述句
		if b.EndMoment == parent.EndCondition {
			sub.EndConditionKind = parent.NormalizedKind()
		}
	}
	return sub
}
