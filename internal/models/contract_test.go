// internal/models/contract_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneContractValidate(t *testing.T) {
	contract := &SceneContract{
		EndCondition:    "그는 문을 닫았다.",
		TargetWordCount: 1000,
	}
	require.NoError(t, contract.Validate())

	t.Run("blank end condition", func(t *testing.T) {
		c := *contract
		c.EndCondition = "   "
		assert.ErrorIs(t, c.Validate(), ErrEmptyEndCondition)
	})

	t.Run("non-positive word count", func(t *testing.T) {
		c := *contract
		c.TargetWordCount = 0
		assert.ErrorIs(t, c.Validate(), ErrInvalidWordCount)
	})
}

func TestNormalizedKind(t *testing.T) {
	assert.Equal(t, EndKindDialogue, (&SceneContract{EndConditionKind: EndKindDialogue}).NormalizedKind())
	assert.Equal(t, EndKindNarration, (&SceneContract{}).NormalizedKind())
	assert.Equal(t, EndKindNarration, (&SceneContract{EndConditionKind: "haiku"}).NormalizedKind())
}

func TestBeatContract(t *testing.T) {
	parent := &SceneContract{
		Location:         "저택의 서재",
		Timeframe:        "깊은 밤",
		Participants:     []string{"지호", "세라"},
		EndCondition:     `"이제 그만 가자"`,
		EndConditionKind: EndKindDialogue,
		Locale:           "ko",
	}

	t.Run("interior beat boundary is narration", func(t *testing.T) {
		beat := &Beat{
			ID:              "b1",
			StartMoment:     "배가 닿았다.",
			EndMoment:       "밀서가 손을 떠났다.",
			TargetWordCount: 500,
		}
		sub := beat.Contract(parent)
		assert.Equal(t, parent.Location, sub.Location)
		assert.Equal(t, parent.Locale, sub.Locale)
		assert.Equal(t, beat.EndMoment, sub.EndCondition)
		assert.Equal(t, EndKindNarration, sub.EndConditionKind)
	})

	t.Run("final beat inherits parent kind", func(t *testing.T) {
		beat := &Beat{
			StartMoment:     "밀서가 손을 떠났다.",
			EndMoment:       parent.EndCondition,
			TargetWordCount: 500,
		}
		sub := beat.Contract(parent)
		assert.Equal(t, EndKindDialogue, sub.EndConditionKind)
	})

	t.Run("nil parent", func(t *testing.T) {
		beat := &Beat{StartMoment: "a", EndMoment: "b", TargetWordCount: 100}
		sub := beat.Contract(nil)
		assert.Equal(t, "b", sub.EndCondition)
		assert.Equal(t, EndKindNarration, sub.EndConditionKind)
	})
}

func TestFormatReport(t *testing.T) {
	result := &ValidationResult{
		Score:   70,
		IsValid: false,
		Violations: []Violation{{
			Kind:        ViolationEndExceeded,
			Severity:    SeverityCritical,
			Description: "text continues 80 chars past the end condition",
		}},
		Warnings: []Warning{{
			Kind:        ViolationTimeJump,
			Description: `weak time transition "잠시 후"`,
		}},
		Suggestions: []string{"cut everything after the end condition"},
	}

	report := result.FormatReport()
	assert.Contains(t, report, "[FAIL] score=70/100")
	assert.Contains(t, report, "end_condition_exceeded")
	assert.Contains(t, report, "잠시 후")
	assert.Contains(t, report, "cut everything after the end condition")

	result.IsValid = true
	assert.Contains(t, result.FormatReport(), "[PASS]")
}

func TestHasCritical(t *testing.T) {
	r := &ValidationResult{Violations: []Violation{{Severity: SeverityMinor}}}
	assert.False(t, r.HasCritical())

	r.Violations = append(r.Violations, Violation{Severity: SeverityCritical})
	assert.True(t, r.HasCritical())
}
