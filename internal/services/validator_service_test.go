// internal/services/validator_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	"github.com/StoryPact/ScenePactMCP/internal/models"
)

func newTestValidator() *ValidatorService {
	return NewValidatorServiceWith(config.DefaultValidatorTunables(), nil)
}

// studyContract 测试用的基准契约：深夜书房里的交接场景
func studyContract() *models.SceneContract {
	return &models.SceneContract{
		Title:            "서재의 약속",
		Location:         "저택의 서재",
		Timeframe:        "깊은 밤",
		Participants:     []string{"지호", "세라"},
		StartCondition:   "지호가 서재의 문을 열었다.",
		EndCondition:     "그는 문을 닫았다.",
		EndConditionKind: models.EndKindAction,
		MustInclude:      []string{"반지를 건넨다", "약속을 한다"},
		TargetWordCount:  1000,
		Locale:           "ko",
	}
}

const cleanText = "지호가 서재의 문을 열었다. 세라가 창가에서 돌아보았다. " +
	"그는 천천히 다가가 반지를 건넨다. 두 사람은 오래도록 약속을 한다. 그는 문을 닫았다."

func TestValidateContractCleanPass(t *testing.T) {
	v := newTestValidator()
	result := v.ValidateContract(studyContract(), cleanText)

	assert.Equal(t, 100, result.Score)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Violations)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Suggestions)

	assert.True(t, result.Checks.StartCondition.Passed)
	assert.True(t, result.Checks.EndCondition.Passed)
	assert.True(t, result.Checks.MustInclude.Passed)
	assert.True(t, result.Checks.Scope.Passed)
	assert.True(t, result.Checks.TimeJump.Passed)
	assert.NotEmpty(t, result.ID)
}

func TestValidateContractOverrun(t *testing.T) {
	// 结束条件出现了，但后面又续写了远超宽限的内容
	text := cleanText +
		" 복도는 고요했다. 그는 한참 동안 그 자리에 서 있었다. " +
		"벽에 걸린 오래된 초상화가 그를 내려다보고 있었다. 창밖에는 눈이 내리기 시작했다."

	v := newTestValidator()
	result := v.ValidateContract(studyContract(), text)

	assert.Equal(t, 70, result.Score)
	assert.False(t, result.IsValid)
	assert.False(t, result.Checks.EndCondition.Passed)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, models.ViolationEndExceeded, result.Violations[0].Kind)
	assert.Equal(t, models.SeverityCritical, result.Violations[0].Severity)
}

func TestValidateContractSmallOverrunIsWarning(t *testing.T) {
	// 宽限以内的尾巴只告警，不否决
	text := cleanText + " 밤은 깊었다."

	v := newTestValidator()
	result := v.ValidateContract(studyContract(), text)

	assert.True(t, result.IsValid)
	assert.True(t, result.Checks.EndCondition.Passed)
	assert.Empty(t, result.Violations)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, models.ViolationEndExceeded, result.Warnings[0].Kind)
	assert.Equal(t, 98, result.Score)
}

func TestValidateContractTimeJump(t *testing.T) {
	text := "지호가 서재의 문을 열었다. 그는 반지를 건넨다. " +
		"며칠이 지나 두 사람은 약속을 한다. 그는 문을 닫았다."

	v := newTestValidator()
	result := v.ValidateContract(studyContract(), text)

	assert.False(t, result.IsValid)
	assert.False(t, result.Checks.TimeJump.Passed)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, models.ViolationTimeJump, result.Violations[0].Kind)
	assert.Equal(t, models.SeverityCritical, result.Violations[0].Severity)
	assert.Contains(t, result.Violations[0].Description, "며칠이 지나")
}

func TestValidateContractPartialMustInclude(t *testing.T) {
	// 两条必含内容只出现一条：扣 minor，分数仍然及格
	text := "지호가 서재의 문을 열었다. 그는 조용히 다가가 반지를 건넨다. 그는 문을 닫았다."

	v := newTestValidator()
	result := v.ValidateContract(studyContract(), text)

	assert.Equal(t, 95, result.Score)
	assert.True(t, result.IsValid)
	assert.False(t, result.Checks.MustInclude.Passed)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, models.ViolationIncludeMissing, result.Violations[0].Kind)
	assert.Equal(t, models.SeverityMinor, result.Violations[0].Severity)
	assert.Contains(t, result.Violations[0].Description, "약속을 한다")
}

func TestValidateContractScopeDrift(t *testing.T) {
	text := "지호가 서재의 문을 열었다. 세라가 창가에서 돌아보았다. " +
		"그는 천천히 다가가 반지를 건넨다. 두 사람은 오래도록 약속을 한다. " +
		"세라는 시장으로 향했다. 그는 문을 닫았다."

	t.Run("captured destination outside the declared location", func(t *testing.T) {
		v := newTestValidator()
		result := v.ValidateContract(studyContract(), text)

		assert.Equal(t, 85, result.Score)
		assert.False(t, result.Checks.Scope.Passed)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, models.ViolationScopeDrift, result.Violations[0].Kind)
		assert.Equal(t, models.SeverityMajor, result.Violations[0].Severity)
	})

	t.Run("contract without a declared location only warns", func(t *testing.T) {
		// 契约没写地点时，切换短语不算漂移，最多算可疑
		contract := studyContract()
		contract.Location = ""

		v := newTestValidator()
		result := v.ValidateContract(contract, text)

		assert.True(t, result.IsValid)
		assert.True(t, result.Checks.Scope.Passed)
		assert.Empty(t, result.Violations)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, models.ViolationScopeDrift, result.Warnings[0].Kind)
		assert.Equal(t, 98, result.Score)
	})
}

func TestValidateContractError(t *testing.T) {
	t.Run("empty end condition", func(t *testing.T) {
		contract := studyContract()
		contract.EndCondition = ""

		result := newTestValidator().ValidateContract(contract, cleanText)

		assert.Equal(t, 0, result.Score)
		assert.False(t, result.IsValid)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, models.ViolationContractError, result.Violations[0].Kind)
		assert.Equal(t, models.SeverityCritical, result.Violations[0].Severity)
	})

	t.Run("invalid word count", func(t *testing.T) {
		contract := studyContract()
		contract.TargetWordCount = 0

		result := newTestValidator().ValidateContract(contract, cleanText)

		assert.Equal(t, 0, result.Score)
		require.Len(t, result.Violations, 1)
		assert.Equal(t, models.ViolationContractError, result.Violations[0].Kind)
	})
}

func TestValidateContractEmptyTextNeverErrors(t *testing.T) {
	// 生成文本畸形只是低分，不是错误
	result := newTestValidator().ValidateContract(studyContract(), "")

	assert.False(t, result.IsValid)
	assert.True(t, result.HasCritical())
	assert.GreaterOrEqual(t, result.Score, 0)
	assert.False(t, result.Checks.EndCondition.Passed)
}

func TestValidateContractScoreClampsAtZero(t *testing.T) {
	text := "며칠이 지나. 몇 주 후. 다음 날. 일주일 후. 세월이 흘러."

	result := newTestValidator().ValidateContract(studyContract(), text)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.IsValid)
}

func TestValidateContractDeterministic(t *testing.T) {
	v := newTestValidator()
	contract := studyContract()
	text := cleanText + " 복도는 고요했다. 그는 한참 동안 그 자리에 서 있었다. " +
		"벽에 걸린 오래된 초상화가 그를 내려다보고 있었다. 창밖에는 눈이 내리기 시작했다."

	a := v.ValidateContract(contract, text)
	b := v.ValidateContract(contract, text)

	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, a.IsValid, b.IsValid)
	assert.Equal(t, a.Violations, b.Violations)
	assert.Equal(t, a.Warnings, b.Warnings)
	assert.Equal(t, a.Suggestions, b.Suggestions)
	assert.Equal(t, a.Checks, b.Checks)
	// 身份字段每次不同
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidateContractValidityInvariant(t *testing.T) {
	v := newTestValidator()
	contract := studyContract()
	passScore := config.DefaultValidatorTunables().PassScore

	texts := []string{
		cleanText,
		"",
		"지호가 서재의 문을 열었다. 며칠이 지나 그는 문을 닫았다.",
		"그는 반지를 건넨다.",
	}
	for _, text := range texts {
		result := v.ValidateContract(contract, text)
		assert.Equal(t, result.Score >= passScore && !result.HasCritical(), result.IsValid)
	}
}

func TestValidateContractSuggestionsDeduped(t *testing.T) {
	// 同类违规命中多次只给一条建议
	text := "지호가 서재의 문을 열었다. 며칠이 지나 봄이 왔다. 다음 날 그는 반지를 건넨다. " +
		"그는 약속을 한다. 그는 문을 닫았다."

	result := newTestValidator().ValidateContract(studyContract(), text)

	require.Len(t, result.Violations, 2)
	assert.Len(t, result.Suggestions, 1)
}

func TestValidateContractQuoteNormalization(t *testing.T) {
	// 契约用 ASCII 引号、生成文本用 CJK 引号，仍然算精确命中
	contract := &models.SceneContract{
		EndCondition:     `"이제 그만 가자"`,
		EndConditionKind: models.EndKindDialogue,
		TargetWordCount:  500,
		Locale:           "ko",
	}
	text := "그가 낮은 목소리로 말했다. 「이제 그만 가자」"

	result := newTestValidator().ValidateContract(contract, text)

	assert.True(t, result.IsValid)
	assert.True(t, result.Checks.EndCondition.Passed)
}

func TestValidateContractLocaleDetection(t *testing.T) {
	// 契约未指定语言时按文本自动选表
	contract := studyContract()
	contract.Locale = ""
	text := "지호가 서재의 문을 열었다. 며칠이 지나 그는 반지를 건넨다. " +
		"그는 약속을 한다. 그는 문을 닫았다."

	result := newTestValidator().ValidateContract(contract, text)

	assert.False(t, result.Checks.TimeJump.Passed)
}

func TestValidateBeat(t *testing.T) {
	parent := studyContract()
	beat := &models.Beat{
		BeatNumber:      1,
		Title:           "발단",
		TargetWordCount: 500,
		StartMoment:     parent.StartCondition,
		EndMoment:       "그는 반지를 꺼냈다.",
		MustInclude:     []string{"반지를 건넨다"},
	}
	text := "지호가 서재의 문을 열었다. 세라가 돌아보았다. 그는 반지를 건넨다. 그는 반지를 꺼냈다."

	result := newTestValidator().ValidateBeat(beat, parent, text)

	assert.True(t, result.IsValid)
	assert.True(t, result.Checks.EndCondition.Passed)
	assert.True(t, result.Checks.MustInclude.Passed)
}
