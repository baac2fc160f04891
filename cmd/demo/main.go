// cmd/demo/main.go
// 离线演示：不需要任何API密钥，展示验证器与拆分器的完整输出。
package main

import (
	"fmt"
	"strings"

	"github.com/StoryPact/ScenePactMCP/internal/config"
	"github.com/StoryPact/ScenePactMCP/internal/models"
	"github.com/StoryPact/ScenePactMCP/internal/services"
)

func main() {
	validator := services.NewValidatorServiceWith(config.DefaultValidatorTunables(), nil)
	splitter := services.NewSplitterServiceWith(nil, config.DefaultSplitterTunables())

	contract := &models.SceneContract{
		Title:            "서재의 약속",
		Location:         "저택의 서재",
		Timeframe:        "깊은 밤",
		Participants:     []string{"지호", "서연"},
		StartCondition:   "지호가 서재의 문을 열었다.",
		EndCondition:     "그는 문을 닫았다.",
		EndConditionKind: models.EndKindAction,
		MustInclude:      []string{"반지를 건넨다", "약속을 한다"},
		TargetWordCount:  1200,
		Locale:           "ko",
	}

	fmt.Println("=== 合格文本 ===")
	good := "지호가 서재의 문을 열었다. 서연은 창가에 서 있었다. " +
		"그는 조용히 다가가 반지를 건넨다. 두 사람은 평생을 함께하기로 약속을 한다. " +
		"서연의 눈가가 젖어 있었다. 그는 문을 닫았다."
	printResult(validator.ValidateContract(contract, good))

	fmt.Println("=== 时间跳跃 + 越界续写 ===")
	bad := "지호가 서재의 문을 열었다. 며칠이 지나 두 사람은 다시 만났다. " +
		"그는 문을 닫았다. 그리고 복도를 천천히 걸어가며 지난날을 떠올렸다. " +
		"창밖에는 비가 내리고 있었고, 그의 마음은 여전히 무거웠다."
	printResult(validator.ValidateContract(contract, bad))

	fmt.Println("=== 长契约拆分 ===")
	long := &models.SceneContract{
		Title:            "결전의 밤",
		Location:         "무너진 성곽",
		Timeframe:        "자정",
		StartCondition:   "성문이 열렸다.",
		EndCondition:     "동이 트기 시작했다.",
		EndConditionKind: models.EndKindNarration,
		MustInclude:      []string{"배신의 폭로", "검의 결투", "화재", "퇴각 명령", "재회"},
		TargetWordCount:  9000,
		Locale:           "ko",
	}
	plan, err := splitter.Split(long)
	if err != nil {
		fmt.Println("拆分失败:", err)
		return
	}
	fmt.Printf("共 %d 拍 (来源: %s)\n", len(plan.Beats), plan.Source)
	total := 0
	for _, b := range plan.Beats {
		total += b.TargetWordCount
		fmt.Printf("  %d. %-8s %5d字  %s → %s\n",
			b.BeatNumber, b.Title, b.TargetWordCount, b.StartMoment, b.EndMoment)
		if len(b.MustInclude) > 0 {
			fmt.Printf("     必含: %s\n", strings.Join(b.MustInclude, " / "))
		}
	}
	fmt.Printf("字数合计 %d (契约 %d)\n", total, long.TargetWordCount)
}

func printResult(result *models.ValidationResult) {
	fmt.Print(result.FormatReport())
	fmt.Println()
}
