// internal/markers/builtin.go
package markers

import "regexp"

// 内置标记表。表是普通数据，扩展新语言只要加一张表，
// 不需要动验证器一行代码。

func compile(exprs ...string) []*regexp.Regexp {
	pats := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		pats = append(pats, regexp.MustCompile(e))
	}
	return pats
}

var koreanLibrary = NewLibrary("ko", []Category{
	{
		Name: "ko_time_jump_high", Kind: KindTimeJump, Severity: SeverityHigh,
		Patterns: compile(
			`며칠이?\s*지나`,
			`몇\s*[주달년]\s*(?:후|뒤|이\s*지나)`,
			`(?:다음\s*날|이튿날|다음날)`,
			`일주일\s*(?:후|뒤)`,
			`(?:몇\s*)?[한두세]\s*달\s*(?:후|뒤)`,
			`세월이\s*(?:흘러|지나)`,
			`해가\s*바뀌`,
		),
	},
	{
		Name: "ko_time_jump_medium", Kind: KindTimeJump, Severity: SeverityMedium,
		Patterns: compile(
			`몇\s*시간\s*(?:후|뒤|이\s*지나)`,
			`한참\s*(?:후|뒤|이\s*지나)`,
			`그날\s*밤`,
			`저녁이\s*되자`,
			`날이\s*밝자`,
		),
	},
	{
		Name: "ko_time_jump_low", Kind: KindTimeJump, Severity: SeverityLow,
		Patterns: compile(
			`잠시\s*(?:후|뒤)`,
			`이윽고`,
			`얼마\s*(?:후|지나지?\s*않아)`,
			`곧이어`,
		),
	},
	{
		Name: "ko_location_change", Kind: KindLocationChange, Severity: SeverityMedium,
		Patterns: compile(
			`([가-힣]{2,10})(?:으로|로)\s*(?:향했|이동했|떠났|발걸음을\s*옮겼)`,
			`한편[,，]?\s*([가-힣]{2,10})에서`,
			`([가-힣]{2,10})에\s*도착(?:했|하)`,
			`장소를\s*옮겨`,
		),
	},
	{
		Name: "ko_timeframe_shift", Kind: KindTimeframeShift, Severity: SeverityMedium,
		Patterns: compile(
			`그\s*무렵`,
			`몇\s*년\s*전(?:의\s*일)?`,
			`회상에\s*잠겼`,
			`그\s*시각[,，]?`,
		),
	},
	{
		Name: "ko_scene_break", Kind: KindSceneBreak, Severity: SeverityHigh,
		Patterns: compile(
			`(?m)^\s*[*＊]{3,}\s*$`,
			`다음\s*장(?:으로|에서)`,
		),
	},
})

var chineseLibrary = NewLibrary("zh", []Category{
	{
		Name: "zh_time_jump_high", Kind: KindTimeJump, Severity: SeverityHigh,
		Patterns: compile(
			`几天(?:之)?后`,
			`第二天`,
			`(?:一|几)(?:周|个月|年)(?:之)?后`,
			`转眼(?:间|之间)?`,
			`岁月流逝`,
			`数[日月年]之后`,
		),
	},
	{
		Name: "zh_time_jump_medium", Kind: KindTimeJump, Severity: SeverityMedium,
		Patterns: compile(
			`几个小时(?:之)?后`,
			`当天(?:晚上|夜里)`,
			`天亮(?:之后|时)`,
			`入夜(?:之后)?`,
		),
	},
	{
		Name: "zh_time_jump_low", Kind: KindTimeJump, Severity: SeverityLow,
		Patterns: compile(
			`过了一会儿?`,
			`片刻(?:之)?后`,
			`不久(?:之后)?`,
			`随后不久`,
		),
	},
	{
		Name: "zh_location_change", Kind: KindLocationChange, Severity: SeverityMedium,
		Patterns: compile(
			`来到了?([\p{Han}]{2,8})`,
			`前往([\p{Han}]{2,8})`,
			`与此同时[，,]?\s*在?([\p{Han}]{2,8})`,
			`另一边[，,]?`,
		),
	},
	{
		Name: "zh_timeframe_shift", Kind: KindTimeframeShift, Severity: SeverityMedium,
		Patterns: compile(
			`回忆(?:起|中)`,
			`(?:几|多)年前`,
			`那个时候`,
		),
	},
	{
		Name: "zh_scene_break", Kind: KindSceneBreak, Severity: SeverityHigh,
		Patterns: compile(
			`(?m)^\s*[*＊]{3,}\s*$`,
			`下一章`,
		),
	},
})

var englishLibrary = NewLibrary("en", []Category{
	{
		Name: "en_time_jump_high", Kind: KindTimeJump, Severity: SeverityHigh,
		Patterns: compile(
			`(?i)\b(?:a few|several|some) (?:days|weeks|months|years) (?:later|passed|had passed)\b`,
			`(?i)\bthe next (?:day|morning|week)\b`,
			`(?i)\b(?:days|weeks|months|years) later\b`,
			`(?i)\ba (?:week|month|year) (?:later|passed)\b`,
			`(?i)\btime passed\b`,
		),
	},
	{
		Name: "en_time_jump_medium", Kind: KindTimeJump, Severity: SeverityMedium,
		Patterns: compile(
			`(?i)\b(?:hours|an hour) later\b`,
			`(?i)\blater that (?:day|night|evening)\b`,
			`(?i)\bthat night\b`,
			`(?i)\bby (?:nightfall|morning)\b`,
		),
	},
	{
		Name: "en_time_jump_low", Kind: KindTimeJump, Severity: SeverityLow,
		Patterns: compile(
			`(?i)\bmoments later\b`,
			`(?i)\bafter a while\b`,
			`(?i)\bsoon after\b`,
			`(?i)\bbefore long\b`,
		),
	},
	{
		Name: "en_location_change", Kind: KindLocationChange, Severity: SeverityMedium,
		Patterns: compile(
			`(?i)\bmeanwhile,? (?:back )?(?:at|in) (?:the )?([A-Za-z][A-Za-z' ]{1,24})`,
			`(?i)\bback at (?:the )?([A-Za-z][A-Za-z']{1,24})`,
			`(?i)\b(?:headed|set off) (?:to|for) (?:the )?([A-Za-z][A-Za-z']{1,24})`,
			`(?i)\barrived (?:at|in) (?:the )?([A-Za-z][A-Za-z']{1,24})`,
		),
	},
	{
		Name: "en_timeframe_shift", Kind: KindTimeframeShift, Severity: SeverityMedium,
		Patterns: compile(
			`(?i)\byears (?:ago|earlier)\b`,
			`(?i)\bin a flashback\b`,
			`(?i)\bback then\b`,
		),
	},
	{
		Name: "en_scene_break", Kind: KindSceneBreak, Severity: SeverityHigh,
		Patterns: compile(
			`(?m)^\s*[*]{3,}\s*$`,
			`(?i)\bin the next (?:scene|chapter)\b`,
		),
	},
})

var builtins = map[string]*Library{
	"ko": koreanLibrary,
	"zh": chineseLibrary,
	"en": englishLibrary,
}

// Builtin 返回指定语言的内置标记表，未知语言退回英文表
func Builtin(locale string) *Library {
	if lib, ok := builtins[locale]; ok {
		return lib
	}
	return englishLibrary
}

// BuiltinLocales 所有内置表覆盖的语言
func BuiltinLocales() []string {
	return []string{"ko", "zh", "en"}
}
