// internal/markers/library_test.go
package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKoreanTimeJump(t *testing.T) {
	lib := Builtin("ko")

	t.Run("days passed is high severity", func(t *testing.T) {
		hits := lib.Match("며칠이 지나 그는 다시 저택을 찾았다.")
		require.Len(t, hits, 1)
		assert.Equal(t, KindTimeJump, hits[0].Kind)
		assert.Equal(t, SeverityHigh, hits[0].Severity)
		assert.Equal(t, "며칠이 지나", hits[0].Expression)
		assert.Equal(t, 0, hits[0].Index)
	})

	t.Run("moments later is low severity", func(t *testing.T) {
		hits := lib.Match("잠시 후 문이 열렸다.")
		require.Len(t, hits, 1)
		assert.Equal(t, SeverityLow, hits[0].Severity)
	})

	t.Run("multiple hits come back sorted", func(t *testing.T) {
		hits := lib.Match("잠시 후 그가 입을 열었다. 며칠이 지나 편지가 도착했다.")
		require.Len(t, hits, 2)
		assert.Less(t, hits[0].Index, hits[1].Index)
		assert.Equal(t, SeverityLow, hits[0].Severity)
		assert.Equal(t, SeverityHigh, hits[1].Severity)
	})

	t.Run("plain narration has no hits", func(t *testing.T) {
		assert.Empty(t, lib.Match("그는 조용히 반지를 건넸다."))
	})
}

func TestLocationChangeCapture(t *testing.T) {
	t.Run("korean destination captured", func(t *testing.T) {
		hits := Builtin("ko").MatchKind("그녀는 항구로 향했다.", KindLocationChange)
		require.Len(t, hits, 1)
		assert.Equal(t, "항구", hits[0].Captured)
	})

	t.Run("english destination captured", func(t *testing.T) {
		hits := Builtin("en").MatchKind("She arrived at the harbor just after dusk.", KindLocationChange)
		require.Len(t, hits, 1)
		assert.Equal(t, "harbor", hits[0].Captured)
	})
}

func TestMatchOverlapResolution(t *testing.T) {
	// 两个模式覆盖同一片文字时只保留一个命中
	lib := NewLibrary("test", []Category{
		{Name: "long", Kind: KindTimeJump, Severity: SeverityHigh, Patterns: compile(`abc def`)},
		{Name: "short", Kind: KindTimeJump, Severity: SeverityLow, Patterns: compile(`abc`)},
	})
	hits := lib.Match("xx abc def yy")
	require.Len(t, hits, 1)
	assert.Equal(t, "long", hits[0].Category)
	assert.Equal(t, "abc def", hits[0].Expression)
}

func TestBuiltinFallback(t *testing.T) {
	assert.Equal(t, "en", Builtin("fr").Locale())
	assert.Equal(t, "ko", Builtin("ko").Locale())
	assert.ElementsMatch(t, []string{"ko", "zh", "en"}, BuiltinLocales())
}

func TestChineseSceneBreak(t *testing.T) {
	hits := Builtin("zh").Match("他合上了门。\n***\n第二天清晨。")
	kinds := make(map[Kind]int)
	for _, h := range hits {
		kinds[h.Kind]++
	}
	assert.Equal(t, 1, kinds[KindSceneBreak])
	assert.Equal(t, 1, kinds[KindTimeJump])
}

func TestDetectLocale(t *testing.T) {
	assert.Equal(t, "ko", DetectLocale("지호가 서재의 문을 열었다."))
	assert.Equal(t, "zh", DetectLocale("他推开了书房的门。"))
	assert.Equal(t, "en", DetectLocale("He pushed open the study door."))
	assert.Equal(t, "en", DetectLocale(""))
}

func TestParse(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		lib, err := Parse([]byte(`{
			"locale": "ja",
			"categories": [
				{"name": "ja_time_jump", "kind": "time_jump", "severity": "high",
				 "patterns": ["数日後", "翌日"]}
			]
		}`))
		require.NoError(t, err)
		assert.Equal(t, "ja", lib.Locale())

		hits := lib.Match("数日後、彼は戻ってきた。")
		require.Len(t, hits, 1)
		assert.Equal(t, SeverityHigh, hits[0].Severity)
	})

	t.Run("bad pattern rejects whole table", func(t *testing.T) {
		_, err := Parse([]byte(`{
			"locale": "ja",
			"categories": [
				{"name": "broken", "kind": "time_jump", "severity": "high", "patterns": ["("]}
			]
		}`))
		assert.Error(t, err)
	})

	t.Run("bad severity rejects whole table", func(t *testing.T) {
		_, err := Parse([]byte(`{
			"locale": "ja",
			"categories": [
				{"name": "odd", "kind": "time_jump", "severity": "fatal", "patterns": ["x"]}
			]
		}`))
		assert.Error(t, err)
	})

	t.Run("missing locale rejected", func(t *testing.T) {
		_, err := Parse([]byte(`{"categories": []}`))
		assert.Error(t, err)
	})
}
