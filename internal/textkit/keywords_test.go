// internal/textkit/keywords_test.go
package textkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("drops punctuation and short tokens", func(t *testing.T) {
		keywords := ExtractKeywords("The ring, the promise!")
		assert.Contains(t, keywords, "ring")
		assert.Contains(t, keywords, "promise")
		assert.NotContains(t, keywords, "the")
	})

	t.Run("strips korean particles", func(t *testing.T) {
		keywords := ExtractKeywords("반지를 건넨다")
		assert.Contains(t, keywords, "반지")
		assert.Contains(t, keywords, "건넨다")
	})

	t.Run("order irrelevant", func(t *testing.T) {
		a := ExtractKeywords("약속 반지 결투")
		b := ExtractKeywords("결투 반지 약속")
		assert.Equal(t, a, b)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(""))
		assert.Empty(t, ExtractKeywords("  ,.! "))
	})
}

func TestSimilarity(t *testing.T) {
	t.Run("identical strings", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("반지를 건넨다", "반지를 건넨다"))
	})

	t.Run("disjoint strings", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("반지를 건넨다", "검은 하늘 아래"))
	})

	t.Run("empty union is zero not NaN", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", ""))
	})

	t.Run("paraphrase overlaps", func(t *testing.T) {
		sim := Similarity("반지를 건네며 약속한다", "반지를 건넨다")
		assert.Greater(t, sim, 0.0)
		assert.Less(t, sim, 1.0)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := Similarity("그는 문을 닫았다", "그는 조용히 문을 닫았다")
		b := Similarity("그는 문을 닫았다", "그는 조용히 문을 닫았다")
		assert.Equal(t, a, b)
	})
}

func TestContainment(t *testing.T) {
	t.Run("item fully inside long text", func(t *testing.T) {
		text := "지호는 천천히 다가가 반지를 건넨다 그리고 오래 침묵했다"
		assert.Equal(t, 1.0, Containment("반지를 건넨다", text))
	})

	t.Run("asymmetric", func(t *testing.T) {
		text := "반지를 건넨다"
		long := "지호는 천천히 다가가 반지를 건넨다 그리고 오래 침묵했다"
		assert.Greater(t, Containment(text, long), Containment(long, text))
	})

	t.Run("empty item is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Containment("", "무언가"))
	})
}

func TestExtractQuoted(t *testing.T) {
	t.Run("ascii quotes", func(t *testing.T) {
		spans := ExtractQuoted(`그는 "이제 그만 가자"라고 말했다.`)
		require.Len(t, spans, 1)
		assert.Equal(t, "이제 그만 가자", spans[0])
	})

	t.Run("cjk corner brackets", func(t *testing.T) {
		spans := ExtractQuoted("「먼저 가」 그녀가 속삭였다. 『알았어』")
		require.Len(t, spans, 2)
		assert.Equal(t, "먼저 가", spans[0])
		assert.Equal(t, "알았어", spans[1])
	})

	t.Run("curly quotes", func(t *testing.T) {
		spans := ExtractQuoted("“We leave at dawn,” she said.")
		require.Len(t, spans, 1)
		assert.Equal(t, "We leave at dawn,", spans[0])
	})

	t.Run("unpaired quote yields nothing after it", func(t *testing.T) {
		spans := ExtractQuoted(`그는 "멈춰`)
		assert.Empty(t, spans)
	})

	t.Run("no quotes", func(t *testing.T) {
		assert.Empty(t, ExtractQuoted("조용한 밤이었다."))
	})
}
