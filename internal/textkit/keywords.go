// internal/textkit/keywords.go
// 纯函数的关键词抽取与相似度计算。
// 当生成器把要求的内容改写成别的说法、精确子串匹配失效时，
// 验证器退而比较两段文字的规范化关键词集合。
package textkit

import (
	"strings"
	"unicode"
)

// 关键词抽取时丢弃的功能词。
// 按语言分表，与标记库一样可以整表替换。
var defaultStopWords = buildStopWords(
	// 韩语助词/指示词（粘着语的独立形式）
	"그리고", "그러나", "하지만", "그래서", "그런데", "또한", "역시",
	"이것", "그것", "저것", "여기", "거기", "저기", "우리", "당신",
	// 中文虚词
	"的", "了", "在", "是", "和", "也", "就", "都", "而", "及", "与", "着",
	"或者", "一个", "没有", "我们", "你们", "他们", "这个", "那个",
	// English function words
	"the", "a", "an", "and", "or", "but", "of", "to", "in", "on", "at",
	"is", "are", "was", "were", "be", "been", "it", "that", "this",
	"with", "for", "as", "his", "her", "he", "she", "they", "them",
)

// 韩语词尾助词，从词条末尾剥离后再比较。
// 长的在前，保证 "에서" 先于 "에" 被剥掉。
var koParticleSuffixes = []string{
	"에게서", "으로써", "으로서", "에서", "에게", "까지", "부터", "처럼",
	"으로", "이나", "라도", "마저", "조차", "한테", "보다",
	"은", "는", "이", "가", "을", "를", "에", "와", "과", "의", "도",
	"만", "로", "나", "야", "랑",
}

func buildStopWords(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// quoteNormalizer 把各式引号统一成 ASCII 双引号，方便后续处理
var quoteNormalizer = strings.NewReplacer(
	"“", `"`, "”", `"`, // “ ”
	"‘", "'", "’", "'", // ‘ ’
	"「", `"`, "」", `"`,
	"『", `"`, "』", `"`,
	"《", `"`, "》", `"`,
)

// NormalizeQuotes 统一引号样式
func NormalizeQuotes(s string) string {
	return quoteNormalizer.Replace(s)
}

// ExtractKeywords 从一段文字中抽取规范化关键词集合。
// 流程：统一引号 → 去标点 → 按空白切分 → 剥离韩语助词 →
// 丢弃短于 2 个字符的词与功能词。结果与顺序无关。
func ExtractKeywords(s string) map[string]struct{} {
	s = NormalizeQuotes(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(r)
	}

	keywords := make(map[string]struct{})
	for _, token := range strings.Fields(sb.String()) {
		token = strings.ToLower(token)
		token = stripParticle(token)
		if len([]rune(token)) < 2 {
			continue
		}
		if _, stop := defaultStopWords[token]; stop {
			continue
		}
		keywords[token] = struct{}{}
	}
	return keywords
}

// stripParticle 剥离韩语词尾助词。剥离后若什么都不剩则保留原词
func stripParticle(token string) string {
	if !containsHangul(token) {
		return token
	}
	for _, suffix := range koParticleSuffixes {
		if strings.HasSuffix(token, suffix) {
			stripped := strings.TrimSuffix(token, suffix)
			// 剥离后至少要留下两个音节，避免把实词误伤成单字
			if len([]rune(stripped)) >= 2 {
				return stripped
			}
		}
	}
	return token
}

func containsHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}
	return false
}

// Similarity 计算两段文字关键词集合的 Jaccard 相似度，范围 [0,1]。
// 并集为空时返回 0。
func Similarity(a, b string) float64 {
	ka := ExtractKeywords(a)
	kb := ExtractKeywords(b)
	return jaccard(ka, kb)
}

// Containment 计算 a 的关键词被 b 覆盖的比例：|a∩b| / |a|。
// 用于"短条目是否出现在长文本里"这类不对称比较，
// Jaccard 在两侧长度悬殊时会被并集稀释。
func Containment(a, b string) float64 {
	ka := ExtractKeywords(a)
	if len(ka) == 0 {
		return 0
	}
	kb := ExtractKeywords(b)
	inter := 0
	for k := range ka {
		if _, ok := kb[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(ka))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ExtractQuoted 抽取文本中所有成对引号包住的片段（已规范化为 ASCII 引号）。
// 用于对白型结束条件：只比对说出来的话，忽略周围的叙述。
func ExtractQuoted(text string) []string {
	text = NormalizeQuotes(text)

	var spans []string
	inQuote := false
	var current strings.Builder
	for _, r := range text {
		if r == '"' {
			if inQuote {
				if current.Len() > 0 {
					spans = append(spans, current.String())
				}
				current.Reset()
			}
			inQuote = !inQuote
			continue
		}
		if inQuote {
			current.WriteRune(r)
		}
	}
	return spans
}
