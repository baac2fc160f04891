// internal/markers/library.go
// 标记库：按语言分组的语言学标记表（时间跳跃、地点切换等短语），
// 每个条目携带严重级别。偏向召回：宁可多报，不可漏报。
// 验证器核心不含任何语言相关的字面量，换语言只需换表。
package markers

import (
	"regexp"
	"sort"
)

// Severity 标记命中的严重级别
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Kind 标记类别的用途
type Kind string

const (
	KindTimeJump       Kind = "time_jump"
	KindLocationChange Kind = "location_change"
	KindTimeframeShift Kind = "timeframe_shift"
	KindSceneBreak     Kind = "scene_break"
)

// Category 一组同类标记。Patterns 若含捕获组，
// 命中时第一个捕获组会带回（地点切换类用它捕获目的地）。
type Category struct {
	Name     string
	Kind     Kind
	Severity Severity
	Patterns []*regexp.Regexp
}

// Hit 一次标记命中
type Hit struct {
	Expression string   `json:"expression"`
	Category   string   `json:"category"`
	Kind       Kind     `json:"kind"`
	Severity   Severity `json:"severity"`
	Index      int      `json:"index"`
	Captured   string   `json:"captured,omitempty"`
}

// Library 一张不可变的标记表。构造后不再修改，
// 可以被任意多个验证调用并发使用。
type Library struct {
	locale     string
	categories []Category
}

// NewLibrary 由类别列表构造标记库
func NewLibrary(locale string, categories []Category) *Library {
	return &Library{locale: locale, categories: categories}
}

// Locale 返回该表对应的语言
func (l *Library) Locale() string { return l.locale }

// Categories 返回类别的只读视图
func (l *Library) Categories() []Category {
	out := make([]Category, len(l.categories))
	copy(out, l.categories)
	return out
}

// Stats 每个类别的模式数，用于健康检查展示
func (l *Library) Stats() map[string]int {
	stats := make(map[string]int, len(l.categories))
	for _, c := range l.categories {
		stats[c.Name] = len(c.Patterns)
	}
	return stats
}

// Match 用所有类别的所有模式扫描文本，
// 返回按位置排序、互不重叠的全部命中。
// 同一位置多个模式命中时保留先扫描到的那个。
func (l *Library) Match(text string) []Hit {
	var hits []Hit
	for _, cat := range l.categories {
		for _, pat := range cat.Patterns {
			for _, m := range pat.FindAllStringSubmatchIndex(text, -1) {
				hit := Hit{
					Expression: text[m[0]:m[1]],
					Category:   cat.Name,
					Kind:       cat.Kind,
					Severity:   cat.Severity,
					Index:      m[0],
				}
				if len(m) >= 4 && m[2] >= 0 {
					hit.Captured = text[m[2]:m[3]]
				}
				hits = append(hits, hit)
			}
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Index != hits[j].Index {
			return hits[i].Index < hits[j].Index
		}
		// 同起点时长命中优先
		return len(hits[i].Expression) > len(hits[j].Expression)
	})

	// 去重叠
	out := hits[:0]
	lastEnd := -1
	for _, h := range hits {
		if h.Index < lastEnd {
			continue
		}
		out = append(out, h)
		lastEnd = h.Index + len(h.Expression)
	}
	return out
}

// MatchKind 只返回指定类别的命中
func (l *Library) MatchKind(text string, kind Kind) []Hit {
	var out []Hit
	for _, h := range l.Match(text) {
		if h.Kind == kind {
			out = append(out, h)
		}
	}
	return out
}
