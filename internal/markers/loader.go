// internal/markers/loader.go
package markers

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// 自定义标记表的 JSON 形状。表是纯数据，
// 运营侧可以不改代码就替换或补充某个语言的表。
type libraryFile struct {
	Locale     string         `json:"locale"`
	Categories []categoryFile `json:"categories"`
}

type categoryFile struct {
	Name     string   `json:"name"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Patterns []string `json:"patterns"`
}

// LoadFile 从 JSON 文件加载一张标记表。
// 任何一条模式编译失败都整表拒绝，避免半残的表静默上线。
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取标记表失败: %w", err)
	}
	return Parse(data)
}

// Parse 从 JSON 字节解析标记表
func Parse(data []byte) (*Library, error) {
	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析标记表失败: %w", err)
	}
	if file.Locale == "" {
		return nil, fmt.Errorf("标记表缺少 locale 字段")
	}

	categories := make([]Category, 0, len(file.Categories))
	for _, cf := range file.Categories {
		switch cf.Severity {
		case SeverityLow, SeverityMedium, SeverityHigh:
		default:
			return nil, fmt.Errorf("类别 %s 的严重级别非法: %q", cf.Name, cf.Severity)
		}

		cat := Category{Name: cf.Name, Kind: cf.Kind, Severity: cf.Severity}
		for _, expr := range cf.Patterns {
			pat, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("类别 %s 的模式编译失败 %q: %w", cf.Name, expr, err)
			}
			cat.Patterns = append(cat.Patterns, pat)
		}
		categories = append(categories, cat)
	}

	return NewLibrary(file.Locale, categories), nil
}
