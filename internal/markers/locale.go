// internal/markers/locale.go
package markers

// DetectLocale 粗略判断文本主要语言，返回 ko/zh/en。
// 按有效字符中各文字的占比判定，占比都不过半时取最多的那种；
// 没有任何有效字符时退回英文。
func DetectLocale(text string) string {
	hangul := 0
	han := 0
	latin := 0

	for _, r := range text {
		switch {
		case r >= 0xAC00 && r <= 0xD7A3: // 谚文音节
			hangul++
		case r >= 0x4E00 && r <= 0x9FFF: // CJK 统一表意文字
			han++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}

	switch {
	case hangul >= han && hangul >= latin && hangul > 0:
		return "ko"
	case han >= latin && han > 0:
		return "zh"
	case latin > 0:
		return "en"
	default:
		return "en"
	}
}
