package usecase

import (
	"strings"
	"unicode"
)

// slugify は名前からURL用のスラッグを作る。
// 英数字は小文字化、連続する区切りはハイフン1つにまとめる。
// 保存フックではなくusecaseが作成・改名のたびに呼ぶ
func slugify(name string) string {
	var b strings.Builder
	lastDash := true

	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}

	return strings.Trim(b.String(), "-")
}
