package publisher

import (
	"strings"
	"unicode"
)

// untitledName はタイトルが空の場合に使うファイル名なのだ。
const untitledName = "untitled"

// fileNameSanitizer はファイル名として使用できない文字を置換します。
var fileNameSanitizer = strings.NewReplacer(
	"/", "_",
	`\`, "_",
	":", "_",
	"*", "_",
	"?", "_",
	`"`, "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// SanitizeFileName はファイルシステムで使えない文字と制御文字を '_' に置き換えます。
// 結果が空になる場合は "untitled" を返します。
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	name = fileNameSanitizer.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return untitledName
	}
	return name
}
