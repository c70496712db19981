package parser

import "regexp"

var (
	// CodeFenceRegex は ```json や ``` といった Markdown のコードフェンス記号を捕捉します。
	CodeFenceRegex = regexp.MustCompile("```(?:json|JSON)?\\s*")

	// ControlCharRegex は C0/C1 制御文字と BOM を捕捉します。
	ControlCharRegex = regexp.MustCompile("[\\x{0000}-\\x{001F}\\x{007F}-\\x{009F}\\x{FEFF}]")

	// BadCommaRegex は ",," ",}" ",]" といった不正なカンマを捕捉します。空白は事前に除去しておくこと。
	BadCommaRegex = regexp.MustCompile(`,[,}\]]`)

	// WhitespaceRegex は空白文字の連続を捕捉します。
	WhitespaceRegex = regexp.MustCompile(`\s+`)
)
