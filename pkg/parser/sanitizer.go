package parser

import "strings"

// whitespaceControls は削除ではなく空白に置き換える制御文字なのだ。
var whitespaceControls = strings.NewReplacer("\t", " ", "\r", " ", "\n", " ")

// Sanitize はテキスト生成サービスの生応答を厳密な JSON に近づけます。
// 純粋かつ全域な関数で、失敗はしません。本当の検証は後段のパースが担うのだ。
// 1回分の整形を不動点に達するまで繰り返すので Sanitize(Sanitize(x)) == Sanitize(x) が成り立ちます。
func Sanitize(raw string) string {
	s := raw
	for {
		next := sanitizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// sanitizeOnce は整形手順を1回だけ順に適用します。
func sanitizeOnce(s string) string {
	// 1. コードフェンスの除去
	s = CodeFenceRegex.ReplaceAllString(s, "")

	// 2. 制御文字の除去（改行やタブは空白にするのだ）
	s = whitespaceControls.Replace(s)
	s = ControlCharRegex.ReplaceAllString(s, "")

	// 3. 前後の空白の除去
	s = strings.TrimSpace(s)

	// 4. 全体を囲む引用符を1組だけ外す
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	// 5. 二重エスケープを1段に畳み、さらに1段解除する
	s = strings.ReplaceAll(s, `\\"`, `\"`)
	s = strings.ReplaceAll(s, `\"`, `"`)

	return s
}
