package prompts

import (
	_ "embed"
)

const (
	ModeNarrativeSystem = "narrative_system"
	ModeNarrativeUser   = "narrative_user"
)

// TemplateData はナラティブ用プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	Theme string
	Count int
}

var (
	//go:embed narrative_system.md
	NarrativeSystemPrompt string
	//go:embed narrative_user.md
	NarrativeUserPrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModeNarrativeSystem: NarrativeSystemPrompt,
	ModeNarrativeUser:   NarrativeUserPrompt,
}
