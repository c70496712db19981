package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// NarrativePrompt は、ナラティブ生成用のシステム/ユーザープロンプトの組を構築する契約です。
type NarrativePrompt interface {
	BuildNarrative(data TemplateData) (systemPrompt string, userPrompt string, err error)
}

// TextPromptBuilder はテンプレート群を管理し、モード選択のロジックを内包します。
type TextPromptBuilder struct {
	templates map[string]*template.Template
}

// NewTextPromptBuilder は TextPromptBuilder を初期化します。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	parsedTemplates := make(map[string]*template.Template)
	for mode, content := range allTemplates {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: 内容が空です", mode)
		}

		tmpl, err := template.New(mode).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("プロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsedTemplates[mode] = tmpl
	}

	return &TextPromptBuilder{
		templates: parsedTemplates,
	}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("不明なモードです: '%s'", mode)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return strings.TrimSpace(sb.String()), nil
}

// BuildNarrative はシステムプロンプトとユーザープロンプトをまとめて構築します。
func (b *TextPromptBuilder) BuildNarrative(data TemplateData) (string, string, error) {
	if strings.TrimSpace(data.Theme) == "" {
		return "", "", fmt.Errorf("テーマは必須です")
	}
	if data.Count <= 0 {
		return "", "", fmt.Errorf("作品数は1以上である必要があります: %d", data.Count)
	}

	system, err := b.Build(ModeNarrativeSystem, data)
	if err != nil {
		return "", "", err
	}
	user, err := b.Build(ModeNarrativeUser, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}
