package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/domain"
	"github.com/shouni/go-gallery-kit/pkg/parser"
	"github.com/shouni/go-gallery-kit/pkg/prompts"
)

// デフォルト値の定義
const (
	DefaultTemperature = float32(0.7)
	DefaultMaxTokens   = int32(4000)
)

// NarrativeOptions はテキスト生成リクエストのパラメータです。
type NarrativeOptions struct {
	Temperature float32
	MaxTokens   int32
}

// NarrativeClient は、テーマからギャラリーの物語と作品プロンプトを1回のリクエストで取得するのだ。
// このレイヤーでは再試行しません。
type NarrativeClient struct {
	model  TextModel
	prompt prompts.NarrativePrompt
	opts   NarrativeOptions
}

// NewNarrativeClient は依存関係を注入して初期化します。
func NewNarrativeClient(model TextModel, prompt prompts.NarrativePrompt, opts NarrativeOptions) (*NarrativeClient, error) {
	if model == nil {
		return nil, fmt.Errorf("TextModel は必須です")
	}
	if prompt == nil {
		return nil, fmt.Errorf("NarrativePrompt は必須です")
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	return &NarrativeClient{model: model, prompt: prompt, opts: opts}, nil
}

// Generate は theme に沿った requestedCount 件の作品プロンプトを含む物語を生成します。
// 通信失敗は domain.ErrNetwork、応答の構造違反は domain.ErrParse でラップされます。
func (c *NarrativeClient) Generate(ctx context.Context, theme string, requestedCount int) (*domain.GalleryNarrative, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, fmt.Errorf("%w: テーマが空です", domain.ErrValidation)
	}
	if requestedCount <= 0 {
		return nil, fmt.Errorf("%w: 作品数は1以上である必要があります: %d", domain.ErrValidation, requestedCount)
	}

	system, user, err := c.prompt.BuildNarrative(prompts.TemplateData{Theme: theme, Count: requestedCount})
	if err != nil {
		return nil, fmt.Errorf("%w: プロンプトの構築に失敗しました: %w", domain.ErrValidation, err)
	}

	raw, err := c.model.Complete(ctx, TextRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Temperature:  c.opts.Temperature,
		MaxTokens:    c.opts.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: テキスト生成リクエストに失敗しました: %w", domain.ErrNetwork, err)
	}
	slog.DebugContext(ctx, "テキスト生成サービスの生応答", "raw", raw)

	cleaned := parser.Sanitize(raw)
	slog.DebugContext(ctx, "整形後の応答", "cleaned", cleaned)

	narrative, err := parser.ParseNarrative(cleaned)
	if err != nil {
		slog.ErrorContext(ctx, "ナラティブの解析に失敗しました", "error", err, "cleaned", cleaned)
		return nil, err
	}

	if got := len(narrative.ArtworkPrompts); got != requestedCount {
		slog.WarnContext(ctx, "作品プロンプト数が要求と一致しません", "requested", requestedCount, "received", got)
	}
	return narrative, nil
}
