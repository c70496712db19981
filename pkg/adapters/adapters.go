package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/generator"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Models はテキスト生成と画像生成のモデルの組です。
type Models struct {
	Text  generator.TextModel
	Image generator.ImageModel
}

// ProviderConfig はプロバイダ選択と各プロバイダの設定です。
type ProviderConfig struct {
	Provider string
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
}

// NewModels は Provider に応じたアダプタを構築します。
func NewModels(ctx context.Context, cfg ProviderConfig) (Models, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderGemini:
		a, err := NewGeminiAdapter(ctx, cfg.Gemini)
		if err != nil {
			return Models{}, err
		}
		return Models{Text: a, Image: a}, nil
	case ProviderOpenAI:
		a, err := NewOpenAIAdapter(cfg.OpenAI)
		if err != nil {
			return Models{}, err
		}
		return Models{Text: a, Image: a}, nil
	default:
		return Models{}, fmt.Errorf("不明なプロバイダです: '%s'", cfg.Provider)
	}
}
