package config

import (
	"time"

	"github.com/shouni/go-gallery-kit/pkg/adapters"
	"github.com/shouni/go-gallery-kit/pkg/generator"
	"github.com/shouni/go-gallery-kit/pkg/ratelimit"
	"github.com/shouni/go-gallery-kit/pkg/retry"
	"github.com/shouni/go-gallery-kit/pkg/runner"
)

// デフォルト値の定義
const (
	DefaultProvider    = adapters.ProviderGemini
	DefaultLocationID  = "asia-northeast1"
	DefaultRecordsDir  = "Records"
	DefaultHTTPTimeout = 30 * time.Second
)

// Config は Go Gallery Kit のオーケストレーターを動作させるための基本設定です。
type Config struct {
	// --- AI Provider Settings ---
	Provider   string // "gemini" または "openai"
	TextModel  string // 空の場合はプロバイダのデフォルト
	ImageModel string // 空の場合はプロバイダのデフォルト

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Vertex AI Settings ---
	ProjectID  string // Google Cloud Project ID
	LocationID string // 例: "us-central1"

	// --- OpenAI Settings ---
	OpenAIAPIKey  string
	OpenAIBaseURL string

	// --- Generation Settings ---
	Temperature float32
	MaxTokens   int32
	ImageSize   string // OpenAI 用 (例: "1024x1024")
	AspectRatio string // Gemini 用 (例: "1:1")

	DefaultTheme        string
	NarrativeCheckpoint float64

	// --- Storage Settings ---
	RecordsDir string // ローカルのディレクトリ、または gs://bucket/prefix

	// --- Rate Limit ---
	MaxRequests int
	Window      time.Duration
	MinDelay    time.Duration

	// --- Timeout & Retries ---
	MaxAttempts int
	RetryDelay  time.Duration
	HTTPTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		Provider:            DefaultProvider,
		LocationID:          DefaultLocationID,
		Temperature:         generator.DefaultTemperature,
		MaxTokens:           generator.DefaultMaxTokens,
		ImageSize:           adapters.DefaultOpenAIImageSize,
		AspectRatio:         adapters.DefaultAspectRatio,
		DefaultTheme:        runner.DefaultTheme,
		NarrativeCheckpoint: runner.DefaultNarrativeCheckpoint,
		RecordsDir:          DefaultRecordsDir,
		MaxRequests:         ratelimit.DefaultMaxRequests,
		Window:              ratelimit.DefaultWindow,
		MinDelay:            ratelimit.DefaultMinDelay,
		MaxAttempts:         retry.DefaultMaxAttempts,
		RetryDelay:          retry.DefaultDelay,
		HTTPTimeout:         DefaultHTTPTimeout,
	}
}

// ProviderConfig はアダプタ構築用の設定に変換します。
func (c Config) ProviderConfig() adapters.ProviderConfig {
	return adapters.ProviderConfig{
		Provider: c.Provider,
		Gemini: adapters.GeminiConfig{
			APIKey:      c.GeminiAPIKey,
			ProjectID:   c.ProjectID,
			LocationID:  c.LocationID,
			TextModel:   c.TextModel,
			ImageModel:  c.ImageModel,
			AspectRatio: c.AspectRatio,
			Temperature: c.Temperature,
		},
		OpenAI: adapters.OpenAIConfig{
			APIKey:     c.OpenAIAPIKey,
			BaseURL:    c.OpenAIBaseURL,
			TextModel:  c.TextModel,
			ImageModel: c.ImageModel,
			ImageSize:  c.ImageSize,
		},
	}
}

// RateLimit はレート制限の設定を返します。
func (c Config) RateLimit() ratelimit.Config {
	return ratelimit.Config{
		MaxRequests: c.MaxRequests,
		Window:      c.Window,
		MinDelay:    c.MinDelay,
	}
}
