package config

import (
	"time"

	"github.com/shouni/go-gallery-kit/pkg/adapters"
	kitcfg "github.com/shouni/go-gallery-kit/pkg/config"
	"github.com/shouni/go-gallery-kit/pkg/runner"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultProvider    = kitcfg.DefaultProvider
	DefaultHTTPTimeout = kitcfg.DefaultHTTPTimeout
	DefaultRecordsDir  = kitcfg.DefaultRecordsDir
	DefaultTheme       = runner.DefaultTheme
	DefaultSlotCount   = 5
	DefaultOutputFile  = "output/gallery_narrative.json" // narrative コマンドのデフォルト保存先なのだ
)

// Config はアプリケーション全体の環境設定（APIキーやクラウド設定）を保持する構造体なのだ。
type Config struct {
	Provider     string
	ProjectID    string
	LocationID   string
	GeminiAPIKey string
	OpenAIAPIKey string
	TextModel    string
	ImageModel   string
	DefaultTheme string
	RecordsDir   string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		Provider:     envutil.GetEnv("GALLERY_PROVIDER", DefaultProvider),
		ProjectID:    envutil.GetEnv("PROJECT_ID", ""),
		LocationID:   envutil.GetEnv("REGION", kitcfg.DefaultLocationID),
		GeminiAPIKey: envutil.GetEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: envutil.GetEnv("OPENAI_API_KEY", ""),
		TextModel:    envutil.GetEnv("TEXT_MODEL", ""),
		ImageModel:   envutil.GetEnv("IMAGE_MODEL", ""),
		DefaultTheme: envutil.GetEnv("DEFAULT_THEME", DefaultTheme),
		RecordsDir:   envutil.GetEnv("RECORDS_DIR", DefaultRecordsDir),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// テーマ関連
	Theme       string // --theme
	RandomTheme bool   // --random-theme

	// 生成対象
	Slots int // --slots: generate で割り当てるスロット数
	Count int // --count: narrative で要求する作品数

	// 出力先
	OutputDir  string // --output-dir: 作品の保存先（ローカル or gs://...）
	OutputFile string // --output-file: narrative の JSON 保存先

	// AI挙動設定
	Provider   string // --provider
	TextModel  string // --model
	ImageModel string // --image-model

	// 実行制御
	HTTPTimeout time.Duration // --http-timeout
	Verbose     bool          // --verbose
}

// WorkflowConfig は環境変数と CLI フラグを統合し、ワークフロー用の設定を作るのだ。
// フラグが指定されていればそちらを優先します。
func (c *Config) WorkflowConfig() kitcfg.Config {
	wc := kitcfg.DefaultConfig()
	wc.Provider = c.ProviderName()
	wc.TextModel = firstNonEmpty(c.Options.TextModel, c.TextModel)
	wc.ImageModel = firstNonEmpty(c.Options.ImageModel, c.ImageModel)
	wc.GeminiAPIKey = c.GeminiAPIKey
	wc.OpenAIAPIKey = c.OpenAIAPIKey
	wc.ProjectID = c.ProjectID
	wc.LocationID = firstNonEmpty(c.LocationID, wc.LocationID)
	wc.DefaultTheme = firstNonEmpty(c.DefaultTheme, wc.DefaultTheme)
	wc.RecordsDir = firstNonEmpty(c.Options.OutputDir, c.RecordsDir, wc.RecordsDir)
	if c.Options.HTTPTimeout > 0 {
		wc.HTTPTimeout = c.Options.HTTPTimeout
	}
	return wc
}

// ProviderName は CLI フラグを優先して、選択中のプロバイダ名を返すのだ。
func (c *Config) ProviderName() string {
	return firstNonEmpty(c.Options.Provider, c.Provider, DefaultProvider)
}

// APIKey は選択中のプロバイダに対応する API キーを返すのだ。
func (c *Config) APIKey() string {
	if c.ProviderName() == adapters.ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
