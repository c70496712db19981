package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-gallery-kit/pkg/adapters"
	"github.com/shouni/go-gallery-kit/pkg/config"
	"github.com/shouni/go-gallery-kit/pkg/generator"
	"github.com/shouni/go-gallery-kit/pkg/prompts"
	"github.com/shouni/go-gallery-kit/pkg/publisher"
	"github.com/shouni/go-gallery-kit/pkg/ratelimit"
	"github.com/shouni/go-gallery-kit/pkg/retry"
	"github.com/shouni/go-gallery-kit/pkg/runner"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
)

// ManagerArgs は Manager の構築に使う依存関係です。
// Config 以外は省略可能で、nil の場合は Config から構築するのだ。
type ManagerArgs struct {
	Config          config.Config
	Models          *adapters.Models
	HTTPClient      generator.HTTPClient
	Writer          publisher.OutputWriter
	NarrativePrompt prompts.NarrativePrompt
}

// Manager は、ギャラリー生成に必要なコンポーネント群を構築・保持します。
type Manager struct {
	cfg          config.Config
	narrative    *generator.NarrativeClient
	store        *publisher.Store
	orchestrator *runner.Orchestrator
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	cfg := args.Config

	models, err := initializeModels(ctx, cfg, args.Models)
	if err != nil {
		return nil, err
	}

	np, err := initializeNarrativePrompt(args.NarrativePrompt)
	if err != nil {
		return nil, err
	}

	narrative, err := generator.NewNarrativeClient(models.Text, np, generator.NarrativeOptions{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("NarrativeClient の初期化に失敗しました: %w", err)
	}

	httpClient := args.HTTPClient
	if httpClient == nil {
		httpClient = httpkit.New(cfg.HTTPTimeout)
	}
	images, err := generator.NewImageClient(models.Image, httpClient, generator.WithURLGuard(initializeHostGuard().Check))
	if err != nil {
		return nil, fmt.Errorf("ImageClient の初期化に失敗しました: %w", err)
	}

	writer := args.Writer
	if writer == nil {
		writer, err = NewOutputWriter(ctx, cfg.RecordsDir)
		if err != nil {
			return nil, err
		}
	}
	store, err := publisher.NewStore(writer, cfg.RecordsDir)
	if err != nil {
		return nil, fmt.Errorf("ArtifactStore の初期化に失敗しました: %w", err)
	}

	limiter, err := ratelimit.New(cfg.RateLimit())
	if err != nil {
		return nil, fmt.Errorf("RateLimiter の初期化に失敗しました: %w", err)
	}
	retrier := retry.New(cfg.MaxAttempts, cfg.RetryDelay)

	orch, err := runner.New(runner.Deps{
		Narrative: narrative,
		Images:    images,
		Store:     store,
		Limiter:   limiter,
		Retrier:   retrier,
	}, runner.Options{
		DefaultTheme:        cfg.DefaultTheme,
		NarrativeCheckpoint: cfg.NarrativeCheckpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("Orchestrator の初期化に失敗しました: %w", err)
	}

	slog.Debug("ワークフローを構築しました",
		"provider", cfg.Provider,
		"records_dir", store.Root(),
		"max_requests", cfg.MaxRequests,
		"window", cfg.Window,
		"min_delay", cfg.MinDelay,
		"max_attempts", retrier.MaxAttempts())

	return &Manager{
		cfg:          cfg,
		narrative:    narrative,
		store:        store,
		orchestrator: orch,
	}, nil
}

// Orchestrator はギャラリー生成の状態機械を返します。
func (m *Manager) Orchestrator() *runner.Orchestrator { return m.orchestrator }

// Narrative はナラティブ生成クライアントを返します。
func (m *Manager) Narrative() *generator.NarrativeClient { return m.narrative }

// Store は成果物の保存先を返します。
func (m *Manager) Store() *publisher.Store { return m.store }

// Config は構築に使った設定を返します。
func (m *Manager) Config() config.Config { return m.cfg }

// initializeModels はモデルが渡された場合はそれを返し、nil の場合はプロバイダ設定から構築します。
func initializeModels(ctx context.Context, cfg config.Config, models *adapters.Models) (adapters.Models, error) {
	if models != nil {
		if models.Text == nil || models.Image == nil {
			return adapters.Models{}, fmt.Errorf("Models.Text と Models.Image は必須です")
		}
		return *models, nil
	}

	m, err := adapters.NewModels(ctx, cfg.ProviderConfig())
	if err != nil {
		return adapters.Models{}, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return m, nil
}

// initializeNarrativePrompt は既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializeNarrativePrompt(np prompts.NarrativePrompt) (prompts.NarrativePrompt, error) {
	if np != nil {
		return np, nil
	}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return pb, nil
}

// initializeHostGuard はホスト判定結果をキャッシュする URL ガードを初期化します。
func initializeHostGuard() *generator.HostGuard {
	verdictCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	return generator.NewHostGuard(verdictCache, generator.DefaultHostVerdictTTL)
}

// NewOutputWriter は保存先に応じた OutputWriter を返します。
// gs:// で始まる場合は go-remote-io の GCS ファクトリ、それ以外はローカルファイルシステムに書き込むのだ。
// ローカルの保存先では GCS の認証情報を要求しません。
func NewOutputWriter(ctx context.Context, root string) (publisher.OutputWriter, error) {
	if !publisher.IsGCSPath(root) {
		return publisher.NewLocalWriter(), nil
	}

	gcsFactory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	w, err := gcsFactory.OutputWriter()
	if err != nil {
		return nil, fmt.Errorf("OutputWriter の取得に失敗しました: %w", err)
	}
	return w, nil
}
