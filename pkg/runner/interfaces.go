package runner

import (
	"context"
	"time"

	"github.com/shouni/go-gallery-kit/pkg/domain"
	"github.com/shouni/go-gallery-kit/pkg/retry"
)

// NarrativeGenerator はテーマから物語と作品プロンプトを生成します。
type NarrativeGenerator interface {
	Generate(ctx context.Context, theme string, requestedCount int) (*domain.GalleryNarrative, error)
}

// ImageGenerator は1つのプロンプトから検証済みの画像を生成します。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*domain.Image, error)
}

// ArtifactSaver は成果物を保存し、保存先のパスを返します。
type ArtifactSaver interface {
	Save(ctx context.Context, artifact domain.Artifact, runID string) (string, error)
}

// RequestLimiter は外部サービスへの発行を制限します。
type RequestLimiter interface {
	Acquire(ctx context.Context, onWait func(time.Duration)) error
}

// Retrier は処理を再試行し、最終結果を返します。
type Retrier interface {
	Do(ctx context.Context, op retry.Operation, onRetry retry.NotifyFunc) retry.Result
}
