package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-gallery-kit/internal/config"

	"github.com/shouni/go-gallery-kit/pkg/workflow"
)

// Build は設定からワークフローを構築し、AppContext を返します。
func Build(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config は必須です")
	}

	manager, err := BuildManager(ctx, cfg)
	if err != nil {
		return nil, err
	}

	writer, err := workflow.NewOutputWriter(ctx, cfg.Options.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("OutputWriterの初期化に失敗しました: %w", err)
	}

	appCtx := NewAppContext(cfg, manager, writer)
	return &appCtx, nil
}

// BuildManager は環境設定と CLI フラグを統合して workflow.Manager を構築します。
func BuildManager(ctx context.Context, cfg *config.Config) (*workflow.Manager, error) {
	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg.WorkflowConfig()})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの構築に失敗したのだ: %w", err)
	}
	return manager, nil
}
