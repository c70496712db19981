package builder

import (
	"github.com/shouni/go-gallery-kit/internal/config"

	"github.com/shouni/go-gallery-kit/pkg/publisher"
	"github.com/shouni/go-gallery-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドの処理に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、プロジェクトIDなど）。
	Options config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です（テーマ、スロット数など）。
	Manager *workflow.Manager      // Managerは、オーケストレーターと各クライアントを保持します。
	Writer  publisher.OutputWriter // Writerは、ナラティブなど補助的な出力の保存先です。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(cfg *config.Config, manager *workflow.Manager, writer publisher.OutputWriter) AppContext {
	return AppContext{
		Config:  cfg,
		Options: cfg.Options,
		Manager: manager,
		Writer:  writer,
	}
}
