package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-gallery-kit/internal/config"
	"github.com/shouni/go-gallery-kit/internal/pipeline"
	"github.com/shouni/go-gallery-kit/pkg/domain"

	"github.com/spf13/cobra"
)

// generateCmd は、ナラティブの生成から作品の保存までを一括で実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "テーマからギャラリーを生成しますなのだ。",
	Long: `テーマから物語と作品プロンプトを生成し、各スロットへ作品を割り当てるのだ。
作品は <output-dir>/<実行ID>/ 以下に画像とメタデータとして保存されるのだよ。`,
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().IntVarP(&opts.Slots, "slots", "s", config.DefaultSlotCount, "作品を割り当てるスロット数なのだ。")
	generateCmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "作品の保存先なのだ（ローカル or gs://...、空なら RECORDS_DIR）。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 入力チェック
	if err := validateThemeFlag(); err != nil {
		return err
	}
	if opts.Slots < 1 {
		return fmt.Errorf("--slots は1以上を指定してほしいのだ: %d", opts.Slots)
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := loadConfig()

	slog.Info("ギャラリー生成パイプラインを起動するのだ！",
		"provider", cfg.ProviderName(),
		"theme", opts.Theme,
		"random_theme", opts.RandomTheme,
		"slots", opts.Slots)

	// 3. パイプラインを実行するのだ
	if err := pipeline.Execute(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

// validateThemeFlag はテーマが指定されている場合だけ入力を検証するのだ。
func validateThemeFlag() error {
	if opts.RandomTheme || opts.Theme == "" {
		return nil
	}
	return domain.ValidateTheme(opts.Theme)
}
