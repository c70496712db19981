package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-gallery-kit/internal/config"
	"github.com/shouni/go-gallery-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// narrativeCmd は、画像を生成せずにナラティブだけを JSON で保存するのだ。
var narrativeCmd = &cobra.Command{
	Use:   "narrative",
	Short: "ナラティブ（物語と作品プロンプト）だけを生成しますなのだ。",
	RunE:  narrativeCommand,
}

func init() {
	narrativeCmd.Flags().IntVarP(&opts.Count, "count", "c", config.DefaultSlotCount, "要求する作品プロンプトの数なのだ。")
	narrativeCmd.Flags().StringVarP(&opts.OutputFile, "output-file", "o", config.DefaultOutputFile, "JSON の保存パスなのだ（ローカル or gs://...）。")
}

func narrativeCommand(cmd *cobra.Command, args []string) error {
	if err := validateThemeFlag(); err != nil {
		return err
	}
	if opts.Count < 1 {
		return fmt.Errorf("--count は1以上を指定してほしいのだ: %d", opts.Count)
	}

	cfg := loadConfig()
	slog.Info("ナラティブを生成するのだ！", "provider", cfg.ProviderName(), "theme", opts.Theme, "count", opts.Count)

	if err := pipeline.ExecuteNarrative(cmd.Context(), cfg); err != nil {
		return fmt.Errorf("ナラティブ生成中にエラーが発生したのだ: %w", err)
	}
	return nil
}
