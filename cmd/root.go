package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-gallery-kit/internal/config"
	"github.com/shouni/go-gallery-kit/pkg/adapters"

	"github.com/spf13/cobra"
)

// opts は各サブコマンドで共有する CLI フラグの値なのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "テーマからギャラリーの物語と作品を生成するのだ。",
	Long: `テーマを1つ受け取り、テキスト生成サービスで物語と作品プロンプトを作り、
画像生成サービスで各スロットの作品を生成して保存するのだ。`,
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, narrativeCmd, themeCmd)
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- テーマ関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.Theme, "theme", "t", "", "ギャラリーのテーマなのだ（空ならデフォルトテーマ）。")
	rootCmd.PersistentFlags().BoolVarP(&opts.RandomTheme, "random-theme", "r", false, "サンプルテーマからランダムに選ぶのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Provider, "provider", "", "利用するプロバイダなのだ（gemini または openai）。")
	rootCmd.PersistentFlags().StringVar(&opts.TextModel, "model", "", "テキスト生成に使うモデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使うモデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "画像ダウンロードのタイムアウトなのだ。")

	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

// preRunAppE は、コマンド実行前にロガーの設定と環境変数の必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if !requiresAPIKey(cmd) {
		return nil
	}
	return checkAPIKey(config.LoadConfig())
}

// requiresAPIKey は外部サービスを呼び出すコマンドかどうかを返すのだ。
func requiresAPIKey(cmd *cobra.Command) bool {
	return cmd != themeCmd && cmd.Name() != "help"
}

// checkAPIKey は選択中のプロバイダに必要な API キーが設定されているか検証するのだ。
func checkAPIKey(cfg *config.Config) error {
	cfg.Options = opts
	switch cfg.ProviderName() {
	case adapters.ProviderOpenAI:
		if cfg.APIKey() == "" {
			return fmt.Errorf("エラー: 環境変数 OPENAI_API_KEY が設定されていません。OpenAI の利用には必須なのだ")
		}
	case adapters.ProviderGemini:
		if cfg.APIKey() == "" && cfg.ProjectID == "" {
			return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY または PROJECT_ID が設定されていません。Gemini の利用には必須なのだ")
		}
	default:
		return fmt.Errorf("エラー: 不明なプロバイダ '%s' なのだ（gemini または openai）", cfg.ProviderName())
	}
	return nil
}

// loadConfig は環境変数から設定を読み込み、CLI フラグを反映するのだ。
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.Options = opts
	return cfg
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
