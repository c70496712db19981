package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shouni/go-gallery-kit/internal/builder"
	"github.com/shouni/go-gallery-kit/internal/config"
	"github.com/shouni/go-gallery-kit/pkg/domain"

	"golang.org/x/sync/errgroup"
)

const (
	slotPrefix     = "gallery"
	progressBuffer = 16
)

// Execute は、テーマからナラティブを生成し、すべてのスロットへ作品を割り当てるのだ。
func Execute(ctx context.Context, cfg *config.Config) error {
	appCtx, err := builder.Build(ctx, cfg)
	if err != nil {
		return err
	}
	return runGallery(ctx, appCtx, os.Stderr)
}

// ExecuteNarrative は、ナラティブのみを生成して JSON として保存するのだ。
func ExecuteNarrative(ctx context.Context, cfg *config.Config) error {
	appCtx, err := builder.Build(ctx, cfg)
	if err != nil {
		return err
	}
	return runNarrative(ctx, appCtx)
}

// runGallery はオーケストレーターと進捗の表示を並行に動かすのだ。
func runGallery(ctx context.Context, appCtx *builder.AppContext, out io.Writer) error {
	opts := appCtx.Options
	theme := resolveTheme(opts)
	slots := domain.NewMemorySlots(slotPrefix, opts.Slots)
	orch := appCtx.Manager.Orchestrator()

	slog.Info("ギャラリー生成を開始するのだ！", "theme", theme, "slots", len(slots), "records_dir", appCtx.Manager.Store().Root())

	progress := make(chan domain.Progress, progressBuffer)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(progress)
		return orch.Run(egCtx, theme, domain.AsTargetSlots(slots), progress)
	})
	eg.Go(func() error {
		printProgress(out, progress)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("ギャラリー生成に失敗しました: %w", err)
	}

	report := orch.LastReport()
	for _, s := range slots {
		if s.Assigned() {
			fmt.Fprintf(out, "%s: %s\n", s.ID(), s.Title())
		} else {
			fmt.Fprintf(out, "%s: (未割り当て)\n", s.ID())
		}
	}
	slog.Info("ギャラリーが完成したのだ！",
		"run_id", report.RunID,
		"theme", report.Theme,
		"assigned", report.Assigned,
		"skipped", report.Skipped,
		"saved", len(report.Saved))
	return nil
}

// runNarrative はナラティブを生成し、OutputFile に JSON として書き出すのだ。
func runNarrative(ctx context.Context, appCtx *builder.AppContext) error {
	opts := appCtx.Options
	theme := domain.ResolveTheme(resolveTheme(opts), appCtx.Config.DefaultTheme)

	narrative, err := appCtx.Manager.Narrative().Generate(ctx, theme, opts.Count)
	if err != nil {
		return fmt.Errorf("ナラティブの生成に失敗しました: %w", err)
	}

	data, err := json.MarshalIndent(narrative, "", "  ")
	if err != nil {
		return fmt.Errorf("ナラティブのエンコードに失敗しました: %w", err)
	}

	if err := appCtx.Writer.Write(ctx, opts.OutputFile, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("ナラティブの保存に失敗しました (path: %s): %w", opts.OutputFile, err)
	}

	slog.Info("ナラティブを保存したのだ！", "path", opts.OutputFile, "prompts", len(narrative.ArtworkPrompts))
	return nil
}

// resolveTheme は --random-theme が指定されていればサンプルから選ぶのだ。
func resolveTheme(opts config.GenerateOptions) string {
	if opts.RandomTheme {
		return domain.NewThemePicker(domain.SampleThemes).Pick()
	}
	return opts.Theme
}

// printProgress はチャネルが閉じられるまで進捗を表示するのだ。
func printProgress(out io.Writer, progress <-chan domain.Progress) {
	for p := range progress {
		if p.IsIndeterminate() {
			fmt.Fprintf(out, "[ ... ] %s\n", p.Status)
			continue
		}
		fmt.Fprintf(out, "[%4.0f%%] %s\n", p.Value*100, p.Status)
	}
}
