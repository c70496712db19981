package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/shouni/go-gallery-kit/pkg/domain"
	"github.com/shouni/go-gallery-kit/pkg/publisher"
)

// 進捗のチェックポイント
const (
	progressPreparing  = 0.1
	progressNarrative  = 0.2
	progressConnecting = 0.3
	progressDone       = 1.0

	DefaultNarrativeCheckpoint = 0.4
	DefaultTheme               = "Soviet Megastructures"
)

// Deps はオーケストレーターが利用するコンポーネント群です。
type Deps struct {
	Narrative NarrativeGenerator
	Images    ImageGenerator
	Store     ArtifactSaver
	Limiter   RequestLimiter
	Retrier   Retrier
}

// Options はオーケストレーターの動作設定です。
type Options struct {
	DefaultTheme        string
	NarrativeCheckpoint float64
	Now                 func() time.Time
}

// Report は直近の実行結果の概要です。
type Report struct {
	RunID    string
	Theme    string
	Matched  int
	Assigned int
	Skipped  int
	Saved    []string
}

// Orchestrator は、物語を1回取得してから各スロットへ作品を順番に割り当てる状態機械なのだ。
// 同時に実行できるのは1回だけで、実行中の Run 呼び出しは domain.ErrAlreadyRunning を返します。
type Orchestrator struct {
	deps Deps
	opts Options

	mu     sync.Mutex
	state  State
	report Report
}

// New は依存関係を注入して初期化します。
func New(deps Deps, opts Options) (*Orchestrator, error) {
	if deps.Narrative == nil {
		return nil, fmt.Errorf("NarrativeGenerator は必須です")
	}
	if deps.Images == nil {
		return nil, fmt.Errorf("ImageGenerator は必須です")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("ArtifactSaver は必須です")
	}
	if deps.Limiter == nil {
		return nil, fmt.Errorf("RequestLimiter は必須です")
	}
	if deps.Retrier == nil {
		return nil, fmt.Errorf("Retrier は必須です")
	}

	if opts.DefaultTheme == "" {
		opts.DefaultTheme = DefaultTheme
	}
	if opts.NarrativeCheckpoint <= progressConnecting || opts.NarrativeCheckpoint >= progressDone {
		opts.NarrativeCheckpoint = DefaultNarrativeCheckpoint
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{deps: deps, opts: opts, state: StateIdle}, nil
}

// State は現在の状態を返します。
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastReport は直近の実行結果を返します。
func (o *Orchestrator) LastReport() Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	r := o.report
	r.Saved = append([]string(nil), o.report.Saved...)
	return r
}

// Run はギャラリーを1回生成します。nil が返れば Complete です。
// progress が nil の場合は進捗をログにのみ出力するのだ。
func (o *Orchestrator) Run(ctx context.Context, theme string, slots []domain.TargetSlot, progress chan<- domain.Progress) (err error) {
	if err := o.begin(); err != nil {
		return err
	}

	r := &run{
		o:        o,
		progress: progress,
		report: Report{
			RunID: publisher.NewRunID(o.opts.Now()),
			Theme: domain.ResolveTheme(theme, o.opts.DefaultTheme),
		},
	}

	defer func() {
		o.finish(err == nil, r.report)
	}()

	return r.execute(ctx, slots)
}

// begin は単一実行のガードを兼ねた状態遷移を行います。
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.IsRunning() {
		return domain.ErrAlreadyRunning
	}
	return o.transitionLocked(StateGeneratingNarrative)
}

func (o *Orchestrator) transition(to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transitionLocked(to)
}

func (o *Orchestrator) transitionLocked(to State) error {
	if !isAllowedTransition(o.state, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", o.state, to)
	}
	slog.Debug("状態遷移", "from", o.state, "to", to)
	o.state = to
	return nil
}

func (o *Orchestrator) finish(ok bool, report Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.report = report
	to := StateFailed
	if ok {
		to = StateComplete
	}
	if err := o.transitionLocked(to); err != nil {
		slog.Error("終端状態への遷移に失敗しました", "error", err)
		o.state = StateFailed
	}
}

// run は1回分の実行状態です。
type run struct {
	o        *Orchestrator
	progress chan<- domain.Progress
	report   Report
}

func (r *run) execute(ctx context.Context, slots []domain.TargetSlot) error {
	r.emit(ctx, "Finding target slots...", progressPreparing)
	if len(slots) == 0 {
		r.emit(ctx, "No target slots found", 0)
		return fmt.Errorf("%w: 割り当て先のスロットがありません", domain.ErrValidation)
	}

	narrative, err := r.generateNarrative(ctx, len(slots))
	if err != nil {
		r.emit(ctx, "Error generating narrative", 0)
		return err
	}

	if err := r.o.transition(StateAssigningArtworks); err != nil {
		return err
	}
	r.emit(ctx, "Processing narrative...", r.o.opts.NarrativeCheckpoint)

	if err := r.assignArtworks(ctx, slots, narrative.ArtworkPrompts); err != nil {
		return err
	}

	r.emit(ctx, "Gallery generation complete!", progressDone)
	slog.InfoContext(ctx, "ギャラリー生成が完了しました",
		"run_id", r.report.RunID,
		"assigned", r.report.Assigned,
		"skipped", r.report.Skipped)
	return nil
}

func (r *run) generateNarrative(ctx context.Context, slotCount int) (*domain.GalleryNarrative, error) {
	r.emit(ctx, "Generating gallery narrative...", progressNarrative)
	r.emit(ctx, "Connecting to text generation service...", progressConnecting)

	slog.InfoContext(ctx, "ナラティブを生成します", "theme", r.report.Theme, "count", slotCount)
	narrative, err := r.o.deps.Narrative.Generate(ctx, r.report.Theme, slotCount)
	if err != nil {
		slog.ErrorContext(ctx, "ナラティブの生成に失敗しました", "error", err)
		return nil, fmt.Errorf("ナラティブの生成に失敗しました: %w", err)
	}
	return narrative, nil
}

// assignArtworks はスロットとプロンプトを添字で対応付け、短い方の長さだけ順番に処理します。
func (r *run) assignArtworks(ctx context.Context, slots []domain.TargetSlot, prompts []domain.ArtworkPrompt) error {
	matched := min(len(slots), len(prompts))
	r.report.Matched = matched
	if len(slots) != len(prompts) {
		slog.WarnContext(ctx, "スロット数とプロンプト数が一致しないため、短い方に合わせます",
			"slots", len(slots), "prompts", len(prompts), "matched", matched)
	}

	base := r.o.opts.NarrativeCheckpoint
	span := progressDone - base

	for i := range matched {
		if err := ctx.Err(); err != nil {
			return err
		}

		slot, prompt := slots[i], prompts[i]
		r.emit(ctx, fmt.Sprintf("Generating artwork %d of %d...", i+1, matched), base+span*float64(i)/float64(matched))

		img, err := r.generateWithRetry(ctx, prompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			slog.ErrorContext(ctx, "作品の生成を諦めてスキップします", "slot", slot.ID(), "title", prompt.Title, "error", err)
			r.report.Skipped++
		} else {
			r.deliver(ctx, slot, prompt, img)
		}

		r.emit(ctx, fmt.Sprintf("Finished artwork %d of %d", i+1, matched), base+span*float64(i+1)/float64(matched))
	}
	return nil
}

// generateWithRetry は試行ごとにレート制限を通してから画像を生成します。
func (r *run) generateWithRetry(ctx context.Context, prompt domain.ArtworkPrompt) (*domain.Image, error) {
	var img *domain.Image
	op := func(ctx context.Context) error {
		if err := r.o.deps.Limiter.Acquire(ctx, func(d time.Duration) {
			r.emit(ctx, fmt.Sprintf("Rate limit reached. Waiting %d seconds...", int(math.Ceil(d.Seconds()))), domain.ProgressIndeterminate)
		}); err != nil {
			return err
		}
		out, err := r.o.deps.Images.GenerateImage(ctx, prompt.ImagePrompt)
		if err != nil {
			return err
		}
		img = out
		return nil
	}
	onRetry := func(attempt, maxAttempts int, err error) {
		slog.WarnContext(ctx, "画像生成に失敗しました", "attempt", attempt, "max_attempts", maxAttempts, "error", err)
		r.emit(ctx, fmt.Sprintf("Retrying image generation (%d/%d)...", attempt, maxAttempts), domain.ProgressIndeterminate)
	}

	res := r.o.deps.Retrier.Do(ctx, op, onRetry)
	if !res.OK() {
		return nil, fmt.Errorf("%d 回の試行で画像を生成できませんでした: %w", res.Attempts, res.Err)
	}
	return img, nil
}

// deliver は成果物を保存してからスロットへ割り当てます。保存の失敗は割り当てを妨げないのだ。
func (r *run) deliver(ctx context.Context, slot domain.TargetSlot, prompt domain.ArtworkPrompt, img *domain.Image) {
	artifact := domain.Artifact{
		ImageBytes:  img.Data,
		MimeType:    img.MimeType,
		Title:       prompt.Title,
		Description: prompt.Description,
		Prompt:      prompt.ImagePrompt,
		SlotID:      slot.ID(),
		CreatedAt:   r.o.opts.Now(),
	}

	path, err := r.o.deps.Store.Save(ctx, artifact, r.report.RunID)
	if err != nil {
		slog.ErrorContext(ctx, "作品の保存に失敗しましたが、割り当ては続行します", "slot", slot.ID(), "error", err)
	} else {
		r.report.Saved = append(r.report.Saved, path)
	}

	slot.SetTitle(artifact.Title)
	slot.SetDescription(artifact.Description)
	slot.SetArtwork(artifact.ImageBytes)
	r.report.Assigned++
}

// emit は進捗を通知します。送信はコンテキスト終了まで待つのだ。
func (r *run) emit(ctx context.Context, status string, value float64) {
	slog.InfoContext(ctx, "progress", "status", status, "progress", value)
	if r.progress == nil {
		return
	}
	select {
	case r.progress <- domain.Progress{Status: status, Value: value}:
	case <-ctx.Done():
	}
}
