package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// デフォルト値の定義
const (
	DefaultMaxRequests = 5
	DefaultWindow      = 60 * time.Second
	DefaultMinDelay    = 12 * time.Second
)

// Clock は時刻取得と待機を抽象化します。テストでは偽の時計に差し替えるのだ。
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config はレート制限のポリシーです。
type Config struct {
	MaxRequests int           // Window 内で許可されるリクエスト数
	Window      time.Duration // スライディングウィンドウの長さ
	MinDelay    time.Duration // 連続する発行の最小間隔。0以下で無効
}

// DefaultConfig は 60秒あたり5回、最小間隔12秒のポリシーを返します。
func DefaultConfig() Config {
	return Config{
		MaxRequests: DefaultMaxRequests,
		Window:      DefaultWindow,
		MinDelay:    DefaultMinDelay,
	}
}

// Limiter は、外部サービスへの発行回数をスライディングウィンドウと最小間隔の両方で制限するのだ。
// 発行履歴はプロセス内で共有され、実行をまたいでもリセットされません。
type Limiter struct {
	cfg   Config
	clock Clock

	// sem は Acquire を直列化します。待機中もキャンセル可能にするためチャネルで持つのだ。
	sem     chan struct{}
	spacing *rate.Limiter

	// mu は issued を保護します。Acquire の待機中も Issued は即座に返るのだ。
	mu     sync.Mutex
	issued []time.Time
}

// Option は Limiter の生成オプションです。
type Option func(*Limiter)

// WithClock は時計を差し替えます。
func WithClock(c Clock) Option {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// New は Limiter を初期化します。
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if cfg.MaxRequests <= 0 {
		return nil, fmt.Errorf("MaxRequests は1以上である必要があります: %d", cfg.MaxRequests)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("Window は正の値である必要があります: %s", cfg.Window)
	}

	limit := rate.Inf
	if cfg.MinDelay > 0 {
		limit = rate.Every(cfg.MinDelay)
	}

	l := &Limiter{
		cfg:     cfg,
		clock:   realClock{},
		sem:     make(chan struct{}, 1),
		spacing: rate.NewLimiter(limit, 1),
		issued:  make([]time.Time, 0, cfg.MaxRequests),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Acquire は発行可能になるまで待機し、発行時刻を記録します。
// 待機が発生する場合は待機前に onWait が呼ばれるのだ。
// 返るエラーはコンテキストのキャンセルのみです。
func (l *Limiter) Acquire(ctx context.Context, onWait func(time.Duration)) error {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.sem }()

	now := l.clock.Now()
	for {
		oldest, full := l.oldestIfFull(now)
		if !full {
			break
		}
		if err := l.wait(ctx, oldest.Add(l.cfg.Window).Sub(now), onWait); err != nil {
			return err
		}
		now = l.clock.Now()
	}

	r := l.spacing.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		if err := l.wait(ctx, d, onWait); err != nil {
			r.CancelAt(now)
			return err
		}
		now = l.clock.Now()
	}

	l.mu.Lock()
	l.issued = append(l.issued, now)
	l.mu.Unlock()
	return nil
}

// Issued は現在ウィンドウ内にある発行時刻のコピーを古い順に返します。
func (l *Limiter) Issued() []time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]time.Time, len(l.issued))
	copy(out, l.issued)
	return out
}

func (l *Limiter) wait(ctx context.Context, d time.Duration, onWait func(time.Duration)) error {
	if d <= 0 {
		return ctx.Err()
	}
	if onWait != nil {
		onWait(d)
	}
	return l.clock.Sleep(ctx, d)
}

// oldestIfFull は期限切れの履歴を取り除いたうえで、ウィンドウが埋まっていれば最古の発行時刻を返します。
func (l *Limiter) oldestIfFull(now time.Time) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evict(now)
	if len(l.issued) < l.cfg.MaxRequests {
		return time.Time{}, false
	}
	return l.issued[0], true
}

// evict はウィンドウ長以上経過した発行時刻を取り除きます。呼び出し側で mu を保持するのだ。
func (l *Limiter) evict(now time.Time) {
	keep := 0
	for keep < len(l.issued) && now.Sub(l.issued[keep]) >= l.cfg.Window {
		keep++
	}
	if keep > 0 {
		l.issued = append(l.issued[:0], l.issued[keep:]...)
	}
}
