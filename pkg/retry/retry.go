package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// デフォルト値の定義
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 5 * time.Second
)

// Operation は再試行の対象となる処理です。
type Operation func(ctx context.Context) error

// NotifyFunc は再試行の直前に呼ばれます。attempt はそれまでの試行回数です。
type NotifyFunc func(attempt, maxAttempts int, err error)

// Result は1回の Do 呼び出しの結果なのだ。
type Result struct {
	Attempts int
	Err      error
}

// OK は最終的に成功したかどうかを返します。
func (r Result) OK() bool { return r.Err == nil }

// Executor は固定間隔で処理を再試行するのだ。指数バックオフは使わないよ。
type Executor struct {
	maxAttempts int
	delay       time.Duration
	newTimer    func() backoff.Timer
}

// Option は Executor の生成オプションです。
type Option func(*Executor)

// WithTimer は待機に使うタイマーを差し替えます。テスト用なのだ。
func WithTimer(f func() backoff.Timer) Option {
	return func(e *Executor) {
		e.newTimer = f
	}
}

// New は Executor を初期化します。maxAttempts が1未満の場合は1回だけ試行します。
func New(maxAttempts int, delay time.Duration, opts ...Option) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if delay < 0 {
		delay = 0
	}
	e := &Executor{maxAttempts: maxAttempts, delay: delay}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxAttempts は最大試行回数を返します。
func (e *Executor) MaxAttempts() int { return e.maxAttempts }

// Do は op を最大 maxAttempts 回まで実行します。パニックはせず、最終結果を Result で返すのだ。
func (e *Executor) Do(ctx context.Context, op Operation, onRetry NotifyFunc) Result {
	if op == nil {
		return Result{Err: fmt.Errorf("operation は必須です")}
	}

	attempts := 0
	wrapped := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempts++
		err := op(ctx)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempts, e.maxAttempts, err)
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.delay), uint64(e.maxAttempts-1)),
		ctx,
	)

	var timer backoff.Timer
	if e.newTimer != nil {
		timer = e.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(wrapped, policy, notify, timer)
	return Result{Attempts: attempts, Err: err}
}
