package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock は Sleep で時刻を進めるだけのテスト用時計なのだ。
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// blockingClock は Sleep に入ったことを通知し、release されるまで戻らない時計なのだ。
type blockingClock struct {
	*fakeClock
	entered chan struct{}
	release chan struct{}
}

func (c *blockingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.entered <- struct{}{}
	select {
	case <-c.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return c.fakeClock.Sleep(ctx, d)
}

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	l, err := New(cfg, WithClock(clock))
	require.NoError(t, err)
	return l, clock
}

func TestNew(t *testing.T) {
	t.Run("不正な設定はエラーになるのだ", func(t *testing.T) {
		_, err := New(Config{MaxRequests: 0, Window: time.Minute})
		assert.Error(t, err)
		_, err = New(Config{MaxRequests: 1, Window: 0})
		assert.Error(t, err)
	})
}

func TestLimiter_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("初回は待機なしで発行できるのだ", func(t *testing.T) {
		l, clock := newTestLimiter(t, DefaultConfig())
		waited := false
		require.NoError(t, l.Acquire(ctx, func(time.Duration) { waited = true }))
		assert.False(t, waited)
		assert.Empty(t, clock.sleeps)
		assert.Len(t, l.Issued(), 1)
	})

	t.Run("2回目は最小間隔だけ待機するのだ", func(t *testing.T) {
		l, clock := newTestLimiter(t, DefaultConfig())
		var notified []time.Duration
		onWait := func(d time.Duration) { notified = append(notified, d) }

		require.NoError(t, l.Acquire(ctx, onWait))
		require.NoError(t, l.Acquire(ctx, onWait))

		assert.Equal(t, []time.Duration{12 * time.Second}, notified)
		assert.Equal(t, []time.Duration{12 * time.Second}, clock.sleeps)
	})

	t.Run("十分な時間が経っていれば待機しないのだ", func(t *testing.T) {
		l, clock := newTestLimiter(t, DefaultConfig())
		require.NoError(t, l.Acquire(ctx, nil))
		clock.Advance(30 * time.Second)
		require.NoError(t, l.Acquire(ctx, nil))
		assert.Empty(t, clock.sleeps)
	})

	t.Run("どの60秒の区間でも5回以下かつ間隔12秒以上なのだ", func(t *testing.T) {
		l, _ := newTestLimiter(t, DefaultConfig())
		var issued []time.Time
		for range 20 {
			require.NoError(t, l.Acquire(ctx, nil))
			last := l.Issued()
			issued = append(issued, last[len(last)-1])
		}

		for i := 1; i < len(issued); i++ {
			assert.GreaterOrEqual(t, issued[i].Sub(issued[i-1]), 12*time.Second)
		}
		for i := range issued {
			count := 0
			for _, ts := range issued[i:] {
				if ts.Sub(issued[i]) < time.Minute {
					count++
				}
			}
			assert.LessOrEqual(t, count, 5, "index %d から60秒以内の発行数が多すぎるのだ", i)
		}
	})

	t.Run("最小間隔なしならウィンドウ上限で待機するのだ", func(t *testing.T) {
		l, clock := newTestLimiter(t, Config{MaxRequests: 5, Window: time.Minute})
		for range 5 {
			require.NoError(t, l.Acquire(ctx, nil))
		}
		assert.Empty(t, clock.sleeps)

		var notified []time.Duration
		require.NoError(t, l.Acquire(ctx, func(d time.Duration) { notified = append(notified, d) }))
		assert.Equal(t, []time.Duration{time.Minute}, notified)
		assert.Len(t, l.Issued(), 1, "古い発行履歴は追い出されるのだ")
	})

	t.Run("キャンセルされたら記録せずにエラーを返すのだ", func(t *testing.T) {
		l, _ := newTestLimiter(t, DefaultConfig())
		require.NoError(t, l.Acquire(ctx, nil))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := l.Acquire(cctx, nil)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, l.Issued(), 1)
	})

	t.Run("キャンセル後も次の発行は最小間隔を守るのだ", func(t *testing.T) {
		l, clock := newTestLimiter(t, DefaultConfig())
		require.NoError(t, l.Acquire(ctx, nil))

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.Error(t, l.Acquire(cctx, nil))

		require.NoError(t, l.Acquire(ctx, nil))
		assert.Equal(t, []time.Duration{12 * time.Second}, clock.sleeps)
	})
}

func TestLimiter_Issued(t *testing.T) {
	t.Run("Acquire の待機中でもブロックせずに返るのだ", func(t *testing.T) {
		clock := &blockingClock{
			fakeClock: newFakeClock(),
			entered:   make(chan struct{}, 1),
			release:   make(chan struct{}),
		}
		l, err := New(DefaultConfig(), WithClock(clock))
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, l.Acquire(ctx, nil))

		done := make(chan error, 1)
		go func() { done <- l.Acquire(ctx, nil) }()

		select {
		case <-clock.entered:
		case <-time.After(time.Second):
			t.Fatal("Acquire が待機に入らなかったのだ")
		}

		got := make(chan []time.Time, 1)
		go func() { got <- l.Issued() }()
		select {
		case issued := <-got:
			assert.Len(t, issued, 1)
		case <-time.After(time.Second):
			t.Fatal("Issued が Acquire の待機にブロックされたのだ")
		}

		close(clock.release)
		require.NoError(t, <-done)
		assert.Len(t, l.Issued(), 2)
	})
}
