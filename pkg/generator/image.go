package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/domain"
	"github.com/shouni/go-gallery-kit/pkg/imgutil"
)

// ImageClient は、1つのプロンプトから画像を1枚生成し、デコード検証まで行うのだ。
// 毎回新しいリクエストを発行し、結果はキャッシュしません。
type ImageClient struct {
	model      ImageModel
	httpClient HTTPClient
	guard      func(rawURL string) error
}

// ImageOption は ImageClient の生成オプションです。
type ImageOption func(*ImageClient)

// WithURLGuard は画像URLのダウンロード前に行う検証を差し替えます。
func WithURLGuard(guard func(rawURL string) error) ImageOption {
	return func(c *ImageClient) {
		if guard != nil {
			c.guard = guard
		}
	}
}

// NewImageClient は依存関係を注入して初期化します。
func NewImageClient(model ImageModel, httpClient HTTPClient, opts ...ImageOption) (*ImageClient, error) {
	if model == nil {
		return nil, fmt.Errorf("ImageModel は必須です")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}

	c := &ImageClient{
		model:      model,
		httpClient: httpClient,
		guard:      NewHostGuard(nil, 0).Check,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GenerateImage は prompt の画像を生成し、検証済みの画像データを返します。
// 通信失敗は domain.ErrNetwork、デコード失敗は domain.ErrDecode でラップされます。
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string) (*domain.Image, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: 画像プロンプトが空です", domain.ErrValidation)
	}

	resp, err := c.model.GenerateImage(ctx, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: 画像生成リクエストに失敗しました: %w", domain.ErrNetwork, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: 画像生成サービスの応答が空です", domain.ErrDecode)
	}

	data := resp.Data
	if len(data) == 0 {
		if resp.URL == "" {
			return nil, fmt.Errorf("%w: 応答に画像データもURLも含まれていません", domain.ErrDecode)
		}
		data, err = c.download(ctx, resp.URL)
		if err != nil {
			return nil, err
		}
	}

	info, err := imgutil.Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	slog.DebugContext(ctx, "画像を取得しました", "format", info.Format, "width", info.Width, "height", info.Height, "bytes", len(data))
	return &domain.Image{
		Data:     data,
		MimeType: info.MimeType(),
		Width:    info.Width,
		Height:   info.Height,
	}, nil
}

func (c *ImageClient) download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.guard(rawURL); err != nil {
		if errors.Is(err, domain.ErrNetwork) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: 安全ではないURLが指定されました: %w", domain.ErrValidation, err)
	}
	data, err := c.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: 画像のダウンロードに失敗しました: %w", domain.ErrNetwork, err)
	}
	return data, nil
}
