package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shouni/go-gallery-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(string) error { return nil }

func TestNewImageClient(t *testing.T) {
	t.Run("依存関係が nil ならエラーなのだ", func(t *testing.T) {
		_, err := NewImageClient(nil, &mockHTTPClient{})
		assert.Error(t, err)
		_, err = NewImageClient(&mockImageModel{}, nil)
		assert.Error(t, err)
	})
}

func TestImageClient_GenerateImage(t *testing.T) {
	ctx := context.Background()

	t.Run("インラインの画像データを検証して返すのだ", func(t *testing.T) {
		pngData := createDummyImageData(t, "png")
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{Data: pngData, MimeType: "image/png"}, nil
		}}
		httpClient := &mockHTTPClient{}
		c, err := NewImageClient(model, httpClient)
		require.NoError(t, err)

		img, err := c.GenerateImage(ctx, "a tower")
		require.NoError(t, err)
		assert.Equal(t, pngData, img.Data)
		assert.Equal(t, "image/png", img.MimeType)
		assert.Equal(t, 4, img.Width)
		assert.Empty(t, httpClient.fetched, "インラインならダウンロードしないのだ")
	})

	t.Run("URLの場合はダウンロードするのだ", func(t *testing.T) {
		jpegData := createDummyImageData(t, "jpeg")
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{URL: "https://images.example.com/a.jpg"}, nil
		}}
		httpClient := &mockHTTPClient{fetchFunc: func(context.Context, string) ([]byte, error) {
			return jpegData, nil
		}}
		c, _ := NewImageClient(model, httpClient, WithURLGuard(allowAll))

		img, err := c.GenerateImage(ctx, "a dam")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.MimeType)
		assert.Equal(t, []string{"https://images.example.com/a.jpg"}, httpClient.fetched)
	})

	t.Run("毎回新しいリクエストを発行するのだ", func(t *testing.T) {
		pngData := createDummyImageData(t, "png")
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{Data: pngData}, nil
		}}
		c, _ := NewImageClient(model, &mockHTTPClient{})
		for range 2 {
			_, err := c.GenerateImage(ctx, "same prompt")
			require.NoError(t, err)
		}
		assert.Equal(t, 2, model.calls)
	})

	t.Run("生成リクエストの失敗は NetworkError なのだ", func(t *testing.T) {
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return nil, errors.New("503")
		}}
		c, _ := NewImageClient(model, &mockHTTPClient{})
		_, err := c.GenerateImage(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("ダウンロード失敗は NetworkError なのだ", func(t *testing.T) {
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{URL: "https://images.example.com/a.png"}, nil
		}}
		httpClient := &mockHTTPClient{fetchFunc: func(context.Context, string) ([]byte, error) {
			return nil, errors.New("timeout")
		}}
		c, _ := NewImageClient(model, httpClient, WithURLGuard(allowAll))
		_, err := c.GenerateImage(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("画像として壊れたデータは DecodeError なのだ", func(t *testing.T) {
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{Data: []byte("<html>not an image</html>")}, nil
		}}
		c, _ := NewImageClient(model, &mockHTTPClient{})
		_, err := c.GenerateImage(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("データもURLもない応答は DecodeError なのだ", func(t *testing.T) {
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{}, nil
		}}
		c, _ := NewImageClient(model, &mockHTTPClient{})
		_, err := c.GenerateImage(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrDecode)
	})

	t.Run("安全でないURLはダウンロードしないのだ", func(t *testing.T) {
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{URL: "http://127.0.0.1/secret.png"}, nil
		}}
		httpClient := &mockHTTPClient{}
		c, _ := NewImageClient(model, httpClient)
		_, err := c.GenerateImage(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, httpClient.fetched)
	})

	t.Run("URL検証時の名前解決失敗は NetworkError なのだ", func(t *testing.T) {
		model := &mockImageModel{generateFunc: func(context.Context, string) (*GeneratedImage, error) {
			return &GeneratedImage{URL: "https://images.example.com/a.png"}, nil
		}}
		httpClient := &mockHTTPClient{}
		guard := func(string) error { return fmt.Errorf("%w: 名前解決に失敗", domain.ErrNetwork) }
		c, _ := NewImageClient(model, httpClient, WithURLGuard(guard))
		_, err := c.GenerateImage(ctx, "p")
		assert.ErrorIs(t, err, domain.ErrNetwork)
		assert.NotErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, httpClient.fetched)
	})

	t.Run("空のプロンプトは検証エラーなのだ", func(t *testing.T) {
		model := &mockImageModel{}
		c, _ := NewImageClient(model, &mockHTTPClient{})
		_, err := c.GenerateImage(ctx, " ")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, model.calls)
	})
}
