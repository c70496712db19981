package generator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/shouni/go-gallery-kit/pkg/prompts"
)

// mockTextModel は TextModel のテスト用モックなのだ。
type mockTextModel struct {
	completeFunc func(ctx context.Context, req TextRequest) (string, error)
	calls        int
	lastReq      TextRequest
}

func (m *mockTextModel) Complete(ctx context.Context, req TextRequest) (string, error) {
	m.calls++
	m.lastReq = req
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return "", nil
}

// mockImageModel は ImageModel のテスト用モックなのだ。
type mockImageModel struct {
	generateFunc func(ctx context.Context, prompt string) (*GeneratedImage, error)
	calls        int
}

func (m *mockImageModel) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return nil, nil
}

// mockHTTPClient は HTTPClient のテスト用モックなのだ。
type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	fetched   []string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.fetched = append(m.fetched, url)
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil, nil
}

// mockPrompt は NarrativePrompt のテスト用モックなのだ。
type mockPrompt struct {
	err error
}

func (m *mockPrompt) BuildNarrative(data prompts.TemplateData) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return "system", "user", nil
}

// mapCache は Cacher の最小実装なのだ。
type mapCache struct {
	items map[string]any
	sets  int
}

func newMapCache() *mapCache { return &mapCache{items: map[string]any{}} }

func (c *mapCache) Get(key string) (any, bool) {
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(key string, value any, _ time.Duration) {
	c.sets++
	c.items[key] = value
}

// createDummyImageData はテスト用のダミー画像（4x4）を作成するヘルパーなのだ。
func createDummyImageData(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	if err != nil {
		t.Fatalf("failed to encode dummy image: %v", err)
	}
	return buf.Bytes()
}
