package generator

import (
	"context"
	"time"
)

// TextRequest はテキスト生成サービスへの1回分のリクエストです。
type TextRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int32
}

// TextModel は、テキスト生成サービスを抽象化する契約です。
type TextModel interface {
	// Complete はプロンプトを送信し、生の応答テキストを返します。
	Complete(ctx context.Context, req TextRequest) (string, error)
}

// GeneratedImage は画像生成サービスの生の応答です。Data か URL のどちらかが入っています。
type GeneratedImage struct {
	Data     []byte
	MimeType string
	URL      string
}

// ImageModel は、画像生成サービスを抽象化する契約です。
type ImageModel interface {
	// GenerateImage は1つのプロンプトから画像を1枚生成します。
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

// HTTPClient は画像URLのダウンロードに使う最小限のクライアントです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Cacher は、ホスト判定結果を保持するキャッシュの契約です。
type Cacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}
