package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/domain"
	"github.com/shouni/go-gallery-kit/pkg/generator"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultOpenAITextModel  = "gpt-4"
	DefaultOpenAIImageModel = "dall-e-3"
	DefaultOpenAIImageSize  = "1024x1024"
)

// OpenAIConfig は OpenAI 接続の設定です。
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	ImageSize  string
}

// OpenAIAdapter は openai-go を generator.TextModel と generator.ImageModel に適合させるのだ。
type OpenAIAdapter struct {
	client     openai.Client
	textModel  string
	imageModel string
	imageSize  string
}

// NewOpenAIAdapter は OpenAI クライアントを初期化します。
func NewOpenAIAdapter(cfg OpenAIConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY は必須です")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	a := &OpenAIAdapter{
		client:     openai.NewClient(opts...),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		imageSize:  cfg.ImageSize,
	}
	if a.textModel == "" {
		a.textModel = DefaultOpenAITextModel
	}
	if a.imageModel == "" {
		a.imageModel = DefaultOpenAIImageModel
	}
	if a.imageSize == "" {
		a.imageSize = DefaultOpenAIImageSize
	}
	return a, nil
}

// Complete はチャット補完でテキストを生成します。
func (a *OpenAIAdapter) Complete(ctx context.Context, req generator.TextRequest) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(a.textModel),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAIテキスト生成エラー: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("OpenAIの応答に choices が含まれていません")
	}
	content := completion.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("OpenAIの応答にテキストが含まれていません")
	}
	return content, nil
}

// GenerateImage は固定サイズの画像を1枚生成します。応答はURLで受け取るのだ。
func (a *OpenAIAdapter) GenerateImage(ctx context.Context, prompt string) (*generator.GeneratedImage, error) {
	resp, err := a.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(a.imageModel),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize(a.imageSize),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI画像生成エラー: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: OpenAIの応答に画像が含まれていません", domain.ErrDecode)
	}
	return imageFromOpenAI(resp.Data[0].URL, resp.Data[0].B64JSON)
}

// imageFromOpenAI は URL か base64 のどちらかから GeneratedImage を作ります。
func imageFromOpenAI(url, b64 string) (*generator.GeneratedImage, error) {
	if b64 != "" {
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("%w: base64のデコードに失敗しました: %w", domain.ErrDecode, err)
		}
		return &generator.GeneratedImage{Data: data}, nil
	}
	if url == "" {
		return nil, fmt.Errorf("%w: OpenAIの応答にURLも画像データも含まれていません", domain.ErrDecode)
	}
	return &generator.GeneratedImage{URL: url}, nil
}
