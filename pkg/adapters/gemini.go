package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/generator"

	"github.com/shouni/go-gemini-client/gemini"
	"google.golang.org/genai"
)

const (
	DefaultGeminiTextModel  = "gemini-3-flash-preview"
	DefaultGeminiImageModel = "gemini-3-pro-image-preview"
	DefaultAspectRatio      = "1:1"
	imagenModelPrefix       = "imagen"
)

// GeminiConfig は Gemini（Google AI / Vertex AI）接続の設定です。
// ProjectID が指定されていれば Vertex AI を利用します。
type GeminiConfig struct {
	APIKey      string
	ProjectID   string
	LocationID  string
	TextModel   string
	ImageModel  string
	AspectRatio string
	Temperature float32 // Gemini API のテキスト生成クライアントに設定する温度
}

// geminiTextClient は go-gemini-client のテキスト生成の契約です。
type geminiTextClient interface {
	GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error)
}

// GeminiAdapter は Gemini を generator.TextModel と generator.ImageModel に適合させるのだ。
// Gemini API のテキスト生成は go-gemini-client、Vertex AI のテキスト生成と画像生成は genai SDK を使います。
// 画像モデル名が imagen で始まる場合は Imagen API、それ以外は Gemini の画像出力を使います。
type GeminiAdapter struct {
	client      *genai.Client
	text        geminiTextClient
	textModel   string
	imageModel  string
	aspectRatio string
}

// NewGeminiAdapter は genai クライアントを初期化します。
// APIキーで接続する場合は、テキスト生成用に go-gemini-client も初期化するのだ。
func NewGeminiAdapter(ctx context.Context, cfg GeminiConfig) (*GeminiAdapter, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.ProjectID != "" {
		clientConfig = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.LocationID,
			Backend:  genai.BackendVertexAI,
		}
	} else if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY または PROJECT_ID のいずれかが必須です")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの初期化に失敗しました: %w", err)
	}

	var text geminiTextClient
	if clientConfig.Backend == genai.BackendGeminiAPI {
		text, err = initializeTextClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	return newGeminiAdapter(client, text, cfg), nil
}

// initializeTextClient は gemini クライアントを初期化します。
func initializeTextClient(ctx context.Context, cfg GeminiConfig) (geminiTextClient, error) {
	clientConfig := gemini.Config{
		APIKey:      cfg.APIKey,
		Temperature: genai.Ptr(cfg.Temperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

func newGeminiAdapter(client *genai.Client, text geminiTextClient, cfg GeminiConfig) *GeminiAdapter {
	a := &GeminiAdapter{
		client:      client,
		text:        text,
		textModel:   cfg.TextModel,
		imageModel:  cfg.ImageModel,
		aspectRatio: cfg.AspectRatio,
	}
	if a.textModel == "" {
		a.textModel = DefaultGeminiTextModel
	}
	if a.imageModel == "" {
		a.imageModel = DefaultGeminiImageModel
	}
	if a.aspectRatio == "" {
		a.aspectRatio = DefaultAspectRatio
	}
	return a
}

// Complete はシステム指示付きでテキストを生成します。
func (a *GeminiAdapter) Complete(ctx context.Context, req generator.TextRequest) (string, error) {
	if a.text != nil {
		return a.completeWithClient(ctx, req)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: req.MaxTokens,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.textModel, genai.Text(req.UserPrompt), config)
	if err != nil {
		return "", fmt.Errorf("Geminiテキスト生成エラー: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Geminiの応答にテキストが含まれていません")
	}
	return text, nil
}

// completeWithClient は go-gemini-client でテキストを生成します。
// 温度はクライアント初期化時の値を使い、システム指示はプロンプトの先頭に置くのだ。
func (a *GeminiAdapter) completeWithClient(ctx context.Context, req generator.TextRequest) (string, error) {
	prompt := req.UserPrompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.UserPrompt
	}

	resp, err := a.text.GenerateContent(ctx, a.textModel, prompt)
	if err != nil {
		return "", fmt.Errorf("Geminiテキスト生成エラー: %w", err)
	}
	if resp == nil || resp.RawResponse == nil {
		return "", fmt.Errorf("Geminiの応答が空です")
	}
	text := resp.RawResponse.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Geminiの応答にテキストが含まれていません")
	}
	return text, nil
}

// GenerateImage はプロンプトから画像を1枚生成します。
func (a *GeminiAdapter) GenerateImage(ctx context.Context, prompt string) (*generator.GeneratedImage, error) {
	if strings.HasPrefix(a.imageModel, imagenModelPrefix) {
		resp, err := a.client.Models.GenerateImages(ctx, a.imageModel, prompt, &genai.GenerateImagesConfig{
			NumberOfImages: 1,
			AspectRatio:    a.aspectRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("Imagen画像生成エラー: %w", err)
		}
		return extractImagenImage(resp)
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.imageModel, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: a.aspectRatio},
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini画像生成エラー: %w", err)
	}
	return extractInlineImage(resp)
}

// extractInlineImage は GenerateContent の応答から最初のインライン画像を取り出します。
func extractInlineImage(resp *genai.GenerateContentResponse) (*generator.GeneratedImage, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("invalid response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, fmt.Errorf("no content in candidate")
	}
	for _, part := range candidate.Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &generator.GeneratedImage{Data: part.InlineData.Data, MimeType: part.InlineData.MIMEType}, nil
		}
	}
	return nil, fmt.Errorf("no image data")
}

// extractImagenImage は GenerateImages の応答から最初の画像を取り出します。
func extractImagenImage(resp *genai.GenerateImagesResponse) (*generator.GeneratedImage, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("invalid response")
	}
	img := resp.GeneratedImages[0]
	if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
		return nil, fmt.Errorf("no image data")
	}
	return &generator.GeneratedImage{Data: img.Image.ImageBytes, MimeType: img.Image.MIMEType}, nil
}
