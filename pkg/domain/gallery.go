package domain

import (
	"strings"
	"time"
)

// GalleryNarrative は、テキスト生成サービスから得たギャラリー全体の物語と作品ごとのプロンプトなのだ。
type GalleryNarrative struct {
	MainStory      string          `json:"mainStory"`
	ArtworkPrompts []ArtworkPrompt `json:"artworkPrompts"`
}

// ArtworkPrompt は、1枚の作品に必要なタイトル・説明・画像生成プロンプトの組なのだ。
type ArtworkPrompt struct {
	Title       string `json:"title"`
	ImagePrompt string `json:"imagePrompt"`
	Description string `json:"description"`
}

// Normalize は各フィールドの前後の空白を取り除いたコピーを返します。
func (p ArtworkPrompt) Normalize() ArtworkPrompt {
	return ArtworkPrompt{
		Title:       strings.TrimSpace(p.Title),
		ImagePrompt: strings.TrimSpace(p.ImagePrompt),
		Description: strings.TrimSpace(p.Description),
	}
}

// MissingField は空のフィールド名を返します。すべて埋まっていれば空文字です。
func (p ArtworkPrompt) MissingField() string {
	switch {
	case p.Title == "":
		return "title"
	case p.Description == "":
		return "description"
	case p.ImagePrompt == "":
		return "imagePrompt"
	}
	return ""
}

// Image は画像生成サービスから得た、デコード検証済みの画像データなのだ。
type Image struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}

// Artifact は、1スロット分の生成成果物です。
type Artifact struct {
	ImageBytes  []byte
	MimeType    string
	Title       string
	Description string
	Prompt      string
	SlotID      string
	CreatedAt   time.Time
}
