package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
)

// MimePNG は保存時に使う画像形式なのだ。
const MimePNG = "image/png"

// Info はデコード結果の概要です。
type Info struct {
	Format string
	Width  int
	Height int
}

// MimeType は形式名から MIME タイプを返します。
func (i Info) MimeType() string {
	return "image/" + i.Format
}

// Validate は画像データ（PNG, GIF, JPEG）として正しくデコードできるか検証します。
// 画素まで読み込むので、ヘッダだけ正しい壊れたデータも検出するのだ。
func Validate(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, fmt.Errorf("画像データが空です")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return Info{}, fmt.Errorf("画像サイズが0です")
	}
	return Info{Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// EncodeToPNG は画像データをPNG形式に変換します。すでにPNGであればそのまま返します。
func EncodeToPNG(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}
	if format == "png" {
		return data, nil
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("PNGへのエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
