package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// テスト用のダミー画像（10x10の赤い正方形）を作成するヘルパー
func createDummyImageData(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
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

func TestValidate(t *testing.T) {
	t.Run("正常なPNG画像を検証できること", func(t *testing.T) {
		info, err := Validate(createDummyImageData(t, "png"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.Format != "png" || info.Width != 10 || info.Height != 10 {
			t.Errorf("unexpected info: %+v", info)
		}
		if info.MimeType() != "image/png" {
			t.Errorf("unexpected mime type: %s", info.MimeType())
		}
	})

	t.Run("JPEG画像も検証できること", func(t *testing.T) {
		info, err := Validate(createDummyImageData(t, "jpeg"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.MimeType() != "image/jpeg" {
			t.Errorf("unexpected mime type: %s", info.MimeType())
		}
	})

	t.Run("不正なデータを与えた場合にエラーを返すこと", func(t *testing.T) {
		if _, err := Validate([]byte("this is not an image")); err == nil {
			t.Error("expected error for invalid data, but got nil")
		}
	})

	t.Run("途中で切れたPNGはエラーを返すこと", func(t *testing.T) {
		data := createDummyImageData(t, "png")
		if _, err := Validate(data[:len(data)/2]); err == nil {
			t.Error("expected error for truncated data, but got nil")
		}
	})

	t.Run("空データはエラーを返すこと", func(t *testing.T) {
		if _, err := Validate(nil); err == nil {
			t.Error("expected error for empty data, but got nil")
		}
	})
}

func TestEncodeToPNG(t *testing.T) {
	t.Run("JPEG画像をPNGに変換できること", func(t *testing.T) {
		got, err := EncodeToPNG(createDummyImageData(t, "jpeg"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, format, err := image.Decode(bytes.NewReader(got))
		if err != nil {
			t.Fatalf("failed to decode output image: %v", err)
		}
		if format != "png" {
			t.Errorf("expected format png, got %s", format)
		}
	})

	t.Run("PNG画像はそのまま返すこと", func(t *testing.T) {
		input := createDummyImageData(t, "png")
		got, err := EncodeToPNG(input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got, input) {
			t.Error("PNG input should be returned unchanged")
		}
	})
}
