package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/domain"
	"github.com/shouni/go-gallery-kit/pkg/imgutil"
)

const (
	imageExtension    = ".png"
	metadataSuffix    = "_metadata.txt"
	metadataMimeType  = "text/plain; charset=utf-8"
	metadataTimestamp = "2006-01-02 15:04:05"
)

// Store は生成された画像とメタデータを実行ごとのディレクトリに保存するのだ。
// 同じファイル名への保存は上書きになり、実行をまたいだ重複排除はしません。
type Store struct {
	writer OutputWriter
	root   string
}

// NewStore は依存関係を注入して初期化します。root はローカルパスか gs:// です。
func NewStore(writer OutputWriter, root string) (*Store, error) {
	if writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("保存先ディレクトリは必須です")
	}
	return &Store{writer: writer, root: root}, nil
}

// Root は保存先のルートを返します。
func (s *Store) Root() string { return s.root }

// Save は artifact を <root>/<runID>/<title>_<slot>.png とメタデータとして保存し、画像のパスを返します。
// 失敗は domain.ErrIO でラップされます。
func (s *Store) Save(ctx context.Context, artifact domain.Artifact, runID string) (string, error) {
	if len(artifact.ImageBytes) == 0 {
		return "", fmt.Errorf("%w: 画像データが空です", domain.ErrIO)
	}

	baseName := artifactBaseName(artifact)
	imagePath, err := ResolveOutputPath(s.root, SanitizeFileName(runID), baseName+imageExtension)
	if err != nil {
		return "", fmt.Errorf("%w: 画像保存パスの生成に失敗しました: %w", domain.ErrIO, err)
	}
	metaPath, err := ResolveOutputPath(s.root, SanitizeFileName(runID), baseName+metadataSuffix)
	if err != nil {
		return "", fmt.Errorf("%w: メタデータ保存パスの生成に失敗しました: %w", domain.ErrIO, err)
	}

	pngData, err := imgutil.EncodeToPNG(artifact.ImageBytes)
	if err != nil {
		return "", fmt.Errorf("%w: PNGへの変換に失敗しました: %w", domain.ErrIO, err)
	}

	if err := s.writer.Write(ctx, imagePath, bytes.NewReader(pngData), imgutil.MimePNG); err != nil {
		return "", fmt.Errorf("%w: 画像の保存に失敗しました (path: %s): %w", domain.ErrIO, imagePath, err)
	}
	if err := s.writer.Write(ctx, metaPath, strings.NewReader(FormatMetadata(artifact)), metadataMimeType); err != nil {
		return "", fmt.Errorf("%w: メタデータの保存に失敗しました (path: %s): %w", domain.ErrIO, metaPath, err)
	}

	slog.InfoContext(ctx, "作品を保存しました", "path", imagePath, "slot", artifact.SlotID)
	return imagePath, nil
}

// FormatMetadata は作品のメタデータをプレーンテキストに整形します。
func FormatMetadata(a domain.Artifact) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", a.Title)
	fmt.Fprintf(&sb, "Description: %s\n", a.Description)
	fmt.Fprintf(&sb, "Prompt: %s\n", a.Prompt)
	fmt.Fprintf(&sb, "Generated: %s\n", a.CreatedAt.Format(metadataTimestamp))
	fmt.Fprintf(&sb, "Artwork Object: %s\n", a.SlotID)
	return sb.String()
}

func artifactBaseName(a domain.Artifact) string {
	name := SanitizeFileName(a.Title)
	if slot := strings.TrimSpace(a.SlotID); slot != "" {
		name += "_" + SanitizeFileName(slot)
	}
	return name
}
