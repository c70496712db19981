package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// OutputWriter は成果物の書き込み先の契約です。
// go-remote-io の remoteio.OutputWriter と同じ形なので、GCS 用の Writer もそのまま使えるのだ。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// LocalWriter はローカルファイルシステムへ書き込む OutputWriter です。
type LocalWriter struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewLocalWriter は LocalWriter を初期化します。
func NewLocalWriter() *LocalWriter {
	return &LocalWriter{dirPerm: 0o755, filePerm: 0o644}
}

// Write は親ディレクトリを作成してからファイルを書き込みます。既存のファイルは上書きするのだ。
func (w *LocalWriter) Write(ctx context.Context, path string, r io.Reader, _ string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), w.dirPerm); err != nil {
		return fmt.Errorf("ディレクトリの作成に失敗しました (%s): %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.filePerm)
	if err != nil {
		return fmt.Errorf("ファイルのオープンに失敗しました (%s): %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("ファイルのクローズに失敗しました (%s): %w", path, cerr)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	return nil
}
