package publisher

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const gcsScheme = "gs://"

// RunIDLayout は実行ごとのディレクトリ名に使う時刻フォーマットです。
const RunIDLayout = "2006-01-02_15-04-05"

// NewRunID は時刻から実行ディレクトリ名を作ります。
func NewRunID(t time.Time) string {
	return t.Format(RunIDLayout)
}

// IsGCSPath は gs:// で始まるパスかどうかを返します。
func IsGCSPath(p string) bool {
	return strings.HasPrefix(strings.ToLower(p), gcsScheme)
}

// ResolveOutputPath は、ベースとなるディレクトリパスと要素から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir string, elems ...string) (string, error) {
	for _, e := range elems {
		if e == "" || e == "." || e == ".." || strings.ContainsAny(e, `/\`) {
			return "", fmt.Errorf("不正なパス要素です: %q", e)
		}
	}

	if IsGCSPath(baseDir) {
		u, err := url.Parse(baseDir)
		if err != nil {
			return "", fmt.Errorf("無効なGCS URIです: %w", err)
		}
		u.Path = path.Join(append([]string{"/", u.Path}, elems...)...)
		return u.String(), nil
	}
	return filepath.Join(append([]string{baseDir}, elems...)...), nil
}
