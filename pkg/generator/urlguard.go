package generator

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/shouni/go-gallery-kit/pkg/domain"
)

const (
	cacheKeyHostVerdict   = "host_verdict:"
	DefaultHostVerdictTTL = 10 * time.Minute
)

// lookupIP は名前解決の関数です。テストで差し替えるのだ。
var lookupIP = net.LookupIP

// hostVerdict はホスト単位の安全性判定の結果です。
type hostVerdict struct {
	err error
}

func parseFetchURL(rawURL string) (string, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("URLパース失敗: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}
	if parsedURL.Hostname() == "" {
		return "", fmt.Errorf("ホストが空です: %s", rawURL)
	}
	return parsedURL.Hostname(), nil
}

// checkHost はホストを名前解決し、制限されたネットワークを指していないか確認します。
// 名前解決の失敗は domain.ErrNetwork で包むのだ。
func checkHost(host string) error {
	ips, err := lookupIP(host)
	if err != nil {
		return fmt.Errorf("%w: ホスト '%s' の名前解決に失敗しました: %w", domain.ErrNetwork, host, err)
	}
	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}
	return nil
}

// HostGuard は、SSRF (Server-Side Request Forgery) 対策として URL を検証します。
// 許可されたスキーム (http, https) かつ、プライベートIPやループバックアドレスを
// ターゲットにしていないことを確認し、ホストごとの判定結果をキャッシュします。
// 画像そのものはキャッシュしないのだ。
type HostGuard struct {
	cache Cacher
	ttl   time.Duration
}

// NewHostGuard は HostGuard を初期化します。cache が nil の場合は毎回名前解決します。
func NewHostGuard(cache Cacher, ttl time.Duration) *HostGuard {
	if ttl <= 0 {
		ttl = DefaultHostVerdictTTL
	}
	return &HostGuard{cache: cache, ttl: ttl}
}

// Check は rawURL が取得してよい URL であれば nil を返します。
// 名前解決に失敗した場合は判定をキャッシュせず、次回あらためて解決するのだ。
func (g *HostGuard) Check(rawURL string) error {
	host, err := parseFetchURL(rawURL)
	if err != nil {
		return err
	}

	key := cacheKeyHostVerdict + host
	if g.cache != nil {
		if val, ok := g.cache.Get(key); ok {
			if v, ok := val.(hostVerdict); ok {
				return v.err
			}
		}
	}

	err = checkHost(host)
	if g.cache != nil && !errors.Is(err, domain.ErrNetwork) {
		g.cache.Set(key, hostVerdict{err: err}, g.ttl)
	}
	return err
}
