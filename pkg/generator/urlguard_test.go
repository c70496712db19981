package generator

import (
	"errors"
	"net"
	"testing"

	"github.com/shouni/go-gallery-kit/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLookup は名前解決をテーブルで置き換えるのだ。
func stubLookup(t *testing.T, table map[string][]net.IP) *int {
	t.Helper()
	calls := 0
	orig := lookupIP
	lookupIP = func(host string) ([]net.IP, error) {
		calls++
		if ips, ok := table[host]; ok {
			return ips, nil
		}
		return nil, errors.New("no such host")
	}
	t.Cleanup(func() { lookupIP = orig })
	return &calls
}

func TestHostGuard_URLValidation(t *testing.T) {
	stubLookup(t, map[string][]net.IP{
		"images.example.com": {net.ParseIP("93.184.216.34")},
		"localhost":          {net.ParseIP("127.0.0.1")},
		"10.255.255.254":     {net.ParseIP("10.255.255.254")},
		"169.254.169.254":    {net.ParseIP("169.254.169.254")},
	})

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"正常なパブリックURL", "https://images.example.com/a.png", false},
		{"不正なスキーム", "gopher://images.example.com", true},
		{"GCSスキームは取得対象外", "gs://bucket/a.png", true},
		{"ループバック", "http://localhost/admin", true},
		{"プライベートIP (クラスA)", "http://10.255.255.254/metadata", true},
		{"リンクローカル", "http://169.254.169.254/latest", true},
		{"名前解決できないドメイン", "http://this.should.not.exist.invalid", true},
		{"相対パス", "/relative/path.png", true},
	}

	g := NewHostGuard(nil, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(%s) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestHostGuard_Check(t *testing.T) {
	t.Run("ホストごとの判定はキャッシュされるのだ", func(t *testing.T) {
		calls := stubLookup(t, map[string][]net.IP{
			"images.example.com": {net.ParseIP("93.184.216.34")},
			"localhost":          {net.ParseIP("127.0.0.1")},
		})
		cache := newMapCache()
		g := NewHostGuard(cache, 0)

		assert.NoError(t, g.Check("https://images.example.com/a.png"))
		assert.NoError(t, g.Check("https://images.example.com/b.png"))
		assert.Error(t, g.Check("http://localhost/x"))
		assert.Error(t, g.Check("http://localhost/y"))

		assert.Equal(t, 2, *calls, "同じホストは1回だけ名前解決するのだ")
		assert.Equal(t, 2, cache.sets)
	})

	t.Run("キャッシュなしでも動作するのだ", func(t *testing.T) {
		calls := stubLookup(t, map[string][]net.IP{
			"images.example.com": {net.ParseIP("93.184.216.34")},
		})
		g := NewHostGuard(nil, 0)
		assert.NoError(t, g.Check("https://images.example.com/a.png"))
		assert.NoError(t, g.Check("https://images.example.com/a.png"))
		assert.Equal(t, 2, *calls)
	})

	t.Run("一時的な名前解決の失敗はキャッシュしないのだ", func(t *testing.T) {
		calls := 0
		orig := lookupIP
		lookupIP = func(string) ([]net.IP, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("i/o timeout")
			}
			return []net.IP{net.ParseIP("93.184.216.34")}, nil
		}
		t.Cleanup(func() { lookupIP = orig })

		cache := newMapCache()
		g := NewHostGuard(cache, 0)

		err := g.Check("https://images.example.com/a.png")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNetwork)
		assert.Equal(t, 0, cache.sets)

		assert.NoError(t, g.Check("https://images.example.com/a.png"))
		assert.NoError(t, g.Check("https://images.example.com/b.png"))
		assert.Equal(t, 2, calls, "成功した判定だけがキャッシュされるのだ")
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("制限されたネットワークの判定は NetworkError ではないのだ", func(t *testing.T) {
		stubLookup(t, map[string][]net.IP{"localhost": {net.ParseIP("127.0.0.1")}})
		err := NewHostGuard(nil, 0).Check("http://localhost/x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrNetwork)
	})
}
