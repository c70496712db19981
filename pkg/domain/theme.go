package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"unicode/utf8"
)

// MinThemeLength は入力テーマとして受け付ける最小文字数です。
const MinThemeLength = 3

// SampleThemes はテーマ選択で提示するサンプル一覧なのだ。
var SampleThemes = []string{
	"Soviet Megastructures",
	"Lost Da Vinci Manuscripts",
	"Futuristic Spacecraft",
	"Steampunk Inventions",
	"Deep Sea Discoveries",
	"Cyberpunk Cities",
	"Mythological Creatures",
	"Urban Nature Fusion",
	"Battle Cats",
	"Cosmic Horror",
	"Ancient Civilizations",
	"Gothic Period",
	"Abstract",
	"Memories of Tomorrow",
	"Digital Emotions",
	"Ancient Aliens",
	"Ethereal Landscapes",
}

// ResolveTheme はテーマを整形し、空であれば既定値を返します。
func ResolveTheme(theme, fallback string) string {
	if t := strings.TrimSpace(theme); t != "" {
		return t
	}
	return strings.TrimSpace(fallback)
}

// ValidateTheme はユーザー入力のテーマが受け付け可能か検証します。
func ValidateTheme(theme string) error {
	t := strings.TrimSpace(theme)
	if t == "" {
		return fmt.Errorf("%w: テーマが空です", ErrValidation)
	}
	if utf8.RuneCountInString(t) < MinThemeLength {
		return fmt.Errorf("%w: テーマは%d文字以上で指定してください: %q", ErrValidation, MinThemeLength, t)
	}
	return nil
}

// ThemePicker はサンプルテーマからランダムに選ぶのだ。直前の選択は繰り返さないよ。
type ThemePicker struct {
	mu     sync.Mutex
	themes []string
	last   int
	intN   func(n int) int
}

// NewThemePicker は themes を候補とするピッカーを作成します。空なら SampleThemes を使います。
func NewThemePicker(themes []string) *ThemePicker {
	if len(themes) == 0 {
		themes = SampleThemes
	}
	return &ThemePicker{themes: themes, last: -1, intN: rand.IntN}
}

// Pick は直前と異なるテーマを返します。
func (p *ThemePicker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.themes) == 1 {
		p.last = 0
		return p.themes[0]
	}

	idx := p.intN(len(p.themes))
	for idx == p.last {
		idx = p.intN(len(p.themes))
	}
	p.last = idx
	return p.themes[idx]
}
