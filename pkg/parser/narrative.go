package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shouni/go-gallery-kit/pkg/domain"

	"github.com/tidwall/gjson"
)

const (
	keyMainStory      = "mainStory"
	keyArtworkPrompts = "artworkPrompts"
)

// ParseNarrative は整形済み文字列を厳密なスキーマで GalleryNarrative に変換します。
// 構造やスキーマの違反は domain.ErrParse、プロンプトの空フィールドは domain.ErrValidation でラップされるのだ。
// 失敗時に部分的なオブジェクトを返すことはありません。
func ParseNarrative(cleaned string) (*domain.GalleryNarrative, error) {
	cleaned = strings.TrimSpace(cleaned)
	if err := CheckStructure(cleaned); err != nil {
		return nil, err
	}
	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("%w: 不正なJSONです", domain.ErrParse)
	}

	root := gjson.Parse(cleaned)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: トップレベルがオブジェクトではありません", domain.ErrParse)
	}

	story := root.Get(keyMainStory)
	if !story.Exists() {
		return nil, fmt.Errorf("%w: 必須キー '%s' がありません", domain.ErrParse, keyMainStory)
	}
	if story.Type != gjson.String {
		return nil, fmt.Errorf("%w: '%s' が文字列ではありません", domain.ErrParse, keyMainStory)
	}

	prompts := root.Get(keyArtworkPrompts)
	if !prompts.Exists() {
		return nil, fmt.Errorf("%w: 必須キー '%s' がありません", domain.ErrParse, keyArtworkPrompts)
	}
	if !prompts.IsArray() {
		return nil, fmt.Errorf("%w: '%s' が配列ではありません", domain.ErrParse, keyArtworkPrompts)
	}

	var narrative domain.GalleryNarrative
	if err := json.Unmarshal([]byte(cleaned), &narrative); err != nil {
		return nil, fmt.Errorf("%w: JSONのデコードに失敗しました: %v", domain.ErrParse, err)
	}

	narrative.MainStory = strings.TrimSpace(narrative.MainStory)
	if narrative.MainStory == "" {
		return nil, fmt.Errorf("%w: '%s' が空です", domain.ErrParse, keyMainStory)
	}
	if len(narrative.ArtworkPrompts) == 0 {
		return nil, fmt.Errorf("%w: '%s' が空です", domain.ErrParse, keyArtworkPrompts)
	}

	for i, p := range narrative.ArtworkPrompts {
		p = p.Normalize()
		if field := p.MissingField(); field != "" {
			return nil, fmt.Errorf("%w: artworkPrompts[%d] の '%s' が空です", domain.ErrValidation, i, field)
		}
		narrative.ArtworkPrompts[i] = p
	}

	return &narrative, nil
}

// CheckStructure は JSON としてデコードする前に、括弧の対応と不正なカンマを検査します。
// 文字列リテラルの中身は検査対象外なのだ。
func CheckStructure(s string) error {
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("%w: '{' で始まり '}' で終わっていません", domain.ErrParse)
	}

	var (
		stack    []byte
		inString bool
		escaped  bool
		outside  strings.Builder
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				outside.WriteByte('"')
			}
			continue
		}

		switch c {
		case '"':
			inString = true
			outside.WriteByte('"')
			continue
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			open := byte('{')
			if c == ']' {
				open = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != open {
				return fmt.Errorf("%w: 括弧の対応が取れていません (offset %d)", domain.ErrParse, i)
			}
			stack = stack[:len(stack)-1]
		}
		outside.WriteByte(c)
	}

	if inString {
		return fmt.Errorf("%w: 文字列リテラルが閉じていません", domain.ErrParse)
	}
	if len(stack) != 0 {
		return fmt.Errorf("%w: 括弧の対応が取れていません", domain.ErrParse)
	}

	compact := WhitespaceRegex.ReplaceAllString(outside.String(), "")
	if m := BadCommaRegex.FindString(compact); m != "" {
		return fmt.Errorf("%w: 不正なカンマ '%s' があります", domain.ErrParse, m)
	}
	return nil
}
