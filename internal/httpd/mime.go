package httpd

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType はどの段階でも決まらなかった場合のContent-Type
const DefaultContentType = "application/octet-stream"

// 拡張子（小文字・ドットなし）ごとの固定テーブル
var defaultContentTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"swf":  "application/x-shockwave-flash",
}

// FallbackFunc は固定テーブルにない拡張子のContent-Typeを推定する。
// 推定できなければ空文字を返す
type FallbackFunc func(path string) string

// ContentTypes は 固定テーブル → フォールバック（登録順） → 既定値 の順で引く
type ContentTypes struct {
	table     map[string]string
	fallbacks []FallbackFunc
}

// NewContentTypes は新しいContentTypesを作成する
func NewContentTypes(fallbacks ...FallbackFunc) *ContentTypes {
	return &ContentTypes{
		table:     defaultContentTypes,
		fallbacks: fallbacks,
	}
}

// ContentType は path のContent-Typeを返す
func (c *ContentTypes) ContentType(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ct, ok := c.table[ext]; ok {
		return ct
	}
	for _, fallback := range c.fallbacks {
		// 既定値と同じ結果は「不明」とみなして次の段階へ進む
		if ct := fallback(path); ct != "" && ct != DefaultContentType {
			return ct
		}
	}
	return DefaultContentType
}

// SystemFallback はOSのMIMEデータベースをファイル名の拡張子で引く
func SystemFallback(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return mime.TypeByExtension(ext)
}

// SniffFallback はファイル先頭のバイト列からContent-Typeを推定する
func SniffFallback(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil || mt.Is(DefaultContentType) {
		return ""
	}
	return mt.String()
}
