package httpd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypes(t *testing.T) {
	types := NewContentTypes()

	tests := []struct {
		path string
		want string
	}{
		{"/srv/index.html", "text/html"},
		{"/srv/INDEX.HTML", "text/html"},
		{"/srv/style.css", "text/css"},
		{"/srv/app.js", "application/javascript"},
		{"/srv/a.jpg", "image/jpeg"},
		{"/srv/a.JPEG", "image/jpeg"},
		{"/srv/a.png", "image/png"},
		{"/srv/a.gif", "image/gif"},
		{"/srv/movie.swf", "application/x-shockwave-flash"},
		{"/srv/archive.unknownext", DefaultContentType},
		{"/srv/noext", DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, types.ContentType(tt.path))
		})
	}
}

func TestContentTypesFallbackOrder(t *testing.T) {
	var calls []string
	first := func(path string) string {
		calls = append(calls, "first")
		return ""
	}
	second := func(path string) string {
		calls = append(calls, "second")
		return "text/x-second"
	}
	third := func(path string) string {
		calls = append(calls, "third")
		return "text/x-third"
	}

	types := NewContentTypes(first, second, third)

	// テーブルにある拡張子ではフォールバックを呼ばない
	assert.Equal(t, "text/css", types.ContentType("a.css"))
	assert.Empty(t, calls)

	assert.Equal(t, "text/x-second", types.ContentType("a.weird"))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestSystemFallback(t *testing.T) {
	assert.Empty(t, SystemFallback("/srv/noext"))
	// .svg は Go の組み込みテーブルに含まれる
	assert.Equal(t, "image/svg+xml", SystemFallback("/srv/logo.svg"))
}

func TestSniffFallback(t *testing.T) {
	root := newDocRoot(t)
	png := writeFile(t, root, "image.qqzx", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	blob := writeFile(t, root, "blob.qqzx", []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xff})

	assert.Equal(t, "image/png", SniffFallback(png))
	assert.Empty(t, SniffFallback(blob))
	assert.Empty(t, SniffFallback(root+"/missing"))

	types := NewContentTypes(SystemFallback, SniffFallback)
	assert.Equal(t, "image/png", types.ContentType(png))
}
