package httpd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rawResponse は受信したレスポンスを分解したもの
type rawResponse struct {
	StatusLine string
	Headers    []string // "Name: value" を受信順に保持
	Body       []byte
}

func (r rawResponse) header(name string) (string, bool) {
	prefix := name + ": "
	for _, h := range r.Headers {
		if strings.HasPrefix(h, prefix) {
			return strings.TrimPrefix(h, prefix), true
		}
	}
	return "", false
}

// headerNames はヘッダー名を受信順に返す
func (r rawResponse) headerNames() []string {
	names := make([]string, 0, len(r.Headers))
	for _, h := range r.Headers {
		name, _, _ := strings.Cut(h, ": ")
		names = append(names, name)
	}
	return names
}

// withoutDate は Date 以外のヘッダーを返す
func (r rawResponse) withoutDate() []string {
	var out []string
	for _, h := range r.Headers {
		if !strings.HasPrefix(h, "Date: ") {
			out = append(out, h)
		}
	}
	return out
}

func parseRawResponse(t *testing.T, data []byte) rawResponse {
	t.Helper()

	head, body, found := bytes.Cut(data, headerTerminator)
	require.True(t, found, "ヘッダー終端がありません: %q", data)

	lines := strings.Split(string(head), "\r\n")
	return rawResponse{
		StatusLine: lines[0],
		Headers:    lines[1:],
		Body:       body,
	}
}

// newDocRoot は正規化済みのドキュメントルートを作成する
func newDocRoot(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return root
}

func writeFile(t *testing.T, root, rel string, content []byte) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func mkdir(t *testing.T, root, rel string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(path, 0o755))
	return path
}

// step はscriptedConnが1回のReadで返す内容
type step struct {
	data []byte
	err  error
}

// scriptedConn は決められた順にReadの結果を返すDeadlineReader
type scriptedConn struct {
	steps     []step
	deadlines []time.Time
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	if len(c.steps) == 0 {
		return 0, io.EOF
	}
	s := c.steps[0]
	c.steps = c.steps[1:]
	n := copy(p, s.data)
	return n, s.err
}

func (c *scriptedConn) SetReadDeadline(t time.Time) error {
	c.deadlines = append(c.deadlines, t)
	return nil
}
