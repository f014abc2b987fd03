package httpd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ServerName は Server ヘッダーの値
const ServerName = "staticd"

const writeChunkSize = 64 * 1024

// reasonPhrases はステータス行の理由句。ここにないコードは空文字になる
var reasonPhrases = map[int]string{
	http.StatusOK:               "OK",
	http.StatusBadRequest:       "Bad Request",
	http.StatusForbidden:        "Forbidden",
	http.StatusNotFound:         "Not Found",
	http.StatusMethodNotAllowed: "Method Not Allowed",
}

// ReasonPhrase はステータスコードの理由句を返す
func ReasonPhrase(code int) string {
	return reasonPhrases[code]
}

// ResponseWriter はステータス行・ヘッダー・本体を接続へ書き出す
type ResponseWriter struct {
	w   io.Writer
	now func() time.Time
}

// NewResponseWriter は新しいResponseWriterを作成する
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{w: w, now: time.Now}
}

// WriteHeader はステータス行とヘッダーを書き出す。
// ヘッダー順は Date, Server, Connection, Content-Length, Content-Type（指定時のみ）
func (rw *ResponseWriter) WriteHeader(code int, contentLength int64, contentType string) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", code, ReasonPhrase(code))
	buf.WriteString("Date: " + rw.now().UTC().Format(http.TimeFormat) + "\r\n")
	buf.WriteString("Server: " + ServerName + "\r\n")
	buf.WriteString("Connection: close\r\n")
	buf.WriteString("Content-Length: " + strconv.FormatInt(contentLength, 10))
	if contentType != "" {
		buf.WriteString("\r\nContent-Type: " + contentType)
	}
	buf.Write(headerTerminator)

	_, err := rw.w.Write(buf.Bytes())
	return err
}

// WriteEmpty は本体なしのレスポンスを書き出す（エラー応答用）
func (rw *ResponseWriter) WriteEmpty(code int) error {
	return rw.WriteHeader(code, 0, "")
}

// WriteBody は r の内容を64KiBずつ書き出し、書き出したバイト数を返す
func (rw *ResponseWriter) WriteBody(r io.Reader) (int64, error) {
	buf := make([]byte, writeChunkSize)
	var written int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			m, werr := rw.w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if m != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
