package httpd

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ParseRequest はヘッダーブロックの先頭行をリクエストラインとして解析する。
//
// 最初の "\r\n\r\n" より前（なければ全体）を対象にし、先頭行を ISO-8859-1 で
// デコードしてから空白で分割する。トークンがちょうど3つでなければ
// ErrMalformedRequest を返す。バージョンの構文は検証しない。
func ParseRequest(data []byte) (*Request, error) {
	head, _, _ := bytes.Cut(data, headerTerminator)
	line, _, _ := bytes.Cut(head, lineSeparator)

	// ISO-8859-1 は 0-255 の全バイトを1文字に対応させるため任意の入力を受け付ける
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(line)
	if err != nil {
		return nil, fmt.Errorf("%w: デコードに失敗: %w", ErrMalformedRequest, err)
	}

	fields := strings.Fields(string(decoded))
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: リクエストラインのトークン数が %d", ErrMalformedRequest, len(fields))
	}

	return &Request{
		Method:  fields[0],
		Target:  fields[1],
		Version: fields[2],
	}, nil
}
