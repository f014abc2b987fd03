package httpd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

const (
	// DefaultMaxHeaderSize はヘッダーブロックの最大サイズ
	DefaultMaxHeaderSize = 8192
	// DefaultReadTimeout は1回の読み込みで待つ最大時間
	DefaultReadTimeout = 5 * time.Second

	readChunkSize = 64 * 1024
)

var (
	headerTerminator = []byte("\r\n\r\n")
	lineSeparator    = []byte("\r\n")
)

// DeadlineReader は読み込み期限を設定できるReader。net.Conn が満たす
type DeadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// RawRequest は1接続分の未解析ヘッダーバイト列
type RawRequest struct {
	Data []byte
	// Overflowed はヘッダー終端が見つかる前に上限サイズを超えたことを示す
	Overflowed bool
}

// Parse はリクエストラインを解析する。
// 上限超過で終端が見つからなかった場合は部分的な解析を行わず不正リクエストとする
func (r *RawRequest) Parse() (*Request, error) {
	if r.Overflowed {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequest, ErrHeaderTooLarge)
	}
	return ParseRequest(r.Data)
}

// ReadRequest はヘッダー終端 "\r\n\r\n" が現れるまで conn から読み込む。
//
// 終了条件:
//   - 終端を検出: 蓄積したバイト列を返す
//   - 相手が切断: 蓄積したバイト列をそのまま返す（空なら ErrNoData）
//   - 上限サイズ超過: Overflowed を立てて返す
//   - 読み込みタイムアウト: 蓄積分を破棄して ErrReadTimeout
//
// 戻る前に読み込み期限は必ず解除する。
func ReadRequest(conn DeadlineReader, maxSize int, timeout time.Duration) (raw *RawRequest, err error) {
	defer func() {
		if derr := conn.SetReadDeadline(time.Time{}); derr != nil && err == nil {
			raw, err = nil, fmt.Errorf("%w: 読み込み期限の解除に失敗: %w", ErrTransport, derr)
		}
	}()

	if maxSize <= 0 {
		maxSize = DefaultMaxHeaderSize
	}

	var data []byte
	chunk := make([]byte, readChunkSize)
	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return nil, fmt.Errorf("%w: 読み込み期限の設定に失敗: %w", ErrTransport, err)
			}
		}

		n, rerr := conn.Read(chunk)
		if n > 0 {
			// 終端がチャンク境界をまたぐ場合に備えて直前3バイトから探す
			from := max(len(data)-len(headerTerminator)+1, 0)
			data = append(data, chunk[:n]...)
			if bytes.Contains(data[from:], headerTerminator) {
				return &RawRequest{Data: data}, nil
			}
			if len(data) > maxSize {
				return &RawRequest{Data: data, Overflowed: true}, nil
			}
		}

		if rerr != nil {
			if isTimeout(rerr) {
				return nil, ErrReadTimeout
			}
			if errors.Is(rerr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrTransport, rerr)
		}
	}

	if len(data) == 0 {
		return nil, ErrNoData
	}
	return &RawRequest{Data: data}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
