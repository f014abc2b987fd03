package httpd

import (
	"errors"
	"net/http"
)

// 接続処理中に発生するエラー
var (
	ErrNoData           = errors.New("リクエストデータがありません")
	ErrReadTimeout      = errors.New("ヘッダー読み込みがタイムアウトしました")
	ErrHeaderTooLarge   = errors.New("ヘッダーが上限サイズを超えました")
	ErrMalformedRequest = errors.New("不正なリクエストです")
	ErrTransport        = errors.New("通信エラー")
	ErrPoolClosed       = errors.New("ワーカープールは停止しています")
)

// 受け付けるメソッド
const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
)

// Request は解析済みのリクエストライン
type Request struct {
	Method  string // メソッド
	Target  string // リクエストターゲット（クエリ文字列を含む生の値）
	Version string // プロトコルバージョン（構文は検証しない）
}

// Allowed はメソッドが GET か HEAD のときに true を返す
func (r *Request) Allowed() bool {
	return r.Method == MethodGet || r.Method == MethodHead
}

// Target はパス解決の結果。Status が 200 のときだけ Path が設定される
type Target struct {
	Path   string
	Status int
}

// OK は配信可能なファイルに解決できたかを返す
func (t Target) OK() bool {
	return t.Status == http.StatusOK && t.Path != ""
}

// Resolver はリクエストターゲットをファイルパスに解決する
type Resolver interface {
	Resolve(target string) Target
}

// ContentTypeResolver はファイルパスからContent-Typeを決定する
type ContentTypeResolver interface {
	ContentType(path string) string
}
