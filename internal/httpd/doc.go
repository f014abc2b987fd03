// Package httpd は静的ファイルを配信する最小構成のHTTP/1.1サーバーを実装する。
//
// # 責務
//   - TCP接続の受け付けとワーカープールへの振り分け
//   - リクエストヘッダーの読み込み（サイズ上限・無通信タイムアウト付き）
//   - リクエストラインの解析
//   - ドキュメントルート配下へのパス解決とディレクトリトラバーサルの防止
//   - 拡張子からのContent-Type決定
//   - レスポンスの送信（ファイル本体は64KiB単位でストリーミング）
//
// # 仕様
//   - GET / HEAD のみ対応。それ以外は 405
//   - ステータスは 200, 400, 403, 404, 405 のみ
//   - 常に Connection: close。キープアライブは行わない
//   - 1接続の失敗が他の接続や accept ループに波及しない
package httpd
