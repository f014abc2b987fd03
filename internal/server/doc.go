// Package server は、静的ファイルサーバーの状態確認用HTTPエンドポイントを提供します。
//
// 配信本体（internal/httpd）とは別のポートで待ち受け、
// ワーカープールの統計情報と設定の概要を返します。
//
// 責務:
//   - ヘルスチェック（/health）
//   - 状態確認API（/api/status）
//   - 状態確認ページ（/）の配信
//
// 仕様:
//   - ginを使用
//   - 既定では無効。設定の status.enabled で有効化する
//   - コンテキストのキャンセルでグレースフルシャットダウンする
package server
