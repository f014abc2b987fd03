package server

import (
	"context"
	"log/slog"

	"staticd/internal/config"
	"staticd/internal/httpd"
)

// Run は配信サーバーを起動し、有効なら状態確認サーバーも並行して起動する。
// ctx がキャンセルされるとリスナーを閉じ、受け付け済みの接続を処理し終えてから戻る
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	srv := httpd.New(cfg, logger)

	if cfg.Status.Enabled {
		status := New(cfg, srv, logger)
		go func() {
			if err := status.Start(ctx); err != nil {
				logger.Error("状態確認サーバーが停止しました", "err", err)
			}
		}()
	}

	return srv.Serve(ctx)
}
