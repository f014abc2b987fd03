package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"staticd/internal/config"
	"staticd/internal/logging"
	"staticd/internal/server"
)

func main() {
	// 設定を読み込む（環境変数 DOCUMENT_ROOT, PORT など）
	cfg, err := config.Load(os.Getenv("STATICD_CONFIG"))
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.Server.Debug)

	// コンテキストを作成
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// サーバーを起動
	if err := server.Run(ctx, cfg, logger); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}
