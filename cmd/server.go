// Package main はstaticdサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"staticd/internal/config"
	"staticd/internal/logging"
	"staticd/internal/server"
)

func main() {
	// コマンドラインオプション
	var (
		docRoot    string
		host       string
		port       int
		workers    int
		debug      = flag.Bool("debug", false, "詳細ログを出力")
		status     = flag.Bool("status", false, "状態確認エンドポイントを有効化")
		configPath = flag.String("config", "", "設定ファイル (.yaml / .toml)")
		help       = flag.Bool("help", false, "ヘルプを表示")
	)
	flag.StringVar(&docRoot, "r", "", "ドキュメントルート (必須)")
	flag.StringVar(&docRoot, "document-root", "", "ドキュメントルート (必須)")
	flag.StringVar(&host, "a", "", "バインドアドレス (デフォルト: 全インターフェース)")
	flag.StringVar(&host, "address", "", "バインドアドレス (デフォルト: 全インターフェース)")
	flag.IntVar(&port, "p", 0, "ポート (デフォルト: 8080)")
	flag.IntVar(&port, "port", 0, "ポート (デフォルト: 8080)")
	flag.IntVar(&workers, "w", 0, "ワーカー数 (デフォルト: CPU数)")
	flag.IntVar(&workers, "workers", 0, "ワーカー数 (デフォルト: CPU数)")

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("staticd")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server -r <ドキュメントルート> [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	fmt.Println("Starting server...")

	// 設定を読み込み、コマンドラインオプションで上書きする
	cfg, err := config.Load(*configPath, func(c *config.Config) {
		if docRoot != "" {
			c.Server.DocumentRoot = docRoot
		}
		if host != "" {
			c.Server.Host = host
		}
		if port != 0 {
			c.Server.Port = port
		}
		if workers != 0 {
			c.Server.Workers = workers
		}
		if *debug {
			c.Server.Debug = true
		}
		if *status {
			c.Status.Enabled = true
		}
	})
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	logger := logging.New(os.Stderr, cfg.Server.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}
