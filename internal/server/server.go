package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staticd/internal/config"
	"staticd/internal/httpd"
)

// StatsProvider はワーカープールの統計情報を提供する
type StatsProvider interface {
	Stats() httpd.PoolStats
}

// Server は状態確認用HTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, stats StatsProvider, logger *slog.Logger) *Server {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	h := &StatusHandler{
		config: cfg,
		stats:  stats,
	}
	engine.GET("/health", h.HealthCheck)
	engine.GET("/api/status", h.GetStatus)
	engine.GET("/", h.Index)

	return &Server{
		config: cfg,
		logger: logger,
		engine: engine,
		httpServer: &http.Server{
			Addr:              cfg.StatusAddress(),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start はサーバーを起動し、ctx がキャンセルされるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.logger.Info("状態確認サーバーを起動しています", "addr", s.config.StatusAddress())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("状態確認サーバーの起動に失敗: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-shutdownCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("状態確認サーバーのシャットダウンに失敗: %w", err)
	}

	s.logger.Info("状態確認サーバーを停止しました")
	return nil
}
