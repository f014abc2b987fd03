package httpd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"staticd/internal/config"
)

// accept の一時的な失敗時に待つ時間
const acceptRetryDelay = 10 * time.Millisecond

// Server は accept ループとワーカープールを管理する構造体
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	pool    *Pool
	handler *ConnHandler

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}
}

// New は新しいServerインスタンスを作成する。cfg は検証済みであること
func New(cfg *config.Config, logger *slog.Logger) *Server {
	fallbacks := []FallbackFunc{SystemFallback}
	if cfg.Server.SniffContent {
		fallbacks = append(fallbacks, SniffFallback)
	}

	handler := NewConnHandler(
		NewPathResolver(cfg.Server.DocumentRoot),
		NewContentTypes(fallbacks...),
		logger,
		HandlerOptions{
			MaxHeaderSize: cfg.Server.MaxHeaderSize,
			ReadTimeout:   cfg.Server.ReadTimeout,
		},
	)

	return &Server{
		config:  cfg,
		logger:  logger,
		pool:    NewPool(cfg.Server.Workers, logger),
		handler: handler,
		ready:   make(chan struct{}),
	}
}

// Serve はリッスンを開始し、ctx がキャンセルされるか Close されるまで接続を受け付ける。
// 受け付けた接続はワーカープールに投入し、accept ループ自身は接続のI/Oを行わない
func (s *Server) Serve(ctx context.Context) error {
	// 受け付け済みの接続は処理し終えてから戻る
	defer s.pool.Stop()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.ServerAddress())
	if err != nil {
		return fmt.Errorf("リッスンに失敗: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	s.logger.Info(fmt.Sprintf("Serving HTTP on %s port %s (http://%s/) ...", host, port, ln.Addr()))
	s.logger.Debug("server configuration",
		"document_root", s.config.Server.DocumentRoot,
		"workers", s.pool.Size(),
	)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("接続の受け付けに失敗しました", "err", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		s.logger.Debug("accepted", "peer", conn.RemoteAddr().String())
		if err := s.pool.Submit(func() { s.handler.ServeConn(conn) }); err != nil {
			s.logger.Warn("接続をワーカープールに投入できません", "err", err)
			conn.Close()
		}
	}
}

// Ready はリッスン開始時に閉じられるチャンネルを返す
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr はリッスン中のアドレスを返す。リッスン前は nil
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats はワーカープールの統計情報を返す
func (s *Server) Stats() PoolStats {
	return s.pool.Stats()
}

// Close はリスナーを閉じる。Serve は受け付け済みの接続を処理し終えてから戻る
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
