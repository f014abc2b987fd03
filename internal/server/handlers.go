package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staticd/internal/config"
	"staticd/internal/httpd"
)

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ServerInfo は配信サーバーの設定概要
type ServerInfo struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	DocumentRoot string `json:"document_root"`
	Debug        bool   `json:"debug"`
}

// StatusResponse は状態確認APIのレスポンス
type StatusResponse struct {
	Status    string          `json:"status"`
	Server    ServerInfo      `json:"server"`
	Pool      httpd.PoolStats `json:"pool"`
	Timestamp time.Time       `json:"timestamp"`
}

// StatusHandler は状態確認エンドポイントの実装
type StatusHandler struct {
	config *config.Config
	stats  StatsProvider
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *StatusHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status: "running",
		Server: ServerInfo{
			Host:         h.config.Server.Host,
			Port:         h.config.Server.Port,
			DocumentRoot: h.config.Server.DocumentRoot,
			Debug:        h.config.Server.Debug,
		},
		Pool:      h.stats.Stats(),
		Timestamp: time.Now(),
	})
}

// Index は埋め込みの状態確認ページを返す
func (h *StatusHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", getIndexHTML())
}
