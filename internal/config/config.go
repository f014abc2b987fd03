package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`
	Status StatusConfig `yaml:"status" toml:"status"`
}

// ServerConfig は静的ファイルサーバーの設定。起動後は読み取り専用
type ServerConfig struct {
	// バインドアドレス（空なら全インターフェース）
	Host         string `yaml:"host" toml:"host"`
	// ポート番号
	Port         int    `yaml:"port" toml:"port" validate:"min=1,max=65535"`
	// ドキュメントルート。検証後は正規化済みの絶対パス
	DocumentRoot string `yaml:"document_root" toml:"document_root" validate:"required"`
	// ワーカー数
	Workers      int    `yaml:"workers" toml:"workers" validate:"min=1"`
	// 詳細ログ（動作には影響しない）
	Debug        bool   `yaml:"debug" toml:"debug"`

	// ヘッダー読み込みの上限
	ReadTimeout   time.Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gt=0"`
	MaxHeaderSize int           `yaml:"max_header_size" toml:"max_header_size" validate:"min=16"`

	// 拡張子で決まらない場合にファイル内容からContent-Typeを推定する
	SniffContent bool `yaml:"sniff_content" toml:"sniff_content"`
}

// StatusConfig は状態確認用HTTPエンドポイントの設定
type StatusConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Host    string `yaml:"host" toml:"host"`
	Port    int    `yaml:"port" toml:"port" validate:"min=1,max=65535"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "",
			Port:          8080,
			Workers:       runtime.NumCPU(),
			ReadTimeout:   5 * time.Second,
			MaxHeaderSize: 8192,
		},
		Status: StatusConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8081,
		},
	}
}

// Load は設定を読み込む。
// デフォルト値 → 設定ファイル（path が空でなければ） → 環境変数 → overrides の順に上書きし、最後に検証する
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	// コマンドラインオプションなど
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// loadFile は拡張子に応じてYAMLまたはTOMLの設定ファイルを読み込む
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("未対応の設定ファイル形式: %s", path)
	}
	if err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗: %w", err)
	}
	return nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Server.DocumentRoot = getEnvOrDefault("DOCUMENT_ROOT", c.Server.DocumentRoot)
	c.Server.Workers = getEnvAsIntOrDefault("WORKERS", c.Server.Workers)
	c.Server.Debug = getEnvAsBoolOrDefault("DEBUG", c.Server.Debug)
}

// Validate は設定の妥当性を検証し、ドキュメントルートを正規化済みの絶対パスに置き換える
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("無効な設定値: %s", verrs[0].Namespace())
		}
		return err
	}

	root, err := CanonicalRoot(c.Server.DocumentRoot)
	if err != nil {
		return err
	}
	c.Server.DocumentRoot = root

	return nil
}

// CanonicalRoot はドキュメントルートが存在するディレクトリであることを確認し、
// シンボリックリンクを解決した絶対パスを返す
func CanonicalRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("ドキュメントルートの絶対パス化に失敗: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("無効なドキュメントルート: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("無効なドキュメントルート: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("ドキュメントルートがディレクトリではありません: %s", resolved)
	}
	return resolved, nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// StatusAddress は状態確認エンドポイントのリッスンアドレスを返す
func (c *Config) StatusAddress() string {
	return fmt.Sprintf("%s:%d", c.Status.Host, c.Status.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault は環境変数を真偽値として取得する
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
