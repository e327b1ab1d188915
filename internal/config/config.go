// Package config 提供客户端配置的加载
// 配置来源优先级：显式参数 > 环境变量 > .env 文件 > 默认值
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// 环境变量名称常量
const (
	envBaseURL = "BAZICHAT_BASE_URL" // 后端服务地址
	envDataDir = "BAZICHAT_DATA_DIR" // 本地数据目录
	envDebug   = "BAZICHAT_DEBUG"    // 调试模式开关
)

// defaultBaseURL 后端服务的默认地址
const defaultBaseURL = "http://localhost:8000"

// Config 客户端配置
type Config struct {
	BaseURL string // 后端服务地址
	DataDir string // 本地数据目录（数据库、日志、持久化状态）
	Debug   bool   // 是否启用调试日志
}

// Load 加载客户端配置
// baseURL、dataDir 为命令行显式覆盖值，传空字符串表示未指定
func Load(baseURL, dataDir string, debug bool) (*Config, error) {
	// 加载 .env 文件（不存在时忽略）
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL: baseURL,
		DataDir: dataDir,
		Debug:   debug,
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(envBaseURL)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.DataDir == "" {
		cfg.DataDir = os.Getenv(envDataDir)
	}
	if cfg.DataDir == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}

	if !cfg.Debug {
		if v, err := strconv.ParseBool(os.Getenv(envDebug)); err == nil {
			cfg.Debug = v
		}
	}

	// 确保数据目录存在
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogFile 返回日志文件的完整路径
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "logs", "bazichat.log")
}

// defaultDataDir 返回默认的数据目录
// 优先使用 XDG_DATA_HOME，否则退回到 ~/.local/share
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "bazichat"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "bazichat"), nil
}
