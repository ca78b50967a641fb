package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// 环境变量前缀，如 GRIDSYNC_ADDR
const envPrefix = "GRIDSYNC_"

// Config 进程运行配置：先读 .env，再读环境变量，最后由命令行覆盖
type Config struct {
	Addr         string        // 监听地址
	TickInterval time.Duration // 广播周期
	SendTimeout  time.Duration // 单次发送的写超时
	PingInterval time.Duration // 心跳 ping 间隔
	PongWait     time.Duration // 等待 pong 的读超时
	ReadLimit    int64         // 单帧入站消息上限（字节）

	LogFile   string
	LogLevel  string
	LogStderr bool

	AllowedOrigins []string // 完整来源，如 https://game.example.com；"*" 表示允许所有来源
	StaticDir      string   // 为空时不提供静态文件
}

// DefaultConfig 默认配置：127.0.0.1:8080，100ms（10Hz）广播
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		TickInterval:   100 * time.Millisecond,
		SendTimeout:    5 * time.Second,
		PingInterval:   10 * time.Second,
		PongWait:       60 * time.Second,
		ReadLimit:      4096,
		LogFile:        "gridsync.log",
		LogLevel:       "info",
		LogStderr:      true,
		AllowedOrigins: []string{"*"},
	}
}

// LoadConfig 读取 envFile（不存在则跳过）和环境变量，解析错误会被全部汇总返回
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig()
	var err error
	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.TickInterval = envDuration("TICK_INTERVAL", cfg.TickInterval, &err)
	cfg.SendTimeout = envDuration("SEND_TIMEOUT", cfg.SendTimeout, &err)
	cfg.PingInterval = envDuration("PING_INTERVAL", cfg.PingInterval, &err)
	cfg.PongWait = envDuration("PONG_WAIT", cfg.PongWait, &err)
	cfg.ReadLimit = envInt("READ_LIMIT", cfg.ReadLimit, &err)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogStderr = envBool("LOG_STDERR", cfg.LogStderr, &err)
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		cfg.AllowedOrigins = nil
		for _, o := range splitList(v) {
			n, e := normalizeOrigin(o)
			if e != nil {
				multierr.AppendInto(&err, fmt.Errorf("parsing %sALLOWED_ORIGINS: %w", envPrefix, e))
				continue
			}
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, n)
		}
	}
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查配置，返回所有问题而不是第一个
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("addr is required"))
	}
	if c.TickInterval <= 0 {
		err = multierr.Append(err, errors.New("tick_interval must be positive"))
	}
	if c.SendTimeout <= 0 {
		err = multierr.Append(err, errors.New("send_timeout must be positive"))
	}
	if c.PingInterval <= 0 {
		err = multierr.Append(err, errors.New("ping_interval must be positive"))
	}
	if c.PongWait <= 0 {
		err = multierr.Append(err, errors.New("pong_wait must be positive"))
	} else if c.PingInterval >= c.PongWait {
		err = multierr.Append(err, errors.New("ping_interval must be shorter than pong_wait"))
	}
	if c.ReadLimit <= 0 {
		err = multierr.Append(err, errors.New("read_limit must be positive"))
	}
	for _, o := range c.AllowedOrigins {
		if _, e := normalizeOrigin(o); e != nil {
			err = multierr.Append(err, fmt.Errorf("allowed_origins: %w", e))
		}
	}
	var lvl zapcore.Level
	if e := lvl.UnmarshalText([]byte(c.LogLevel)); e != nil {
		err = multierr.Append(err, fmt.Errorf("log_level: %w", e))
	}
	return err
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration, errp *error) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		multierr.AppendInto(errp, fmt.Errorf("parsing %s%s: %w", envPrefix, key, err))
		return def
	}
	return d
}

func envInt(key string, def int64, errp *error) int64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		multierr.AppendInto(errp, fmt.Errorf("parsing %s%s: %w", envPrefix, key, err))
		return def
	}
	return n
}

func envBool(key string, def bool, errp *error) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		multierr.AppendInto(errp, fmt.Errorf("parsing %s%s: %w", envPrefix, key, err))
		return def
	}
	return b
}

// normalizeOrigin 将来源规范为小写的 scheme://host[:port]。
// WebSocket 握手校验和 CORS 使用同一份列表，所以只接受完整来源或 "*"。
func normalizeOrigin(origin string) (string, error) {
	if origin == "*" {
		return origin, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		return "", fmt.Errorf("origin %q must be scheme://host[:port]", origin)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
