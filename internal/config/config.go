package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config jamaah-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Vision   VisionConfig
	Pipeline PipelineConfig
}

// DatabaseConfig PostgreSQL 配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 拼接 lib/pq 连接串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// VisionConfig 外部视觉抽取服务配置
type VisionConfig struct {
	BaseURL     string        // 服务地址
	APIKey      string        // 鉴权密钥
	Timeout     time.Duration // 单次调用超时
	Concurrency int           // 批量抽取的并发上限（外部服务限流）
	CacheTTL    time.Duration // OCR 结果缓存时长
}

// PipelineConfig 识别与分房流水线的策略参数
type PipelineConfig struct {
	MatchThreshold float64 // 姓名相似度阈值（同人判定）
	RoomCapacity   int     // 自动分房默认每间床位数
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "jamaah")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 视觉抽取服务
	cfg.Vision.BaseURL = getEnv("VISION_BASE_URL", "http://localhost:9090")
	cfg.Vision.APIKey = getEnv("VISION_API_KEY", "")
	cfg.Vision.Timeout = time.Duration(parseInt(getEnv("VISION_TIMEOUT_SECONDS", "30"), 30)) * time.Second
	cfg.Vision.Concurrency = parseInt(getEnv("VISION_CONCURRENCY", "10"), 10)
	cfg.Vision.CacheTTL = time.Duration(parseInt(getEnv("VISION_CACHE_TTL_SECONDS", "3600"), 3600)) * time.Second

	// 流水线策略
	cfg.Pipeline.MatchThreshold = parseFloat(getEnv("MATCH_THRESHOLD", "0.80"), 0.80)
	cfg.Pipeline.RoomCapacity = parseInt(getEnv("ROOM_CAPACITY", "4"), 4)

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseFloat(s string, def float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
