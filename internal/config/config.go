package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabaseDriver string
	DatabaseDSN    string
	SessionSecret  string
	GinMode        string
	Debug          bool
	SeedData       bool

	UploadBackend          string
	UploadDir              string
	UploadURLPath          string
	AllowedImageExtensions []string
	S3Bucket               string
	S3Region               string
	S3Endpoint             string
	S3DisableSSL           bool
	AWSAccessKeyID         string
	AWSSecretAccessKey     string

	RedisAddr         string
	CommentRateLimit  int
	CommentRateWindow time.Duration

	PageSize           int
	ProhibitedTerms    []string
	CORSAllowedOrigins []string
}

// fileConfig mirrors the optional TOML file.
type fileConfig struct {
	Pagination struct {
		PageSize int `toml:"page_size"`
	} `toml:"pagination"`
	Moderation struct {
		ProhibitedTerms []string `toml:"prohibited_terms"`
	} `toml:"moderation"`
	Uploads struct {
		AllowedExtensions []string `toml:"allowed_extensions"`
	} `toml:"uploads"`
	CORS struct {
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"cors"`
}

// Load 从 .env 与环境变量读取应用配置，并为缺失项提供安全的默认值。
// CONFIG_FILE 指向的 TOML 文件会覆盖对应字段。
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	cfg := AppConfig{
		ListenAddr:     getEnv("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:           port,
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "data/quillpress.db")),
		SessionSecret:  getEnv("SESSION_SECRET", "quillpress-dev-secret"),
		GinMode:        getEnv("GIN_MODE", "release"),
		Debug:          getBool("DEBUG", false),
		SeedData:       getBool("SEED_DATA", true),

		UploadBackend:          strings.ToLower(getEnv("UPLOAD_BACKEND", "local")),
		UploadDir:              getEnv("UPLOAD_DIR", "web/uploads"),
		UploadURLPath:          getEnv("UPLOAD_URL_PATH", "/uploads"),
		AllowedImageExtensions: getList("ALLOWED_IMAGE_EXTENSIONS", []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}),
		S3Bucket:               getEnv("S3_BUCKET_NAME", ""),
		S3Region:               getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:             getEnv("AWS_ENDPOINT", ""),
		S3DisableSSL:           !getBool("S3_USE_SSL", true),
		AWSAccessKeyID:         getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		CommentRateLimit:  getInt("COMMENT_RATE_LIMIT", 5),
		CommentRateWindow: getDuration("COMMENT_RATE_WINDOW", time.Minute),

		PageSize:           getInt("PAGE_SIZE", 10),
		ProhibitedTerms:    getList("PROHIBITED_TERMS", []string{"badword1", "badword2", "badword3"}),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return cfg, nil
}

// LoadFile overlays the non-empty values of a TOML file onto cfg.
func LoadFile(path string, cfg *AppConfig) error {
	var file fileConfig
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	if file.Pagination.PageSize > 0 {
		cfg.PageSize = file.Pagination.PageSize
	}
	if len(file.Moderation.ProhibitedTerms) > 0 {
		cfg.ProhibitedTerms = file.Moderation.ProhibitedTerms
	}
	if len(file.Uploads.AllowedExtensions) > 0 {
		cfg.AllowedImageExtensions = file.Uploads.AllowedExtensions
	}
	if len(file.CORS.AllowedOrigins) > 0 {
		cfg.CORSAllowedOrigins = file.CORS.AllowedOrigins
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getList splits a comma separated variable, dropping blank entries.
func getList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
