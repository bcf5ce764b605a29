package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// relay server
	RelayAddr       string
	AllowedOrigins  []string
	MaxMessageBytes int64
	JWTSecret       string

	// upstream chat-completion API
	LLMProvider     string
	LLMBaseURL      string
	LLMModel        string
	LLMTemperature  float64
	LLMMaxTokens    int
	OpenAIAPIKey    string
	GroqAPIKey      string
	UpstreamTimeout time.Duration

	// optional archives
	ArchiveDSN     string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	// client
	RelayURL          string
	RelayToken        string
	MaxContextChars   int
	CaptureScreenshot bool
	CaptureTimeout    time.Duration
}

// LoadConfig reads .env (if present), the optional YAML file named by
// PAGECHAT_CONFIG, and then the process environment. Environment wins.
func LoadConfig() Config {
	// missing .env is fine, the process environment is used as is
	_ = godotenv.Load()

	cfg, err := Load(os.Getenv, os.Getenv("PAGECHAT_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
	}
	return cfg
}

// Load builds a Config from getenv, falling back to the keys of the YAML file
// at path and then to defaults. An unreadable file is reported but the
// remaining layers are still applied.
func Load(getenv func(string) string, path string) (Config, error) {
	l := loader{getenv: getenv}
	var fileErr error
	if path != "" {
		l.file, fileErr = readFile(path)
	}

	cfg := Config{
		RelayAddr:       l.str("RELAY_ADDR", ":8080"),
		AllowedOrigins:  l.list("ALLOWED_ORIGINS"),
		MaxMessageBytes: int64(l.int("MAX_MESSAGE_BYTES", 16<<20)),
		JWTSecret:       l.str("JWT_SECRET", ""),

		LLMProvider:     strings.ToLower(l.str("LLM_PROVIDER", "openai")),
		LLMBaseURL:      l.str("LLM_BASE_URL", ""),
		LLMModel:        l.str("LLM_MODEL", "gpt-4o"),
		LLMTemperature:  l.float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:    l.int("LLM_MAX_TOKENS", 2048),
		OpenAIAPIKey:    l.str("OPENAI_API_KEY", ""),
		GroqAPIKey:      l.str("GROQ_API_KEY", ""),
		UpstreamTimeout: l.duration("UPSTREAM_TIMEOUT", 0),

		ArchiveDSN:     l.str("ARCHIVE_DSN", ""),
		MinIOEndpoint:  l.str("MINIO_ENDPOINT", ""),
		MinIOAccessKey: l.str("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: l.str("MINIO_SECRET_KEY", ""),
		MinIOBucket:    l.str("MINIO_BUCKET", "pagechat"),
		MinIOUseSSL:    l.bool("MINIO_USE_SSL", false),

		RelayURL:          l.str("RELAY_URL", "ws://localhost:8080/ws"),
		RelayToken:        l.str("RELAY_TOKEN", ""),
		MaxContextChars:   l.int("MAX_CONTEXT_CHARS", 0),
		CaptureScreenshot: l.bool("CAPTURE_SCREENSHOT", true),
		CaptureTimeout:    l.duration("CAPTURE_TIMEOUT", 15*time.Second),
	}
	return cfg, fileErr
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return values, nil
}

type loader struct {
	getenv func(string) string
	file   map[string]string
}

func (l loader) str(key, fallback string) string {
	if value := l.getenv(key); value != "" {
		return value
	}
	if value, ok := l.file[key]; ok && value != "" {
		return value
	}
	return fallback
}

func (l loader) int(key string, fallback int) int {
	n, err := strconv.Atoi(l.str(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func (l loader) float(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(l.str(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func (l loader) bool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(l.str(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

func (l loader) duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(l.str(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func (l loader) list(key string) []string {
	raw := l.str(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
