package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config アプリケーション全体の設定
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	LLM      LLMConfig      `yaml:"llm"`
	Redis    RedisConfig    `yaml:"redis"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig HTTPサーバーの設定
type ServerConfig struct {
	Port           string        `yaml:"port"`
	UploadTimeout  time.Duration `yaml:"upload_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

// LLMConfig ビジョンLLMの設定
type LLMConfig struct {
	Provider  string        `yaml:"provider"` // anthropic | openai | gemini
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	Endpoint  string        `yaml:"endpoint"` // 空ならプロバイダー既定のURL
}

// RedisConfig Redisの設定
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MySQLConfig MySQLの設定
type MySQLConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// TelegramConfig ボット中継の設定
type TelegramConfig struct {
	Token          string        `yaml:"token"`
	IngressURL     string        `yaml:"ingress_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LogConfig ログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | text
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// LoadDotEnv .envファイルがあれば環境変数として読み込む
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load 設定ファイルを読み込む
// ファイルに書かれていない項目はDefaultConfigの値が残る
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// 設定ファイルが存在しない場合はデフォルト設定を返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 環境変数の展開
	dataStr := os.ExpandEnv(string(data))

	envProvider := cfg.LLM.Provider
	if err := yaml.Unmarshal([]byte(dataStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.LLM.Provider != envProvider {
		var explicit llmOverrides
		if err := yaml.Unmarshal([]byte(dataStr), &explicit); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		// プロバイダーだけ変えた場合、キーとモデルはそのプロバイダーの既定に合わせる
		if explicit.LLM.APIKey == nil {
			cfg.LLM.APIKey = apiKeyFor(cfg.LLM.Provider)
		}
		if explicit.LLM.Model == nil {
			cfg.LLM.Model = getEnv("LLM_MODEL", defaultModelFor(cfg.LLM.Provider))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// llmOverrides 設定ファイルに明示された llm.api_key と llm.model を判別する
type llmOverrides struct {
	LLM struct {
		APIKey *string `yaml:"api_key"`
		Model  *string `yaml:"model"`
	} `yaml:"llm"`
}

// DefaultConfig 環境変数からデフォルト設定を返す
func DefaultConfig() *Config {
	// Redis/MySQLのホストはテスト環境では localhost を使用
	redisHost := "redis"
	mysqlHost := "mysql"
	if os.Getenv("GO_ENV") == "test" {
		redisHost = "localhost"
		mysqlHost = "localhost"
	}

	provider := getEnv("LLM_PROVIDER", ProviderOpenAI)

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8000"),
			UploadTimeout:  90 * time.Second,
			MaxUploadBytes: 10 << 20,
		},
		LLM: LLMConfig{
			Provider:  provider,
			APIKey:    apiKeyFor(provider),
			Model:     getEnv("LLM_MODEL", defaultModelFor(provider)),
			MaxTokens: 4096,
			Timeout:   60 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", redisHost),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
			TTL:      24 * time.Hour,
		},
		MySQL: MySQLConfig{
			Enabled:  getEnvBool("DB_ENABLED", true),
			Host:     getEnv("DB_HOST", mysqlHost),
			Port:     getEnvInt("DB_PORT", 3306),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASS"),
			Database: getEnv("DB_NAME", "menu"),
		},
		Telegram: TelegramConfig{
			Token:          os.Getenv("TELEGRAM_TOKEN"),
			IngressURL:     getEnv("API_ENDPOINT", "http://127.0.0.1:8000/upload"),
			RequestTimeout: 120 * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate 設定値の整合性をチェック
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Server.UploadTimeout <= 0 {
		return fmt.Errorf("server.upload_timeout must be positive")
	}
	return nil
}

// Save 設定をファイルに保存する
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func defaultModelFor(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o"
	}
}

func apiKeyFor(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
