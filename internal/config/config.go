package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Zendesk  ZendeskConfig  `yaml:"zendesk"`
	AI       AIConfig       `yaml:"ai"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Sync     SyncConfig     `yaml:"sync"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Log      LogConfig      `yaml:"log"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ZendeskConfig 帮助台 API 凭证；Subdomain 为空时禁用宏同步
type ZendeskConfig struct {
	Subdomain string        `yaml:"subdomain"`
	Email     string        `yaml:"email"`
	APIToken  string        `yaml:"api_token"`
	PageSize  int           `yaml:"page_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
}

type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// SheetsConfig 服务账号密钥（base64 JSON）；为空时禁用表格导出
type SheetsConfig struct {
	CredentialsBase64 string `yaml:"credentials_base64"`
}

type SyncConfig struct {
	Schedule   string `yaml:"schedule"` // cron expression
	RunOnStart bool   `yaml:"run_on_start"`
}

// ScoringConfig 评分维度上限，新模板的默认 scoring criteria
type ScoringConfig struct {
	Dimensions []string `yaml:"dimensions"`
	MaxScore   float64  `yaml:"max_score"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json, text
	Output     string `yaml:"output"` // stdout, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxAge     int    `yaml:"max_age"`  // days
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

type SecurityConfig struct {
	CORS         CORSConfig         `yaml:"cors"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
}

type CORSConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RateLimitingConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

func Load() *Config {
	config := GetDefaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		panic(err)
	}
	return config
}

// GetDefaultConfig 返回默认配置
func GetDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "password",
			Name:            "macromate",
			MaxOpenConns:    100,
			MaxIdleConns:    10,
			ConnMaxLifetime: 3600 * time.Second,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Zendesk: ZendeskConfig{
			PageSize: 100,
			Timeout:  30 * time.Second,
		},
		AI: AIConfig{
			OpenAI: OpenAIConfig{
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4-0613",
				Timeout: 30 * time.Second,
			},
		},
		Sync: SyncConfig{
			Schedule:   "0 0 * * *", // daily at midnight
			RunOnStart: true,
		},
		Scoring: ScoringConfig{
			Dimensions: []string{"tone", "process", "empathy"},
			MaxScore:   10,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   "./logs/macromate.log",
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
			Compress:   true,
		},
		Security: SecurityConfig{
			CORS: CORSConfig{
				Enabled: true,
			},
			RateLimiting: RateLimitingConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				Burst:             10,
			},
		},
	}
}
