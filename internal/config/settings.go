package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
	TLS      bool   `mapstructure:"tls"`
	RedisUrl string `mapstructure:"redis_url"`
}

type RedisConfig struct {
	Addr string `mapstructure:"redis_addr"`
	Pass string `mapstructure:"redis_pwd"`
}

func (d DBConfig) DSN() string {
	// MySQL/TiDB DSN
	// username:password@tcp(host:port)/dbname?params
	base := "charset=utf8mb4&parseTime=True&loc=Local"
	if d.TLS {
		base += "&tls=true"
	}
	if d.Password == "" {
		return fmt.Sprintf("%s@tcp(%s:%d)/%s?%s",
			d.Username, d.Host, d.Port, d.Name, base)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		d.Username, d.Password, d.Host, d.Port, d.Name, base)
}

type GeminiConfig struct {
	APIKey string `mapstructure:"gemini_api_key"`
}

type AssistantKeysObj struct {
	OpenAiApiKey string       `mapstructure:"open_ai_api_key"`
	Gemini       GeminiConfig `mapstructure:"gemini"`
}

type AuthConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	TokenTTLHours int      `mapstructure:"token_ttl_hours"`
	BcryptCost    int      `mapstructure:"bcrypt_cost"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
}

// SchedulerConfig tunes ReminderScheduler's periodic sweep.
type SchedulerConfig struct {
	TickSeconds int `mapstructure:"tick_seconds"`
	BatchSize   int `mapstructure:"batch_size"`
}

// WorkersConfig gates which background components this process runs
// alongside the HTTP API, which always starts, and which event bus it uses.
type WorkersConfig struct {
	EventBusEnabled          bool `mapstructure:"event_bus_enabled"`
	RecurrenceEnabled        bool `mapstructure:"recurrence_enabled"`
	ReminderSchedulerEnabled bool `mapstructure:"reminder_scheduler_enabled"`
	NotificationEnabled      bool `mapstructure:"notification_enabled"`
}

// AgentConfig tunes the Agent's bounded tool-dispatch loop.
type AgentConfig struct {
	MaxToolIterations int    `mapstructure:"max_tool_iterations"`
	TurnDeadlineSecs  int    `mapstructure:"turn_deadline_seconds"`
	Provider          string `mapstructure:"provider"` // "openai" or "gemini"
	Model             string `mapstructure:"model"`
}

// SMTPConfig configures NotificationWorker's outbound email delivery.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

type Settings struct {
	DB            DBConfig         `mapstructure:"database"`
	RedisDB       RedisConfig      `mapstructure:"redis"`
	AssistantKeys AssistantKeysObj `mapstructure:"assistantKeys"`
	Env           string           `mapstructure:"env"`
	Debug         bool             `mapstructure:"debug" default:"false"`
	Auth          AuthConfig       `mapstructure:"auth"`
	Scheduler     SchedulerConfig  `mapstructure:"scheduler"`
	Workers       WorkersConfig    `mapstructure:"workers"`
	Agent         AgentConfig      `mapstructure:"agent"`
	SMTP          SMTPConfig       `mapstructure:"smtp"`
}

func Load() (*Settings, error) {
	// Prefer explicit config file via env var
	if cfgPath := os.Getenv("XARVIS_CONFIG"); cfgPath != "" {
		viper.SetConfigFile(cfgPath)
	} else {
		// Load settings from conventional locations: current dir, ./config, /etc/xarvis
		viper.SetConfigName("config_" + genEnv())
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/xarvis")
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
