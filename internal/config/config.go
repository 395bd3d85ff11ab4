package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"

	"lingo-server/internal/utils"
)

// Config содержит конфигурацию сервиса.
type Config struct {
	// Настройки сервера
	Port        string   `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string   `envconfig:"LOG_ENCODING" default:"json"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Настройки PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	ImageCacheTTL time.Duration `envconfig:"IMAGE_CACHE_TTL" default:"1h"`
	// Секретное поле БЕЗ envconfig тега
	RedisPassword string

	// Настройки RabbitMQ
	RabbitMQURL       string `envconfig:"RABBITMQ_URL" required:"true"`
	PlayEventExchange string `envconfig:"PLAY_EVENT_EXCHANGE" default:"play_events"`

	// Настройки AI
	AIClientType string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL    string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel      string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	// Таймаут транзакции генерации слота (ограничивает и вызов AI внутри нее).
	SlotTxTimeout time.Duration `envconfig:"SLOT_TX_TIMEOUT" default:"15s"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Лимиты запросов
	RateLimitPerSecond int `envconfig:"RATE_LIMIT_PER_SECOND" default:"10"`

	// Настройки JWT (для проверки токена пользователя в middleware)
	// Секретное поле БЕЗ envconfig тега
	JWTSecret string
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	cfg.AIAPIKey, loadErr = utils.ReadSecret("ai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	// Пароль Redis опционален (локальная разработка без него)
	cfg.RedisPassword, loadErr = utils.ReadSecret("redis_password")
	if loadErr != nil {
		log.Printf("Секрет redis_password не найден, подключаемся без пароля")
		cfg.RedisPassword = ""
	}

	log.Printf("Конфигурация загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Redis Addr: %s", cfg.RedisAddr)
	log.Printf("  RabbitMQ URL: %s", cfg.RabbitMQURL)
	log.Printf("  AI Client: %s, Model: %s, BaseURL: %s", cfg.AIClientType, cfg.AIModel, cfg.AIBaseURL)
	log.Printf("  Slot Tx Timeout: %v", cfg.SlotTxTimeout)
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")
	log.Println("  AI API Key: [ЗАГРУЖЕН]")

	return &cfg, nil
}
