package config

import (
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Environment string
}

// IsDevelopment reports whether verbose error pages and API docs are exposed.
func (c AppConfig) IsDevelopment() bool {
	env := strings.ToLower(c.Environment)
	return env == "dev" || env == "development"
}

type MongoConfig struct {
	URI                    string
	Database               string
	Timeout                time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

type UploadConfig struct {
	Dir          string
	PublicPath   string
	MaxBytes     int64
	AllowedTypes []string
}

type RabbitMQConfig struct {
	URL             string
	MaxRetries      int
	RetryDelay      time.Duration
	ExchangeConfigs []ExchangeConfig
}

func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

type ExchangeConfig struct {
	Name       string
	Type       string // direct, topic, fanout, headers
	Durable    bool
	AutoDelete bool
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

type RateLimitConfig struct {
	CreateProductLimit int
	Window             time.Duration
}

type OutboxConfig struct {
	BatchSize int
	Interval  time.Duration
}

type HTTPConfig struct {
	Port          string
	BindInterface string
}

type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Upload    UploadConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	RabbitMQ  RabbitMQConfig
	Outbox    OutboxConfig
	HTTP      HTTPConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Endpoint    string
	ServiceName string
	Verbose     bool
}

func NewConfig() *Config {
	_ = godotenv.Load()

	app := AppConfig{
		Environment: getStringEnv("ENVIRONMENT", "production"),
	}

	return &Config{
		App: app,
		Mongo: MongoConfig{
			URI:                    mongoURI(),
			Database:               getStringEnv("MONGO_DATABASE", "products"),
			Timeout:                time.Duration(getIntEnv("MONGO_TIMEOUT", 10)) * time.Second,
			MaxPoolSize:            uint64(getIntEnv("MONGO_MAX_POOL_SIZE", 100)),
			MinPoolSize:            uint64(getIntEnv("MONGO_MIN_POOL_SIZE", 0)),
			ConnectTimeout:         time.Duration(getIntEnv("MONGO_CONNECT_TIMEOUT", 10)) * time.Second,
			ServerSelectionTimeout: time.Duration(getIntEnv("MONGO_SERVER_SELECTION_TIMEOUT", 5)) * time.Second,
		},
		Upload: UploadConfig{
			Dir:          getStringEnv("UPLOAD_DIR", "uploads"),
			PublicPath:   "/uploads",
			MaxBytes:     int64(getIntEnv("UPLOAD_MAX_BYTES", 500*1024)),
			AllowedTypes: getListEnv("UPLOAD_ALLOWED_TYPES", []string{"image/png", "image/jpeg", "image/jpg"}),
		},
		Redis: RedisConfig{
			URL:      getStringEnv("REDIS_URL", ""),
			Password: getStringEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			CreateProductLimit: getIntEnv("RATE_LIMIT_CREATE_PRODUCT", 30),
			Window:             time.Duration(getIntEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		Outbox: OutboxConfig{
			BatchSize: getIntEnv("OUTBOX_BATCH_SIZE", 100),
			Interval:  time.Duration(getIntEnv("OUTBOX_INTERVAL", 500)) * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Port:          getStringEnv("HTTP_PORT", "3000"),
			BindInterface: getStringEnv("HTTP_BIND_INTERFACE", "0.0.0.0"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:        getStringEnv("RABBITMQ_URL", ""),
			MaxRetries: getIntEnv("RABBITMQ_MAX_RETRIES", 3),
			RetryDelay: time.Duration(getIntEnv("RABBITMQ_RETRY_DELAY", 1)) * time.Second,
			ExchangeConfigs: []ExchangeConfig{
				{
					Name:       getStringEnv("RABBITMQ_EXCHANGE_NAME", "exchange.product"),
					Type:       getStringEnv("RABBITMQ_EXCHANGE_TYPE", "direct"),
					Durable:    getBoolEnv("RABBITMQ_EXCHANGE_DURABLE", true),
					AutoDelete: getBoolEnv("RABBITMQ_EXCHANGE_AUTO_DELETE", false),
				},
			},
		},
		Logger: LoggerConfig{
			Endpoint:    getStringEnv("OTEL_ENDPOINT", ""),
			ServiceName: getStringEnv("OTEL_SERVICE_NAME", "catalog"),
			Verbose:     app.IsDevelopment(),
		},
	}
}

// mongoURI prefers MONGO_URI and otherwise composes one from the
// MONGO_HOST, MONGO_PORT, MONGO_USERNAME and MONGO_PASSWORD parts.
func mongoURI() string {
	if uri := getStringEnv("MONGO_URI", ""); uri != "" {
		return uri
	}

	host := getStringEnv("MONGO_HOST", "localhost")
	port := getStringEnv("MONGO_PORT", "27017")
	return composeMongoURI(host, port, getStringEnv("MONGO_USERNAME", ""), getStringEnv("MONGO_PASSWORD", ""))
}

func composeMongoURI(host, port, username, password string) string {
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(host, port),
		Path:   "/",
	}
	if username != "" {
		u.User = url.UserPassword(username, password)
		u.RawQuery = "authSource=admin"
	}
	return u.String()
}
