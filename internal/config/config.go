package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Topics y grupo de consumo del servicio. Los tres topics comparten grupo
// para coordinar los offsets.
const (
	SenderTopic   = "txn-sender-events"
	ReceiverTopic = "txn-receiver-events"
	RewardTopic   = "reward-generated-events"
	ConsumerGroup = "notification-service"
)

type Config struct {
	SQLitePath  string
	PostgresDSN string
	MongoURI    string
	MongoDB     string
	// StorageBackend selecciona el repositorio: sqlite | postgres | mongodb
	StorageBackend string

	RedisAddr    string
	KafkaBrokers []string
	UseKafka     bool

	ClickHouseAddr string
	ClickHouseDB   string
	RelayPeriod    time.Duration
	RelayLimit     int

	DispatchTimeout     time.Duration
	DispatchMaxInFlight int
	EmailDomain         string

	CacheTTL time.Duration
	HTTPPort string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return v
		}
		return fallback
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		SQLitePath:     getEnv("SQLITE_PATH", "./notifly.db"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDB:        getEnv("MONGO_DB", "notifly"),
		StorageBackend: getEnv("STORAGE_BACKEND", "sqlite"),

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: kafkaBrokers,
		UseKafka:     getEnv("USE_KAFKA", "false") == "true",

		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "notifly"),
		RelayPeriod:    time.Duration(getInt("RELAY_PERIOD_MS", 5000)) * time.Millisecond,
		RelayLimit:     getInt("RELAY_LIMIT", 100),

		DispatchTimeout:     time.Duration(getInt("DISPATCH_TIMEOUT_MS", 5000)) * time.Millisecond,
		DispatchMaxInFlight: getInt("DISPATCH_MAX_IN_FLIGHT", 32),
		EmailDomain:         getEnv("EMAIL_DOMAIN", "example.com"),

		CacheTTL: 5 * time.Minute,
		HTTPPort: getEnv("HTTP_PORT", "8080"),
	}
}
