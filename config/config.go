// config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит полную конфигурацию сервиса Staunton Trade Chat
type Config struct {
	// Адрес HTTP-сервера (REST API + WebSocket)
	HTTPAddr string

	// Конфигурация подключения к базе данных
	DB DatabaseConfig

	// Ключ шифрования сообщений в БД (ровно 32 байта для AES-256-GCM)
	StorageKey string

	// Окно активности для эвристики "онлайн" в общем чате
	PresenceWindow time.Duration

	// Конфигурация шины событий реального времени
	Bus BusConfig

	// Конфигурация регулярного расчета активности
	Stats StatsConfig

	// Включает симулированный источник рыночных событий
	// (используется в разработке, пока нет реального фида)
	SimulateMarketFeed bool
}

// DatabaseConfig содержит настройки подключения к базе данных
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// BusConfig содержит параметры переподключения шины событий
type BusConfig struct {
	// Начальная задержка перед повторным подключением
	BaseDelay time.Duration

	// Множитель экспоненциального роста задержки
	Multiplier float64

	// Максимальная задержка между попытками
	MaxDelay time.Duration

	// Максимальное число попыток переподключения подряд
	MaxRetries int

	// Границы интервала эмиссии симулированного источника
	SimulatedMinInterval time.Duration
	SimulatedMaxInterval time.Duration
}

// StatsConfig содержит настройки регулярного расчета активности
type StatsConfig struct {
	// Интервал запуска расчета
	RunInterval time.Duration

	// Включение/отключение расчета по расписанию
	Enabled bool

	// Включение подробного логирования
	EnableDetailedLogging bool
}

// Значения конфигурации по умолчанию
var DefaultConfig = Config{
	HTTPAddr: ":8080",
	DB: DatabaseConfig{
		Driver:   "mysql",
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "",
		DBName:   "staunton_chat",
	},
	StorageKey:     "staunton-dev-32-byte-storage-key",
	PresenceWindow: 5 * time.Minute,
	Bus: BusConfig{
		BaseDelay:            1 * time.Second,
		Multiplier:           2.0,
		MaxDelay:             30 * time.Second,
		MaxRetries:           10,
		SimulatedMinInterval: 3 * time.Second,
		SimulatedMaxInterval: 8 * time.Second,
	},
	Stats: StatsConfig{
		RunInterval:           1 * time.Hour,
		Enabled:               true,
		EnableDetailedLogging: true,
	},
	SimulateMarketFeed: true,
}

// DSN формирует строку подключения к MySQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Load читает конфигурацию из переменных окружения.
// Файл .env подхватывается автоматически, если присутствует.
func Load() Config {
	// Отсутствие .env не считается ошибкой
	if err := godotenv.Load(); err == nil {
		log.Println("✅ Конфигурация дополнена из файла .env")
	}

	cfg := DefaultConfig

	cfg.HTTPAddr = envString("HTTP_ADDR", cfg.HTTPAddr)

	cfg.DB.Host = envString("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = envInt("DB_PORT", cfg.DB.Port)
	cfg.DB.User = envString("DB_USER", cfg.DB.User)
	cfg.DB.Password = envString("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.DBName = envString("DB_NAME", cfg.DB.DBName)

	cfg.StorageKey = envString("STORAGE_KEY", cfg.StorageKey)
	if len(cfg.StorageKey) != 32 {
		log.Printf("⚠️ STORAGE_KEY должен содержать ровно 32 байта, используется ключ по умолчанию")
		cfg.StorageKey = DefaultConfig.StorageKey
	}

	cfg.PresenceWindow = envDuration("PRESENCE_WINDOW", cfg.PresenceWindow)

	cfg.Bus.BaseDelay = envDuration("BUS_BASE_DELAY", cfg.Bus.BaseDelay)
	cfg.Bus.MaxDelay = envDuration("BUS_MAX_DELAY", cfg.Bus.MaxDelay)
	cfg.Bus.MaxRetries = envInt("BUS_MAX_RETRIES", cfg.Bus.MaxRetries)

	cfg.Stats.RunInterval = envDuration("STATS_RUN_INTERVAL", cfg.Stats.RunInterval)
	cfg.Stats.Enabled = envBool("STATS_ENABLED", cfg.Stats.Enabled)

	cfg.SimulateMarketFeed = envBool("SIMULATE_MARKET_FEED", cfg.SimulateMarketFeed)

	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ Неверное значение %s=%q, используется %d", key, v, fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("⚠️ Неверное значение %s=%q, используется %v", key, v, fallback)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ Неверное значение %s=%q, используется %v", key, v, fallback)
		return fallback
	}
	return d
}
