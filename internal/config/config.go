package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	ChangeFeedPostgres = "postgres"
	ChangeFeedRedis    = "redis"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Tracker  TrackerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	RouteStatusTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

// TrackerConfig - настройки view model статусов маршрутов
type TrackerConfig struct {
	ChangeFeed           string
	RefreshTimeout       time.Duration
	HistoryLimit         int
	ListenerMinReconnect time.Duration
	ListenerMaxReconnect time.Duration
	SSEKeepAlive         time.Duration
}

// Load reads an optional .env file and the process environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			RouteStatusTTL: time.Duration(v.GetInt("ROUTE_STATUS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
		},
		Tracker: TrackerConfig{
			ChangeFeed:           v.GetString("TRACKER_CHANGE_FEED"),
			RefreshTimeout:       time.Duration(v.GetInt("TRACKER_REFRESH_TIMEOUT")) * time.Millisecond,
			HistoryLimit:         v.GetInt("TRACKER_HISTORY_LIMIT"),
			ListenerMinReconnect: time.Duration(v.GetInt("TRACKER_LISTENER_MIN_RECONNECT")) * time.Millisecond,
			ListenerMaxReconnect: time.Duration(v.GetInt("TRACKER_LISTENER_MAX_RECONNECT")) * time.Millisecond,
			SSEKeepAlive:         time.Duration(v.GetInt("TRACKER_SSE_KEEPALIVE")) * time.Second,
		},
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "transport"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Cache.RouteStatusTTL == 0 {
		c.Cache.RouteStatusTTL = 10 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "route-status-viewers"
	}
	if c.Worker.StreamReadTimeout == 0 {
		c.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
	if c.Tracker.ChangeFeed == "" {
		c.Tracker.ChangeFeed = ChangeFeedPostgres
	}
	if c.Tracker.RefreshTimeout == 0 {
		c.Tracker.RefreshTimeout = 10 * time.Second
	}
	if c.Tracker.HistoryLimit == 0 {
		c.Tracker.HistoryLimit = 50
	}
	if c.Tracker.ListenerMinReconnect == 0 {
		c.Tracker.ListenerMinReconnect = 10 * time.Second
	}
	if c.Tracker.ListenerMaxReconnect == 0 {
		c.Tracker.ListenerMaxReconnect = time.Minute
	}
	if c.Tracker.SSEKeepAlive == 0 {
		c.Tracker.SSEKeepAlive = 15 * time.Second
	}
}

func (c *Config) validate() error {
	switch c.Tracker.ChangeFeed {
	case ChangeFeedPostgres, ChangeFeedRedis:
	default:
		return fmt.Errorf("invalid TRACKER_CHANGE_FEED %q: expected %q or %q",
			c.Tracker.ChangeFeed, ChangeFeedPostgres, ChangeFeedRedis)
	}
	if c.Tracker.ListenerMaxReconnect < c.Tracker.ListenerMinReconnect {
		return fmt.Errorf("TRACKER_LISTENER_MAX_RECONNECT must not be less than TRACKER_LISTENER_MIN_RECONNECT")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN is shared by the sqlx pool and the notification listener.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.DBName,
		d.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
