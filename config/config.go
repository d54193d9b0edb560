package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Server Server
	Logger Logger

	// Realtime client configuration
	Realtime Realtime
	Store    Store

	// Dev hub configuration
	Redis Redis
	JWT   JWT
	WS    WS
}

// Server is the configuration for the dev hub HTTP server
type Server struct {
	Host string `env:"HUB_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"HUB_PORT" envDefault:"8082"`
	Mode string `env:"HUB_MODE" envDefault:"release"`
}

// Logger is the configuration for the logger
type Logger struct {
	Level        string `env:"LOGGER_LEVEL" envDefault:"info"`
	Mode         string `env:"LOGGER_MODE" envDefault:"production"`
	Encoding     string `env:"LOGGER_ENCODING" envDefault:"json"`
	ColorEnabled bool   `env:"LOGGER_COLOR_ENABLED" envDefault:"true"`
}

// Realtime is the configuration for the realtime notification client
type Realtime struct {
	// Origin is the HTTP origin of the notification service; the realtime
	// scheme (ws/wss) is derived from it.
	Origin      string `env:"REALTIME_ORIGIN" envDefault:"http://localhost:8082"`
	ChannelPath string `env:"REALTIME_CHANNEL_PATH" envDefault:"/realtime"`
	Token       string `env:"REALTIME_TOKEN"`

	HeartbeatInterval time.Duration `env:"REALTIME_HEARTBEAT_INTERVAL" envDefault:"30s"`
	PongWait          time.Duration `env:"REALTIME_PONG_WAIT" envDefault:"60s"`
	WriteWait         time.Duration `env:"REALTIME_WRITE_WAIT" envDefault:"10s"`
	HandshakeTimeout  time.Duration `env:"REALTIME_HANDSHAKE_TIMEOUT" envDefault:"10s"`

	ReconnectBaseDelay   time.Duration `env:"REALTIME_RECONNECT_BASE_DELAY" envDefault:"1s"`
	ReconnectMaxDelay    time.Duration `env:"REALTIME_RECONNECT_MAX_DELAY" envDefault:"30s"`
	ReconnectMaxAttempts int           `env:"REALTIME_RECONNECT_MAX_ATTEMPTS" envDefault:"5"`
}

// Store is the configuration for the notification store
type Store struct {
	MaxEntries int `env:"STORE_MAX_ENTRIES" envDefault:"50"`
}

// Redis is the configuration for the dev hub's redis event source
// Note: Only standalone mode is supported
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	UseTLS   bool   `env:"REDIS_USE_TLS" envDefault:"false"`

	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"10"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"100"`
	PoolTimeout  time.Duration `env:"REDIS_POOL_TIMEOUT" envDefault:"4s"`
}

// JWT is the configuration for dev hub token validation. An empty secret
// makes the hub permissive.
type JWT struct {
	SecretKey string `env:"JWT_SECRET_KEY"`
}

// WS is the configuration for dev hub websocket connections
type WS struct {
	PingInterval   time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	PongWait       time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	WriteWait      time.Duration `env:"WS_WRITE_WAIT" envDefault:"10s"`
	MaxConnections int           `env:"WS_MAX_CONNECTIONS" envDefault:"10000"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		fmt.Printf("Error loading configuration: %v", err)
		return nil, err
	}
	return cfg, nil
}
