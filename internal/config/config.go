package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/streamoverlay/relay/pkg/config"
	"github.com/streamoverlay/relay/pkg/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Twitch    TwitchConfig
	Kick      KickConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBuffer     int           `mapstructure:"send_buffer"`
}

type TwitchConfig struct {
	Username   string
	OAuthToken string `mapstructure:"oauth_token"`
}

type KickConfig struct {
	APIBase      string        `mapstructure:"api_base"`
	WSURL        string        `mapstructure:"ws_url"`
	ReconnectMin time.Duration `mapstructure:"reconnect_min"`
	ReconnectMax time.Duration `mapstructure:"reconnect_max"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer", 256)
	v.SetDefault("twitch.username", "")
	v.SetDefault("twitch.oauth_token", "")
	v.SetDefault("kick.api_base", "https://kick.com")
	v.SetDefault("kick.ws_url", "wss://ws-us2.pusher.com/app/eb1d5f283081a78b932c?protocol=7&client=js&version=7.6.0&flash=false")
	v.SetDefault("kick.reconnect_min", "1s")
	v.SetDefault("kick.reconnect_max", "1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "chat-relay")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("twitch.username", "TWITCH_USERNAME")
	v.BindEnv("twitch.oauth_token", "TWITCH_OAUTH_TOKEN")
	v.BindEnv("kick.api_base", "KICK_API_BASE")
	v.BindEnv("kick.ws_url", "KICK_WS_URL")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Kick.ReconnectMin = parseDuration(v, "kick.reconnect_min", time.Second)
	cfg.Kick.ReconnectMax = parseDuration(v, "kick.reconnect_max", time.Minute)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
