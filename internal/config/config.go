package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Exchange ExchangeConfig
	Mongo    MongoConfig
	Cache    CacheConfig
	Notifier NotifierConfig
	Runtime  RuntimeConfig

	Trading *Provider
}

type ExchangeConfig struct {
	BaseURL   string
	StreamURL string
	ApiKey    string
	Secret    string
}

type MongoConfig struct {
	URI      string
	Database string
}

type CacheConfig struct {
	Path string
}

type NotifierConfig struct {
	SlackWebhookURL string
	Channel         string
}

type RuntimeConfig struct {
	Log         LogConfig
	MetricsAddr string
	WatchConfig bool
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

var envPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// Load reads configs/config.yaml (or the file/directory given by path).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		v.SetConfigFile(path)
	} else {
		if path == "" {
			path = "configs"
		}
		v.AddConfigPath(path)
		v.SetConfigName("config")
	}
	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	cfg.Exchange = ExchangeConfig{
		BaseURL:   v.GetString("exchange.base_url"),
		StreamURL: v.GetString("exchange.stream_url"),
		ApiKey:    envSub(v, "exchange.api_key"),
		Secret:    envSub(v, "exchange.secret"),
	}

	cfg.Mongo = MongoConfig{
		URI:      envSub(v, "mongo.uri"),
		Database: v.GetString("mongo.database"),
	}

	cfg.Cache = CacheConfig{
		Path: v.GetString("cache.path"),
	}

	cfg.Notifier = NotifierConfig{
		SlackWebhookURL: envSub(v, "notifier.slack_webhook_url"),
		Channel:         v.GetString("notifier.channel"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: LogConfig{
			Level:      v.GetString("runtime.log.level"),
			Format:     v.GetString("runtime.log.format"),
			File:       v.GetString("runtime.log.file"),
			MaxSize:    v.GetInt("runtime.log.max_size"),
			MaxBackups: v.GetInt("runtime.log.max_backups"),
			MaxAge:     v.GetInt("runtime.log.max_age"),
			Compress:   v.GetBool("runtime.log.compress"),
		},
		MetricsAddr: v.GetString("runtime.metrics_addr"),
		WatchConfig: v.GetBool("runtime.watch_config"),
	}

	trading, err := NewProvider(v)
	if err != nil {
		return nil, err
	}
	cfg.Trading = trading

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("exchange.base_url", "https://api.binance.com")
	v.SetDefault("exchange.stream_url", "wss://stream.binance.com:9443")
	v.SetDefault("mongo.database", "trailing-trade")
	v.SetDefault("cache.path", "data/cache.db")
	v.SetDefault("runtime.log.level", "info")
	v.SetDefault("runtime.log.format", "text")
	v.SetDefault("runtime.log.file", "stdout")
	v.SetDefault("runtime.log.max_size", 100)
	v.SetDefault("runtime.log.max_backups", 5)
	v.SetDefault("runtime.log.max_age", 14)
	v.SetDefault("runtime.metrics_addr", ":9090")
	v.SetDefault("runtime.watch_config", true)
	v.SetDefault("feature_toggle.notify_debug", false)
	v.SetDefault("candles.interval", "1m")
	v.SetDefault("candles.limit", 100)
	v.SetDefault("buy.limit_percentage", 1.021)
	v.SetDefault("buy.ath_restriction.candles.interval", "1d")
	v.SetDefault("buy.ath_restriction.candles.limit", 30)
	v.SetDefault("buy.ath_restriction.restriction_percentage", 0.9)
	v.SetDefault("sell.limit_percentage", 0.979)
}

func envSub(v *viper.Viper, key string) string {
	val := v.GetString(key)
	if val == "" {
		return ""
	}

	return envPattern.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
