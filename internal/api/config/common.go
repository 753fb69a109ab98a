package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从 ./configs/config.yaml 与 RINGSIDE_* 环境变量加载配置
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("ringside")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg
	return nil
}

// Default 返回仅包含默认值的配置, 供测试与本地开发使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 100)
	v.SetDefault("database.max_lifetime", 60)
	v.SetDefault("database.slow_threshold_ms", 200)

	v.SetDefault("jwt.secret", "ringside")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("jwt.issuer", "Ringside")

	v.SetDefault("otp.require_verified", true)
	v.SetDefault("otp.ttl", 600)
	v.SetDefault("otp.resend_interval", 60)
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("otp.reset_token_ttl", 900)

	v.SetDefault("im.require_token", false)
	v.SetDefault("im.write_timeout", 10)
	v.SetDefault("im.ping_period", 30)
	v.SetDefault("im.read_limit", 64*1024)
	v.SetDefault("im.send_buffer", 256)
	v.SetDefault("im.page_size", 20)

	v.SetDefault("notification.workers", 4)
	v.SetDefault("notification.queue_size", 1024)
	v.SetDefault("notification.retention_days", 30)
	v.SetDefault("notification.inbox.enable", true)
	v.SetDefault("notification.kafka.topic", "ringside.push.notification")
	v.SetDefault("notification.webhook.timeout", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.logstash_index", "logstash-ringside")
}
