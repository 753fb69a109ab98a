package config

// Config 配置主体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	DB           DBConfig           `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	MinIO        MinIOConfig        `mapstructure:"minio"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	IM           IMConfig           `mapstructure:"im"`
	OTP          OTPConfig          `mapstructure:"otp"`
	Notification NotificationConfig `mapstructure:"notification"`
	Log          LogConfig          `mapstructure:"log"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig 数据库配置, driver 为 mysql 或 sqlite
type DBConfig struct {
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	MaxIdle         int    `mapstructure:"max_idle"`
	MaxOpen         int    `mapstructure:"max_open"`
	MaxLifetime     int    `mapstructure:"max_lifetime"`
	SlowThresholdMs int    `mapstructure:"slow_threshold_ms"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	UsePublicLink    bool   `mapstructure:"use_public_link"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Producer ProducerConfig `mapstructure:"producer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ProducerConfig struct {
	RequiredAcks int `mapstructure:"required_acks"`
	MaxRetry     int `mapstructure:"max_retry"`
	Timeout      int `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
	Issuer      string `mapstructure:"issuer"`
}

// OTPConfig 邮箱验证码配置, 时间单位为秒
type OTPConfig struct {
	RequireVerified bool `mapstructure:"require_verified"`
	TTL             int  `mapstructure:"ttl"`
	ResendInterval  int  `mapstructure:"resend_interval"`
	MaxAttempts     int  `mapstructure:"max_attempts"`
	ResetTokenTTL   int  `mapstructure:"reset_token_ttl"`
}

// IMConfig 实时通讯配置, 时间单位为秒
type IMConfig struct {
	RequireToken bool  `mapstructure:"require_token"`
	WriteTimeout int   `mapstructure:"write_timeout"`
	PingPeriod   int   `mapstructure:"ping_period"`
	ReadLimit    int64 `mapstructure:"read_limit"`
	SendBuffer   int   `mapstructure:"send_buffer"`
	PageSize     int   `mapstructure:"page_size"`
}

// NotificationConfig 离线通知配置
type NotificationConfig struct {
	Workers       int                  `mapstructure:"workers"`
	QueueSize     int                  `mapstructure:"queue_size"`
	RetentionDays int                  `mapstructure:"retention_days"`
	Inbox         InboxGatewayConfig   `mapstructure:"inbox"`
	Kafka         KafkaGatewayConfig   `mapstructure:"kafka"`
	Webhook       WebhookGatewayConfig `mapstructure:"webhook"`
}

type InboxGatewayConfig struct {
	Enable bool `mapstructure:"enable"`
}

type KafkaGatewayConfig struct {
	Enable bool   `mapstructure:"enable"`
	Topic  string `mapstructure:"topic"`
}

type WebhookGatewayConfig struct {
	Enable  bool   `mapstructure:"enable"`
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"`
}

type LogConfig struct {
	Level           string `mapstructure:"level"`
	LogstashAddress string `mapstructure:"logstash_address"`
	LogstashIndex   string `mapstructure:"logstash_index"`
	LogstashToken   string `mapstructure:"logstash_token"`
}
