package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/ipaynotify/ipaynotify/pkg/logger"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every environment-driven setting. Only this struct may be
// used to read configuration; no direct env/ini access elsewhere.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"ipaynotify"`
	AppDebug bool   `env:"APP_DEBUG" default:"1"`

	HttpListenAddr         string `env:"HTTP_LISTEN_ADDR" validation:"mustExists"`
	HttpServerReadTimeout  int    `env:"HTTP_SERVER_READ_TIMEOUT"`
	HttpServerWriteTimeout int    `env:"HTTP_SERVER_WRITE_TIMEOUT"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel []string `env:"LOG_LEVEL"`

	// SMS gateway providers, best-scoring one is used per send.
	SmsProviderPrimaryUrl   string `env:"SMS_PROVIDER_PRIMARY_URL"`
	SmsProviderSecondaryUrl string `env:"SMS_PROVIDER_SECONDARY_URL"`
	SmsProviderBackupUrl    string `env:"SMS_PROVIDER_BACKUP_URL"`

	// Numbering plan of the serviced country. Defaults follow the Ghanaian
	// plan: local numbers written with a leading 0 trunk digit.
	SmsCountryCode string `env:"SMS_COUNTRY_CODE" default:"233"`
	SmsTrunkPrefix string `env:"SMS_TRUNK_PREFIX" default:"0"`
	SmsSenderID    string `env:"SMS_SENDER_ID" default:"IpayNotify"`
	SmsMaxBodyLen  int    `env:"SMS_MAX_BODY_LEN" default:"320"`

	// Branding fallbacks used when a customer has no vendor record yet.
	DefaultBusinessName  string `env:"DEFAULT_BUSINESS_NAME" default:"IpayNotify"`
	DefaultBusinessPhone string `env:"DEFAULT_BUSINESS_PHONE" default:"0240000000"`
	CurrencyCode         string `env:"CURRENCY_CODE" default:"GHS"`

	// Minimum gap between two reminder sends of the same kind to the same
	// customer. Zero disables the dedupe window.
	ReminderDedupeWindow time.Duration `env:"REMINDER_DEDUPE_WINDOW" default:"6h"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}
