package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const envPrefix = "QUORA_"

// parseEnv overlays QUORA_* variables. Unset or empty variables keep the
// current value.
func parseEnv(c *Config) error {
	envStr(&c.HTTPAddr, "HTTP_ADDR")
	envStr(&c.BasePath, "BASE_PATH")
	envStr(&c.DatabaseDSN, "DATABASE_DSN")
	envStr(&c.Secret, "SECRET")
	envStr(&c.Issuer, "ISSUER")
	envStr(&c.RedisAddr, "REDIS_ADDR")
	envStr(&c.RedisPassword, "REDIS_PASSWORD")
	envStr(&c.AMQPURL, "AMQP_URL")
	envStr(&c.AMQPQueue, "AMQP_QUEUE")
	envStr(&c.LogLevel, "LOG_LEVEL")
	envStr(&c.LogFormat, "LOG_FORMAT")
	envStr(&c.AdminUsername, "ADMIN_USERNAME")

	for key, dst := range map[string]*time.Duration{
		"SESSION_MAX_AGE":  &c.SessionMaxAge,
		"CACHE_TTL":        &c.CacheTTL,
		"SHUTDOWN_TIMEOUT": &c.ShutdownTimeout,
	} {
		if err := envDuration(dst, key); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*int{
		"CACHE_MAX_SIZE": &c.CacheMaxSize,
		"REDIS_DB":       &c.RedisDB,
	} {
		if err := envInt(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func envStr(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) error {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	*dst = d
	return nil
}

func envInt(dst *int, key string) error {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	*dst = n
	return nil
}
