package config

import (
	"flag"
	"fmt"
)

// parseFlags overlays command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-base string  route base path
//	-d string     PostgreSQL DSN
//	-s string     token signing secret
//	-ttl duration session validity (e.g. "8h")
//	-redis string Redis address for the shared session cache
//	-amqp string  AMQP URL for audit events
//	-log string   log level
//	-admin string username to promote to admin at startup
func parseFlags(c *Config, args []string) error {
	fs := flag.NewFlagSet("quora", flag.ContinueOnError)

	fs.StringVar(&c.HTTPAddr, "a", c.HTTPAddr, "address and port to run server")
	fs.StringVar(&c.BasePath, "base", c.BasePath, "base path for all routes")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN")
	fs.StringVar(&c.Secret, "s", c.Secret, "token signing secret")
	fs.DurationVar(&c.SessionMaxAge, "ttl", c.SessionMaxAge, "session validity")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "redis address")
	fs.StringVar(&c.AMQPURL, "amqp", c.AMQPURL, "amqp url")
	fs.StringVar(&c.LogLevel, "log", c.LogLevel, "log level")
	fs.StringVar(&c.AdminUsername, "admin", c.AdminUsername, "username to promote to admin")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
