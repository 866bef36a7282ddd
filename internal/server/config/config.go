// Package config handles configuration for the auth server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the auth server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses for REST and gRPC.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps accounts in memory.
//   - RedisAddr / RedisPassword / RedisDB: cache backend. Empty RedisAddr
//     keeps key pairs, sessions and rotation locks in process memory.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - RSATTL: how long an issued key pair stays usable.
//   - RefreshTTL: idle window after which a refresh record is revoked.
//   - BootstrapUsername / BootstrapPassword: optional manager account created
//     on start.
type Config struct {
	EndpointAddrHTTP             string
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	RedisAddr                    string
	RedisPassword                string
	RedisDB                      int
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	RSATTL                       time.Duration
	RefreshTTL                   time.Duration
	RSAKeyBits                   int
	LogLevel                     string
	BootstrapUsername            string
	BootstrapPassword            string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.RefreshTokenValidityDuration = 14 * 24 * time.Hour
	c.RSATTL = 5 * time.Minute
	c.RefreshTTL = 24 * time.Hour
	c.RSAKeyBits = 2048
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
