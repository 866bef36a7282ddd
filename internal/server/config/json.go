package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration,
// so both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	RedisAddr                    string         `json:"redis_addr"`
	RedisPassword                string         `json:"redis_password"`
	RedisDB                      int            `json:"redis_db"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	RSATTL                       timex.Duration `json:"rsa_ttl"`
	RefreshTTL                   timex.Duration `json:"refresh_ttl"`
	RSAKeyBits                   int            `json:"rsa_key_bits"`
	LogLevel                     string         `json:"log_level"`
	BootstrapUsername            string         `json:"bootstrap_username"`
	BootstrapPassword            string         `json:"bootstrap_password"`
}

// parseJson overlays a JSON file onto config. The path comes from -c/-config
// or the CONFIG environment variable; with neither, nothing is loaded.
// Keys missing from the file keep their current values. An unreadable file
// or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.RedisAddr = c.RedisAddr
	config.RedisPassword = c.RedisPassword
	config.RedisDB = c.RedisDB
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.RSATTL = c.RSATTL.Duration
	config.RefreshTTL = c.RefreshTTL.Duration
	config.RSAKeyBits = c.RSAKeyBits
	config.LogLevel = c.LogLevel
	config.BootstrapUsername = c.BootstrapUsername
	config.BootstrapPassword = c.BootstrapPassword
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:             c.EndpointAddrHTTP,
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		DatabaseDSN:                  c.DatabaseDSN,
		RedisAddr:                    c.RedisAddr,
		RedisPassword:                c.RedisPassword,
		RedisDB:                      c.RedisDB,
		SecretKey:                    c.SecretKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		RSATTL:                       timex.Duration{Duration: c.RSATTL},
		RefreshTTL:                   timex.Duration{Duration: c.RefreshTTL},
		RSAKeyBits:                   c.RSAKeyBits,
		LogLevel:                     c.LogLevel,
		BootstrapUsername:            c.BootstrapUsername,
		BootstrapPassword:            c.BootstrapPassword,
	}
}
