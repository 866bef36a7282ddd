package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

var allowedFlags = []string{
	"-a", "-g", "-d", "-r", "-w", "-n", "-s", "-t", "-v", "-k", "-i", "-b", "-l", "-u", "-p",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-r string   Redis address
//	-w string   Redis password
//	-n int      Redis database number
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-v int      refresh token validity, minutes
//	-k int      key pair TTL, seconds
//	-i int      refresh idle window, seconds
//	-b int      RSA key size, bits
//	-l string   log level (debug, info, warn, error)
//	-u string   bootstrap account username
//	-p string   bootstrap account password
//
// os.Args is filtered with flagx.FilterArgs first, so flags meant for other
// components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], allowedFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve REST on")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to serve gRPC on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPassword, "w", config.RedisPassword, "redis password")
	fs.IntVar(&config.RedisDB, "n", config.RedisDB, "redis database")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	flagx.DurationVar(fs, &config.AccessTokenValidityDuration, "t", time.Minute, "access_token_validity_duration (in minutes)")
	flagx.DurationVar(fs, &config.RefreshTokenValidityDuration, "v", time.Minute, "refresh_token_validity_duration (in minutes)")
	flagx.DurationVar(fs, &config.RSATTL, "k", time.Second, "rsa_ttl (in seconds)")
	flagx.DurationVar(fs, &config.RefreshTTL, "i", time.Second, "refresh_ttl (in seconds)")

	fs.IntVar(&config.RSAKeyBits, "b", config.RSAKeyBits, "RSA key size in bits")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.BootstrapUsername, "u", config.BootstrapUsername, "bootstrap account username")
	fs.StringVar(&config.BootstrapPassword, "p", config.BootstrapPassword, "bootstrap account password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
