package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/flagx"
)

// parseFlags overlays command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN, empty for the in-memory store
//	-s string   JWT HMAC secret key
//	-t dur      access credential lifetime (integer = minutes)
//	-r dur      refresh credential lifetime (integer = minutes)
//	-f string   frontend origin allowed by CORS
//	-l string   log level
//	-w dur      sweep interval (integer = minutes, 0 disables)
//	-u -p -b -g -e   S3 user, password, bucket, region, endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-f", "-l", "-w", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	flagx.DurationVar(fs, &config.AccessTokenValidityDuration, "t", time.Minute, "access token lifetime (minutes or duration)")
	flagx.DurationVar(fs, &config.RefreshTokenValidityDuration, "r", time.Minute, "refresh token lifetime (minutes or duration)")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend origin")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	flagx.DurationVar(fs, &config.SweepInterval, "w", time.Minute, "expired refresh token sweep interval")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
