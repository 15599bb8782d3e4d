package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sbowman/dotenv"
)

// Environment keys read by Load.
const (
	EnvUser     = "DB_USER"
	EnvPassword = "DB_PASSWORD"
	EnvHost     = "DB_HOST"
	EnvPort     = "DB_PORT"
	EnvName     = "DB_NAME"
	EnvSSLMode  = "DB_SSLMODE"
	EnvDriver   = "DB_DRIVER"
	EnvDomain   = "DOMAIN"
	EnvBindPort = "PORT"
)

const (
	Scheme  = "postgresql"
	EnvFile = ".env"
)

// dbKeys are the five connection settings, in URL order.
var dbKeys = []string{EnvUser, EnvPassword, EnvHost, EnvPort, EnvName}

type Config struct {
	DBUser string
	DBPass string
	DBHost string
	DBPort string
	DBName string

	// Driver-side options, not part of URL.
	SSLMode string
	Driver  string

	Domain string
	Port   string

	// set marks database settings that were present, even if empty.
	set uint8
}

// Load populates the environment from a .env file in the working directory,
// when one exists, and reads the configuration from it. Variables already
// present in the environment are not overridden.
func Load() (Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return FromEnv(), fmt.Errorf("load env file %s: %w", EnvFile, err)
	}

	return FromEnv(), nil
}

// LoadFile is Load with an explicit key=value file. Variables already present
// in the environment are not overridden.
func LoadFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil {
		return Config{}, fmt.Errorf("load env file %s: %w", path, err)
	}

	return FromEnv(), nil
}

// FromEnv reads the current process environment. Absent values are left empty.
func FromEnv() Config {
	cfg := Config{
		DBUser:  dotenv.GetString(EnvUser),
		DBPass:  dotenv.GetString(EnvPassword),
		DBHost:  dotenv.GetString(EnvHost),
		DBPort:  dotenv.GetString(EnvPort),
		DBName:  dotenv.GetString(EnvName),
		SSLMode: dotenv.GetString(EnvSSLMode),
		Driver:  dotenv.GetString(EnvDriver),
		Domain:  dotenv.GetString(EnvDomain),
		Port:    dotenv.GetString(EnvBindPort),
	}
	for _, key := range dbKeys {
		if _, ok := os.LookupEnv(key); ok {
			cfg.set |= bit(key)
		}
	}
	return cfg
}

func bit(key string) uint8 {
	for i, k := range dbKeys {
		if k == key {
			return 1 << i
		}
	}
	return 0
}

// Present marks database settings as set, so an empty value counts as given.
func (cfg Config) Present(keys ...string) Config {
	for _, key := range keys {
		cfg.set |= bit(key)
	}
	return cfg
}

// Absent clears database settings and marks them as not set.
func (cfg Config) Absent(keys ...string) Config {
	for _, key := range keys {
		cfg.set &^= bit(key)
		switch key {
		case EnvUser:
			cfg.DBUser = ""
		case EnvPassword:
			cfg.DBPass = ""
		case EnvHost:
			cfg.DBHost = ""
		case EnvPort:
			cfg.DBPort = ""
		case EnvName:
			cfg.DBName = ""
		}
	}
	return cfg
}

// Missing reports which of the five database variables are absent from cfg,
// by environment key, in URL order. A setting is absent when it is empty and
// was never marked present.
func (cfg Config) Missing() []string {
	var missing []string
	for _, f := range []struct{ key, val string }{
		{EnvUser, cfg.DBUser},
		{EnvPassword, cfg.DBPass},
		{EnvHost, cfg.DBHost},
		{EnvPort, cfg.DBPort},
		{EnvName, cfg.DBName},
	} {
		if f.val == "" && cfg.set&bit(f.key) == 0 {
			missing = append(missing, f.key)
		}
	}
	return missing
}

func (cfg Config) BindAddr() string {
	return fmt.Sprintf("%s:%s", cfg.Domain, cfg.Port)
}

// URL is the connection URL, values substituted literally.
func (cfg Config) URL() string {
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s",
		Scheme, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// Redacted is URL with the password masked.
func (cfg Config) Redacted() string {
	pass := cfg.DBPass
	if pass != "" {
		pass = "xxxxx"
	}
	redacted := cfg
	redacted.DBPass = pass
	return redacted.URL()
}
