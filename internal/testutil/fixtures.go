package testutil

import (
	"testing"

	"pgprobe/pgprobe/internal/config"

	"github.com/sbowman/dotenv"
)

// ConfigBuilder creates a test configuration with optional overrides
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new builder with default values
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: config.Config{
		DBUser: "probe",
		DBPass: "secret",
		DBHost: "localhost",
		DBPort: "5432",
		DBName: "probe_test",
	}.Present(config.EnvUser, config.EnvPassword, config.EnvHost, config.EnvPort, config.EnvName)}
}

// Without leaves the given settings unset, as if the variable were absent.
func (b *ConfigBuilder) Without(keys ...string) *ConfigBuilder {
	b.cfg = b.cfg.Absent(keys...)
	return b
}

func (b *ConfigBuilder) WithUser(user string) *ConfigBuilder {
	b.cfg.DBUser = user
	return b
}

func (b *ConfigBuilder) WithPassword(pass string) *ConfigBuilder {
	b.cfg.DBPass = pass
	return b
}

func (b *ConfigBuilder) WithHost(host string) *ConfigBuilder {
	b.cfg.DBHost = host
	return b
}

func (b *ConfigBuilder) WithPort(port string) *ConfigBuilder {
	b.cfg.DBPort = port
	return b
}

func (b *ConfigBuilder) WithName(name string) *ConfigBuilder {
	b.cfg.DBName = name
	return b
}

func (b *ConfigBuilder) WithDriver(driver string) *ConfigBuilder {
	b.cfg.Driver = driver
	return b
}

func (b *ConfigBuilder) WithSSLMode(mode string) *ConfigBuilder {
	b.cfg.SSLMode = mode
	return b
}

// Build returns the Config
func (b *ConfigBuilder) Build() config.Config {
	return b.cfg
}

// UnreachableConfig points at a local port nothing listens on, so connecting
// fails fast with "connection refused".
func UnreachableConfig() config.Config {
	return NewConfigBuilder().
		WithHost("127.0.0.1").
		WithPort("1").
		WithSSLMode("disable").
		Build()
}

// DBConfig returns the test database configuration from TEST_DB_* variables,
// skipping the test when TEST_DB_HOST is not set.
func DBConfig(t testing.TB) config.Config {
	t.Helper()
	dotenv.Load()

	host := dotenv.GetString("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set; skipping database test")
	}

	return config.Config{
		DBUser:  dotenv.GetString("TEST_DB_USER"),
		DBPass:  dotenv.GetString("TEST_DB_PASSWORD"),
		DBHost:  host,
		DBPort:  dotenv.GetString("TEST_DB_PORT"),
		DBName:  dotenv.GetString("TEST_DB_NAME"),
		SSLMode: dotenv.GetString("TEST_DB_SSLMODE"),
	}.Present(config.EnvUser, config.EnvPassword, config.EnvHost, config.EnvPort, config.EnvName)
}

// SetDBEnv sets the five database variables for the duration of the test.
// Empty values are set as empty strings.
func SetDBEnv(t *testing.T, cfg config.Config) {
	t.Helper()
	t.Setenv(config.EnvUser, cfg.DBUser)
	t.Setenv(config.EnvPassword, cfg.DBPass)
	t.Setenv(config.EnvHost, cfg.DBHost)
	t.Setenv(config.EnvPort, cfg.DBPort)
	t.Setenv(config.EnvName, cfg.DBName)
}
