package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgprobe/pgprobe/internal/config"
	"pgprobe/pgprobe/internal/testutil"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvUser, config.EnvPassword, config.EnvHost, config.EnvPort, config.EnvName, config.EnvSSLMode, config.EnvDriver} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	// A nil slice makes cobra fall back to os.Args.
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_MissingConfig(t *testing.T) {
	clearEnv(t)

	out, err := execute(t)

	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("Expected errCheckFailed, got %v", err)
	}
	want := "Error creating database engine: create engine: missing database setting: DB_USER, DB_PASSWORD, DB_HOST, DB_PORT, DB_NAME\n"
	if out != want {
		t.Errorf("Expected output %q, got %q", want, out)
	}
}

func TestRoot_Unreachable(t *testing.T) {
	clearEnv(t)
	testutil.SetDBEnv(t, testutil.UnreachableConfig())
	t.Setenv(config.EnvSSLMode, "disable")

	out, err := execute(t)

	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("Expected errCheckFailed, got %v", err)
	}
	if !strings.HasPrefix(out, "Successfully created engine for database: probe_test\nConnection failed: ") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRoot_EnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "probe.env")
	content := "DB_USER=probe\nDB_PASSWORD=secret\nDB_HOST=127.0.0.1\nDB_PORT=1\nDB_NAME=from_file\nDB_SSLMODE=disable\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--env-file", path)

	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("Expected errCheckFailed, got %v", err)
	}
	if !strings.HasPrefix(out, "Successfully created engine for database: from_file\n") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestRoot_EnvFileMissing(t *testing.T) {
	clearEnv(t)

	out, err := execute(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"))

	if err == nil || errors.Is(err, errCheckFailed) {
		t.Fatalf("Expected env file error, got %v", err)
	}
	if out != "" {
		t.Errorf("Expected no check output, got %q", out)
	}
}

func TestRoot_Database(t *testing.T) {
	cfg := testutil.DBConfig(t)
	clearEnv(t)
	testutil.SetDBEnv(t, cfg)
	if cfg.SSLMode != "" {
		t.Setenv(config.EnvSSLMode, cfg.SSLMode)
	}

	out, err := execute(t)

	if err != nil {
		t.Fatalf("Expected success, got %v (%s)", err, out)
	}
	want := "Successfully created engine for database: " + cfg.DBName + "\nConnection successful!\n"
	if out != want {
		t.Errorf("Expected output %q, got %q", want, out)
	}
}

func TestRoot_ServerWithoutSSL(t *testing.T) {
	clearEnv(t)
	testutil.SetDBEnv(t, testutil.NoSSLServer(t))

	out, err := execute(t)

	if err != nil {
		t.Fatalf("Expected success, got %v (%s)", err, out)
	}
	want := "Successfully created engine for database: probe_test\nConnection successful!\n"
	if out != want {
		t.Errorf("Expected output %q, got %q", want, out)
	}
}

func TestRoot_DotEnvMalformed(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.EnvFile), []byte("DB_USER=u\n!!bad\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	out, err := execute(t)

	if err == nil || errors.Is(err, errCheckFailed) {
		t.Fatalf("Expected .env error, got %v", err)
	}
	if out != "" {
		t.Errorf("Expected no check output, got %q", out)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
