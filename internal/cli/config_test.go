package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/waxrank/waxrank/pkg/errors"
)

func TestResolveConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "token = \"file-token\"\ncurrency = \"EUR\"\nuser = \"someone\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envConfigPath, path)
	t.Setenv(envToken, "env-token")
	t.Setenv(envCurrency, "")

	cfg, err := resolveConfig(true)
	if err != nil {
		t.Fatalf("resolveConfig error: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Errorf("Token = %q, want env value", cfg.Token)
	}
	if cfg.Currency != "EUR" {
		t.Errorf("Currency = %q, want file value", cfg.Currency)
	}
	if cfg.User != "someone" {
		t.Errorf("User = %q", cfg.User)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv(envToken, "tok")
	t.Setenv(envCurrency, "")

	cfg, err := resolveConfig(true)
	if err != nil {
		t.Fatalf("resolveConfig error: %v", err)
	}
	if cfg.Currency != "USD" {
		t.Errorf("Currency = %q, want USD default", cfg.Currency)
	}
}

func TestResolveConfigMissingToken(t *testing.T) {
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv(envToken, "")

	_, err := resolveConfig(true)
	if !errors.Is(err, errors.ErrCodeMissingToken) {
		t.Errorf("err = %v, want MISSING_TOKEN", err)
	}

	if _, err := resolveConfig(false); err != nil {
		t.Errorf("token should not be required: %v", err)
	}
}

func TestResolveConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("token = [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(envConfigPath, path)

	_, err := resolveConfig(false)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
