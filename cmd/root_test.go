package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/bimmerbailey/recase/internal/config"
)

// bindEnv mirrors initConfig's environment handling on the global viper.
func bindEnv(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetEnvPrefix("RECASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(viper.GetViper(), config.Default())
}

func TestLoadConfigDefaults(t *testing.T) {
	bindEnv(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	want := config.Default()
	if cfg.Format != want.Format || cfg.Server.Addr != want.Server.Addr || cfg.Limits.MaxBytes != want.Limits.MaxBytes {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}
	if cfg.Preservation.Config != want.Preservation.Config {
		t.Errorf("preservation = %+v, want %+v", cfg.Preservation.Config, want.Preservation.Config)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("RECASE_FORMAT", "yaml")
	t.Setenv("RECASE_LIMITS_MAX_BYTES", "1MB")
	t.Setenv("RECASE_PRESERVATION_BRANDS", "true")
	t.Setenv("RECASE_SERVER_WORKERS", "9")
	t.Setenv("RECASE_KAFKA_BROKERS", "a:9092,b:9092")
	bindEnv(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	if cfg.Limits.MaxBytes != "1MB" {
		t.Errorf("Limits.MaxBytes = %q, want 1MB", cfg.Limits.MaxBytes)
	}
	if !cfg.Preservation.Brands {
		t.Error("Preservation.Brands = false, want true")
	}
	if cfg.Server.Workers != 9 {
		t.Errorf("Server.Workers = %d, want 9", cfg.Server.Workers)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("Kafka.Brokers = %q", cfg.Kafka.Brokers)
	}
}

func TestLoadConfigFile(t *testing.T) {
	bindEnv(t)
	path := filepath.Join(t.TempDir(), ".recase.yaml")
	content := `format: table
preservation:
  urls: false
  brands: true
  brand_names: [Recase, Gopher]
limits:
  large_bytes: 1KB
  max_bytes: 2KB
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Format != "table" || cfg.Preservation.URLs || !cfg.Preservation.Brands {
		t.Errorf("loadConfig() = %+v", cfg)
	}
	if got := cfg.Preservation.BrandList(); len(got) != 2 || got[0] != "Recase" {
		t.Errorf("BrandList() = %q", got)
	}
	if n, _ := cfg.Limits.Max(); n != 2048 {
		t.Errorf("Limits.Max() = %d, want 2048", n)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	bindEnv(t)
	viper.Set("format", "xml")

	if _, err := loadConfig(); err == nil {
		t.Fatal("loadConfig() error = nil, want validation error")
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "RECASE_TEST_DOTENV_VALUE"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile() error = %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", key, got)
	}

	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
	if err := loadEnvFile(""); err != nil {
		t.Errorf("empty path should be ignored, got %v", err)
	}
}
