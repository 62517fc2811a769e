package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no settings file is named explicitly.
const DefaultFile = "ulabuild.yaml"

const (
	DefaultSourceExt = ".ula"
	DefaultTargetExt = ".lua"
	DefaultCacheSize = 1024
)

// Config is the resolved build configuration.
type Config struct {
	// Concurrent compile workers; 0 means one per CPU.
	Workers    int      `yaml:"workers"`
	SourceExt  string   `yaml:"source_ext"`
	TargetExt  string   `yaml:"target_ext"`
	Compiler   string   `yaml:"compiler"`
	Dedupe     bool     `yaml:"dedupe"`
	CacheSize  int      `yaml:"cache_size"`
	IgnoreDirs []string `yaml:"ignore_dirs"`
	Verbose    bool     `yaml:"verbose"`

	Artifact ArtifactConfig `yaml:"artifact"`
}

// ArtifactConfig configures the optional S3 mirror.
type ArtifactConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func Default() Config {
	return Config{
		SourceExt: DefaultSourceExt,
		TargetExt: DefaultTargetExt,
		CacheSize: DefaultCacheSize,
		Artifact: ArtifactConfig{
			Region: "us-east-1",
			Bucket: "ulabuild-artifacts",
			UseSSL: true,
		},
	}
}

// Load resolves configuration from, in increasing precedence: defaults, the
// YAML file at path, and the environment (a .env file is loaded first when
// present). An empty path falls back to DefaultFile, which may be absent.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFile
	}
	if err := loadFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse settings YAML %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv("ULABUILD_WORKERS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("ULABUILD_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	cfg.Compiler = firstNonEmpty(strings.TrimSpace(os.Getenv("ULABUILD_COMPILER")), cfg.Compiler)

	a := &cfg.Artifact
	if endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT")); endpoint != "" {
		a.Endpoint = endpoint
		a.Enabled = true
	}
	a.Region = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), a.Region)
	a.AccessKey = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), a.AccessKey)
	a.SecretKey = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), a.SecretKey)
	a.Bucket = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), a.Bucket)
	a.Prefix = firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_PREFIX")), a.Prefix)
	if raw := strings.TrimSpace(os.Getenv("ARTIFACT_S3_USE_SSL")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			a.UseSSL = v
		}
	}
	return nil
}

// Validate rejects settings no build can run with.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if strings.TrimSpace(c.SourceExt) == "" {
		return errors.New("source_ext is required")
	}
	if strings.TrimSpace(c.TargetExt) == "" {
		return errors.New("target_ext is required")
	}
	if c.Dedupe && c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be > 0 when dedupe is enabled, got %d", c.CacheSize)
	}
	if c.Artifact.Enabled && strings.TrimSpace(c.Artifact.Endpoint) == "" {
		return errors.New("artifact.endpoint is required when the artifact mirror is enabled")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
