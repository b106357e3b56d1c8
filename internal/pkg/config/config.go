package config

import (
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Providers ProvidersConfig `koanf:"providers"`
	Storage   StorageConfig   `koanf:"storage"`
	Aptitude  AptitudeConfig  `koanf:"aptitude"`
	Retry     RetryConfig     `koanf:"retry"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
	// RequestTimeout bounds the whole request, across every provider hop.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// ProvidersConfig carries one block per provider tag. Values resolve once at
// startup; there is no hot reload for credentials.
type ProvidersConfig struct {
	Identity   IdentityConfig   `koanf:"identity"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	DocumentAI DocumentAIConfig `koanf:"documentai"`
	Firestore  FirestoreConfig  `koanf:"firestore"`
}

type IdentityConfig struct {
	APIKey string `koanf:"api_key"`
	// EmulatorHost points token verification at a local emulator instead of
	// the hosted service. Dev only.
	EmulatorHost string `koanf:"emulator_host"`
	// Timeout overrides the adapter's default per-call deadline when set.
	Timeout time.Duration `koanf:"timeout"`
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	// Model serves feedback and question generation.
	Model string `koanf:"model"`
	// AnalysisModel serves resume analysis. Falls back to Model when empty.
	AnalysisModel string        `koanf:"analysis_model"`
	Timeout       time.Duration `koanf:"timeout"`
}

type DocumentAIConfig struct {
	ProjectID       string        `koanf:"project_id"`
	Location        string        `koanf:"location"`
	ProcessorID     string        `koanf:"processor_id"`
	CredentialsFile string        `koanf:"credentials_file"`
	Timeout         time.Duration `koanf:"timeout"`
}

type FirestoreConfig struct {
	ProjectID       string        `koanf:"project_id"`
	CredentialsFile string        `koanf:"credentials_file"`
	Timeout         time.Duration `koanf:"timeout"`
}

type StorageConfig struct {
	// AuditPath is the sqlite file for the request audit trail. Empty
	// disables auditing.
	AuditPath string `koanf:"audit_path"`
}

type AptitudeConfig struct {
	// DataDir holds the JSON question banks, one file per topic.
	DataDir string `koanf:"data_dir"`
	// WatchBanks reloads question banks when the files change on disk.
	WatchBanks bool `koanf:"watch_banks"`
}

type RetryConfig struct {
	// BaseDelay is the first retry backoff. The retry budget is one attempt.
	BaseDelay time.Duration `koanf:"base_delay"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func Load() (*Config, error) {
	return loadFrom("config.yaml")
}

func loadFrom(path string) (*Config, error) {
	k := koanf.New(".")

	// Try to load from the config file first
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider("SPEAKUP_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SPEAKUP_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("server.request_timeout") {
		k.Set("server.request_timeout", "30s")
	}
	if !k.Exists("providers.gemini.model") {
		k.Set("providers.gemini.model", "gemini-2.0-flash")
	}
	if !k.Exists("providers.documentai.location") {
		k.Set("providers.documentai.location", "us")
	}
	if !k.Exists("aptitude.data_dir") {
		k.Set("aptitude.data_dir", "data/aptitude")
	}
	if !k.Exists("retry.base_delay") {
		k.Set("retry.base_delay", "500ms")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Substitute environment variables in secret-bearing fields
	cfg.Providers.Identity.APIKey = substituteEnvVars(cfg.Providers.Identity.APIKey)
	cfg.Providers.Gemini.APIKey = substituteEnvVars(cfg.Providers.Gemini.APIKey)
	cfg.Providers.DocumentAI.CredentialsFile = substituteEnvVars(cfg.Providers.DocumentAI.CredentialsFile)
	cfg.Providers.Firestore.CredentialsFile = substituteEnvVars(cfg.Providers.Firestore.CredentialsFile)

	if cfg.Providers.Gemini.AnalysisModel == "" {
		cfg.Providers.Gemini.AnalysisModel = cfg.Providers.Gemini.Model
	}

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
