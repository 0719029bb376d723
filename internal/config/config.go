// Package config loads server configuration from YAML with environment
// overrides, and holds the regime and calendar template catalog.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/castlemilk/taxpilot/backend/internal/domain"
	"github.com/castlemilk/taxpilot/backend/internal/recurrence"
	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendRedis     = "redis"
	BackendLocal     = "local"
	BackendGCS       = "gcs"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Store     StoreConfig      `yaml:"store"`
	Auth      AuthConfig       `yaml:"auth"`
	Jobs      JobsConfig       `yaml:"jobs"`
	Files     FilesConfig      `yaml:"files"`
	AI        AIConfig         `yaml:"ai"`
	Search    SearchConfig     `yaml:"search"`
	Regimes   []RegimeConfig   `yaml:"regimes"`
	Templates []TemplateConfig `yaml:"templates"`
}

type ServerConfig struct {
	Port            string   `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`
	SchedulerSecret string   `yaml:"schedulerSecret"`
}

type StoreConfig struct {
	Backend         string `yaml:"backend"`
	ProjectID       string `yaml:"projectId"`
	CredentialsFile string `yaml:"credentialsFile"`
}

type AuthConfig struct {
	// LocalDev injects a fixed operator user instead of verifying tokens.
	LocalDev bool `yaml:"localDev"`
	// SkipAuth enables debug impersonation headers.
	SkipAuth bool `yaml:"skipAuth"`
}

type JobsConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redisAddr"`
	QueueKey  string        `yaml:"queueKey"`
	Workers   int           `yaml:"workers"`
	StatusTTL time.Duration `yaml:"statusTTL"`
}

type FilesConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	Bucket  string `yaml:"bucket"`
}

type AIConfig struct {
	// BaseURL of the assistant service. Empty selects the offline stub.
	BaseURL string `yaml:"baseUrl"`
}

// SearchConfig enables the Algolia expense index when AppID and APIKey are set.
type SearchConfig struct {
	AppID     string `yaml:"appId"`
	APIKey    string `yaml:"apiKey"`
	IndexName string `yaml:"indexName"`
}

// Enabled reports whether Algolia credentials are configured.
func (s SearchConfig) Enabled() bool {
	return s.AppID != "" && s.APIKey != ""
}

// RegimeConfig is a tax regime with its marginal bracket table.
type RegimeConfig struct {
	Key      string          `yaml:"key"`
	Name     string          `yaml:"name"`
	Country  string          `yaml:"country"`
	Brackets []BracketConfig `yaml:"brackets"`
}

// BracketConfig is one band; a missing upTo marks the open top band.
type BracketConfig struct {
	UpTo *decimal.Decimal `yaml:"upTo"`
	Rate decimal.Decimal  `yaml:"rate"`
}

// TemplateConfig seeds a calendar template. Rule is the recurrence rule
// object stored as template configuration JSON.
type TemplateConfig struct {
	Code        string         `yaml:"code"`
	Regime      string         `yaml:"regime"`
	Description string         `yaml:"description"`
	Rule        map[string]any `yaml:"rule"`
	Inactive    bool           `yaml:"inactive"`
}

// Default returns the built-in configuration without environment overrides.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads the defaults, overlays the YAML file at path (if non-empty),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays the deployment environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := getenv("SCHEDULER_SECRET"); v != "" {
		c.Server.SchedulerSecret = v
	}

	local := getenv("ENV") == "local"
	if getenv("USE_MEMORY_STORE") == "true" || local {
		c.Store.Backend = BackendMemory
		c.Auth.LocalDev = true
	}
	if v := getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		c.Store.ProjectID = v
	}
	if v := getenv("GOOGLE_APPLICATION_CREDENTIALS"); v != "" {
		c.Store.CredentialsFile = v
	}
	if getenv("SKIP_AUTH") == "true" {
		c.Auth.SkipAuth = true
	}

	if v := getenv("REDIS_ADDR"); v != "" {
		c.Jobs.Backend = BackendRedis
		c.Jobs.RedisAddr = v
	}
	if v := getenv("JOB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Jobs.Workers = n
		}
	}

	if v := getenv("GCS_BUCKET"); v != "" {
		c.Files.Backend = BackendGCS
		c.Files.Bucket = v
	}
	if v := getenv("FILE_STORAGE_DIR"); v != "" {
		c.Files.Backend = BackendLocal
		c.Files.Dir = v
	}

	if v := getenv("AI_SERVICE_URL"); v != "" {
		c.AI.BaseURL = strings.TrimRight(v, "/")
	}

	if v := getenv("ALGOLIA_APP_ID"); v != "" {
		c.Search.AppID = v
	}
	if v := getenv("ALGOLIA_ADMIN_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := getenv("ALGOLIA_INDEX_NAME"); v != "" {
		c.Search.IndexName = v
	}
}

// Validate checks backend choices and the regime and template catalog.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFirestore:
		if c.Store.ProjectID == "" {
			return fmt.Errorf("store: projectId is required for firestore")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}

	switch c.Jobs.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Jobs.RedisAddr == "" {
			return fmt.Errorf("jobs: redisAddr is required for redis")
		}
	default:
		return fmt.Errorf("jobs: unknown backend %q", c.Jobs.Backend)
	}
	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("jobs: workers must be positive")
	}

	switch c.Files.Backend {
	case BackendLocal:
		if c.Files.Dir == "" {
			return fmt.Errorf("files: dir is required for local storage")
		}
	case BackendGCS:
		if c.Files.Bucket == "" {
			return fmt.Errorf("files: bucket is required for gcs")
		}
	default:
		return fmt.Errorf("files: unknown backend %q", c.Files.Backend)
	}

	if (c.Search.AppID == "") != (c.Search.APIKey == "") {
		return fmt.Errorf("search: appId and apiKey must be set together")
	}

	regimes := make(map[string]bool, len(c.Regimes))
	for i, r := range c.Regimes {
		if r.Key == "" {
			return fmt.Errorf("regime %d: key is required", i)
		}
		if regimes[r.Key] {
			return fmt.Errorf("regime %s: duplicate key", r.Key)
		}
		regimes[r.Key] = true
		if err := scenario.ValidateBrackets(r.brackets()); err != nil {
			return fmt.Errorf("regime %s: %w", r.Key, err)
		}
	}

	codes := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		if t.Code == "" {
			return fmt.Errorf("template: code is required")
		}
		if !regimes[t.Regime] {
			return fmt.Errorf("template %s: unknown regime %q", t.Code, t.Regime)
		}
		if codes[t.Regime+"/"+t.Code] {
			return fmt.Errorf("template %s: duplicate code", t.Code)
		}
		codes[t.Regime+"/"+t.Code] = true
	}
	return nil
}

func (r RegimeConfig) brackets() []scenario.Bracket {
	out := make([]scenario.Bracket, 0, len(r.Brackets))
	for _, b := range r.Brackets {
		br := scenario.Bracket{Rate: b.Rate}
		if b.UpTo != nil {
			br.UpTo = *b.UpTo
		}
		out = append(out, br)
	}
	return out
}

// BuildRegistry registers a bracket strategy for every configured regime.
func (c *Config) BuildRegistry() *scenario.Registry {
	b := scenario.NewRegistryBuilder()
	for _, r := range c.Regimes {
		b.Register(r.Key, scenario.BracketStrategy(r.brackets()))
	}
	return b.Build()
}

// TaxRegimes returns the catalog regimes. Regime IDs equal their keys.
func (c *Config) TaxRegimes() []*domain.TaxRegime {
	out := make([]*domain.TaxRegime, 0, len(c.Regimes))
	for _, r := range c.Regimes {
		out = append(out, &domain.TaxRegime{
			ID:      r.Key,
			Code:    r.Key,
			Name:    r.Name,
			Country: r.Country,
			Active:  true,
		})
	}
	return out
}

// EventTemplates converts the template seeds. Rules that would not expand
// are reported here so a bad catalog fails at startup rather than at sync.
func (c *Config) EventTemplates() ([]*domain.EventTemplate, error) {
	out := make([]*domain.EventTemplate, 0, len(c.Templates))
	for _, t := range c.Templates {
		raw, err := json.Marshal(t.Rule)
		if err != nil {
			return nil, fmt.Errorf("template %s: encode rule: %w", t.Code, err)
		}
		if _, warning := recurrence.ParseRule(raw); warning != nil {
			return nil, fmt.Errorf("template %s: %w", t.Code, warning)
		}
		out = append(out, &domain.EventTemplate{
			ID:          TemplateID(t.Regime, t.Code),
			Code:        t.Code,
			RegimeID:    t.Regime,
			Description: t.Description,
			RuleJSON:    raw,
			Active:      !t.Inactive,
		})
	}
	return out, nil
}

// TemplateID is the stable ID of a seeded template.
func TemplateID(regimeID, code string) string {
	return regimeID + "-" + code
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
