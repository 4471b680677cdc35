package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	DefaultAddr    = ":5000"
	DefaultTopK    = 3
	DefaultRate    = 30
	DefaultProfile = "default"
)

var (
	ErrProfileNotFound = errors.New("profile does not exist")
	ErrProfileExists   = errors.New("profile already exists")
)

var defaultQuickQuestions = []string{
	"What are the symptoms of diabetes?",
	"How can I lower my blood pressure?",
	"What causes migraines?",
	"When should I see a doctor for a fever?",
}

// Profile points the client at one MediBot backend.
type Profile struct {
	BaseURL     string `json:"base_url"`
	Description string `json:"description,omitempty"`
}

// ServerConfig configures `medibot serve`.
type ServerConfig struct {
	Addr            string `json:"addr,omitempty" env:"MEDIBOT_ADDR"`
	Provider        string `json:"provider,omitempty" env:"MEDIBOT_PROVIDER"`
	Model           string `json:"model,omitempty" env:"MEDIBOT_MODEL"`
	GeminiAPIKey    string `json:"gemini_api_key,omitempty" env:"GEMINI_API"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty" env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `json:"openai_base_url,omitempty" env:"OPENAI_BASE_URL"`
	KBPath          string `json:"kb_path,omitempty" env:"MEDIBOT_KB_PATH"`
	TopK            int    `json:"top_k,omitempty" env:"MEDIBOT_TOP_K"`
	RedisURL        string `json:"redis_url,omitempty" env:"MEDIBOT_REDIS_URL"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds,omitempty" env:"MEDIBOT_CACHE_TTL_SECONDS"`
	RatePerMinute   int    `json:"rate_per_minute,omitempty" env:"MEDIBOT_RATE_PER_MINUTE"`
	// TrustProxy takes client addresses from X-Forwarded-For and X-Real-IP.
	// Only enable it behind a reverse proxy that overwrites those headers.
	TrustProxy bool `json:"trust_proxy,omitempty" env:"MEDIBOT_TRUST_PROXY"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	QuickQuestions []string           `json:"quick_questions,omitempty"`
	LogLevel       string             `json:"log_level,omitempty" env:"MEDIBOT_LOG_LEVEL"`
	Server         ServerConfig       `json:"server"`

	// ServerURL overrides the active profile's base URL for this run.
	ServerURL string `json:"-" env:"MEDIBOT_SERVER_URL"`

	path           string
	currentProfile *Profile
	// Values as read from disk, before env overrides, defaults and flags
	file *fileValues
}

type fileValues struct {
	logLevel string
	server   ServerConfig
}

func LoadConfig() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config path")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create config directory")
	}

	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	config.file = &fileValues{logLevel: config.LogLevel, server: config.Server}

	if err := env.Parse(config); err != nil {
		return nil, errors.Wrap(err, "failed to apply environment overrides")
	}
	config.applyDefaults()

	if err := config.setCurrentProfile(); err != nil {
		return nil, errors.Wrap(err, "failed to set current profile")
	}

	return config, nil
}

// Dir is the directory holding config.json and the log file.
func Dir() (string, error) {
	base := os.Getenv("MEDIBOT_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = homeDir
	}
	return filepath.Join(base, ".medibot"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// BaseURL is the backend the client should talk to.
func (c *Config) BaseURL() string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	if c.currentProfile == nil || c.currentProfile.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.currentProfile.BaseURL
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) AddProfile(name string, profile Profile) error {
	if _, exists := c.Profiles[name]; exists {
		return errors.Wrapf(ErrProfileExists, "profile '%s'", name)
	}
	c.Profiles[name] = profile
	return nil
}

func (c *Config) UpdateProfile(name string, profile Profile) error {
	if _, exists := c.Profiles[name]; !exists {
		return errors.Wrapf(ErrProfileNotFound, "profile '%s'", name)
	}
	c.Profiles[name] = profile
	if name == c.ActiveProfile {
		c.currentProfile = &profile
	}
	return nil
}

func (c *Config) SwitchProfile(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		return errors.Wrapf(ErrProfileNotFound, "profile '%s'", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}

// DeleteProfile removes a profile. Deleting the active profile activates
// another one; deleting the last profile recreates the default.
func (c *Config) DeleteProfile(name string) error {
	if _, exists := c.Profiles[name]; !exists {
		return errors.Wrapf(ErrProfileNotFound, "profile '%s'", name)
	}
	delete(c.Profiles, name)

	if len(c.Profiles) == 0 {
		c.Profiles[DefaultProfile] = Profile{BaseURL: DefaultBaseURL}
	}
	if c.ActiveProfile == name {
		c.ActiveProfile = c.ProfileNames()[0]
	}
	return c.setCurrentProfile()
}

func (c *Config) Save() error {
	if c.path == "" {
		configPath, err := Path()
		if err != nil {
			return errors.Wrap(err, "failed to get config path")
		}
		c.path = configPath
	}

	// Overrides stay in memory: secrets from the environment must not
	// reach the file.
	out := *c
	if c.file != nil {
		out.LogLevel = c.file.logLevel
		out.Server = c.file.server
	}
	return saveConfig(&out, c.path)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.path = configPath
	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			DefaultProfile: {BaseURL: DefaultBaseURL},
		},
		ActiveProfile:  DefaultProfile,
		QuickQuestions: append([]string(nil), defaultQuickQuestions...),
		Server: ServerConfig{
			Addr:          DefaultAddr,
			TopK:          DefaultTopK,
			RatePerMinute: DefaultRate,
		},
		path: configPath,
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}
	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) applyDefaults() {
	if len(c.Profiles) == 0 {
		c.Profiles = map[string]Profile{DefaultProfile: {BaseURL: DefaultBaseURL}}
	}
	if len(c.QuickQuestions) == 0 {
		c.QuickQuestions = append([]string(nil), defaultQuickQuestions...)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.TopK <= 0 {
		c.Server.TopK = DefaultTopK
	}
	if c.Server.RatePerMinute <= 0 {
		c.Server.RatePerMinute = DefaultRate
	}
	// Keys pasted from .env files may keep their quotes
	c.Server.GeminiAPIKey = strings.Trim(c.Server.GeminiAPIKey, `"`)
	c.Server.OpenAIAPIKey = strings.Trim(c.Server.OpenAIAPIKey, `"`)
}

func (c *Config) setCurrentProfile() error {
	if len(c.Profiles) == 0 {
		return errors.New("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// If active profile doesn't exist, fall back to the first one by name
		c.ActiveProfile = c.ProfileNames()[0]
		profile = c.Profiles[c.ActiveProfile]
	}

	c.currentProfile = &profile
	return nil
}
