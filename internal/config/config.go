// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/folio-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete folio configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Subject is the person the knowledge base describes.
	Subject string `toml:"subject" json:"subject"`

	// Backend API configuration
	API APIConfig `toml:"api" json:"api"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Preset questions shown under the greeting
	QuickActions []QuickActionConfig `toml:"quick_actions" json:"quick_actions"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`
}

// APIConfig controls where and how questions are sent.
type APIConfig struct {
	// EndpointBase overrides endpoint resolution when set, e.g.
	// https://example.com/api
	EndpointBase string `toml:"endpoint_base" json:"endpoint_base"`

	// Origin is the host origin used to derive the endpoint base
	// when EndpointBase is empty.
	Origin string `toml:"origin" json:"origin"`

	// ResultLimit is sent as n_results with every question.
	ResultLimit int `toml:"result_limit" json:"result_limit"`

	// TimeoutSecs bounds a single request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// RequestsPerMinute throttles calls to the backend. 0 disables it.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// UIConfig holds widget presentation settings.
type UIConfig struct {
	Theme        string `toml:"theme" json:"theme"` // "auto", "dark", "light"
	Greeting     string `toml:"greeting" json:"greeting"`
	AnimationMs  int    `toml:"animation_ms" json:"animation_ms"`
	MaxSources   int    `toml:"max_sources" json:"max_sources"`
	SnippetChars int    `toml:"snippet_chars" json:"snippet_chars"`
	Markdown     bool   `toml:"markdown" json:"markdown"`
	StartOpen    bool   `toml:"start_open" json:"start_open"`
}

// QuickActionConfig is a labelled preset question.
type QuickActionConfig struct {
	Label    string `toml:"label" json:"label"`
	Question string `toml:"question" json:"question"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Debug bool   `toml:"debug" json:"debug"`
	Path  string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DevEndpointBase is used when the host origin is a local file or
	// the development static server.
	DevEndpointBase = "http://localhost:5000/api"

	// DevServerPort is the port of the development static server.
	DevServerPort = "5500"

	// MaxQuickActions is bounded by the number keys that select them.
	MaxQuickActions = 9
)

// DefaultQuickActions returns the built-in preset questions.
func DefaultQuickActions() []QuickActionConfig {
	return []QuickActionConfig{
		{Label: "Programming Skills", Question: "What programming languages does Ishika know?"},
		{Label: "AI Projects", Question: "Tell me about Ishika's AI projects"},
		{Label: "Experience", Question: "What work experience does Ishika have?"},
	}
}

// Default returns a new Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1",
		Subject: "Ishika",
		API: APIConfig{
			ResultLimit:       3,
			TimeoutSecs:       60,
			RequestsPerMinute: 30,
		},
		UI: UIConfig{
			Theme:        "auto",
			AnimationMs:  300,
			MaxSources:   2,
			SnippetChars: 80,
			Markdown:     true,
		},
		QuickActions: DefaultQuickActions(),
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the folio configuration directory path.
// FOLIO_HOME overrides the default of ~/.folio.
func ConfigDir() (string, error) {
	if dir := os.Getenv("FOLIO_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".folio"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogPath returns the debug log path, honoring log.path.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "folio.log"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions tightens config files to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// A .env file in the working directory is read before environment
// overrides are applied; it never replaces variables already set.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg = Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	// A broken file leaves defaults in place; the error is informational.
	cfg = Default()
	cfg, err = finish(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDotEnv() {
	_ = godotenv.Load()
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	// Decoding into a struct that already holds the default list would
	// append; presence in the file is detected instead.
	actions := cfg.QuickActions
	cfg.QuickActions = nil

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if !md.IsDefined("quick_actions") {
		cfg.QuickActions = actions
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// fillDefaults fills in any missing values with defaults.
// Zero numeric settings are treated as unset.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if strings.TrimSpace(cfg.Subject) == "" {
		cfg.Subject = defaults.Subject
	}

	// API
	if cfg.API.ResultLimit == 0 {
		cfg.API.ResultLimit = defaults.API.ResultLimit
	}
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.AnimationMs == 0 {
		cfg.UI.AnimationMs = defaults.UI.AnimationMs
	}
	if cfg.UI.MaxSources == 0 {
		cfg.UI.MaxSources = defaults.UI.MaxSources
	}
	if cfg.UI.SnippetChars == 0 {
		cfg.UI.SnippetChars = defaults.UI.SnippetChars
	}

	if cfg.QuickActions == nil {
		cfg.QuickActions = defaults.QuickActions
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

const tomlHeader = "# folio configuration file\n# Generated by folio - edit with care\n\n"

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString(tomlHeader)

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// API
	if c.API.EndpointBase != "" {
		if err := validateHTTPURL(c.API.EndpointBase); err != nil {
			errs = append(errs, ValidationError{Field: "api.endpoint_base", Message: err.Error()})
		}
	}
	if c.API.Origin != "" {
		u, err := url.Parse(c.API.Origin)
		if err != nil || (u.Scheme != "file" && u.Host == "") {
			errs = append(errs, ValidationError{
				Field:   "api.origin",
				Message: fmt.Sprintf("invalid origin '%s', must be an http(s) or file URL", c.API.Origin),
			})
		}
	}
	if c.API.ResultLimit < 1 || c.API.ResultLimit > 20 {
		errs = append(errs, ValidationError{
			Field:   "api.result_limit",
			Message: fmt.Sprintf("must be between 1 and 20, got %d", c.API.ResultLimit),
		})
	}
	if c.API.TimeoutSecs < 1 || c.API.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 600, got %d", c.API.TimeoutSecs),
		})
	}
	if c.API.RequestsPerMinute < 0 || c.API.RequestsPerMinute > 600 {
		errs = append(errs, ValidationError{
			Field:   "api.requests_per_minute",
			Message: fmt.Sprintf("must be between 0 and 600, got %d", c.API.RequestsPerMinute),
		})
	}

	// UI
	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.AnimationMs < 0 || c.UI.AnimationMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "ui.animation_ms",
			Message: fmt.Sprintf("must be between 0 and 5000, got %d", c.UI.AnimationMs),
		})
	}
	if c.UI.MaxSources < 0 || c.UI.MaxSources > 10 {
		errs = append(errs, ValidationError{
			Field:   "ui.max_sources",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.UI.MaxSources),
		})
	}
	if c.UI.SnippetChars < 1 || c.UI.SnippetChars > 1000 {
		errs = append(errs, ValidationError{
			Field:   "ui.snippet_chars",
			Message: fmt.Sprintf("must be between 1 and 1000, got %d", c.UI.SnippetChars),
		})
	}

	// Quick actions
	if len(c.QuickActions) > MaxQuickActions {
		errs = append(errs, ValidationError{
			Field:   "quick_actions",
			Message: fmt.Sprintf("at most %d quick actions are supported, got %d", MaxQuickActions, len(c.QuickActions)),
		})
	}
	for i, qa := range c.QuickActions {
		if strings.TrimSpace(qa.Label) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("quick_actions[%d].label", i), Message: "must not be empty"})
		}
		if strings.TrimSpace(qa.Question) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("quick_actions[%d].question", i), Message: "must not be empty"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid scheme '%s', must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// =============================================================================
// ENDPOINT RESOLUTION
// =============================================================================

// ResolveEndpointBase picks the API base. An explicit base wins. Otherwise
// a missing or unparseable origin, a file: origin, or the development
// server port resolves to DevEndpointBase, and any other origin gets /api
// appended.
func ResolveEndpointBase(explicit, origin string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return strings.TrimSuffix(explicit, "/")
	}
	if isDevelopmentOrigin(origin) {
		return DevEndpointBase
	}
	return strings.TrimSuffix(origin, "/") + "/api"
}

func isDevelopmentOrigin(origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "file" || u.Host == "" {
		return true
	}
	return u.Port() == DevServerPort
}

// EndpointBase returns the resolved API base for this configuration.
func (c *Config) EndpointBase() string {
	return ResolveEndpointBase(c.API.EndpointBase, c.API.Origin)
}

// Timeout returns api.timeout_secs as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSecs) * time.Second
}

// AnimationDelay returns ui.animation_ms as a duration.
func (c *Config) AnimationDelay() time.Duration {
	return time.Duration(c.UI.AnimationMs) * time.Millisecond
}

// GreetingText returns ui.greeting, or a greeting derived from the subject.
func (c *Config) GreetingText() string {
	if c.UI.Greeting != "" {
		return c.UI.Greeting
	}
	return fmt.Sprintf("Hi! I'm %s's AI assistant. Ask me anything about their experience, skills, or projects!", c.Subject)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies FOLIO_* environment variables.
// Unparseable numeric values are ignored.
func (c *Config) ApplyEnvOverrides() {
	// FOLIO_ENDPOINT
	if endpoint := os.Getenv("FOLIO_ENDPOINT"); endpoint != "" {
		c.API.EndpointBase = endpoint
	}

	// FOLIO_ORIGIN
	if origin := os.Getenv("FOLIO_ORIGIN"); origin != "" {
		c.API.Origin = origin
	}

	// FOLIO_RESULT_LIMIT
	if limit := os.Getenv("FOLIO_RESULT_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			c.API.ResultLimit = n
		}
	}

	// FOLIO_TIMEOUT_SECS
	if timeout := os.Getenv("FOLIO_TIMEOUT_SECS"); timeout != "" {
		if n, err := strconv.Atoi(timeout); err == nil {
			c.API.TimeoutSecs = n
		}
	}

	// FOLIO_SUBJECT
	if subject := os.Getenv("FOLIO_SUBJECT"); subject != "" {
		c.Subject = subject
	}

	// FOLIO_DEBUG
	if debug := os.Getenv("FOLIO_DEBUG"); debug != "" {
		c.Log.Debug = debug == "1" || strings.ToLower(debug) == "true"
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.result_limit").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// Only scalar fields can be set.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && field.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"subject",
		"api.endpoint_base",
		"api.origin",
		"api.result_limit",
		"api.timeout_secs",
		"api.requests_per_minute",
		"ui.theme",
		"ui.greeting",
		"ui.animation_ms",
		"ui.max_sources",
		"ui.snippet_chars",
		"ui.markdown",
		"ui.start_open",
		"quick_actions",
		"log.debug",
		"log.path",
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.QuickActions = append([]QuickActionConfig(nil), c.QuickActions...)
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return buf.String()
}
