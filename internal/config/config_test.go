// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config directory at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("FOLIO_HOME", dir)
	for _, key := range []string{
		"FOLIO_ENDPOINT", "FOLIO_ORIGIN", "FOLIO_RESULT_LIMIT",
		"FOLIO_TIMEOUT_SECS", "FOLIO_SUBJECT", "FOLIO_DEBUG",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3, cfg.API.ResultLimit)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, 30, cfg.API.RequestsPerMinute)
	assert.Equal(t, 300*time.Millisecond, cfg.AnimationDelay())
	assert.Equal(t, 2, cfg.UI.MaxSources)
	assert.Equal(t, 80, cfg.UI.SnippetChars)
	require.Len(t, cfg.QuickActions, 3)
	assert.Equal(t, "Programming Skills", cfg.QuickActions[0].Label)
	assert.Equal(t, "What programming languages does Ishika know?", cfg.QuickActions[0].Question)
	assert.NoError(t, cfg.Validate())
}

func TestGreetingText(t *testing.T) {
	cfg := Default()
	cfg.Subject = "Ada"
	assert.Equal(t, "Hi! I'm Ada's AI assistant. Ask me anything about their experience, skills, or projects!", cfg.GreetingText())

	cfg.UI.Greeting = "Hello there"
	assert.Equal(t, "Hello there", cfg.GreetingText())
}

// =============================================================================
// LOADING
// =============================================================================

func TestLoad_NoFiles(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().API, cfg.API)
	assert.Equal(t, DevEndpointBase, cfg.EndpointBase())
}

func TestLoad_TOML(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), `
subject = "Ada"

[api]
origin = "https://ada.dev"
result_limit = 5

[ui]
snippet_chars = 40

[[quick_actions]]
label = "Languages"
question = "Which languages does Ada use?"
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Ada", cfg.Subject)
	assert.Equal(t, 5, cfg.API.ResultLimit)
	assert.Equal(t, 60, cfg.API.TimeoutSecs, "unset values keep defaults")
	assert.Equal(t, 40, cfg.UI.SnippetChars)
	assert.Equal(t, "https://ada.dev/api", cfg.EndpointBase())
	require.Len(t, cfg.QuickActions, 1)
	assert.Equal(t, "Languages", cfg.QuickActions[0].Label)

	info, err := os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestLoad_TOMLWithoutQuickActionsKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "subject = \"Ada\"\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultQuickActions(), cfg.QuickActions)
}

func TestLoad_JSONFallback(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.json"), `{"subject":"Grace","api":{"endpoint_base":"https://api.example.com/api/"}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Grace", cfg.Subject)
	assert.Equal(t, "https://api.example.com/api", cfg.EndpointBase())
	assert.Len(t, cfg.QuickActions, 3)
}

func TestLoad_BrokenFileFallsBackToDefaults(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.toml"), "subject = [unterminated")

	cfg, err := Load()
	require.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Default().Subject, cfg.Subject)
}

func TestLoadFromPath_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "folio.toml")
	writeFile(t, path, "[api]\nresult_limit = 50\n")

	_, err := LoadFromPath(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "api.result_limit", verrs[0].Field)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("FOLIO_ENDPOINT", "https://env.example.com/api")
	t.Setenv("FOLIO_RESULT_LIMIT", "7")
	t.Setenv("FOLIO_TIMEOUT_SECS", "not-a-number")
	t.Setenv("FOLIO_SUBJECT", "Linus")
	t.Setenv("FOLIO_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api", cfg.EndpointBase())
	assert.Equal(t, 7, cfg.API.ResultLimit)
	assert.Equal(t, 60, cfg.API.TimeoutSecs)
	assert.Equal(t, "Linus", cfg.Subject)
	assert.True(t, cfg.Log.Debug)
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Subject = "Barbara"
	cfg.API.Origin = "https://barbara.dev"
	cfg.QuickActions = cfg.QuickActions[:2]
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Subject, loaded.Subject)
	assert.Equal(t, cfg.API, loaded.API)
	assert.Equal(t, cfg.QuickActions, loaded.QuickActions)
}

func TestSave_UsesConfigDir(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, Save(Default()))

	_, err := os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad endpoint scheme", func(c *Config) { c.API.EndpointBase = "ftp://x/api" }, "api.endpoint_base"},
		{"endpoint without host", func(c *Config) { c.API.EndpointBase = "http://" }, "api.endpoint_base"},
		{"origin without host", func(c *Config) { c.API.Origin = "example.com" }, "api.origin"},
		{"result limit too low", func(c *Config) { c.API.ResultLimit = -1 }, "api.result_limit"},
		{"timeout too high", func(c *Config) { c.API.TimeoutSecs = 601 }, "api.timeout_secs"},
		{"negative rate", func(c *Config) { c.API.RequestsPerMinute = -1 }, "api.requests_per_minute"},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"negative animation", func(c *Config) { c.UI.AnimationMs = -5 }, "ui.animation_ms"},
		{"too many sources", func(c *Config) { c.UI.MaxSources = 11 }, "ui.max_sources"},
		{"empty label", func(c *Config) { c.QuickActions[1].Label = " " }, "quick_actions[1].label"},
		{"empty question", func(c *Config) { c.QuickActions[0].Question = "" }, "quick_actions[0].question"},
		{"too many quick actions", func(c *Config) {
			for len(c.QuickActions) <= MaxQuickActions {
				c.QuickActions = append(c.QuickActions, QuickActionConfig{Label: "x", Question: "y"})
			}
		}, "quick_actions"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestValidate_FileOrigin(t *testing.T) {
	cfg := Default()
	cfg.API.Origin = "file:///home/me/site/index.html"
	assert.NoError(t, cfg.Validate())
}

func TestValidateErrors_Error(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	assert.Equal(t, "a: bad; b: worse", errs.Error())
	assert.Equal(t, "no validation errors", ValidateErrors{}.Error())
}

// =============================================================================
// ENDPOINT RESOLUTION
// =============================================================================

func TestResolveEndpointBase(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		origin   string
		want     string
	}{
		{"explicit wins", "https://api.example.com/api/", "https://site.example.com", "https://api.example.com/api"},
		{"no origin", "", "", DevEndpointBase},
		{"file origin", "", "file:///tmp/index.html", DevEndpointBase},
		{"dev server port", "", "http://127.0.0.1:5500", DevEndpointBase},
		{"production origin", "", "https://portfolio.example.com", "https://portfolio.example.com/api"},
		{"origin with slash", "", "https://portfolio.example.com/", "https://portfolio.example.com/api"},
		{"other local port", "", "http://localhost:3000", "http://localhost:3000/api"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveEndpointBase(tc.explicit, tc.origin))
		})
	}
}

// =============================================================================
// GET/SET
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("api.result_limit")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = cfg.Get("ui.snippet-chars")
	require.NoError(t, err)
	assert.Equal(t, 80, v)

	require.NoError(t, cfg.Set("api.endpoint_base", "https://x.dev/api"))
	assert.Equal(t, "https://x.dev/api", cfg.API.EndpointBase)

	require.NoError(t, cfg.Set("ui.max_sources", "4"))
	assert.Equal(t, 4, cfg.UI.MaxSources)

	require.NoError(t, cfg.Set("ui.start_open", "yes"))
	assert.True(t, cfg.UI.StartOpen)

	assert.Error(t, cfg.Set("ui.max_sources", "many"))
	_, err = cfg.Get("api.nope")
	assert.Error(t, err)
	_, err = cfg.Get("subject.name")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.QuickActions[0].Label = "changed"
	assert.Equal(t, "Programming Skills", cfg.QuickActions[0].Label)
}

// =============================================================================
// WATCH
// =============================================================================

func TestWatch_ReloadsOnSave(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				reloaded <- cfg
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	updated := Default()
	updated.Subject = "Margaret"
	require.NoError(t, SaveTOML(updated, path))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "Margaret", cfg.Subject)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
