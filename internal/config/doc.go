// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for folio.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Endpoint base, host origin, result limit, timeout and request rate
//   - UIConfig: Animation delay, source snippet limits and theme
//   - QuickActionConfig: Labelled preset questions
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FOLIO_*), including those from a .env file
//   - ~/.folio/config.toml
//   - ~/.folio/config.json
//   - Built-in defaults
//
// # Endpoint Resolution
//
// ResolveEndpointBase turns api.endpoint_base and api.origin into the base
// URL the query client uses:
//
//	ResolveEndpointBase("", "https://example.com")      // https://example.com/api
//	ResolveEndpointBase("", "http://localhost:5500")    // http://localhost:5000/api
//	ResolveEndpointBase("https://x.dev/api/", "")       // https://x.dev/api
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := query.NewClientWithConfig(&query.ClientConfig{
//	    BaseURL: cfg.EndpointBase(),
//	    Timeout: cfg.Timeout(),
//	})
package config
