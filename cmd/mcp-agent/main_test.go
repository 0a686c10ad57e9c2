// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"io"
	"testing"

	"github.com/jolks/mcp-agent/internal/config"
	"github.com/jolks/mcp-agent/internal/logging"
)

func TestApplyCommandLineFlagsToConfig(t *testing.T) {
	*serverScript = "/srv/weather.py"
	*aiProvider = "openai"
	*aiModel = "gpt-4o"
	*aiMaxIterations = 5
	*logLevel = "debug"
	*noHistory = true
	defer func() {
		*serverScript = ""
		*aiProvider = ""
		*aiModel = ""
		*aiMaxIterations = 0
		*logLevel = ""
		*noHistory = false
	}()

	cfg := config.DefaultConfig()
	applyCommandLineFlagsToConfig(cfg)

	if cfg.MCP.ServerScript != "/srv/weather.py" {
		t.Errorf("Expected server script from flag, got '%s'", cfg.MCP.ServerScript)
	}
	if cfg.AI.Provider != "openai" {
		t.Errorf("Expected provider from flag, got '%s'", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gpt-4o" {
		t.Errorf("Expected model from flag, got '%s'", cfg.AI.Model)
	}
	if cfg.AI.MaxToolIterations != 5 {
		t.Errorf("Expected max iterations from flag, got %d", cfg.AI.MaxToolIterations)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected log level from flag, got '%s'", cfg.Logging.Level)
	}
	if cfg.Store.Enabled {
		t.Error("Expected history disabled by -no-history")
	}
}

func TestApplyCommandLineFlagsToConfig_DefaultsUntouched(t *testing.T) {
	cfg := config.DefaultConfig()
	applyCommandLineFlagsToConfig(cfg)

	if cfg.AI.Provider != config.DefaultProvider {
		t.Errorf("Expected default provider to survive empty flags, got '%s'", cfg.AI.Provider)
	}
	if cfg.AI.MaxToolIterations != config.DefaultMaxToolIterations {
		t.Errorf("Expected default max iterations, got %d", cfg.AI.MaxToolIterations)
	}
	if !cfg.Store.Enabled {
		t.Error("Expected history enabled by default")
	}
}

func TestAppClose_Idempotent(t *testing.T) {
	app := &App{
		cfg:    config.DefaultConfig(),
		logger: logging.New(logging.Options{Output: io.Discard, Level: logging.Error}),
	}

	// Nothing acquired yet; both calls must be no-ops.
	app.Close()
	app.Close()
}
