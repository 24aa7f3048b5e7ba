// Package config loads and validates the .reviewbridge.json configuration
// file: viper defaults, an optional file, then a schema check.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/reviewbridge/reviewbridge/internal/apperr"
	"github.com/reviewbridge/reviewbridge/internal/models"
)

// FileName is the config file's fixed name within its directory.
const FileName = ".reviewbridge.json"

func applyDefaults(v *viper.Viper) {
	def := models.DefaultConfig()
	v.SetDefault("model_name", def.ModelName)
	v.SetDefault("reasoning_effort", string(def.ReasoningEffort))
	v.SetDefault("timeout_seconds", def.TimeoutSeconds)
	v.SetDefault("max_chunk_tokens", def.MaxChunkTokens)
	v.SetDefault("project_context", def.ProjectContext)
	v.SetDefault("plan.focus", def.Plan.Focus)
	v.SetDefault("plan.depth", def.Plan.Depth)
	v.SetDefault("code.criteria", def.Code.Criteria)
	v.SetDefault("code.require_tests", def.Code.RequireTests)
	v.SetDefault("precommit.block_on", def.Precommit.BlockOn)
}

// Load reads .reviewbridge.json from dir (default cwd when dir is empty).
// A missing file falls back to defaults; a permission error or malformed
// JSON is CONFIG_ERROR, as is a schema violation.
func Load(dir string) (*models.Config, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName)

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ConfigError, err, fmt.Sprintf("reading %s: %v", path, err))
		}
	}

	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperr.Wrap(apperr.ConfigError, err, fmt.Sprintf("parsing %s: %v", path, err))
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *models.Config) error {
	if cfg.TimeoutSeconds <= 0 {
		return apperr.New(apperr.ConfigError, "timeout_seconds must be a positive integer, got %d", cfg.TimeoutSeconds)
	}
	if cfg.MaxChunkTokens <= 0 {
		return apperr.New(apperr.ConfigError, "max_chunk_tokens must be a positive integer, got %d", cfg.MaxChunkTokens)
	}
	if !models.ValidEffort(cfg.ReasoningEffort) {
		return apperr.New(apperr.ConfigError, "reasoning_effort %q is not one of low, medium, high", cfg.ReasoningEffort)
	}
	for _, s := range cfg.Precommit.BlockOn {
		if !models.ValidSeverity(models.KindCode, models.Severity(s)) {
			return apperr.New(apperr.ConfigError, "precommit.block_on value %q is not a valid severity", s)
		}
	}
	return nil
}
