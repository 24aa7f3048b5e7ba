package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reviewbridge/reviewbridge/internal/config"
	"github.com/reviewbridge/reviewbridge/internal/models"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage the .reviewbridge.json configuration",
	Long: `Show or manage reviewbridge configuration.

Running bare 'reviewbridge config' is the same as 'reviewbridge config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write .reviewbridge.json with the effective defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func configFilePath() string {
	dir := configDirFlag
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, config.FileName)
}

func configInitRun() error {
	path := configFilePath()

	if _, err := os.Stat(path); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
		ui.Warning("overwriting existing config file")
	}

	def := models.DefaultConfig()
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	ui.Success("config file created: %s", path)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, string(data))
	return nil
}

// configKeyInfo describes a config key for the source-annotated show output.
type configKeyInfo struct {
	Key string
}

var configKeys = []configKeyInfo{
	{Key: "model_name"},
	{Key: "reasoning_effort"},
	{Key: "timeout_seconds"},
	{Key: "max_chunk_tokens"},
	{Key: "project_context"},
	{Key: "plan.depth"},
	{Key: "code.require_tests"},
	{Key: "precommit.block_on"},
}

func configShowRun() error {
	path := configFilePath()

	cfg, err := config.Load(configDirFlag)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		ui.Info("config file: %s", path)
	} else {
		ui.Info("config file: (none, using defaults)")
	}
	fmt.Fprintln(ui.Out)

	fileValues := readConfigFileKeys(path)
	values := effectiveValues(*cfg)

	for _, k := range configKeys {
		fmt.Fprintf(ui.Out, "  %-22s %v  %s\n", k.Key, values[k.Key], source(k.Key, fileValues))
	}

	return nil
}

func effectiveValues(cfg models.Config) map[string]any {
	return map[string]any{
		"model_name":         cfg.ModelName,
		"reasoning_effort":   cfg.ReasoningEffort,
		"timeout_seconds":    cfg.TimeoutSeconds,
		"max_chunk_tokens":   cfg.MaxChunkTokens,
		"project_context":    cfg.ProjectContext,
		"plan.depth":         cfg.Plan.Depth,
		"code.require_tests": cfg.Code.RequireTests,
		"precommit.block_on": cfg.Precommit.BlockOn,
	}
}

// readConfigFileKeys reads the raw JSON file and returns the flattened set
// of dot-notation keys present in it, to distinguish file-sourced values
// from defaults in `config show`.
func readConfigFileKeys(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return result
	}

	flattenKeys("", parsed, result)
	return result
}

func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

func source(key string, fileValues map[string]bool) string {
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}
