package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config is the root configuration for tjr, stored in ~/.tjr/config.json.
// The file supports single-line // comments for documentation purposes.
// API tokens never live in this file; they come from the environment.
type Config struct {
	Toggl TogglConfig `json:"toggl"`
	Jira  JiraConfig  `json:"jira"`
}

// TogglConfig holds Toggl workspace and report settings.
type TogglConfig struct {
	// WorkspaceID is the numeric Toggl workspace the reports are pulled from.
	WorkspaceID int64 `json:"workspace_id"`
	// AllTimeSince is the first date (YYYY-MM-DD) of the all-time
	// population used for lifetime version totals.
	AllTimeSince string `json:"all_time_since"`
}

// JiraConfig holds Jira connection and field-mapping settings.
type JiraConfig struct {
	// BaseURL of the Jira instance, e.g. "https://jira.example.com".
	BaseURL string `json:"base_url"`
	// BudgetField is the custom field ID holding the budget, e.g.
	// "customfield_10100". Empty disables the budget column.
	BudgetField string `json:"budget_field"`
	// AccountField is the custom field ID holding the account. Empty
	// disables the account column.
	AccountField string `json:"account_field"`
}

// DefaultAllTimeSince bounds the all-time report pull; Toggl rejects
// unbounded ranges.
const DefaultAllTimeSince = "2010-01-01"

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Toggl: TogglConfig{
			AllTimeSince: DefaultAllTimeSince,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON
// parsing, allowing human-readable documentation inside the file.
const configTemplate = `// tjr configuration – ~/.tjr/config.json
//
// API tokens are NOT stored here. Set TOGGL_API_TOKEN and JIRA_API_TOKEN
// in the environment or in a .env file in the working directory.
{
  // ── Toggl ────────────────────────────────────────────────────────────────
  "toggl": {
    // Numeric workspace ID the detailed reports are pulled from.
    // Find it in the Toggl web UI URL: track.toggl.com/reports/.../<id>.
    "workspace_id": 0,

    // First date of the all-time population used for per-version lifetime
    // totals. Set this to the date your workspace started tracking.
    "all_time_since": "2010-01-01"
  },

  // ── Jira ─────────────────────────────────────────────────────────────────
  "jira": {
    // Base URL of your Jira instance.
    "base_url": "https://jira.example.com",

    // Custom field IDs for the budget and account report columns.
    // Leave empty if your instance does not track them.
    "budget_field": "",
    "account_field": ""
  }
}
`

// configFilePath returns the path to ~/.tjr/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tjr", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content
// starts with //. Only full-line comments are handled.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.tjr/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return cfg, nil
}

// Parse decodes annotated config JSON and fills zero-value fields with the
// built-in defaults.
func Parse(data []byte) (Config, error) {
	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), err
	}
	if cfg.Toggl.AllTimeSince == "" {
		cfg.Toggl.AllTimeSince = DefaultAllTimeSince
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated
// default config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Secrets holds the API tokens read from the environment.
type Secrets struct {
	TogglToken string
	JiraToken  string
}

// LoadSecrets reads API tokens from the environment, loading a .env file
// from the working directory first if one exists.
func LoadSecrets() (Secrets, error) {
	// Missing .env is fine; explicit environment variables still apply.
	_ = godotenv.Load()

	s := Secrets{
		TogglToken: os.Getenv("TOGGL_API_TOKEN"),
		JiraToken:  os.Getenv("JIRA_API_TOKEN"),
	}
	if s.TogglToken == "" {
		return s, fmt.Errorf("TOGGL_API_TOKEN is not set (export it or add it to .env)")
	}
	if s.JiraToken == "" {
		return s, fmt.Errorf("JIRA_API_TOKEN is not set (export it or add it to .env)")
	}
	return s, nil
}
