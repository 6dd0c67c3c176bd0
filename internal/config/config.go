package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for the Agent0 evaluation harness.
type Config struct {
	Endpoints EndpointsConfig `mapstructure:"endpoints" yaml:"endpoints"`
	Eval      EvalConfig      `mapstructure:"eval" yaml:"eval" validate:"required"`
	Monitor   MonitorConfig   `mapstructure:"monitor" yaml:"monitor" validate:"required"`
	Reports   ReportsConfig   `mapstructure:"reports" yaml:"reports"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// EndpointsConfig describes the model endpoints the harness talks to.
// All values can be interpolated from environment variables using
// ${VAR_NAME} syntax and are overridden by the AGENT0_* variables.
type EndpointsConfig struct {
	// VLLMBase is the OpenAI-compatible base URL of the model under
	// evaluation (AGENT0_VLLM_BASE).
	VLLMBase string `mapstructure:"vllm_base" yaml:"vllm_base" validate:"omitempty,url"`

	// EvalModel is the model name forwarded to the evaluation platform
	// (AGENT0_EVAL_MODEL).
	EvalModel string `mapstructure:"eval_model" yaml:"eval_model"`

	// EvalAPIKey authenticates against the endpoint under evaluation
	// (AGENT0_EVAL_API_KEY, falling back to OPENAI_API_KEY).
	EvalAPIKey string `mapstructure:"eval_api_key" yaml:"eval_api_key"`

	// VerifierEndpoint is the judge endpoint used by the credential
	// self-test (AGENT0_VERIFIER_ENDPOINT).
	VerifierEndpoint string `mapstructure:"verifier_endpoint" yaml:"verifier_endpoint" validate:"omitempty,url"`

	// VerifierModel is the judge model name (AGENT0_VERIFIER_MODEL).
	VerifierModel string `mapstructure:"verifier_model" yaml:"verifier_model"`
}

// EvalConfig configures the evaluation driver.
type EvalConfig struct {
	// WorkDir is the base directory for evaluation outputs.
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir" validate:"required"`

	// ConfigDir holds the evaluation platform's config tree.
	ConfigDir string `mapstructure:"config_dir" yaml:"config_dir" validate:"required"`

	// ModelConfig names the model config inside ConfigDir.
	ModelConfig string `mapstructure:"model_config" yaml:"model_config" validate:"required"`

	// DefaultSuite is used when no --suite or --datasets is given.
	DefaultSuite string `mapstructure:"default_suite" yaml:"default_suite" validate:"required"`

	// Suites maps suite names to dataset config name lists.
	Suites map[string][]string `mapstructure:"suites" yaml:"suites" validate:"required,min=1"`

	// MaxWorkers is the default worker count forwarded to the platform.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" validate:"min=1,max=64"`

	// Python is the interpreter used to launch the platform.
	Python string `mapstructure:"python" yaml:"python" validate:"required"`
}

// MonitorConfig configures the progress monitor.
type MonitorConfig struct {
	// Refresh is the polling cadence of the dashboard.
	Refresh time.Duration `mapstructure:"refresh" yaml:"refresh" validate:"min=1s"`

	// StallThreshold is the idle window after which an unfinished
	// dataset is flagged as stalled.
	StallThreshold time.Duration `mapstructure:"stall_threshold" yaml:"stall_threshold" validate:"min=10s"`

	// TailInterval is the cadence of the driver's in-process log tailer.
	TailInterval time.Duration `mapstructure:"tail_interval" yaml:"tail_interval" validate:"min=1s"`
}

// ReportsConfig configures report generation and promotion.
type ReportsConfig struct {
	// Dir is the root of the permanent reports tree.
	Dir string `mapstructure:"dir" yaml:"dir" validate:"required"`

	// Template is the iteration report template path.
	Template string `mapstructure:"template" yaml:"template" validate:"required"`

	// Readme is the README updated by promotion.
	Readme string `mapstructure:"readme" yaml:"readme" validate:"required"`

	// ExecutorConfig is the YAML holding self-consistency band thresholds.
	ExecutorConfig string `mapstructure:"executor_config" yaml:"executor_config"`
}

// TelemetryConfig configures telemetry inputs and W&B pass-through.
type TelemetryConfig struct {
	// Log is the default telemetry JSONL path.
	Log string `mapstructure:"log" yaml:"log"`

	// UseWandb mirrors AGENT0_USE_WANDB; the harness only forwards it.
	UseWandb bool `mapstructure:"use_wandb" yaml:"use_wandb"`

	// WandbProject mirrors AGENT0_WANDB_PROJECT.
	WandbProject string `mapstructure:"wandb_project" yaml:"wandb_project"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// DefaultHomeDir returns the default harness home directory (~/.agent0).
func DefaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".agent0"
	}
	return filepath.Join(home, ".agent0")
}

// DefaultConfigPath returns the default config file path under homeDir.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
