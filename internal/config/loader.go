package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-ing/Agent0/internal/types"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	// Start from defaults so partial files stay valid.
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	interpolateConfig(cfg)
	ApplyEnvOverrides(cfg)

	if err := l.validator.Validate(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "configuration validation failed", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns the default configuration with
// environment overrides applied.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)
		if err := l.validator.Validate(cfg); err != nil {
			return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "default configuration validation failed", err)
		}
		return cfg, nil
	}

	return l.Load(path)
}

// LoadDotEnv loads a repo-scoped .env file when present.
// Existing environment variables are never overwritten.
func LoadDotEnv(root string) error {
	path := root
	if path == "" {
		path = "."
	}
	envPath := path + string(os.PathSeparator) + ".env"
	if _, err := os.Stat(envPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(envPath)
}

// ApplyEnvOverrides overlays AGENT0_* environment variables on the config.
// Values pass through verbatim; the harness never reinterprets them.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENT0_VLLM_BASE"); v != "" {
		cfg.Endpoints.VLLMBase = v
	}
	if v := os.Getenv("AGENT0_EVAL_MODEL"); v != "" {
		cfg.Endpoints.EvalModel = v
	}
	if v := os.Getenv("AGENT0_EVAL_API_KEY"); v != "" {
		cfg.Endpoints.EvalAPIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Endpoints.EvalAPIKey == "" {
		cfg.Endpoints.EvalAPIKey = v
	}
	if v := os.Getenv("AGENT0_VERIFIER_ENDPOINT"); v != "" {
		cfg.Endpoints.VerifierEndpoint = v
	}
	if v := os.Getenv("AGENT0_VERIFIER_MODEL"); v != "" {
		cfg.Endpoints.VerifierModel = v
	}
	if v := os.Getenv("AGENT0_USE_WANDB"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.UseWandb = b
		}
	}
	if v := os.Getenv("AGENT0_WANDB_PROJECT"); v != "" {
		cfg.Telemetry.WandbProject = v
	}
}

// interpolateConfig applies ${VAR} interpolation to every string field
// that commonly carries environment references.
func interpolateConfig(cfg *Config) {
	cfg.Endpoints.VLLMBase = interpolateString(cfg.Endpoints.VLLMBase)
	cfg.Endpoints.EvalModel = interpolateString(cfg.Endpoints.EvalModel)
	cfg.Endpoints.EvalAPIKey = interpolateString(cfg.Endpoints.EvalAPIKey)
	cfg.Endpoints.VerifierEndpoint = interpolateString(cfg.Endpoints.VerifierEndpoint)
	cfg.Endpoints.VerifierModel = interpolateString(cfg.Endpoints.VerifierModel)
	cfg.Eval.WorkDir = interpolateString(cfg.Eval.WorkDir)
	cfg.Eval.ConfigDir = interpolateString(cfg.Eval.ConfigDir)
	cfg.Eval.Python = interpolateString(cfg.Eval.Python)
	cfg.Reports.Dir = interpolateString(cfg.Reports.Dir)
	cfg.Reports.Template = interpolateString(cfg.Reports.Template)
	cfg.Reports.Readme = interpolateString(cfg.Reports.Readme)
	cfg.Reports.ExecutorConfig = interpolateString(cfg.Reports.ExecutorConfig)
	cfg.Telemetry.Log = interpolateString(cfg.Telemetry.Log)
	cfg.Telemetry.WandbProject = interpolateString(cfg.Telemetry.WandbProject)
	cfg.Logging.Level = interpolateString(cfg.Logging.Level)
	cfg.Logging.Format = interpolateString(cfg.Logging.Format)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as-is so validation can report them.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}

// ResolveSuite returns the dataset list for a suite name.
func (c *Config) ResolveSuite(name string) ([]string, error) {
	if name == "" {
		name = c.Eval.DefaultSuite
	}
	datasets, ok := c.Eval.Suites[name]
	if !ok {
		known := make([]string, 0, len(c.Eval.Suites))
		for k := range c.Eval.Suites {
			known = append(known, k)
		}
		return nil, fmt.Errorf("unknown suite %q (known: %s)", name, strings.Join(known, ", "))
	}
	return datasets, nil
}
