package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, SuiteMathLite, cfg.Eval.DefaultSuite)
	assert.Contains(t, cfg.Eval.Suites, SuiteMathLite)
	assert.Contains(t, cfg.Eval.Suites, SuiteMathHeavy)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Refresh)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.StallThreshold)
	assert.Equal(t, 15*time.Second, cfg.Monitor.TailInterval)
	assert.Equal(t, 1, cfg.Eval.MaxWorkers)
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, NewValidator().Validate(cfg))
}

func TestValidator_NilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	assert.Error(t, err)
}

func TestValidator_UnknownDefaultSuite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Eval.DefaultSuite = "nonexistent"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_suite")
}

func TestValidator_EmptySuite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Eval.Suites["empty"] = []string{}

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one dataset")
}

func TestValidator_StallThresholdBelowRefresh(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Monitor.Refresh = 30 * time.Second
	cfg.Monitor.StallThreshold = 30 * time.Second

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stall_threshold")
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	loader := NewConfigLoader(NewValidator())

	cfg, err := loader.LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Eval.DefaultSuite, cfg.Eval.DefaultSuite)
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
eval:
  default_suite: math-heavy
  max_workers: 4
monitor:
  refresh: 10s
  stall_threshold: 10m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := NewConfigLoader(NewValidator())
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, SuiteMathHeavy, cfg.Eval.DefaultSuite)
	assert.Equal(t, 4, cfg.Eval.MaxWorkers)
	assert.Equal(t, 10*time.Second, cfg.Monitor.Refresh)
	assert.Equal(t, 10*time.Minute, cfg.Monitor.StallThreshold)
	// Unspecified sections keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Monitor.TailInterval)
}

func TestLoader_EnvInterpolation(t *testing.T) {
	t.Setenv("TEST_AGENT0_BASE", "http://localhost:8000/v1")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
endpoints:
  vllm_base: ${TEST_AGENT0_BASE}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := NewConfigLoader(NewValidator())
	cfg, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/v1", cfg.Endpoints.VLLMBase)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AGENT0_VLLM_BASE", "http://vllm:8000/v1")
	t.Setenv("AGENT0_EVAL_MODEL", "agent0-iter3")
	t.Setenv("AGENT0_EVAL_API_KEY", "sk-test")
	t.Setenv("AGENT0_USE_WANDB", "true")
	t.Setenv("AGENT0_WANDB_PROJECT", "agent0-evals")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "http://vllm:8000/v1", cfg.Endpoints.VLLMBase)
	assert.Equal(t, "agent0-iter3", cfg.Endpoints.EvalModel)
	assert.Equal(t, "sk-test", cfg.Endpoints.EvalAPIKey)
	assert.True(t, cfg.Telemetry.UseWandb)
	assert.Equal(t, "agent0-evals", cfg.Telemetry.WandbProject)
}

func TestApplyEnvOverrides_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("AGENT0_EVAL_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg := DefaultConfig()
	cfg.Endpoints.EvalAPIKey = ""
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "sk-openai", cfg.Endpoints.EvalAPIKey)
}

func TestResolveSuite(t *testing.T) {
	cfg := DefaultConfig()

	datasets, err := cfg.ResolveSuite(SuiteMathHeavy)
	require.NoError(t, err)
	assert.Len(t, datasets, 4)

	// Empty name resolves the default suite.
	datasets, err = cfg.ResolveSuite("")
	require.NoError(t, err)
	assert.Equal(t, cfg.Eval.Suites[cfg.Eval.DefaultSuite], datasets)

	_, err = cfg.ResolveSuite("bogus")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AGENT0_DOTENV_PROBE=loaded\n"), 0o644))
	t.Setenv("AGENT0_DOTENV_PROBE", "")
	os.Unsetenv("AGENT0_DOTENV_PROBE")

	require.NoError(t, LoadDotEnv(dir))
	assert.Equal(t, "loaded", os.Getenv("AGENT0_DOTENV_PROBE"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(t.TempDir()))
}
