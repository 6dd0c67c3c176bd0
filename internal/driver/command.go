// Package driver launches OpenCompass evaluation runs: it builds the CLI
// invocation, prepares the environment, streams the subprocess output,
// and tails inference logs for progress summaries while the run lives.
package driver

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/noah-ing/Agent0/internal/config"
)

// Options describes one evaluation launch.
type Options struct {
	// Suite names a dataset bundle from config; ignored when Datasets
	// is set.
	Suite string

	// Datasets overrides the suite with explicit dataset config names.
	Datasets []string

	// WorkDir is the OpenCompass output directory.
	WorkDir string

	// Mode is the OpenCompass --mode pass-through (all|infer|eval|viz).
	Mode string

	// MaxWorkers caps concurrent OpenCompass workers.
	MaxWorkers int

	// Reuse resumes an existing work-dir timestamp.
	Reuse string

	// Debug runs OpenCompass single-process.
	Debug bool

	// DryRun prints the command without launching tasks.
	DryRun bool

	// EnvKey overrides the env var the eval API key is read from.
	EnvKey string

	// ExtraArgs are appended verbatim to the OpenCompass invocation.
	ExtraArgs []string

	// OnExpFolder, when set, is invoked once the announced experiment
	// folder exists on disk. Called from the output-streaming goroutine.
	OnExpFolder func(dir string)
}

// ResolveDatasets returns the dataset list for the launch: an explicit
// override wins, otherwise the named suite from config.
func ResolveDatasets(cfg *config.Config, opts Options) ([]string, error) {
	if len(opts.Datasets) > 0 {
		return opts.Datasets, nil
	}
	suite := opts.Suite
	if suite == "" {
		suite = cfg.Eval.DefaultSuite
	}
	return cfg.ResolveSuite(suite)
}

// BuildCommand assembles the full OpenCompass argv. The first element is
// the python interpreter from config.
func BuildCommand(cfg *config.Config, opts Options, datasets []string) []string {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = cfg.Eval.WorkDir
	}
	mode := opts.Mode
	if mode == "" {
		mode = "all"
	}
	maxWorkers := opts.MaxWorkers
	if maxWorkers == 0 {
		maxWorkers = cfg.Eval.MaxWorkers
	}

	argv := []string{
		cfg.Eval.Python,
		"-m", "opencompass.cli.main",
		"--config-dir", cfg.Eval.ConfigDir,
		"--models", cfg.Eval.ModelConfig,
		"--datasets",
	}
	argv = append(argv, datasets...)
	argv = append(argv,
		"--work-dir", workDir,
		"--mode", mode,
		"--max-num-workers", strconv.Itoa(maxWorkers),
	)
	if opts.Debug {
		argv = append(argv, "--debug")
	}
	if opts.DryRun {
		argv = append(argv, "--dry-run")
	}
	if opts.Reuse != "" {
		argv = append(argv, "--reuse", opts.Reuse)
	}
	argv = append(argv, opts.ExtraArgs...)
	return argv
}

// PrepareEnv builds the subprocess environment from the current process
// environment. OPENAI_API_KEY is defaulted from the eval key variable
// (AGENT0_EVAL_API_KEY unless overridden), falling back to "EMPTY" for
// key-less local endpoints.
func PrepareEnv(environ []string, envKey string) []string {
	if envKey == "" {
		envKey = "AGENT0_EVAL_API_KEY"
	}

	vars := make(map[string]string, len(environ))
	env := make([]string, 0, len(environ)+1)
	for _, kv := range environ {
		env = append(env, kv)
		if idx := strings.IndexByte(kv, '='); idx > 0 {
			vars[kv[:idx]] = kv[idx+1:]
		}
	}

	if vars["OPENAI_API_KEY"] == "" {
		key := vars[envKey]
		if key == "" {
			key = "EMPTY"
		}
		env = append(env, "OPENAI_API_KEY="+key)
	}
	return env
}

// FormatCommand renders an argv for display.
func FormatCommand(argv []string) string {
	return strings.Join(argv, " ")
}

// EnsureWorkDir creates the work dir when missing.
func EnsureWorkDir(workDir string) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir %s: %w", workDir, err)
	}
	return nil
}
