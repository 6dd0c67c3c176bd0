package config

import (
	"path/filepath"
	"time"
)

// Suite names bundled with the harness.
const (
	SuiteMathLite  = "math-lite"
	SuiteMathHeavy = "math-heavy"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Endpoints: EndpointsConfig{
			VLLMBase:      "",
			EvalModel:     "agent0-executor",
			VerifierModel: "gpt-4o-mini-verifier",
		},
		Eval: EvalConfig{
			WorkDir:      filepath.Join("outputs", "opencompass"),
			ConfigDir:    filepath.Join("configs", "opencompass"),
			ModelConfig:  "agent0_vllm",
			DefaultSuite: SuiteMathLite,
			Suites: map[string][]string{
				SuiteMathLite: {
					"gsm8k_gen_1d7fe4",
					"math_0shot_gen_393424",
				},
				SuiteMathHeavy: {
					"gsm8k_gen_1d7fe4",
					"math_0shot_gen_393424",
					"bbh_gen_2879b0",
					"gpqa_gen_4baadb",
				},
			},
			MaxWorkers: 1,
			Python:     "python3",
		},
		Monitor: MonitorConfig{
			Refresh:        5 * time.Second,
			StallThreshold: 5 * time.Minute,
			TailInterval:   15 * time.Second,
		},
		Reports: ReportsConfig{
			Dir:            "reports",
			Template:       filepath.Join("reports", "templates", "iteration_report.md"),
			Readme:         "README.md",
			ExecutorConfig: filepath.Join("configs", "executor.yaml"),
		},
		Telemetry: TelemetryConfig{
			Log:          filepath.Join("reports", "telemetry.jsonl"),
			UseWandb:     false,
			WandbProject: "agent0",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
