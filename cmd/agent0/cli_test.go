package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-ing/Agent0/internal/config"
	"github.com/noah-ing/Agent0/internal/types"
)

func captureCmd() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	c := config.DefaultConfig()
	c.Eval.WorkDir = filepath.Join(base, "outputs")
	c.Reports.Dir = filepath.Join(base, "reports")
	c.Reports.Template = filepath.Join(base, "reports", "templates", "iteration_report.md")
	c.Reports.Readme = filepath.Join(base, "README.md")
	c.Reports.ExecutorConfig = filepath.Join(base, "configs", "executor.yaml")
	c.Telemetry.Log = filepath.Join(base, "reports", "telemetry.jsonl")
	return c
}

func TestRunPromote(t *testing.T) {
	cfg = testConfig(t)

	workDir := filepath.Join(t.TempDir(), "20260830_101500")
	summaryDir := filepath.Join(workDir, "summary")
	require.NoError(t, os.MkdirAll(summaryDir, 0o755))
	summary := "| dataset | version | metric | mode | model |\n| --- | --- | --- | --- | --- |\n| gsm8k | 1d7fe4 | accuracy | gen | 61.25 |\n"
	require.NoError(t, os.WriteFile(filepath.Join(summaryDir, "summary.md"), []byte(summary), 0o644))
	require.NoError(t, os.WriteFile(cfg.Reports.Readme, []byte("# Agent0\n"), 0o644))

	cmd, out := captureCmd()
	promoteFlags.runName = ""
	require.NoError(t, runPromote(cmd, []string{workDir}))

	assert.Contains(t, out.String(), "Copied summary to")
	archived := filepath.Join(cfg.Reports.Dir, "evals", "20260830_101500.md")
	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, summary, string(data))

	readme, err := os.ReadFile(cfg.Reports.Readme)
	require.NoError(t, err)
	assert.Contains(t, string(readme), "### Latest Benchmark Snapshot (2026-08-30)")
}

func TestRunPromote_MissingSummary(t *testing.T) {
	cfg = testConfig(t)

	cmd, _ := captureCmd()
	promoteFlags.runName = ""
	err := runPromote(cmd, []string{t.TempDir()})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.PROMOTE_SUMMARY_MISSING))
}

func TestRunReport(t *testing.T) {
	cfg = testConfig(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Reports.Template), 0o755))
	template := "# {{RUN_NAME}} ({{DATE}})\nreward {{MEAN_REWARD}} pass {{JUDGE_PASS_RATE}}\n"
	require.NoError(t, os.WriteFile(cfg.Reports.Template, []byte(template), 0o644))

	telemetryPath := filepath.Join(t.TempDir(), "telemetry.jsonl")
	lines := `{"curriculum/reward": 0.4, "judge/is_valid": 1.0}` + "\n" +
		`{"curriculum/reward": 0.6, "judge/is_valid": 1.0}` + "\n"
	require.NoError(t, os.WriteFile(telemetryPath, []byte(lines), 0o644))

	var out bytes.Buffer
	reportCmd.SetOut(&out)
	reportFlags.telemetry = telemetryPath
	reportFlags.template = ""
	reportFlags.output = ""
	reportFlags.runName = "iter_009"
	reportFlags.date = "2026-08-30"
	reportFlags.gitSHA = "abc1234"

	require.NoError(t, runReport(reportCmd, nil))
	assert.Contains(t, out.String(), "[report] wrote")

	content, err := os.ReadFile(filepath.Join(cfg.Reports.Dir, "iter_009.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "# iter_009 (2026-08-30)")
	assert.Contains(t, string(content), "reward 0.5000")
	assert.NotContains(t, string(content), "{{")
}

func TestRunTelemetry(t *testing.T) {
	cfg = testConfig(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Telemetry.Log), 0o755))
	lines := `{"curriculum/reward": 0.4, "curriculum/p_hat": 0.5}` + "\n" +
		`{"curriculum/reward": 0.6, "curriculum/p_hat": 0.9}` + "\n"
	require.NoError(t, os.WriteFile(cfg.Telemetry.Log, []byte(lines), 0o644))

	cmd, out := captureCmd()
	telemetryFlags.log = ""
	telemetryFlags.executorConfig = ""
	telemetryFlags.export = filepath.Join(t.TempDir(), "summary.jsonl")

	require.NoError(t, runTelemetry(cmd, nil))

	assert.Contains(t, out.String(), "records: 2")
	assert.Contains(t, out.String(), "curriculum/reward")
	assert.Contains(t, out.String(), "band [0.30,0.80]")
	assert.FileExists(t, telemetryFlags.export)
}

func TestRunTelemetry_MissingLog(t *testing.T) {
	cfg = testConfig(t)

	cmd, _ := captureCmd()
	telemetryFlags.log = filepath.Join(t.TempDir(), "absent.jsonl")
	telemetryFlags.export = ""

	err := runTelemetry(cmd, nil)
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.REPORT_TELEMETRY_EMPTY))
}

func TestResolveWorkDir(t *testing.T) {
	cfg = testConfig(t)

	t.Run("explicit work dir wins", func(t *testing.T) {
		monitorFlags.workDir = "/tmp/explicit"
		defer func() { monitorFlags.workDir = "" }()

		dir, err := resolveWorkDir()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/explicit", dir)
	})

	t.Run("latest run under base dir", func(t *testing.T) {
		base := t.TempDir()
		for _, name := range []string{"20260829_090000", "20260830_101500"} {
			require.NoError(t, os.MkdirAll(filepath.Join(base, name, "logs", "infer"), 0o755))
		}
		monitorFlags.workDir = ""
		monitorFlags.baseDir = base
		defer func() { monitorFlags.baseDir = "" }()

		dir, err := resolveWorkDir()
		require.NoError(t, err)
		assert.Equal(t, "20260830_101500", filepath.Base(dir))
	})

	t.Run("no runs found", func(t *testing.T) {
		monitorFlags.workDir = ""
		monitorFlags.baseDir = t.TempDir()
		defer func() { monitorFlags.baseDir = "" }()

		_, err := resolveWorkDir()
		require.Error(t, err)
		assert.True(t, types.IsCode(err, types.RUN_NOT_FOUND))
	})
}

func TestRootCommand_Wiring(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"eval", "monitor", "promote", "report", "telemetry", "creds", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
