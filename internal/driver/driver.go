package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/noah-ing/Agent0/internal/config"
	"github.com/noah-ing/Agent0/internal/observability"
	"github.com/noah-ing/Agent0/internal/types"
)

var expFolderPattern = regexp.MustCompile(`Current exp folder:\s*(.+?)\s*$`)

// Runner launches and supervises one OpenCompass subprocess.
type Runner struct {
	cfg          *config.Config
	out          io.Writer
	tailInterval time.Duration
	environ      func() []string
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithTailInterval overrides the progress tailer cadence.
func WithTailInterval(interval time.Duration) RunnerOption {
	return func(r *Runner) { r.tailInterval = interval }
}

func withEnviron(fn func() []string) RunnerOption {
	return func(r *Runner) { r.environ = fn }
}

// NewRunner creates a runner writing subprocess output and progress
// summaries to out.
func NewRunner(cfg *config.Config, out io.Writer, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:          cfg,
		out:          out,
		tailInterval: cfg.Monitor.TailInterval,
		environ:      os.Environ,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes a finished (or dry-run) evaluation launch.
type Result struct {
	// RunID correlates this launch with the driver's log entries and
	// trace spans.
	RunID types.ID

	// Command is the argv that was (or would be) executed.
	Command []string

	// ExpFolder is the experiment folder OpenCompass announced, when
	// one was seen.
	ExpFolder string
}

// Run launches the evaluation and blocks until the subprocess exits.
// Subprocess failures are returned unmodified so callers can inspect
// the exit code; only launch problems are wrapped.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	tracer := otel.Tracer("agent0/driver")
	ctx, span := tracer.Start(ctx, "driver.run")
	defer span.End()

	runID := types.NewID()
	span.SetAttributes(attribute.String("eval.run_id", string(runID)))
	log := observability.NewRunLogger(slog.Default().Handler(), string(runID), "driver")

	datasets, err := ResolveDatasets(r.cfg, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dataset resolution failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.StringSlice("eval.datasets", datasets),
		attribute.String("eval.mode", opts.Mode),
	)

	argv := BuildCommand(r.cfg, opts, datasets)
	result := &Result{RunID: runID, Command: argv}

	fmt.Fprintf(r.out, "[eval] launching: %s\n", FormatCommand(argv))
	log.Debug(ctx, "evaluation launch", "datasets", datasets, "mode", opts.Mode, "dry_run", opts.DryRun)
	if opts.DryRun {
		return result, nil
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = r.cfg.Eval.WorkDir
	}
	if err := EnsureWorkDir(workDir); err != nil {
		span.RecordError(err)
		return nil, types.WrapError(types.EVAL_LAUNCH_FAILED, "failed to prepare work dir", err)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = PrepareEnv(r.environ(), opts.EnvKey)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, types.WrapError(types.EVAL_LAUNCH_FAILED, "failed to open output pipe", err)
	}
	// OpenCompass interleaves progress on stderr; merge the streams.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "launch failed")
		return nil, types.WrapError(types.EVAL_LAUNCH_FAILED,
			fmt.Sprintf("failed to launch %s", argv[0]), err)
	}

	tailCtx, stopTail := context.WithCancel(ctx)
	defer stopTail()
	group, tailCtx := errgroup.WithContext(tailCtx)

	tailStarted := false
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(r.out, line)

		if result.ExpFolder == "" {
			if match := expFolderPattern.FindStringSubmatch(line); match != nil {
				result.ExpFolder = strings.TrimSpace(match[1])
				span.SetAttributes(attribute.String("eval.exp_folder", result.ExpFolder))
				log.Debug(ctx, "experiment folder detected", "path", result.ExpFolder)
			}
		}
		if !tailStarted && result.ExpFolder != "" {
			if _, statErr := os.Stat(result.ExpFolder); statErr == nil {
				tailStarted = true
				tailer := NewTailer(result.ExpFolder, r.tailInterval, r.emitProgress, r.notifyTracking)
				group.Go(func() error {
					tailer.Run(tailCtx)
					return nil
				})
				if opts.OnExpFolder != nil {
					opts.OnExpFolder(result.ExpFolder)
				}
			}
		}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so the child is not blocked on a full pipe.
		io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	stopTail()
	group.Wait()

	if waitErr != nil {
		span.RecordError(waitErr)
		span.SetStatus(codes.Error, "evaluation exited with error")
		log.Error(ctx, "evaluation exited", "error", waitErr.Error())
		return result, waitErr
	}
	if scanErr != nil {
		span.RecordError(scanErr)
		span.SetStatus(codes.Error, "output streaming failed")
		return result, types.WrapError(types.EVAL_OUTPUT_FAILED,
			"failed to stream evaluation output", scanErr)
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (r *Runner) emitProgress(dataset, summary string) {
	fmt.Fprintf(r.out, "[progress:%s] %s\n", dataset, summary)
}

func (r *Runner) notifyTracking(logRoot string) {
	fmt.Fprintf(r.out, "[progress] tracking OpenCompass logs under %s\n", logRoot)
}
