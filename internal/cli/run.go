package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/forPelevin/vsplit/internal/config"
	"github.com/forPelevin/vsplit/internal/deps"
	"github.com/forPelevin/vsplit/internal/logging"
	"github.com/forPelevin/vsplit/internal/pipeline"
	"github.com/forPelevin/vsplit/internal/ports"
	"github.com/forPelevin/vsplit/internal/ports/adapters/picker"
)

// stdinIsTerminal is swapped in tests.
var stdinIsTerminal = func() bool { return isTerminal(os.Stdin) }

func run(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	inputs, err := resolveInputs(ctx, cmd, args, cfg.PickerDir)
	if err != nil {
		return err
	}

	if err := deps.Require(deps.Media(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)); err != nil {
		return err
	}

	pcfg := pipeline.Config{
		Inputs:              inputs,
		Workers:             cfg.Processing.Workers,
		AbortOnSegmentError: cfg.Processing.AbortOnSegmentError,
		CommandTimeout:      cfg.Timeout(),
		FFmpegPath:          cfg.Tools.FFmpeg,
		FFprobePath:         cfg.Tools.FFprobe,
		Logger:              logger,
	}
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	rep, runErr := pipeline.Run(ctx, pcfg)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(rep, isTerminal(cmd.OutOrStdout())))

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := writeReport(reportPath, rep); err != nil {
			return errors.Join(runErr, err)
		}
		logger.Info("report written", "path", reportPath)
	}
	return runErr
}

// resolveConfig layers defaults, the config file, VSPLIT_* env and flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, _, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("workers") {
		cfg.Processing.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("timeout") {
		d, _ := f.GetDuration("timeout")
		if d < 0 {
			return config.Config{}, errors.New("--timeout must be >= 0")
		}
		cfg.Tools.TimeoutSeconds = int((d + time.Second - 1) / time.Second)
	}
	if f.Changed("abort-on-segment-error") {
		cfg.Processing.AbortOnSegmentError, _ = f.GetBool("abort-on-segment-error")
	}
	if f.Changed("dir") {
		cfg.PickerDir, _ = f.GetString("dir")
	}
	if f.Changed("log-level") {
		cfg.Logging.Level, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.Logging.Format, _ = f.GetString("log-format")
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}

func resolveInputs(ctx context.Context, cmd *cobra.Command, args []string, dir string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if !stdinIsTerminal() {
		return nil, errors.New("no input files: pass paths as arguments or run in a terminal to pick them")
	}
	var p ports.FilePicker = picker.New(dir, cmd.InOrStdin(), cmd.ErrOrStderr())
	files, err := p.Pick(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no input files selected")
	}
	return files, nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
