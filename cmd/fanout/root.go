package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errCommandsFailed = errors.New("one or more commands failed")

type options struct {
	each         string
	shell        string
	logLevel     string
	logFormat    string
	json         bool
	progress     bool
	lockOSThread bool
	noColor      bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "fanout [flags] COMMAND...",
		Short: "Run shell commands in parallel and print their output in order",
		Long: `fanout starts every command at once, waits for all of them and prints
their output in the order the commands were given, regardless of which
finished first.

With --each, the positional arguments are items and the template is run
once per item, with {} replaced by the item.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noColor {
				color.NoColor = true
			}

			logger := newLogger(opts.logLevel, opts.logFormat, stderr)

			jobs, err := buildJobs(args, opts.each)
			if err != nil {
				return err
			}

			r := &runner{
				shell:        opts.shell,
				logger:       logger,
				lockOSThread: opts.lockOSThread,
				tick:         100 * time.Millisecond,
			}
			if opts.progress {
				r.progress = stderr
			}

			start := time.Now()
			outcomes, err := r.run(cmd.Context(), jobs)
			if err != nil {
				return fmt.Errorf("run commands: %w", err)
			}
			logger.Debug("all commands finished", "count", len(outcomes), "elapsed", time.Since(start))

			if opts.json {
				err = writeJSON(stdout, outcomes)
			} else {
				err = writeText(stdout, outcomes)
			}
			if err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			for _, o := range outcomes {
				if !o.ok() {
					return errCommandsFailed
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.each, "each", "", "command template run once per argument; {} is replaced by the argument")
	flags.StringVar(&opts.shell, "shell", envOr("FANOUT_SHELL", "/bin/sh"), "shell used to run commands (env FANOUT_SHELL)")
	flags.StringVar(&opts.logLevel, "log-level", envOr("FANOUT_LOG_LEVEL", "warn"), "log level: debug, info, warn, error (env FANOUT_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", envOr("FANOUT_LOG_FORMAT", "console"), "log format: console or json (env FANOUT_LOG_FORMAT)")
	flags.BoolVar(&opts.json, "json", false, "print a JSON report instead of text")
	flags.BoolVar(&opts.progress, "progress", false, "print a live completion counter to stderr")
	flags.BoolVar(&opts.lockOSThread, "lock-os-thread", false, "run every command from a dedicated OS thread")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	return cmd
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
