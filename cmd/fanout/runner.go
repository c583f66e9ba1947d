package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/alphadose/haxmap"

	"github.com/baxromumarov/parallel"
)

// job is one shell command to run.
type job struct {
	Label   string
	Command string
}

// outcome is the result of running a job.
type outcome struct {
	Label     string        `json:"label"`
	Command   string        `json:"command"`
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Err       string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

func (o outcome) ok() bool {
	return o.ExitCode == 0 && o.Err == ""
}

// buildJobs turns the positional arguments into jobs. Without a template
// every argument is a command; with one, every argument is an item that
// replaces {} in the template, or is appended when the template has no {}.
func buildJobs(args []string, template string) ([]job, error) {
	if len(args) == 0 {
		return nil, errors.New("no commands given")
	}

	jobs := make([]job, 0, len(args))
	for i, arg := range args {
		command := arg
		if template != "" {
			if strings.Contains(template, "{}") {
				command = strings.ReplaceAll(template, "{}", arg)
			} else {
				command = template + " " + arg
			}
		}
		if strings.TrimSpace(command) == "" {
			return nil, fmt.Errorf("command %d is empty", i)
		}
		jobs = append(jobs, job{
			Label:   fmt.Sprintf("[%d] %s", i, command),
			Command: command,
		})
	}
	return jobs, nil
}

type runner struct {
	shell        string
	logger       *slog.Logger
	lockOSThread bool

	// progress receives a live completion counter when non-nil.
	progress io.Writer
	tick     time.Duration
}

// run executes every job in parallel and returns the outcomes in job
// order. A command exiting non-zero is reported in its outcome; only a
// panic while running a job is returned as an error.
func (r *runner) run(ctx context.Context, jobs []job) ([]outcome, error) {
	// Finished jobs by label. Written concurrently by the units and read
	// by the progress side action.
	finished := haxmap.New[string, time.Duration]()

	opts := []parallel.Option{parallel.WithLogger(r.logger)}
	if r.lockOSThread {
		opts = append(opts, parallel.WithLockOSThread())
	}

	p := parallel.New[outcome](opts...)
	parallel.Each(p, jobs, func(j job) outcome {
		start := time.Now()
		defer func() { finished.Set(j.Label, time.Since(start)) }()

		return r.exec(ctx, j)
	})

	if r.progress == nil {
		return p.TryRun()
	}

	outcomes, _, err := parallel.TryFinish(p, func() int {
		return r.watch(finished, len(jobs))
	})
	return outcomes, err
}

func (r *runner) exec(ctx context.Context, j job) outcome {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, r.shell, "-c", j.Command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("starting command", slog.String("label", j.Label))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	o := outcome{
		Label:     j.Label,
		Command:   j.Command,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Elapsed:   elapsed,
		ElapsedMS: elapsed.Milliseconds(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		o.ExitCode = exitErr.ExitCode()
	default:
		o.ExitCode = -1
		o.Err = err.Error()
	}

	if !o.ok() {
		r.logger.Info("command failed",
			slog.String("label", j.Label),
			slog.Int("exit_code", o.ExitCode),
			slog.Duration("elapsed", elapsed),
		)
	}
	return o
}

// watch prints how many of total jobs have finished until all of them
// have, and returns the final count.
func (r *runner) watch(finished *haxmap.Map[string, time.Duration], total int) int {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		n := int(finished.Len())
		fmt.Fprintf(r.progress, "\r%d/%d done", n, total)
		if n >= total {
			fmt.Fprintln(r.progress)
			return n
		}
		<-ticker.C
	}
}
