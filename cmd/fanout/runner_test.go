package main

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

func testRunner(progress *bytes.Buffer) *runner {
	r := &runner{
		shell:  "/bin/sh",
		logger: slog.New(slog.DiscardHandler),
		tick:   5 * time.Millisecond,
	}
	if progress != nil {
		r.progress = progress
	}
	return r
}

func TestBuildJobs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		template string
		want     []string
		wantErr  bool
	}{
		{
			name: "plain commands",
			args: []string{"echo a", "echo b"},
			want: []string{"echo a", "echo b"},
		},
		{
			name:     "template with placeholder",
			args:     []string{"x.txt", "y.txt"},
			template: "wc -l {} {}",
			want:     []string{"wc -l x.txt x.txt", "wc -l y.txt y.txt"},
		},
		{
			name:     "template without placeholder",
			args:     []string{"1", "2"},
			template: "echo",
			want:     []string{"echo 1", "echo 2"},
		},
		{
			name:    "no arguments",
			wantErr: true,
		},
		{
			name:    "blank command",
			args:    []string{"echo a", "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := buildJobs(tt.args, tt.template)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var got []string
			for i, j := range jobs {
				got = append(got, j.Command)
				assert.True(t, strings.HasPrefix(j.Label, "["+string(rune('0'+i))+"] "), j.Label)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunnerPreservesOrder(t *testing.T) {
	requireShell(t)

	jobs, err := buildJobs([]string{"sleep 0.2; echo first", "sleep 0.1; echo second", "echo third"}, "")
	require.NoError(t, err)

	outcomes, err := testRunner(nil).run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "first\n", outcomes[0].Stdout)
	assert.Equal(t, "second\n", outcomes[1].Stdout)
	assert.Equal(t, "third\n", outcomes[2].Stdout)
	for _, o := range outcomes {
		assert.True(t, o.ok(), o.Label)
	}
}

func TestRunnerExitCodes(t *testing.T) {
	requireShell(t)

	jobs, err := buildJobs([]string{"echo oops >&2; exit 3", "true"}, "")
	require.NoError(t, err)

	outcomes, err := testRunner(nil).run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, 3, outcomes[0].ExitCode)
	assert.Equal(t, "oops\n", outcomes[0].Stderr)
	assert.False(t, outcomes[0].ok())
	assert.True(t, outcomes[1].ok())
}

func TestRunnerMissingShell(t *testing.T) {
	r := testRunner(nil)
	r.shell = "/nonexistent/shell"

	outcomes, err := r.run(context.Background(), []job{{Label: "[0] true", Command: "true"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	assert.Equal(t, -1, outcomes[0].ExitCode)
	assert.NotEmpty(t, outcomes[0].Err)
}

func TestRunnerProgress(t *testing.T) {
	requireShell(t)

	var progress bytes.Buffer
	jobs, err := buildJobs([]string{"a", "b", "c"}, "sleep 0.05; echo {}")
	require.NoError(t, err)

	outcomes, err := testRunner(&progress).run(context.Background(), jobs)
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.Equal(t, "a\n", outcomes[0].Stdout)
	assert.Equal(t, "c\n", outcomes[2].Stdout)
	assert.Contains(t, progress.String(), "3/3 done\n")
}

func TestWriteText(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	err := writeText(&buf, []outcome{
		{Label: "[0] echo hi", Stdout: "hi\n", Elapsed: 1500 * time.Microsecond},
		{Label: "[1] false", ExitCode: 1, Stderr: "bad\nworse\n"},
		{Label: "[2] x", ExitCode: -1, Err: "exec: not found"},
	})
	require.NoError(t, err)

	want := "ok [0] echo hi 2ms\n" +
		"  hi\n" +
		"exit 1 [1] false 0s\n" +
		"  bad\n" +
		"  worse\n" +
		"exit -1 [2] x 0s\n" +
		"  error: exec: not found\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, []outcome{
		{Label: "[1] b", Command: "b", Stdout: "B", ElapsedMS: 4},
		{Label: "[0] a", Command: "a", ExitCode: 2},
	})
	require.NoError(t, err)

	var doc struct {
		Failed   int                        `json:"failed"`
		Commands map[string]json.RawMessage `json:"commands"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Failed)
	assert.Len(t, doc.Commands, 2)

	// Keys keep job order, not sorted order.
	out := buf.String()
	assert.Less(t, strings.Index(out, `"[1] b"`), strings.Index(out, `"[0] a"`))

	var b outcome
	require.NoError(t, json.Unmarshal(doc.Commands["[1] b"], &b))
	assert.Equal(t, "B", b.Stdout)
	assert.EqualValues(t, 4, b.ElapsedMS)
}

func TestRootCommand(t *testing.T) {
	requireShell(t)
	color.NoColor = true

	t.Run("success", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		cmd := newRootCommand(&stdout, &stderr)
		cmd.SetArgs([]string{"--shell", "/bin/sh", "--each", "echo item-{}", "1", "2"})

		require.NoError(t, cmd.ExecuteContext(context.Background()))
		out := stdout.String()
		assert.Contains(t, out, "item-1")
		assert.Less(t, strings.Index(out, "item-1"), strings.Index(out, "item-2"))
	})

	t.Run("failure", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		cmd := newRootCommand(&stdout, &stderr)
		cmd.SetArgs([]string{"--shell", "/bin/sh", "--json", "true", "exit 4"})

		err := cmd.ExecuteContext(context.Background())
		require.ErrorIs(t, err, errCommandsFailed)
		assert.Contains(t, stdout.String(), `"failed": 1`)
	})

	t.Run("no args", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		cmd := newRootCommand(&stdout, &stderr)
		cmd.SetArgs([]string{})

		require.Error(t, cmd.ExecuteContext(context.Background()))
	})
}
