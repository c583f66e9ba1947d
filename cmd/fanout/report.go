package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	okMark   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	dim      = color.New(color.Faint).SprintFunc()
)

// writeText prints every outcome in job order: a status line followed by
// the command's indented stdout and stderr.
func writeText(w io.Writer, outcomes []outcome) error {
	for _, o := range outcomes {
		status := okMark("ok")
		if !o.ok() {
			status = failMark(fmt.Sprintf("exit %d", o.ExitCode))
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\n", status, o.Label, dim(o.Elapsed.Round(time.Millisecond))); err != nil {
			return err
		}
		if o.Err != "" {
			if _, err := fmt.Fprintf(w, "  error: %s\n", o.Err); err != nil {
				return err
			}
		}
		for _, stream := range []string{o.Stdout, o.Stderr} {
			if err := writeIndented(w, stream); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeIndented(w io.Writer, s string) error {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	for _, line := range strings.Split(s, "\n") {
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// report is the JSON document: outcomes keyed by label, in job order.
type report struct {
	Failed   int                                     `json:"failed"`
	Commands *orderedmap.OrderedMap[string, outcome] `json:"commands"`
}

func writeJSON(w io.Writer, outcomes []outcome) error {
	rep := report{Commands: orderedmap.New[string, outcome]()}
	for _, o := range outcomes {
		if !o.ok() {
			rep.Failed++
		}
		rep.Commands.Set(o.Label, o)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
