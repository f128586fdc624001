package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/cull/pkg/cull/types"
)

// PlainFormatter formats output as a simple tab-separated table,
// suitable for scripting and piping. No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("SIZE\tKIND\tPATH\n")); err != nil {
		return err
	}

	for _, e := range r.Entries {
		row := e.HumanSize() + "\t" + string(e.Kind) + "\t" + e.Path + "\n"
		if _, err := tw.Write([]byte(row)); err != nil {
			return err
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d entries, %s total\n", len(r.Entries), types.FormatSize(r.TotalSize))
	if r.Ignored > 0 {
		fmt.Fprintf(w, "%d entries skipped by snapshot filter\n", r.Ignored)
	}
	return nil
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
