package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

// PlainFormatter writes an unstyled, column-aligned table.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if r.IsDuplicates() {
		policy := r.keep()
		fmt.Fprintln(tw, "SET\tSIZE\tACTION\tPATH")
		shown := r.Duplicates
		if r.Limit > 0 && len(shown) > r.Limit {
			shown = shown[:r.Limit]
		}
		for i := range shown {
			set := &shown[i]
			keeper := set.Keeper(policy)
			for j, file := range set.Files {
				action := "remove"
				if j == keeper {
					action = "keep"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, types.FormatSize(file.Size), action, file.Path)
			}
		}
		return tw.Flush()
	}

	fmt.Fprintln(tw, "KIND\tSIZE\tSTALE\tPATH")
	for _, it := range r.Scan.All() {
		stale := "-"
		if it.IsStale {
			stale = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Kind, types.FormatSize(it.Size), stale, it.Path)
	}
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter { return &PlainFormatter{} })
}

var _ Formatter = (*PlainFormatter)(nil)
