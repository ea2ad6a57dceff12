package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

// PrettyFormatter renders styled reports for a terminal.
type PrettyFormatter struct{}

// kindTitles are section headings in report order.
var kindTitles = map[types.Kind]string{
	types.KindNodeModules: "node_modules",
	types.KindBuild:       "Build folders",
	types.KindLog:         "Log files",
	types.KindTemp:        "Temp files",
}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	if r.IsDuplicates() {
		f.duplicates(w, r)
	} else {
		f.scan(w, r)
	}
	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
		w.WriteString("\n")
		for _, msg := range r.Warnings {
			w.WriteString(WarningStyle.Render("  " + msg))
			w.WriteString("\n")
		}
	}
	return nil
}

func (f *PrettyFormatter) scan(w *bytes.Buffer, r *Result) {
	s := r.Scan

	var head []string
	head = append(head, label("Roots:", strings.Join(s.Roots, ", ")))
	head = append(head, label("Scanned in:", formatDuration(s.Elapsed)))
	for _, v := range r.Volumes {
		head = append(head, label("Volume:", fmt.Sprintf("%s  %s free of %s (%.0f%% used)",
			v.Path, types.FormatSize(int64(v.Free)), types.FormatSize(int64(v.Total)), v.UsedPercent)))
	}
	if r.Interrupted {
		head = append(head, WarningStyle.Bold(true).Render("Scan interrupted; results are partial"))
	}
	w.WriteString(HeaderBox.Render(strings.Join(head, "\n")))
	w.WriteString("\n")

	if s.Count() == 0 {
		w.WriteString(SuccessStyle.Render("  Nothing to clean. Your disk is tidy."))
		w.WriteString("\n")
	}

	for _, k := range types.Kinds {
		items := s.Partition(k)
		if len(items) == 0 {
			continue
		}
		title := fmt.Sprintf("%s  %d item(s), %s", kindTitles[k], len(items), types.FormatSize(s.PartitionSize(k)))
		w.WriteString(TitleStyle.Render(title))
		w.WriteString("\n")

		width := sizeWidth(items)
		for _, it := range items {
			mark := "     "
			if it.IsStale {
				mark = StaleStyle.Render("stale")
			}
			fmt.Fprintf(w, "  %s  %s  %s\n",
				SizeStyle.Render(padLeft(types.FormatSize(it.Size), width)),
				mark,
				PathStyle.Render(it.Path))
		}
		w.WriteString("\n")
	}

	foot := []string{
		label("Items:", fmt.Sprintf("%d", s.Count())),
		label("Total:", SizeStyle.Render(types.FormatSize(s.TotalSize))),
		label("Cleanable:", SizeStyle.Render(types.FormatSize(r.Cleanable))),
	}
	if n := len(s.Errors); n > 0 {
		foot = append(foot, WarningStyle.Render(fmt.Sprintf("%d path(s) unreadable", n)))
	}
	w.WriteString(FooterBox.Render(strings.Join(foot, "  ")))
	w.WriteString("\n")
}

func (f *PrettyFormatter) duplicates(w *bytes.Buffer, r *Result) {
	policy := r.keep()

	head := []string{
		label("Root:", r.DuplicateRoot),
		label("Keep:", keepText(policy)),
		label("Searched in:", formatDuration(r.Elapsed)),
	}
	if r.Interrupted {
		head = append(head, WarningStyle.Bold(true).Render("Search interrupted; results are partial"))
	}
	w.WriteString(HeaderBox.Render(strings.Join(head, "\n")))
	w.WriteString("\n")

	if len(r.Duplicates) == 0 {
		w.WriteString(SuccessStyle.Render("  No duplicate files found."))
		w.WriteString("\n")
		return
	}

	shown := r.Duplicates
	if r.Limit > 0 && len(shown) > r.Limit {
		shown = shown[:r.Limit]
	}
	for i := range shown {
		set := &shown[i]
		keeper := set.Keeper(policy)
		size := int64(0)
		if len(set.Files) > 0 {
			size = set.Files[0].Size
		}
		title := fmt.Sprintf("Set %d  %d copies of %s  %s", i+1, len(set.Files), types.FormatSize(size), set.Digest.String()[:12])
		w.WriteString(TitleStyle.Render(title))
		w.WriteString("\n")
		for j, file := range set.Files {
			tag := ErrorStyle.Render("remove")
			if j == keeper {
				tag = SuccessStyle.Render("keep  ")
			}
			fmt.Fprintf(w, "  %s  %s\n", tag, PathStyle.Render(file.Path))
		}
		w.WriteString("\n")
	}
	if hidden := len(r.Duplicates) - len(shown); hidden > 0 {
		w.WriteString(MutedStyle.Render(fmt.Sprintf("  ... and %d more set(s)", hidden)))
		w.WriteString("\n")
	}

	foot := []string{
		label("Sets:", fmt.Sprintf("%d", len(r.Duplicates))),
		label("Wasted:", SizeStyle.Render(types.FormatSize(r.Wasted()))),
	}
	w.WriteString(FooterBox.Render(strings.Join(foot, "  ")))
	w.WriteString("\n")
}

// keepText describes a keeper policy.
func keepText(p types.KeepPolicy) string {
	if p == types.KeepOldest {
		return "oldest file in each set (earliest modification time)"
	}
	return "first file found in each set"
}

func label(name, value string) string {
	return LabelStyle.Render(name) + " " + ValueStyle.Render(value)
}

func sizeWidth(items []types.ReclaimableItem) int {
	width := 8
	for _, it := range items {
		width = max(width, len(types.FormatSize(it.Size)))
	}
	return width
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
}

var _ Formatter = (*PrettyFormatter)(nil)
