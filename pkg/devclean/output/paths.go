package output

import (
	"bytes"
)

// PathsFormatter writes one path per line for piping into other tools. For
// scans it lists every item; for duplicates it lists only the copies the
// keeper policy would remove.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, p := range reportPaths(r) {
		w.WriteString(p)
		w.WriteByte('\n')
	}
	return nil
}

// NullFormatter is PathsFormatter with NUL separators, for xargs -0.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, p := range reportPaths(r) {
		w.WriteString(p)
		w.WriteByte(0)
	}
	return nil
}

func reportPaths(r *Result) []string {
	var paths []string
	if r.IsDuplicates() {
		policy := r.keep()
		for i := range r.Duplicates {
			set := &r.Duplicates[i]
			keeper := set.Keeper(policy)
			for j, file := range set.Files {
				if j != keeper {
					paths = append(paths, file.Path)
				}
			}
		}
		return paths
	}
	for _, it := range r.Scan.All() {
		paths = append(paths, it.Path)
	}
	return paths
}

func init() {
	Register("paths", func() Formatter { return &PathsFormatter{} })
	Register("null", func() Formatter { return &NullFormatter{} })
}

var (
	_ Formatter = (*PathsFormatter)(nil)
	_ Formatter = (*NullFormatter)(nil)
)
