package output

import (
	"bytes"
	"encoding/json"
)

// JSONFormatter writes the report as one indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document(r))
}

func init() {
	Register("json", func() Formatter { return &JSONFormatter{} })
}

var _ Formatter = (*JSONFormatter)(nil)
