// Package volume reports space usage of the filesystems holding scan roots.
package volume

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// Usage is the space accounting of one filesystem.
type Usage struct {
	Path        string  `json:"path" yaml:"path"`
	Fstype      string  `json:"fstype,omitempty" yaml:"fstype,omitempty"`
	Total       uint64  `json:"total" yaml:"total"`
	Free        uint64  `json:"free" yaml:"free"`
	Used        uint64  `json:"used" yaml:"used"`
	UsedPercent float64 `json:"used_percent" yaml:"used_percent"`
}

// usageFunc is replaced in tests.
var usageFunc = disk.UsageWithContext

// Of returns the usage of the filesystem containing path.
func Of(ctx context.Context, path string) (Usage, error) {
	st, err := usageFunc(ctx, path)
	if err != nil {
		return Usage{}, fmt.Errorf("volume usage of %s: %w", path, err)
	}
	return Usage{
		Path:        path,
		Fstype:      st.Fstype,
		Total:       st.Total,
		Free:        st.Free,
		Used:        st.Used,
		UsedPercent: st.UsedPercent,
	}, nil
}

// ForRoots returns one Usage per distinct filesystem among roots, in root
// order. Roots whose usage cannot be read are skipped. Two roots are on the
// same filesystem when their totals and free space match exactly.
func ForRoots(ctx context.Context, roots []string) []Usage {
	var out []Usage
	for _, root := range roots {
		u, err := Of(ctx, root)
		if err != nil {
			continue
		}
		dup := false
		for _, seen := range out {
			if seen.Total == u.Total && seen.Free == u.Free && seen.Fstype == u.Fstype {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, u)
		}
	}
	return out
}
