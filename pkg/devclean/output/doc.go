package output

import (
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/jamesainslie/devclean/pkg/devclean/volume"
)

// scanDoc is the machine-readable shape of a scan report.
type scanDoc struct {
	Report      string            `json:"report" yaml:"report"`
	Roots       []string          `json:"roots" yaml:"roots"`
	Volumes     []volume.Usage    `json:"volumes,omitempty" yaml:"volumes,omitempty"`
	Summary     scanSummary       `json:"summary" yaml:"summary"`
	Items       []itemDoc         `json:"items" yaml:"items"`
	Errors      []types.ScanError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings    []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Interrupted bool              `json:"interrupted" yaml:"interrupted"`
}

type scanSummary struct {
	Items          int              `json:"items" yaml:"items"`
	TotalSize      int64            `json:"total_size" yaml:"total_size"`
	TotalSizeHuman string           `json:"total_size_human" yaml:"total_size_human"`
	Cleanable      int64            `json:"cleanable" yaml:"cleanable"`
	ByKind         map[string]int64 `json:"by_kind" yaml:"by_kind"`
	Elapsed        string           `json:"elapsed" yaml:"elapsed"`
}

type itemDoc struct {
	Path      string    `json:"path" yaml:"path"`
	Kind      string    `json:"kind" yaml:"kind"`
	Subtype   string    `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Size      int64     `json:"size" yaml:"size"`
	SizeHuman string    `json:"size_human" yaml:"size_human"`
	Stale     bool      `json:"stale" yaml:"stale"`
	ModTime   time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitempty"`
}

// dupDoc is the machine-readable shape of a duplicates report.
type dupDoc struct {
	Report      string     `json:"report" yaml:"report"`
	Root        string     `json:"root" yaml:"root"`
	Keep        string     `json:"keep" yaml:"keep"`
	Summary     dupSummary `json:"summary" yaml:"summary"`
	Sets        []setDoc   `json:"sets" yaml:"sets"`
	Warnings    []string   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Interrupted bool       `json:"interrupted" yaml:"interrupted"`
}

type dupSummary struct {
	Sets        int    `json:"sets" yaml:"sets"`
	Files       int    `json:"files" yaml:"files"`
	Wasted      int64  `json:"wasted" yaml:"wasted"`
	WastedHuman string `json:"wasted_human" yaml:"wasted_human"`
	Elapsed     string `json:"elapsed" yaml:"elapsed"`
}

type setDoc struct {
	Digest string    `json:"digest" yaml:"digest"`
	Size   int64     `json:"size" yaml:"size"`
	Wasted int64     `json:"wasted" yaml:"wasted"`
	Files  []fileDoc `json:"files" yaml:"files"`
}

type fileDoc struct {
	Path    string    `json:"path" yaml:"path"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	Keep    bool      `json:"keep" yaml:"keep"`
}

// document converts r into scanDoc or dupDoc.
func document(r *Result) any {
	if r.IsDuplicates() {
		return buildDupDoc(r)
	}
	return buildScanDoc(r)
}

func buildScanDoc(r *Result) scanDoc {
	s := r.Scan
	items := make([]itemDoc, 0, s.Count())
	byKind := make(map[string]int64, len(types.Kinds))
	for _, k := range types.Kinds {
		byKind[string(k)] = s.PartitionSize(k)
	}
	for _, it := range s.All() {
		items = append(items, itemDoc{
			Path:      it.Path,
			Kind:      string(it.Kind),
			Subtype:   it.Subtype,
			Size:      it.Size,
			SizeHuman: types.FormatSize(it.Size),
			Stale:     it.IsStale,
			ModTime:   it.ModTime,
		})
	}
	roots := s.Roots
	if roots == nil {
		roots = []string{}
	}
	return scanDoc{
		Report:  "scan",
		Roots:   roots,
		Volumes: r.Volumes,
		Summary: scanSummary{
			Items:          len(items),
			TotalSize:      s.TotalSize,
			TotalSizeHuman: types.FormatSize(s.TotalSize),
			Cleanable:      r.Cleanable,
			ByKind:         byKind,
			Elapsed:        formatDuration(s.Elapsed),
		},
		Items:       items,
		Errors:      s.Errors,
		Warnings:    r.Warnings,
		Interrupted: r.Interrupted,
	}
}

func buildDupDoc(r *Result) dupDoc {
	policy := r.keep()
	sets := make([]setDoc, 0, len(r.Duplicates))
	files := 0
	for i := range r.Duplicates {
		set := &r.Duplicates[i]
		keeper := set.Keeper(policy)
		fd := make([]fileDoc, len(set.Files))
		for j, f := range set.Files {
			fd[j] = fileDoc{Path: f.Path, ModTime: f.ModTime, Keep: j == keeper}
		}
		files += len(set.Files)

		var size int64
		if len(set.Files) > 0 {
			size = set.Files[0].Size
		}
		sets = append(sets, setDoc{
			Digest: set.Digest.String(),
			Size:   size,
			Wasted: set.Wasted(),
			Files:  fd,
		})
	}
	wasted := r.Wasted()
	return dupDoc{
		Report: "duplicates",
		Root:   r.DuplicateRoot,
		Keep:   string(policy),
		Summary: dupSummary{
			Sets:        len(sets),
			Files:       files,
			Wasted:      wasted,
			WastedHuman: types.FormatSize(wasted),
			Elapsed:     formatDuration(r.Elapsed),
		},
		Sets:        sets,
		Warnings:    r.Warnings,
		Interrupted: r.Interrupted,
	}
}
