package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero", input: "0", want: 0},
		{name: "bytes suffix", input: "512B", want: 512},
		{name: "kilobytes", input: "100K", want: 100 * KiB},
		{name: "kilobytes lowercase with B", input: "100kb", want: 100 * KiB},
		{name: "megabytes iB", input: "50MiB", want: 50 * MiB},
		{name: "gigabytes", input: "2G", want: 2 * GiB},
		{name: "terabytes", input: "1TB", want: TiB},
		{name: "decimal", input: "1.5G", want: GiB + GiB/2},
		{name: "surrounding whitespace", input: "  10M  ", want: 10 * MiB},
		{name: "space before unit", input: "10 MB", want: 10 * MiB},
		{name: "empty", input: "", wantErr: ErrInvalidSize},
		{name: "negative", input: "-5M", wantErr: ErrNegativeSize},
		{name: "unknown unit", input: "5X", wantErr: ErrInvalidSize},
		{name: "no number", input: "MB", wantErr: ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "0 B", FormatSize(-10))
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 MiB", FormatSize(MiB+MiB/2))
}

func TestScanResultAdd(t *testing.T) {
	var r ScanResult
	r.Add(ReclaimableItem{Path: "/a/node_modules", Size: 100, Kind: KindNodeModules, IsStale: true})
	r.Add(ReclaimableItem{Path: "/a/node_modules2", Size: 5, Kind: KindNodeModules})
	r.Add(ReclaimableItem{Path: "/a/dist", Size: 50, Kind: KindBuild, Subtype: "dist"})
	r.Add(ReclaimableItem{Path: "/a/x.log", Size: 7, Kind: KindLog})
	r.Add(ReclaimableItem{Path: "/a/x.tmp", Size: 3, Kind: KindTemp})
	r.Add(ReclaimableItem{Path: "/a/ignored", Size: 1000, Kind: Kind("other")})

	assert.Equal(t, int64(165), r.TotalSize)
	assert.Equal(t, 5, r.Count())
	assert.Equal(t, int64(105), r.PartitionSize(KindNodeModules))

	var sum int64
	for _, item := range r.All() {
		sum += item.Size
	}
	assert.Equal(t, r.TotalSize, sum)

	all := r.All()
	require.Len(t, all, 5)
	assert.Equal(t, KindNodeModules, all[0].Kind)
	assert.Equal(t, KindTemp, all[4].Kind)
}

func TestScanResultCleanable(t *testing.T) {
	var r ScanResult
	r.Add(ReclaimableItem{Path: "/stale/node_modules", Size: 10, Kind: KindNodeModules, IsStale: true})
	r.Add(ReclaimableItem{Path: "/fresh/node_modules", Size: 10, Kind: KindNodeModules})
	r.Add(ReclaimableItem{Path: "/fresh/dist", Size: 10, Kind: KindBuild})
	r.Add(ReclaimableItem{Path: "/x.log", Size: 10, Kind: KindLog})

	var paths []string
	for _, item := range r.Cleanable() {
		paths = append(paths, item.Path)
	}
	assert.Equal(t, []string{"/stale/node_modules", "/fresh/dist", "/x.log"}, paths)
}

func TestDuplicateSetKeeper(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	set := DuplicateSet{Files: []DuplicateFile{
		{Path: "a", Size: 2048, ModTime: base.Add(2 * time.Hour)},
		{Path: "b", Size: 2048, ModTime: base},
		{Path: "c", Size: 2048, ModTime: base},
	}}

	assert.Equal(t, 0, set.Keeper(KeepFirst))
	assert.Equal(t, 1, set.Keeper(KeepOldest), "ties go to the earlier discovered file")
	assert.Equal(t, int64(4096), set.Wasted())
}

func TestKeepPolicyValid(t *testing.T) {
	assert.True(t, KeepFirst.Valid())
	assert.True(t, KeepOldest.Valid())
	assert.False(t, KeepPolicy("newest").Valid())
}

func TestDigestString(t *testing.T) {
	var d Digest
	d[0] = 0xab
	s := d.String()
	assert.Len(t, s, 64)
	assert.Equal(t, "ab", s[:2])

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, s, string(text))
}
