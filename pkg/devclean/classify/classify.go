// Package classify holds the static tables that decide what devclean treats
// as reclaimable and how the organizer files things away.
package classify

import (
	"path/filepath"
	"slices"
	"strings"
)

// Category is the result of classifying a single directory entry.
type Category int

// Classification results.
const (
	Other Category = iota
	NodeModules
	BuildFolder
	LogFile
	TempFile
)

// String returns a short name for the category.
func (c Category) String() string {
	switch c {
	case NodeModules:
		return "node_modules"
	case BuildFolder:
		return "build"
	case LogFile:
		return "log"
	case TempFile:
		return "temp"
	default:
		return "other"
	}
}

// Folder is true for categories that name whole directories.
func (c Category) Folder() bool {
	return c == NodeModules || c == BuildFolder
}

// nodeModules is the dependency folder name. It is reported separately from
// the other build folders because only stale ones are cleaned.
const nodeModules = "node_modules"

// BuildFolders are generated directory names, matched exactly and
// case-sensitively.
var BuildFolders = []string{
	"dist",
	"build",
	".next",
	".nuxt",
	"out",
	"coverage",
	".cache",
	"tmp",
	"temp",
}

// LogExtensions mark log files.
var LogExtensions = []string{".log", ".logs"}

// TempExtensions mark temporary files.
var TempExtensions = []string{".tmp", ".temp", ".cache"}

// Classify returns the category of an entry given only its base name and
// whether it is a directory. Directory matches are exact; file matches use
// the extension as returned by Ext.
func Classify(name string, isDir bool) Category {
	if isDir {
		if name == nodeModules {
			return NodeModules
		}
		if slices.Contains(BuildFolders, name) {
			return BuildFolder
		}
		return Other
	}

	ext := Ext(name)
	if ext == "" {
		return Other
	}
	if slices.Contains(LogExtensions, ext) {
		return LogFile
	}
	if slices.Contains(TempExtensions, ext) {
		return TempFile
	}
	return Other
}

// Ext returns the extension of name including the leading dot. A name whose
// only dot is the leading one (".bashrc", ".cache") has no extension.
func Ext(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return ext
}

// Bucket describes one organize category.
type Bucket struct {
	Name       string
	Extensions []string
}

// Others is the catch-all bucket for files no other bucket claims.
const Others = "Others"

// Buckets is the ordered organize table. The first bucket listing a file's
// extension wins.
var Buckets = []Bucket{
	{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico"}},
	{Name: "Videos", Extensions: []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".wmv", ".webm"}},
	{Name: "Documents", Extensions: []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".xls", ".xlsx", ".ppt", ".pptx"}},
	{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2"}},
	{Name: "Code", Extensions: []string{".js", ".ts", ".py", ".java", ".cpp", ".c", ".go", ".rs", ".php", ".rb", ".html", ".css"}},
	{Name: "Audio", Extensions: []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a"}},
	{Name: "Executables", Extensions: []string{".exe", ".msi", ".dmg", ".pkg", ".deb", ".rpm", ".app"}},
}

// BucketFor returns the organize bucket name for a file. Matching is case
// insensitive.
func BucketFor(name string) string {
	ext := strings.ToLower(Ext(name))
	if ext == "" {
		return Others
	}
	for _, b := range Buckets {
		if slices.Contains(b.Extensions, ext) {
			return b.Name
		}
	}
	return Others
}
