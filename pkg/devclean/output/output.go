// Package output renders scan and duplicate reports in the formats the CLI
// offers (pretty, plain, json, yaml, paths, null).
//
// Formatters are looked up by name from a registry:
//
//	f, err := output.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := f.Format(&buf, result); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/jamesainslie/devclean/pkg/devclean/volume"
)

// Result is the data handed to a formatter. Exactly one of Scan or
// Duplicates is meaningful: a nil Scan means a duplicates report.
type Result struct {
	// Scan is the (possibly filtered) scan result.
	Scan *types.ScanResult

	// Cleanable is the byte total a clean would free, computed before any
	// display filtering.
	Cleanable int64

	// Volumes reports free space of the filesystems holding the roots.
	Volumes []volume.Usage

	// Duplicates are the duplicate sets found under DuplicateRoot.
	Duplicates []types.DuplicateSet

	// DuplicateRoot is the directory searched for duplicates.
	DuplicateRoot string

	// Keep is the policy that picks the survivor of each set.
	Keep types.KeepPolicy

	// Limit caps the duplicate sets rendered by human-readable formats.
	// Machine formats always include every set. 0 means unlimited.
	Limit int

	// Elapsed is the duplicate search time. Scans carry their own.
	Elapsed time.Duration

	// Warnings are shown after the report.
	Warnings []string

	// Interrupted marks a partial report.
	Interrupted bool
}

// IsDuplicates reports whether r is a duplicates report.
func (r *Result) IsDuplicates() bool {
	return r.Scan == nil
}

// keep returns the effective keeper policy.
func (r *Result) keep() types.KeepPolicy {
	if r.Keep == "" {
		return types.KeepFirst
	}
	return r.Keep
}

// Wasted returns the bytes held by non-keeper copies.
func (r *Result) Wasted() int64 {
	var total int64
	for i := range r.Duplicates {
		total += r.Duplicates[i].Wasted()
	}
	return total
}

// Formatter renders a Result.
type Formatter interface {
	// Format writes the rendered result to w.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory creates a Formatter.
type FormatterFactory func() Formatter

// Registry maps formatter names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register adds or replaces a formatter.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %v)", name, r.available())
	}
	return factory(), nil
}

// Available returns the registered names, sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available()
}

func (r *Registry) available() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in formatters.
var DefaultRegistry = NewRegistry()

// Register adds a formatter to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a formatter from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the default registry's formatters.
func Available() []string {
	return DefaultRegistry.Available()
}

// formatDuration renders d for humans.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0s"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
