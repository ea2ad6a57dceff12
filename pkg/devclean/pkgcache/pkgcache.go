// Package pkgcache clears the download caches of JavaScript package managers.
package pkgcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/logging"
)

// DefaultTimeout bounds a single manager's clear command.
const DefaultTimeout = 5 * time.Minute

var (
	// ErrNoManagers is returned when none of the known managers is installed.
	ErrNoManagers = errors.New("no package managers found (npm/yarn/pnpm)")

	// ErrUnknownManager is returned for a manager name outside Managers.
	ErrUnknownManager = errors.New("unknown package manager")
)

// Manager describes a package manager and the command that clears its cache.
type Manager struct {
	Name string
	Args []string
}

// Command returns the clear command as typed in a shell.
func (m Manager) Command() string {
	return m.Name + " " + strings.Join(m.Args, " ")
}

// Managers lists the supported managers in detection order.
var Managers = []Manager{
	{Name: "npm", Args: []string{"cache", "clean", "--force"}},
	{Name: "yarn", Args: []string{"cache", "clean"}},
	{Name: "pnpm", Args: []string{"store", "prune"}},
}

// Lookup returns the manager with the given name.
func Lookup(name string) (Manager, error) {
	for _, m := range Managers {
		if m.Name == name {
			return m, nil
		}
	}
	return Manager{}, fmt.Errorf("%w: %s", ErrUnknownManager, name)
}

// Result is the outcome of clearing one manager's cache.
type Result struct {
	Manager string        `json:"manager"`
	OK      bool          `json:"ok"`
	Output  string        `json:"output,omitempty"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// Cleaner detects and runs package-manager cache commands.
type Cleaner struct {
	// Timeout bounds each command. Zero means DefaultTimeout.
	Timeout time.Duration

	lookPath func(string) (string, error)
	run      func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// New returns a Cleaner that executes real binaries.
func New() *Cleaner {
	return &Cleaner{
		Timeout:  DefaultTimeout,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Available returns the installed managers in detection order.
func (c *Cleaner) Available() []Manager {
	var found []Manager
	for _, m := range Managers {
		if _, err := c.lookPath(m.Name); err == nil {
			found = append(found, m)
		}
	}
	return found
}

// Select resolves names against the installed managers. An empty names list
// selects every installed manager. Names that are unknown or not installed
// are an error.
func (c *Cleaner) Select(names []string) ([]Manager, error) {
	avail := c.Available()
	if len(avail) == 0 {
		return nil, ErrNoManagers
	}
	if len(names) == 0 {
		return avail, nil
	}

	var picked []Manager
	for _, name := range names {
		m, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(avail, func(a Manager) bool { return a.Name == name }) {
			return nil, fmt.Errorf("%s is not installed", name)
		}
		if !slices.ContainsFunc(picked, func(p Manager) bool { return p.Name == name }) {
			picked = append(picked, m)
		}
	}
	return picked, nil
}

// Clear runs each manager's clear command in order. A failing manager is
// reported in its Result and does not stop the others. ctx cancellation
// stops the remaining managers.
func (c *Cleaner) Clear(ctx context.Context, managers []Manager) []Result {
	log := logging.Get("pkgcache")
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Result, 0, len(managers))
	for _, m := range managers {
		if ctx.Err() != nil {
			results = append(results, Result{Manager: m.Name, Error: ctx.Err().Error()})
			continue
		}

		start := time.Now()
		res := Result{Manager: m.Name}

		bin, err := c.lookPath(m.Name)
		if err != nil {
			res.Error = err.Error()
		} else {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			out, err := c.run(cctx, bin, m.Args...)
			cancel()
			res.Output = strings.TrimSpace(string(out))
			if err != nil {
				res.Error = err.Error()
			} else {
				res.OK = true
			}
		}
		res.Elapsed = time.Since(start)

		if res.OK {
			log.Info("cache cleared", "manager", m.Name, "elapsed", res.Elapsed)
		} else {
			log.Warn("cache clear failed", "manager", m.Name, "err", res.Error)
		}
		results = append(results, res)
	}
	return results
}
