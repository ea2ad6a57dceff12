// Package config loads devclean settings from a YAML file, DEVCLEAN_
// environment variables and command-line flags.
package config

import "time"

// Default configuration values.
const (
	// DefaultMaxDepth bounds scan recursion below each root.
	DefaultMaxDepth = 3

	// DefaultStaleMonths is the staleness window for node_modules.
	DefaultStaleMonths = 3

	// DefaultDuplicateDepth bounds the duplicate search.
	DefaultDuplicateDepth = 3

	// DefaultDuplicateMinSize excludes small files from duplicate search.
	DefaultDuplicateMinSize = "1KiB"

	// DefaultKeep is the duplicate keeper policy.
	DefaultKeep = "first"

	// DefaultDisplayLimit caps duplicate sets in human-readable reports.
	DefaultDisplayLimit = 5

	// DefaultOrganizeTarget is organized when no directory is given.
	DefaultOrganizeTarget = "~/Downloads"

	// DefaultOrganizeDebounce is the watch-mode quiet period.
	DefaultOrganizeDebounce = 2 * time.Second

	// DefaultCacheTimeout bounds each package-manager command.
	DefaultCacheTimeout = 5 * time.Minute

	// DefaultRetentionDays is how long manifest entries are kept.
	DefaultRetentionDays = 90

	// DefaultFormat is the scan and duplicates output format.
	DefaultFormat = "pretty"
)

// DefaultManagers are the package managers the cache command considers.
var DefaultManagers = []string{"npm", "yarn", "pnpm"}
