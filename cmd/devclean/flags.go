package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/jamesainslie/devclean/pkg/devclean/filter"
	"github.com/jamesainslie/devclean/pkg/devclean/output"
	"github.com/jamesainslie/devclean/pkg/devclean/scanner"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errNoRoots is returned when no root was given and none of the default
// development directories exist.
var errNoRoots = errors.New("no development directories found; pass a directory to scan")

// addWalkFlags adds the traversal flags shared by scan and clean.
func addWalkFlags(cmd *cobra.Command) {
	cmd.Flags().Int("depth", config.DefaultMaxDepth, "levels below each root to descend")
	cmd.Flags().Int("stale-months", config.DefaultStaleMonths, "months after which a project's node_modules is stale")
}

// addScanFlags adds the traversal flags plus report filtering.
func addScanFlags(cmd *cobra.Command) {
	addWalkFlags(cmd)
	cmd.Flags().StringSliceP("kind", "k", nil, "only show these kinds (node_modules, build, log, temp)")
	cmd.Flags().StringP("min-size", "s", "", "hide items smaller than this (e.g. 100M)")
	cmd.Flags().Bool("stale-only", false, "only show stale items")
	cmd.Flags().String("sort", "size", "sort items by: size, path, kind, age")
	cmd.Flags().Bool("reverse", false, "reverse the sort order")
	cmd.Flags().IntP("limit", "l", 0, "show at most N items per kind (0 = all)")
	cmd.Flags().StringSliceP("exclude", "e", nil, "hide paths matching these glob patterns")
}

// scanOptions builds scanner options from the command's flags, falling back
// to the configuration for anything not given.
func scanOptions(cmd *cobra.Command, args []string, cfg *config.Config) (scanner.Options, error) {
	opts := scanner.DefaultOptions()
	opts.MaxDepth = cfg.Scan.MaxDepth
	opts.StaleMonths = cfg.Scan.StaleMonths

	if cmd.Flags().Changed("depth") {
		opts.MaxDepth, _ = cmd.Flags().GetInt("depth")
	}
	if cmd.Flags().Changed("stale-months") {
		opts.StaleMonths, _ = cmd.Flags().GetInt("stale-months")
	}
	if opts.MaxDepth < 0 {
		return opts, fmt.Errorf("invalid depth %d: must not be negative", opts.MaxDepth)
	}

	roots, err := resolveRoots(args, cfg.Scan.Roots)
	if err != nil {
		return opts, err
	}
	opts.Roots = roots
	return opts, nil
}

// resolveRoots picks the roots to scan: arguments first, then the
// configured roots, then the default development directories. Repeated
// paths are kept once; the scanner skips roots that overlap.
func resolveRoots(args, configured []string) ([]string, error) {
	roots := args
	if len(roots) == 0 {
		roots = configured
	}

	if len(roots) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		roots = scanner.DefaultRoots(home, runtime.GOOS)
		if len(roots) == 0 {
			return nil, errNoRoots
		}
		return roots, nil
	}

	expanded := make([]string, 0, len(roots))
	for _, r := range roots {
		p, err := config.ExpandPath(r)
		if err != nil {
			return nil, fmt.Errorf("failed to expand path: %w", err)
		}
		p = filepath.Clean(p)
		if !slices.Contains(expanded, p) {
			expanded = append(expanded, p)
		}
	}
	return expanded, nil
}

// buildFilter creates a filter.Filter from the scan flags. Config excludes
// are combined with --exclude.
func buildFilter(cmd *cobra.Command, cfg *config.Config) (*filter.Filter, error) {
	flags := cmd.Flags()
	var opts []filter.Option

	kindNames, _ := flags.GetStringSlice("kind")
	kinds, err := filter.ParseKinds(kindNames)
	if err != nil {
		return nil, err
	}
	if len(kinds) > 0 {
		opts = append(opts, filter.WithKinds(kinds...))
	}

	minSizeStr, _ := flags.GetString("min-size")
	if minSizeStr != "" {
		minSize, err := types.ParseSize(minSizeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid min-size %q: %w", minSizeStr, err)
		}
		opts = append(opts, filter.WithMinSize(minSize))
	}

	staleOnly, _ := flags.GetBool("stale-only")
	opts = append(opts, filter.WithStaleOnly(staleOnly))

	limitVal, _ := flags.GetInt("limit")
	opts = append(opts, filter.WithLimit(limitVal))

	exclude, _ := flags.GetStringSlice("exclude")
	exclude = append(append([]string{}, cfg.Scan.Exclude...), exclude...)
	if len(exclude) > 0 {
		opts = append(opts, filter.WithExclude(exclude...))
	}

	sortByStr, _ := flags.GetString("sort")
	if sortByStr == "" {
		sortByStr = "size"
	}
	sortField, err := filter.ParseSortField(sortByStr)
	if err != nil {
		return nil, fmt.Errorf("invalid sort field %q: %w", sortByStr, err)
	}
	opts = append(opts, filter.WithSortBy(sortField))

	// Size sorts largest first by nature; the rest ascend. --reverse flips.
	reverse, _ := flags.GetBool("reverse")
	opts = append(opts, filter.WithSortDescending((sortField == filter.SortSize) != reverse))

	f := filter.New(opts...)
	if err := f.Compile(); err != nil {
		return nil, err
	}
	return f, nil
}

// resolveFormat returns the formatter for -o, or the configured default.
func resolveFormat(configured string) (output.Formatter, error) {
	name := viper.GetString("output")
	if name == "" {
		name = configured
	}
	if name == "" {
		name = config.DefaultFormat
	}
	f, err := output.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}
	return f, nil
}

// formatList returns the registered formats for flag help.
func formatList() string {
	return strings.Join(output.Available(), ", ")
}

// parseCommaSeparated splits a comma-separated string and trims whitespace.
func parseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
