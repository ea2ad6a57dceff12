package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jamesainslie/devclean/pkg/devclean/hasher"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/pkgcache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Clear package manager caches",
	Long: `Clear the download caches of the installed JavaScript package managers:

  npm   cache clean --force
  yarn  cache clean
  pnpm  store prune

Use 'devclean cache hashes' to manage devclean's own digest cache.`,
	Args: cobra.NoArgs,
	RunE: runCache,
}

var cacheHashesCmd = &cobra.Command{
	Use:   "hashes",
	Short: "Show the duplicate search digest cache",
	Long: `Show where devclean keeps the digests of files it has hashed, and how
many it holds. The cache is only used when duplicates.hash_cache is enabled
or --hash-cache is passed.`,
	Args: cobra.NoArgs,
	RunE: runCacheHashes,
}

var cacheHashesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached digest",
	Args:  cobra.NoArgs,
	RunE:  runCacheHashesClear,
}

var cacheHashesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove digests of files that changed or no longer exist",
	Args:  cobra.NoArgs,
	RunE:  runCacheHashesPrune,
}

var (
	cacheManagers string
	cacheDryRun   bool
)

func init() {
	cacheCmd.Flags().StringVarP(&cacheManagers, "manager", "m", "", "comma-separated managers to clear (default: configured ones that are installed)")
	cacheCmd.Flags().BoolVarP(&cacheDryRun, "dry-run", "n", false, "show the commands without running them")

	cacheHashesCmd.AddCommand(cacheHashesClearCmd)
	cacheHashesCmd.AddCommand(cacheHashesPruneCmd)
	cacheCmd.AddCommand(cacheHashesCmd)
	rootCmd.AddCommand(cacheCmd)
}

// runCache clears the selected package manager caches.
func runCache(_ *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	cleaner := pkgcache.New()
	cleaner.Timeout = cfg.Cache.Timeout

	managers, err := selectManagers(cleaner, parseCommaSeparated(cacheManagers), cfg.Cache.Managers)
	if err != nil {
		return err
	}

	printInfo("Commands to run:")
	for _, m := range managers {
		printInfo("  %s", m.Command())
	}
	if cacheDryRun {
		return nil
	}

	ok, err := confirm(fmt.Sprintf("Clear %d package manager cache(s)?", len(managers)))
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Aborted.")
		return nil
	}

	ctx, stop, _ := signalContext()
	defer stop()

	results := cleaner.Clear(ctx, managers)

	records := make([]manifest.FileRecord, 0, len(results))
	cleared := 0
	for i, r := range results {
		rec := manifest.FileRecord{Path: managers[i].Command(), Kind: r.Manager}
		if r.OK {
			cleared++
			printInfo("✓ %s (%s)", r.Manager, r.Elapsed.Round(time.Millisecond))
			printVerbose("%s", r.Output)
		} else {
			rec.Error = r.Error
			printInfo("✗ %s: %s", r.Manager, r.Error)
		}
		records = append(records, rec)
	}
	recordOperation(cfg, manifest.OpCache, "", records)

	if cleared == 0 {
		return errors.New("no cache could be cleared")
	}
	return nil
}

// selectManagers resolves --manager, or else the configured managers that
// are installed.
func selectManagers(c *pkgcache.Cleaner, names, configured []string) ([]pkgcache.Manager, error) {
	if len(names) > 0 {
		return c.Select(names)
	}

	var picked []pkgcache.Manager
	for _, m := range c.Available() {
		if len(configured) == 0 || slices.Contains(configured, m.Name) {
			picked = append(picked, m)
		}
	}
	if len(picked) == 0 {
		return nil, pkgcache.ErrNoManagers
	}
	return picked, nil
}

// openMemo opens the digest cache at the configured location.
func openMemo() (*hasher.Memo, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	memo, err := hasher.OpenMemo(cfg.Duplicates.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open digest cache: %w", err)
	}
	return memo, nil
}

// runCacheHashes shows the digest cache location and size.
func runCacheHashes(_ *cobra.Command, _ []string) error {
	memo, err := openMemo()
	if err != nil {
		return err
	}
	defer memo.Close()

	n, err := memo.Count()
	if err != nil {
		return fmt.Errorf("failed to count digests: %w", err)
	}
	fmt.Printf("Path:    %s\n", memo.Path())
	fmt.Printf("Digests: %d\n", n)
	return nil
}

// runCacheHashesClear empties the digest cache.
func runCacheHashesClear(_ *cobra.Command, _ []string) error {
	memo, err := openMemo()
	if err != nil {
		return err
	}
	defer memo.Close()

	if err := memo.Clear(); err != nil {
		return fmt.Errorf("failed to clear digest cache: %w", err)
	}
	printInfo("Digest cache cleared.")
	return nil
}

// runCacheHashesPrune drops stale digests.
func runCacheHashesPrune(_ *cobra.Command, _ []string) error {
	memo, err := openMemo()
	if err != nil {
		return err
	}
	defer memo.Close()

	n, err := memo.Prune()
	if err != nil {
		return fmt.Errorf("failed to prune digest cache: %w", err)
	}
	printInfo("Removed %d stale digest(s).", n)
	return nil
}
