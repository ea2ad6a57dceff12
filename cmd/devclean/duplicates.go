package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jamesainslie/devclean/cmd/devclean/tui"
	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/jamesainslie/devclean/pkg/devclean/duplicates"
	"github.com/jamesainslie/devclean/pkg/devclean/hasher"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/output"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var duplicatesCmd = &cobra.Command{
	Use:     "duplicates [path]",
	Aliases: []string{"dupes"},
	Short:   "Find files with identical content",
	Long: `Duplicates searches a directory for files with identical content
(SHA-256). node_modules and hidden directories are skipped, as are files at
or below --min-size.

With --delete, every copy except one per set is permanently deleted. --keep
picks the survivor: "first" keeps the copy found first, "oldest" keeps the
one with the earliest modification time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDuplicates,
}

var (
	dupDelete bool
	dupDryRun bool
)

func init() {
	duplicatesCmd.Flags().Int("depth", config.DefaultDuplicateDepth, "levels below the directory to descend")
	duplicatesCmd.Flags().String("min-size", config.DefaultDuplicateMinSize, "ignore files at or below this size")
	duplicatesCmd.Flags().String("keep", config.DefaultKeep, "copy to keep: first or oldest")
	duplicatesCmd.Flags().IntP("limit", "l", config.DefaultDisplayLimit, "sets to show in pretty and plain output (0 = all)")
	duplicatesCmd.Flags().Bool("hash-cache", false, "reuse digests of unchanged files from earlier runs")
	duplicatesCmd.Flags().BoolVar(&dupDelete, "delete", false, "delete every copy except the kept one")
	duplicatesCmd.Flags().BoolVarP(&dupDryRun, "dry-run", "n", false, "with --delete, only show what would be deleted")

	_ = viper.BindPFlag("duplicates.max_depth", duplicatesCmd.Flags().Lookup("depth"))
	_ = viper.BindPFlag("duplicates.min_size", duplicatesCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("duplicates.keep", duplicatesCmd.Flags().Lookup("keep"))
	_ = viper.BindPFlag("duplicates.display_limit", duplicatesCmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("duplicates.hash_cache", duplicatesCmd.Flags().Lookup("hash-cache"))

	rootCmd.AddCommand(duplicatesCmd)
}

// runDuplicates finds duplicate sets, reports them and optionally deletes
// the extra copies.
func runDuplicates(_ *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	root, err = config.ExpandPath(root)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	minSize, err := types.ParseSize(cfg.Duplicates.MinSize)
	if err != nil {
		return fmt.Errorf("invalid min-size %q: %w", cfg.Duplicates.MinSize, err)
	}
	keep := types.KeepPolicy(strings.ToLower(cfg.Duplicates.Keep))
	if !keep.Valid() {
		return fmt.Errorf("invalid keep policy %q: want first or oldest", cfg.Duplicates.Keep)
	}
	if cfg.Duplicates.MaxDepth < 0 {
		return fmt.Errorf("invalid depth %d: must not be negative", cfg.Duplicates.MaxDepth)
	}

	formatter, err := resolveFormat(cfg.Scan.Format)
	if err != nil {
		return err
	}

	det := duplicates.New()
	det.MaxDepth = cfg.Duplicates.MaxDepth
	det.MinSize = minSize

	if cfg.Duplicates.HashCache {
		memo, err := hasher.OpenMemo(cfg.Duplicates.CachePath)
		if err != nil {
			printVerbose("Digest cache unavailable, hashing everything: %v", err)
		} else {
			defer memo.Close()
			det.Hasher = hasher.New(memo)
		}
	}

	ctx, stop, _ := signalContext()
	defer stop()

	printVerbose("Searching %s (depth %d, larger than %s, keep %s)", root, det.MaxDepth, types.FormatSize(minSize), keep)

	start := time.Now()
	var (
		sets    []types.DuplicateSet
		findErr error
	)
	_ = withProgress("Comparing files", func(report tui.Reporter) error {
		det.OnHash = func(done, total int, path string) {
			report(tui.StepMsg{Done: done, Total: total, Detail: path})
		}
		sets, findErr = det.Find(ctx, root)
		return nil
	})
	if findErr != nil {
		if errors.Is(findErr, context.Canceled) {
			printInfo("Search cancelled.")
			return nil
		}
		return fmt.Errorf("duplicate search failed: %w", findErr)
	}
	if det.Hasher != nil {
		printVerbose("Hashed %d file(s), reused %d cached digest(s)", det.Hasher.Hashed, det.Hasher.Reused)
	}

	result := &output.Result{
		Duplicates:    sets,
		DuplicateRoot: root,
		Keep:          keep,
		Limit:         cfg.Duplicates.DisplayLimit,
		Elapsed:       time.Since(start),
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	if !dupDelete || len(sets) == 0 {
		return nil
	}
	return deleteDuplicates(cfg, root, sets, keep)
}

// deleteDuplicates removes every non-kept copy after confirmation.
func deleteDuplicates(cfg *config.Config, root string, sets []types.DuplicateSet, keep types.KeepPolicy) error {
	targets := duplicates.Plan(sets, keep)
	wasted := duplicates.Wasted(sets)

	if dupDryRun {
		printInfo("Dry run: %d duplicate file(s) totalling %s would be deleted.", len(targets), types.FormatSize(wasted))
		return nil
	}

	ok, err := confirm(
		fmt.Sprintf("Permanently delete %d duplicate file(s) and free %s?", len(targets), types.FormatSize(wasted)),
		keepDescription(keep),
	)
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Aborted, nothing was deleted.")
		return nil
	}

	digests := make(map[string]string)
	for _, s := range sets {
		for _, f := range s.Files {
			digests[f.Path] = s.Digest.String()
		}
	}

	report := runDeletion("Removing duplicates", targets, cfg.Clean.Pace)
	recordClean(cfg, report.BytesFreed)
	recordOperation(cfg, manifest.OpDedupe, root,
		deletionRecords(report, nil, func(p string) string { return digests[p] }))

	printDeletionReport(report)
	return nil
}

// keepDescription explains the keeper policy in the prompt.
func keepDescription(keep types.KeepPolicy) string {
	if keep == types.KeepOldest {
		return "The oldest file of each set is kept."
	}
	return "The first file found in each set is kept."
}
