package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/devclean/pkg/devclean/deleter"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/output"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [roots...]",
	Short: "Delete stale node_modules, build output, logs and temp files",
	Long: `Clean scans like 'devclean scan' and permanently deletes:
  - node_modules folders whose project is stale
  - every build output folder (dist, build, .next, coverage, ...)
  - every log and temp file

Deleted items do not go to the trash. Use --dry-run to see the list first.`,
	Args: cobra.ArbitraryArgs,
	RunE: runClean,
}

var cleanDryRun bool

func init() {
	addWalkFlags(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "show what would be deleted")
	rootCmd.AddCommand(cleanCmd)
}

// runClean scans, confirms and deletes the cleanable items.
func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	opts, err := scanOptions(cmd, args, cfg)
	if err != nil {
		return err
	}

	ctx, stop, _ := signalContext()
	defer stop()

	result, err := performScan(ctx, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			printInfo("Scan cancelled, nothing was deleted.")
			return nil
		}
		return fmt.Errorf("scan failed: %w", err)
	}
	recordScan(cfg)

	items := result.Cleanable()
	if len(items) == 0 {
		printInfo("Nothing to clean.")
		return nil
	}

	plan := &types.ScanResult{Roots: result.Roots, Errors: result.Errors, Elapsed: result.Elapsed}
	for _, it := range items {
		plan.Add(it)
	}

	if cleanDryRun {
		formatter, err := resolveFormat(cfg.Scan.Format)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := formatter.Format(&buf, &output.Result{Scan: plan, Cleanable: plan.TotalSize}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		fmt.Print(buf.String())
		printInfo("Dry run: %d item(s) totalling %s would be deleted.", len(items), types.FormatSize(plan.TotalSize))
		return nil
	}

	ok, err := confirm(
		fmt.Sprintf("Permanently delete %d item(s) and free %s?", len(items), types.FormatSize(plan.TotalSize)),
		planDetails(plan)...,
	)
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Aborted, nothing was deleted.")
		return nil
	}

	targets := make([]deleter.Target, len(items))
	kinds := make(map[string]string, len(items))
	for i, it := range items {
		targets[i] = deleter.Target{Path: it.Path, Size: it.Size}
		kinds[it.Path] = string(it.Kind)
	}

	report := runDeletion("Deleting", targets, cfg.Clean.Pace)
	recordClean(cfg, report.BytesFreed)
	recordOperation(cfg, manifest.OpClean, strings.Join(result.Roots, ", "),
		deletionRecords(report, func(p string) string { return kinds[p] }, nil))

	printDeletionReport(report)
	return nil
}

// planDetails summarizes a clean per kind for the confirmation prompt.
func planDetails(plan *types.ScanResult) []string {
	var lines []string
	for _, k := range types.Kinds {
		part := plan.Partition(k)
		if len(part) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%-13s %4d  %s", k, len(part), types.FormatSize(plan.PartitionSize(k))))
	}
	return lines
}

// printDeletionReport prints the outcome of a batch deletion.
func printDeletionReport(report deleter.Report) {
	printInfo("Deleted %d item(s), freed %s.", report.Deleted, types.FormatSize(report.BytesFreed))
	if report.Failed == 0 {
		return
	}
	printInfo("%d item(s) could not be deleted:", report.Failed)
	for _, f := range report.Failures {
		printInfo("  %s: %s", f.Path, f.Error)
	}
}
