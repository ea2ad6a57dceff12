package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/devclean/cmd/devclean/tui"
	"github.com/jamesainslie/devclean/pkg/devclean/output"
	"github.com/jamesainslie/devclean/pkg/devclean/scanner"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/jamesainslie/devclean/pkg/devclean/volume"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Report reclaimable space without deleting anything",
	Long: `Scan walks the given directories (or your usual development folders)
and reports node_modules folders, build output, log files and temp files.

node_modules is marked stale when its project folder has not changed for
--stale-months months; clean only deletes stale node_modules.

Examples:
  devclean scan ~/code
  devclean scan --kind node_modules --stale-only
  devclean scan -o json | jq '.total_size'`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

// runScan is the scan command handler.
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	opts, err := scanOptions(cmd, args, cfg)
	if err != nil {
		return err
	}

	f, err := buildFilter(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to build filter: %w", err)
	}

	formatter, err := resolveFormat(cfg.Scan.Format)
	if err != nil {
		return err
	}

	ctx, stop, interrupted := signalContext()
	defer stop()

	printVerbose("Scanning %v (depth %d, stale after %d months)", opts.Roots, opts.MaxDepth, opts.StaleMonths)

	result, err := performScan(ctx, opts)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scan failed: %w", err)
	}
	if !interrupted() {
		recordScan(cfg)
	}

	out := &output.Result{
		Scan:        f.Result(result),
		Cleanable:   cleanableSize(result),
		Volumes:     volume.ForRoots(context.Background(), result.Roots),
		Interrupted: interrupted(),
	}
	if hidden := result.Count() - out.Scan.Count(); hidden > 0 {
		printVerbose("%d item(s) hidden by filters", hidden)
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, out); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	return nil
}

// performScan runs the scanner behind a spinner. An interrupted scan
// returns its partial result with the context error.
func performScan(ctx context.Context, opts scanner.Options) (*types.ScanResult, error) {
	var (
		result  *types.ScanResult
		scanErr error
	)
	_ = withProgress("Scanning", func(report tui.Reporter) error {
		opts.OnProgress = func(p types.ScanProgress) {
			report(tui.StepMsg{Done: p.Items, Detail: p.CurrentPath})
		}
		result, scanErr = scanner.New(opts).Scan(ctx)
		return nil
	})
	return result, scanErr
}

// cleanableSize is what clean would free from r.
func cleanableSize(r *types.ScanResult) int64 {
	var total int64
	for _, item := range r.Cleanable() {
		total += item.Size
	}
	return total
}
