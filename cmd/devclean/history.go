package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Long: `View the history of clean, duplicates, organize and cache operations.

Every operation that deletes or moves files is recorded with the paths it
touched, so you can see afterwards what devclean did.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific operation",
	Long:  `Display the files touched by an operation. A unique ID prefix is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than manifest.retention_days.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
	historyOp    string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCmd.Flags().StringVar(&historyOp, "op", "", "only show one operation (clean, dedupe, organize, cache)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest opens the configured manifest, falling back to the default
// directory when the configuration cannot be read.
func getManifest() (*manifest.Manifest, error) {
	cfg, err := getConfig()
	if err != nil {
		return manifest.New(manifest.DefaultDir())
	}
	return manifest.New(cfg.Manifest.Path)
}

func runHistory(_ *cobra.Command, _ []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	// Filtering happens after the limit would cut entries, so list
	// everything when an operation is requested.
	limit := historyLimit
	if historyOp != "" {
		limit = 0
	}
	entries, err := m.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	entries = filterEntries(entries, manifest.OperationType(historyOp), historyLimit)

	if len(entries) == 0 {
		printInfo("No history entries found.")
		printInfo("Operations are recorded when 'devclean clean', 'duplicates --delete', 'organize' or 'cache' change files.")
		return nil
	}

	printEntries(os.Stdout, entries)
	printInfo("\n%d entries. 'devclean history show <id>' lists the files of one.", len(entries))
	return nil
}

// filterEntries keeps entries of op (all when op is empty), at most limit
// of them when limit is positive.
func filterEntries(entries []manifest.Entry, op manifest.OperationType, limit int) []manifest.Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if op != "" && e.Operation != op {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// printEntries writes the history table.
func printEntries(w io.Writer, entries []manifest.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tFILES\tSIZE\tWHEN")
	for _, e := range entries {
		files := strconv.FormatInt(e.Summary.TotalFiles, 10)
		if e.Summary.Failed > 0 {
			files += fmt.Sprintf(" (%d failed)", e.Summary.Failed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.Operation,
			files,
			types.FormatSize(e.Summary.TotalBytes),
			humanize.Time(e.Timestamp),
		)
	}
	_ = tw.Flush()
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	printEntry(os.Stdout, entry, 50)
	return nil
}

// printEntry writes the header of entry followed by up to maxFiles records.
func printEntry(w io.Writer, entry *manifest.Entry, maxFiles int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", entry.ID)
	fmt.Fprintf(tw, "Operation:\t%s\n", entry.Operation)
	fmt.Fprintf(tw, "When:\t%s (%s)\n",
		entry.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(entry.Timestamp))
	if entry.Target != "" {
		fmt.Fprintf(tw, "Target:\t%s\n", entry.Target)
	}
	fmt.Fprintf(tw, "Files:\t%d\n", entry.Summary.TotalFiles)
	fmt.Fprintf(tw, "Size:\t%s\n", types.FormatSize(entry.Summary.TotalBytes))
	if entry.Summary.Failed > 0 {
		fmt.Fprintf(tw, "Failed:\t%d\n", entry.Summary.Failed)
	}
	_ = tw.Flush()

	if len(entry.Files) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tPATH")
	shown := min(len(entry.Files), maxFiles)
	for _, r := range entry.Files[:shown] {
		fmt.Fprintf(tw, "%s\t%s\n", fileRecordSize(r), fileRecordText(r))
	}
	_ = tw.Flush()

	if rest := len(entry.Files) - shown; rest > 0 {
		fmt.Fprintf(w, "... and %d more\n", rest)
	}
}

// runHistoryClean removes old history entries.
func runHistoryClean(_ *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	m, err := manifest.New(cfg.Manifest.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize manifest: %w", err)
	}

	retentionDays := cfg.Manifest.RetentionDays
	if retentionDays <= 0 {
		printInfo("manifest.retention_days is %d, nothing to clean.", retentionDays)
		return nil
	}

	n, err := m.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo("Removed %d entries older than %d days.", n, retentionDays)
	return nil
}

// fileRecordSize is the SIZE column for a record.
func fileRecordSize(r manifest.FileRecord) string {
	if r.Failed() {
		return "failed"
	}
	return types.FormatSize(r.Size)
}

// fileRecordText is the PATH column for a record.
func fileRecordText(r manifest.FileRecord) string {
	switch {
	case r.Failed():
		return r.Path + " (" + r.Error + ")"
	case r.Dest != "":
		return r.Path + " -> " + r.Dest
	}
	return r.Path
}
