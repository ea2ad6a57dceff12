package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jamesainslie/devclean/cmd/devclean/tui"
	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/organizer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var organizeCmd = &cobra.Command{
	Use:   "organize [dir]",
	Short: "Sort the files of a folder into category subfolders",
	Long: `Organize moves the files directly inside a folder (default ~/Downloads)
into subfolders by type: Images, Documents, Videos, Audio, Archives, Code,
Installers and Others. Existing files are never overwritten; a clashing name
gets a _1, _2, ... suffix.

With --watch, devclean keeps running and organizes new files as they
arrive.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOrganize,
}

var (
	organizeDryRun bool
	organizeWatch  bool
)

func init() {
	organizeCmd.Flags().BoolVarP(&organizeDryRun, "dry-run", "n", false, "show where files would go")
	organizeCmd.Flags().BoolVarP(&organizeWatch, "watch", "w", false, "keep organizing new files until interrupted")
	organizeCmd.Flags().Duration("debounce", config.DefaultOrganizeDebounce, "with --watch, quiet period before organizing")

	_ = viper.BindPFlag("organize.debounce", organizeCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(organizeCmd)
}

// runOrganize previews, confirms and runs an organize, or starts watch mode.
func runOrganize(_ *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}

	dir := cfg.Organize.Target
	if len(args) > 0 {
		if dir, err = config.ExpandPath(args[0]); err != nil {
			return fmt.Errorf("failed to expand path: %w", err)
		}
	}

	groups, err := organizer.Preview(dir)
	if err != nil {
		return err
	}

	if organizeWatch {
		return watchOrganize(cfg, dir)
	}

	total := 0
	for _, g := range groups {
		total += len(g.Files)
	}
	if total == 0 {
		printInfo("Nothing to organize in %s.", dir)
		return nil
	}

	if !getQuiet() {
		printGroups(dir, groups)
	}
	if organizeDryRun {
		return nil
	}

	ok, err := confirm(fmt.Sprintf("Move %d file(s) into %d folder(s) in %s?", total, len(groups), dir))
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Aborted, nothing was moved.")
		return nil
	}

	org := &organizer.Organizer{Pace: cfg.Clean.Pace}
	var (
		summary organizer.Summary
		orgErr  error
	)
	_ = withProgress("Organizing", func(report tui.Reporter) error {
		org.OnProgress = func(done, total int, path string) {
			report(tui.StepMsg{Done: done, Total: total, Detail: path})
		}
		summary, orgErr = org.Organize(dir)
		return nil
	})
	if orgErr != nil {
		return orgErr
	}

	recordOperation(cfg, manifest.OpOrganize, dir, organizeRecords(summary))
	printSummary(summary)
	return nil
}

// watchOrganize organizes dir now and whenever new files settle in it.
func watchOrganize(cfg *config.Config, dir string) error {
	ok, err := confirm(fmt.Sprintf("Watch %s and organize new files as they arrive?", dir))
	if err != nil {
		return err
	}
	if !ok {
		printInfo("Aborted.")
		return nil
	}

	ctx, stop, _ := signalContext()
	defer stop()

	printInfo("Watching %s (Ctrl+C to stop)...", dir)

	org := &organizer.Organizer{}
	err = org.Watch(ctx, dir, cfg.Organize.Debounce, func(s organizer.Summary, err error) {
		if err != nil {
			printError("organize failed: %v", err)
			return
		}
		if s.Moved == 0 && s.Failed == 0 {
			return
		}
		recordOperation(cfg, manifest.OpOrganize, dir, organizeRecords(s))
		printInfo("[%s] moved %d file(s), %d failed", time.Now().Format("15:04:05"), s.Moved, s.Failed)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// printGroups lists the planned buckets.
func printGroups(dir string, groups []organizer.Group) {
	fmt.Printf("Files in %s:\n\n", dir)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "  %s\t%d file(s)\n", g.Bucket, len(g.Files))
	}
	_ = tw.Flush()
	fmt.Println()
}

// printSummary prints the outcome of an organize run.
func printSummary(s organizer.Summary) {
	printInfo("Moved %d file(s) into %d folder(s).", s.Moved, s.Buckets)
	if s.Failed == 0 {
		return
	}
	printInfo("%d file(s) could not be moved:", s.Failed)
	for _, f := range s.Failures {
		printInfo("  %s: %s", f.Path, f.Error)
	}
}

// organizeRecords turns a summary into manifest records.
func organizeRecords(s organizer.Summary) []manifest.FileRecord {
	records := make([]manifest.FileRecord, 0, len(s.Moves)+len(s.Failures))
	for _, m := range s.Moves {
		var size int64
		if info, err := os.Stat(m.To); err == nil {
			size = info.Size()
		}
		records = append(records, manifest.FileRecord{Path: m.From, Dest: m.To, Kind: m.Bucket, Size: size})
	}
	for _, f := range s.Failures {
		records = append(records, manifest.FileRecord{Path: f.Path, Error: f.Error})
	}
	return records
}
