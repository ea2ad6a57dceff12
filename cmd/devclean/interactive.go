package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jamesainslie/devclean/cmd/devclean/tui"
	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/jamesainslie/devclean/pkg/devclean/deleter"
	"github.com/jamesainslie/devclean/pkg/devclean/logging"
	"github.com/jamesainslie/devclean/pkg/devclean/manifest"
	"github.com/jamesainslie/devclean/pkg/devclean/stats"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM, and a
// function reporting whether that happened.
func signalContext() (context.Context, context.CancelFunc, func() bool) {
	ctx, cancel := context.WithCancel(context.Background())

	var interrupted atomic.Bool
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			interrupted.Store(true)
			fmt.Fprintln(os.Stderr, "\nInterrupted, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(sigChan)
		cancel()
	}
	return ctx, stop, interrupted.Load
}

// confirm asks question unless --yes was given. Without a terminal to ask
// on it fails with tui.ErrNotInteractive.
func confirm(question string, details ...string) (bool, error) {
	if getYes() {
		return true, nil
	}
	if !tui.Interactive() {
		return false, tui.ErrNotInteractive
	}
	return tui.Confirm(os.Stdin, os.Stderr, question, details, false)
}

// showProgress reports whether live progress should be drawn. Verbose runs
// print debug records to stderr instead.
func showProgress() bool {
	return tui.Interactive() && !getQuiet() && !getVerbose()
}

// withProgress runs work behind a progress display when one can be shown,
// or directly otherwise.
func withProgress(title string, work func(report tui.Reporter) error) error {
	if !showProgress() {
		return work(func(tui.StepMsg) {})
	}
	return tui.RunProgress(os.Stderr, title, work)
}

// runDeletion deletes targets, showing progress when possible.
func runDeletion(title string, targets []deleter.Target, pace time.Duration) deleter.Report {
	var report deleter.Report
	_ = withProgress(title, func(rep tui.Reporter) error {
		report = deleter.DeleteAll(targets, deleter.Options{
			Pace: pace,
			OnProgress: func(p deleter.Progress) {
				rep(tui.StepMsg{Done: p.Done, Total: p.Total, Detail: p.Path})
				if !p.OK {
					printVerbose("Failed to delete %s", p.Path)
				}
			},
		})
		return nil
	})
	return report
}

// statsStore returns the persisted usage counters.
func statsStore(cfg *config.Config) stats.Store {
	return stats.NewFileStore(cfg.Stats.Path)
}

// recordScan bumps the scan counter. Failures are logged only.
func recordScan(cfg *config.Config) {
	if err := stats.RecordScan(statsStore(cfg), time.Now()); err != nil {
		logging.Get("cli").Warn("failed to update stats", "err", err)
	}
}

// recordClean adds freed bytes to the clean counters. Failures are logged
// only.
func recordClean(cfg *config.Config, freed int64) {
	if err := stats.RecordClean(statsStore(cfg), freed, time.Now()); err != nil {
		logging.Get("cli").Warn("failed to update stats", "err", err)
	}
}

// recordOperation writes a manifest entry when history is enabled.
func recordOperation(cfg *config.Config, op manifest.OperationType, target string, files []manifest.FileRecord) {
	if !cfg.Manifest.Enabled {
		return
	}
	m, err := manifest.New(cfg.Manifest.Path)
	if err == nil {
		var entry *manifest.Entry
		entry, err = m.Log(op, target, files)
		if err == nil {
			printVerbose("Recorded operation %s", entry.ID)
			return
		}
	}
	logging.Get("cli").Warn("failed to record operation", "op", op, "err", err)
}

// deletionRecords turns a deletion report into manifest records. kind and
// digest may be nil.
func deletionRecords(report deleter.Report, kind, digest func(path string) string) []manifest.FileRecord {
	records := make([]manifest.FileRecord, 0, len(report.Removed)+len(report.Failures))
	for _, t := range report.Removed {
		rec := manifest.FileRecord{Path: t.Path, Size: t.Size}
		if kind != nil {
			rec.Kind = kind(t.Path)
		}
		if digest != nil {
			rec.Digest = digest(t.Path)
		}
		records = append(records, rec)
	}
	for _, f := range report.Failures {
		rec := manifest.FileRecord{Path: f.Path, Error: f.Error}
		if kind != nil {
			rec.Kind = kind(f.Path)
		}
		records = append(records, rec)
	}
	return records
}
