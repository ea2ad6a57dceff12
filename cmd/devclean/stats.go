package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/devclean/pkg/devclean/output"
	"github.com/jamesainslie/devclean/pkg/devclean/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lifetime usage totals",
	Long: `Show how many scans and cleans devclean has run and how much space it
has freed. Totals live in $XDG_DATA_HOME/devclean/stats.json.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// statsView is the machine-readable form of the stats command.
type statsView struct {
	TotalScans      int64      `json:"totalScans" yaml:"total_scans"`
	TotalCleans     int64      `json:"totalCleans" yaml:"total_cleans"`
	TotalSpaceFreed int64      `json:"totalSpaceFreed" yaml:"total_space_freed"`
	LastScan        *time.Time `json:"lastScan" yaml:"last_scan"`
	LastClean       *time.Time `json:"lastClean" yaml:"last_clean"`
}

// runStats prints the persisted counters.
func runStats(_ *cobra.Command, _ []string) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	st := statsStore(cfg).Load()
	view := statsView(st)

	switch viper.GetString("output") {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		fmt.Println(string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to encode stats: %w", err)
		}
		fmt.Print(string(data))
		return nil
	}

	label := func(s string) string { return output.LabelStyle.Render(fmt.Sprintf("%-13s", s)) }
	fmt.Println(output.TitleStyle.Render("devclean stats"))
	fmt.Println()
	fmt.Printf("%s %s\n", label("Scans"), output.ValueStyle.Render(humanize.Comma(st.TotalScans)))
	fmt.Printf("%s %s\n", label("Cleans"), output.ValueStyle.Render(humanize.Comma(st.TotalCleans)))
	fmt.Printf("%s %s\n", label("Space freed"), output.SizeStyle.Render(types.FormatSize(st.TotalSpaceFreed)))
	fmt.Printf("%s %s\n", label("Last scan"), whenText(st.LastScan))
	fmt.Printf("%s %s\n", label("Last clean"), whenText(st.LastClean))
	return nil
}

// whenText renders a timestamp relative to now, or "never".
func whenText(t *time.Time) string {
	if t == nil || t.IsZero() {
		return output.MutedStyle.Render("never")
	}
	return fmt.Sprintf("%s %s",
		output.ValueStyle.Render(humanize.Time(*t)),
		output.MutedStyle.Render("("+t.Local().Format("2006-01-02 15:04")+")"))
}
