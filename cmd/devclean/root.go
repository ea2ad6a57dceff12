package main

import (
	"fmt"
	"os"

	"github.com/jamesainslie/devclean/pkg/devclean/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "devclean [roots...]",
		Short: "Reclaim disk space from development leftovers",
		Long: `devclean finds node_modules folders, build output, log and temp files
under your development directories and helps you remove them. It can also
find duplicate files, sort a downloads folder into categories and clear
package manager caches.

Without a subcommand, devclean runs a scan.

Examples:
  devclean                       # Scan the usual development folders
  devclean ~/code                # Scan a specific directory
  devclean clean --dry-run       # Show what clean would delete
  devclean duplicates ~/Pictures # Find identical files
  devclean organize              # Sort ~/Downloads into folders
  devclean stats                 # Show lifetime totals`,
		Args:              cobra.ArbitraryArgs,
		PersistentPreRunE: initializeLogging,
		RunE:              runScan,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/devclean/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: "+formatList())
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "do not ask for confirmation")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("yes", rootCmd.PersistentFlags().Lookup("yes"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	addScanFlags(rootCmd)
}

// initConfig reads in config file and environment variables.
func initConfig() {
	config.Setup(viper.GetViper(), cfgFile)
	if err := config.Read(viper.GetViper()); err != nil {
		printError("%v", err)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// getYes returns true if confirmations should be skipped.
func getYes() bool {
	return viper.GetBool("yes")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
