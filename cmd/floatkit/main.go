package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬  ┌─┐┌─┐┌┬┐┬┌─┬┌┬┐
  ├┤ │  │ │├─┤ │ ├┴┐│ │
  └  ┴─┘└─┘┴ ┴ ┴ ┴ ┴┴ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "floatkit",
		Short: "Floating element positioning and tooltips",
		Long: `floatkit positions floating elements next to their anchors and
drives tooltips from a server.

  • resolve computes a position from a layout snapshot
  • serve runs the tooltip demo with live layout sync
  • config creates and checks floatkit.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		resolveCmd(),
		configCmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the floatkit ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
