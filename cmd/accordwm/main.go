// Command accordwm is an accordion tiling daemon for X11 and its control
// CLI. The daemon subscribes to window and monitor changes and keeps every
// monitor tiled; the remaining subcommands talk to a running daemon over a
// unix socket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "accordwm",
	Short: "Accordion tiling window daemon for X11",
	Long: `accordwm tiles every visible window into per-monitor containers and
stacks each container as an accordion: the focused window fills the
container and the others peek out by a fixed offset.

Run 'accordwm daemon' to start tiling, then use the other subcommands to
switch layouts, cycle windows, and inspect state.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/accordwm/config.yaml)")
}
