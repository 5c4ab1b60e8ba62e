package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/accordwm/accordwm/internal/ipc"
	"github.com/accordwm/accordwm/internal/tiling"
)

var layoutMonitor int

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Inspect and switch layouts",
}

var layoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in layouts",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		client := ipc.NewClient()
		layouts, err := client.ListLayouts()
		if err != nil {
			return err
		}
		for _, l := range layouts.Layouts {
			fmt.Printf("  %d  %-18s %d containers\n", l.ID, l.Name, l.Containers)
		}
		return nil
	},
}

var layoutSwitchCmd = &cobra.Command{
	Use:   "switch <layout>",
	Short: "Switch the active layout",
	Long: `Switch the active layout by ID (1-9) or name (e.g. halves, thirds).
Targets the monitor of the focused window unless --monitor is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		id, err := parseLayoutArg(args[0])
		if err != nil {
			return err
		}
		client := ipc.NewClient()
		return client.SwitchLayout(id, layoutMonitor)
	},
}

var retileCmd = &cobra.Command{
	Use:   "retile",
	Short: "Trigger an immediate tiling pass",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		client := ipc.NewClient()
		result, err := client.Retile()
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil
	},
}

func init() {
	layoutSwitchCmd.Flags().IntVar(&layoutMonitor, "monitor", -1, "monitor ID to switch (default: focused window's monitor)")
	layoutCmd.AddCommand(layoutListCmd)
	layoutCmd.AddCommand(layoutSwitchCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(retileCmd)
}

func parseLayoutArg(arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if !tiling.LayoutID(n).Valid() {
			return 0, fmt.Errorf("layout ID must be 1-9, got %d", n)
		}
		return n, nil
	}
	for id := tiling.LayoutMonocle; id <= tiling.LayoutFiveColumns; id++ {
		if id.String() == arg {
			return int(id), nil
		}
	}
	return 0, fmt.Errorf("unknown layout %q (try 'accordwm layout list')", arg)
}
