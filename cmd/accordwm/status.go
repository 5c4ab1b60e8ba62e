package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/accordwm/accordwm/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		client := ipc.NewClient()
		status, err := client.GetStatus()
		if err != nil {
			return err
		}

		fmt.Printf("daemon: running (uptime %s)\n", (time.Duration(status.UptimeSeconds) * time.Second).String())
		fmt.Printf("last result: %s\n", status.LastResult)
		if len(status.Monitors) == 0 {
			fmt.Println("monitors: none tracked")
			return nil
		}
		fmt.Println("monitors:")
		for _, m := range status.Monitors {
			fmt.Printf("  %d: layout=%s containers=%d windows=%d\n", m.MonitorID, m.Layout, m.Containers, m.Windows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
