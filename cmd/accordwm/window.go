package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accordwm/accordwm/internal/ipc"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Cycle, move, and focus windows",
}

var windowCycleCmd = &cobra.Command{
	Use:   "cycle <left|right>",
	Short: "Cycle the focused container's window ring",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		dir, err := validateDirection(args[0])
		if err != nil {
			return err
		}
		return ipc.NewClient().CycleWindow(dir)
	},
}

var windowMoveCmd = &cobra.Command{
	Use:   "move <left|right>",
	Short: "Move the focused window to the adjacent container",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		dir, err := validateDirection(args[0])
		if err != nil {
			return err
		}
		return ipc.NewClient().MoveWindow(dir)
	},
}

var windowFocusCmd = &cobra.Command{
	Use:   "focus <left|right>",
	Short: "Move container focus",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		dir, err := validateDirection(args[0])
		if err != nil {
			return err
		}
		return ipc.NewClient().FocusContainer(dir)
	},
}

func init() {
	windowCmd.AddCommand(windowCycleCmd)
	windowCmd.AddCommand(windowMoveCmd)
	windowCmd.AddCommand(windowFocusCmd)
	rootCmd.AddCommand(windowCmd)
}

func validateDirection(arg string) (string, error) {
	if arg != "left" && arg != "right" {
		return "", fmt.Errorf("direction must be left or right, got %q", arg)
	}
	return arg, nil
}
