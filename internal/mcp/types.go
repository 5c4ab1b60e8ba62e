package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// MonitorStatus describes one monitor's tiling state.
type MonitorStatus struct {
	MonitorID  int    `json:"monitor_id"`
	Layout     string `json:"layout"`
	Containers int    `json:"containers"`
	Windows    int    `json:"windows"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Monitors      []MonitorStatus `json:"monitors"`
	LastResult    string          `json:"last_result"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	DaemonRunning bool            `json:"daemon_running"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// LayoutInfo describes one built-in layout.
type LayoutInfo struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Containers int    `json:"containers"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// SwitchLayoutInput is the input for the switch_layout tool.
type SwitchLayoutInput struct {
	Layout  int  `json:"layout" jsonschema:"required,Layout ID from list_layouts (1-9)"`
	Monitor *int `json:"monitor,omitempty" jsonschema:"Optional monitor ID; defaults to the monitor of the focused window"`
}

// SwitchLayoutOutput is the output for the switch_layout tool.
type SwitchLayoutOutput struct {
	Layout string `json:"layout"`
}

// DirectionInput is the input for cycle_window, move_window, and
// focus_container.
type DirectionInput struct {
	Direction string `json:"direction" jsonschema:"required,Either left or right"`
}

// DirectionOutput is the output for the direction-based tools.
type DirectionOutput struct {
	Applied bool `json:"applied"`
}

// RetileInput is the input for the retile tool.
type RetileInput struct{}

// RetileOutput is the output for the retile tool.
type RetileOutput struct {
	Result string `json:"result"`
}
