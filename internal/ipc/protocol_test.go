package ipc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accordwm/accordwm/internal/tiling"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"command":"SWITCH_LAYOUT","payload":{"layout":2,"monitor":-1}}`))
	require.NoError(t, err)
	require.Equal(t, CommandSwitchLayout, req.Command)

	var payload SwitchLayoutPayload
	require.NoError(t, json.Unmarshal(req.Payload, &payload))
	require.Equal(t, 2, payload.Layout)
	require.Equal(t, -1, payload.Monitor)
}

func TestParseRequest_Garbage(t *testing.T) {
	_, err := ParseRequest([]byte("not json\n"))
	require.Error(t, err)
}

func TestResponses(t *testing.T) {
	ok, err := NewOKResponse(RetileData{Result: "success(3)"})
	require.NoError(t, err)
	require.Equal(t, "OK", ok.Status)

	errResp := NewErrorResponse("boom")
	require.Equal(t, "ERROR", errResp.Status)
	require.Equal(t, "boom", errResp.Error)
}

func TestParseDirection(t *testing.T) {
	dir, errResp := parseDirection(json.RawMessage(`{"direction":"left"}`))
	require.Nil(t, errResp)
	require.Equal(t, tiling.DirLeft, dir)

	dir, errResp = parseDirection(json.RawMessage(`{"direction":"right"}`))
	require.Nil(t, errResp)
	require.Equal(t, tiling.DirRight, dir)

	_, errResp = parseDirection(json.RawMessage(`{"direction":"up"}`))
	require.NotNil(t, errResp)
	require.Equal(t, "ERROR", errResp.Status)
}

func TestMonitorIDPtr(t *testing.T) {
	require.Nil(t, monitorIDPtr(nil))

	id := 3
	got := monitorIDPtr(&id)
	require.NotNil(t, got)
	require.EqualValues(t, 3, *got)
}

func TestHandleListLayouts(t *testing.T) {
	s := &Server{}
	resp := s.handleListLayouts()
	require.Equal(t, "OK", resp.Status)

	var data LayoutsData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Layouts, 9)
	require.Equal(t, "monocle", data.Layouts[0].Name)
	require.Equal(t, 5, data.Layouts[8].Containers)
}

func TestHandleRequest_UnknownCommand(t *testing.T) {
	s := &Server{}
	resp := s.handleRequest(&Request{Command: "NOPE"})
	require.Equal(t, "ERROR", resp.Status)
}
