package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	wsignal "github.com/dkeye/Composite/internal/adapters/signal"
	"github.com/dkeye/Composite/internal/core"
)

func TestReplay(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		`{"type":"DisplayNameUpdated","name":"Ann"}`,
		``,
		`{"type":"CallingViewLaunched"}`,
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, replay(strings.NewReader(in), &out, core.InitialOptions{DisplayName: "Guest"}))

	var frame struct {
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Action string `json:"action"`
		State  struct {
			LocalUserState struct {
				DisplayName string `json:"displayName"`
			} `json:"localUserState"`
		} `json:"state"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &frame))
	require.Equal(t, "snapshot", frame.Type)
	require.Equal(t, "Ann", frame.State.LocalUserState.DisplayName)
	require.GreaterOrEqual(t, frame.Seq, uint64(2))
}

func TestReplayStopsOnBadLine(t *testing.T) {
	t.Parallel()

	err := replay(strings.NewReader("{\"type\":\"HoldRequested\"}\n{\"type\":\"Nope\"}\n"), &bytes.Buffer{}, core.InitialOptions{})
	require.ErrorIs(t, err, wsignal.ErrUnknownIntent)
	require.Contains(t, err.Error(), "line 2")
}
