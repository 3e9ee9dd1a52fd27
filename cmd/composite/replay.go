package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	wsignal "github.com/dkeye/Composite/internal/adapters/signal"
	"github.com/dkeye/Composite/internal/app/orch"
	"github.com/dkeye/Composite/internal/core"
)

var (
	replayName      string
	replaySkipSetup bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <intents.jsonl>",
	Short: "Feed recorded intents into a local composite and print the final snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return replay(f, cmd.OutOrStdout(), core.InitialOptions{
			DisplayName: replayName,
			SkipSetup:   replaySkipSetup,
		})
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayName, "name", "Guest", "Local display name")
	replayCmd.Flags().BoolVar(&replaySkipSetup, "skip-setup", false, "Start on the call screen")
}

// replay dispatches one intent per line and writes the resulting snapshot
// frame. Blank lines are skipped; the first bad line stops the run.
func replay(r io.Reader, w io.Writer, initial core.InitialOptions) error {
	c := orch.NewComposite(orch.Options{Initial: initial})
	defer c.Close()

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		action, err := wsignal.DecodeIntent(data)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		c.Store().Dispatch(action)
	}
	if err := sc.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wsignal.NewSnapshotFrame(c.Store().Snapshot()))
}
