package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Fold the persisted event log and print the derived state",
	Long:  `Loads the event log from the configured sink, folds it and prints the resulting derived state as JSON. With --events the raw log is printed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReplay(cmd); err != nil {
			fmt.Printf("Replay failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("log", "", "Read the event log from this JSON file")
	replayCmd.Flags().String("redis", "", "Read the event log from this Redis address")
	replayCmd.Flags().Bool("events", false, "Print the raw event log instead of the derived state")
}

func runReplay(cmd *cobra.Command) error {
	manifest, _ := cmd.Flags().GetString("manifest")
	logPath, _ := cmd.Flags().GetString("log")
	redisAddr, _ := cmd.Flags().GetString("redis")
	rawEvents, _ := cmd.Flags().GetBool("events")

	rt, err := cli.BuildRuntime(cli.RunOptions{
		ManifestPath: manifest,
		LogPath:      logPath,
		RedisAddr:    redisAddr,
	}, newLogger(cmd))
	if err != nil {
		return err
	}
	if rt.Sink == nil {
		return fmt.Errorf("no event sink configured (set serve.log / serve.redis in the manifest or pass --log / --redis)")
	}

	rt.Engine.Load(cmd.Context())

	var out any = rt.Engine.State()
	if rawEvents {
		out = rt.Engine.Log()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
