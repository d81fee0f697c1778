package cmd

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/motortwin/motortwin/rtdb"
	"github.com/motortwin/motortwin/twin"
)

var (
	seedSamples int   // Number of history samples to generate
	seedSeed    int64 // RNG seed; 0 = time-based
)

// seedCmd writes a full simulated session into <motor>/logs and updates
// live_reading with the latest sample so gauges start consistent.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a simulated motor session",
	Run: func(cmd *cobra.Command, args []string) {
		if databaseURL == "" {
			logrus.Fatalf("--database-url is required")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		client, err := rtdb.Dial(ctx, databaseURL, credentialsFile, motor)
		if err != nil {
			logrus.Fatalf("connect: %v", err)
		}

		seed := seedSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		logs := twin.SimulateHistory(seedSamples, rand.New(rand.NewSource(seed)), time.Now())
		if err := client.WriteHistory(ctx, logs); err != nil {
			logrus.Fatalf("write history: %v", err)
		}
		logrus.Infof("wrote %d log entries (entry_001 .. %s)", len(logs), twin.HistoryKey(seedSamples))

		latest := logs[twin.HistoryKey(seedSamples)]
		if err := client.SetLiveReading(ctx, latest); err != nil {
			logrus.Fatalf("update live_reading: %v", err)
		}
		logrus.Info("live_reading updated with latest simulated values")
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedSamples, "samples", 500, "Number of history samples")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "RNG seed (0 = time-based)")
	rootCmd.AddCommand(seedCmd)
}
