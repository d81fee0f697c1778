package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/motortwin/motortwin/rtdb"
	"github.com/motortwin/motortwin/twin"
)

var (
	feedInterval time.Duration // Cadence of generated readings
	feedKeepLogs bool          // Skip clearing old logs at startup
	feedSeed     int64         // RNG seed; 0 = time-based
)

// feedCmd generates a live random-walk telemetry feed: one reading per
// interval, written both to <motor>/live_reading and as an incrementing
// <motor>/logs entry.
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Generate a live telemetry feed into the database",
	Run: func(cmd *cobra.Command, args []string) {
		if databaseURL == "" {
			logrus.Fatalf("--database-url is required")
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := rtdb.Dial(ctx, databaseURL, credentialsFile, motor)
		if err != nil {
			logrus.Fatalf("connect: %v", err)
		}
		if err := client.Ping(ctx, time.Now().Format(time.RFC3339)); err != nil {
			logrus.Fatalf("write test failed (check database rules and service account role): %v", err)
		}
		if !feedKeepLogs {
			if err := client.ClearLogs(ctx); err != nil {
				logrus.Fatalf("clear logs: %v", err)
			}
			logrus.Info("cleared old logs")
		}

		seed := feedSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		walker := twin.NewWalker(rand.New(rand.NewSource(seed)))

		logrus.Infof("generating a reading every %v (Ctrl+C to stop)", feedInterval)
		ticker := time.NewTicker(feedInterval)
		defer ticker.Stop()

		counter := 0
		for {
			rec := walker.Next(time.Now())
			if err := client.SetLiveReading(ctx, rec); err != nil {
				logrus.Errorf("write live_reading: %v", err)
			}
			counter++
			key := fmt.Sprintf("entry_%02d", counter)
			if err := client.AppendLog(ctx, key, rec); err != nil {
				logrus.Errorf("write logs/%s: %v", key, err)
			} else {
				logrus.Infof("updated at %s | live_reading | logs/%s", rec.Timestamp, key)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	},
}

func init() {
	feedCmd.Flags().DurationVar(&feedInterval, "interval", 5*time.Second, "Cadence of generated readings")
	feedCmd.Flags().BoolVar(&feedKeepLogs, "keep-logs", false, "Do not clear old logs at startup")
	feedCmd.Flags().Int64Var(&feedSeed, "seed", 0, "RNG seed (0 = time-based)")
	rootCmd.AddCommand(feedCmd)
}
