package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/motortwin/motortwin/rtdb"
	"github.com/motortwin/motortwin/server"
	"github.com/motortwin/motortwin/twin"
)

var (
	listenAddr   string        // View server listen address
	pushInterval time.Duration // WebSocket push cadence
)

// watchCmd subscribes to the motor's database paths, runs the replay and
// smoothing pipeline, and serves the view surface.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the telemetry pipeline and serve the twin view",
	Run: func(cmd *cobra.Command, args []string) {
		if databaseURL == "" {
			logrus.Fatalf("--database-url is required")
		}
		cfg := pipelineConfig()
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid pipeline config: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loop := twin.NewLoop()
		pipe := twin.NewPipeline(loop, cfg, twin.RandomJitter(time.Now().UnixNano()))
		go loop.Run(ctx)
		pipe.Start()

		stream := rtdb.NewStream(databaseURL, motor, authToken, rtdb.Handlers{
			LogsBatch:  pipe.HandleLogsBatch,
			Live:       pipe.HandleLiveReading,
			Predictive: pipe.HandlePredictiveSummary,
			Err:        pipe.HandleSubscriptionError,
		})
		go func() {
			if err := stream.Run(ctx); err != nil && ctx.Err() == nil {
				logrus.Errorf("stream terminated: %v", err)
			}
		}()

		logrus.Infof("watching %s/%s (capacity=%d, smoothing=%s)",
			databaseURL, motor, cfg.Capacity, cfg.Smoothing.Mode)

		srv := server.New(pipe, pushInterval)
		if err := srv.ListenAndServe(ctx, listenAddr); err != nil {
			logrus.Fatalf("view server: %v", err)
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&listenAddr, "listen", ":8090", "View server listen address")
	watchCmd.Flags().DurationVar(&pushInterval, "push-interval", time.Second, "WebSocket push cadence")
	rootCmd.AddCommand(watchCmd)
}
