// Package rtdb connects the pipeline to the motor's Realtime Database
// paths: <motor>/logs (historical collection), <motor>/live_reading
// (current values) and <motor>/predictions (predictive-maintenance
// summary).
//
// Writes go through the Firebase Admin SDK (client.go); the live
// subscription uses the database's SSE streaming protocol (stream.go),
// which the Admin SDK does not expose.
package rtdb

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/motortwin/motortwin/twin"
)

// Client is the admin write connection used by the feed and seed commands.
type Client struct {
	db    *db.Client
	motor string
}

// Dial initializes the admin app against the given database URL. The motor
// argument is the path prefix all refs live under, e.g. "motor01".
// credentialsFile may be empty to fall back to application default
// credentials.
func Dial(ctx context.Context, databaseURL, credentialsFile, motor string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("open realtime database: %w", err)
	}
	return &Client{db: client, motor: motor}, nil
}

// Ping verifies that the connection can write, mirroring the feeder's
// startup check: set, read back and delete a scratch key.
func (c *Client) Ping(ctx context.Context, stamp string) error {
	ref := c.db.NewRef(c.motor + "/_test")
	if err := ref.Set(ctx, map[string]string{"ping": stamp}); err != nil {
		return fmt.Errorf("write test: %w", err)
	}
	return ref.Delete(ctx)
}

// ClearLogs deletes the historical log collection.
func (c *Client) ClearLogs(ctx context.Context) error {
	return c.db.NewRef(c.motor + "/logs").Delete(ctx)
}

// WriteHistory replaces the log collection with a full generated session.
func (c *Client) WriteHistory(ctx context.Context, logs map[string]twin.RawRecord) error {
	return c.db.NewRef(c.motor + "/logs").Set(ctx, logs)
}

// AppendLog adds one keyed entry to the log collection.
func (c *Client) AppendLog(ctx context.Context, key string, rec twin.RawRecord) error {
	return c.db.NewRef(c.motor+"/logs").Update(ctx, map[string]any{key: rec})
}

// SetLiveReading publishes the current values in the grouped dashboard
// shape the remote contract fixes for the live_reading path.
func (c *Client) SetLiveReading(ctx context.Context, rec twin.RawRecord) error {
	payload := map[string]any{
		"current": map[string]any{
			"I1": rec.I1, "I2": rec.I2, "I3": rec.I3,
		},
		"voltage": map[string]any{
			"V1": rec.V1, "V2": rec.V2, "V3": rec.V3,
		},
		"temperature": map[string]any{
			"T1": rec.T1, "T2": rec.T2,
		},
		"frequency": rec.Frequency,
		"vibration": rec.Vibration,
		"timestamp": rec.Timestamp,
	}
	return c.db.NewRef(c.motor + "/live_reading").Set(ctx, payload)
}
