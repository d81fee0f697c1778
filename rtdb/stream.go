package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/r3labs/sse/v2"
	"github.com/sirupsen/logrus"

	"github.com/motortwin/motortwin/twin"
)

// Handlers receives routed stream updates. Callbacks are invoked from the
// stream goroutines; twin.Pipeline's Handle* methods are safe to use here
// directly because they post onto the pipeline's loop.
type Handlers struct {
	LogsBatch  func(map[string]twin.RawRecord)
	Live       func(*twin.RawRecord)
	Predictive func(any)
	Err        func(string)
}

// Stream maintains SSE subscriptions to the motor's three database paths.
// Reconnection and backoff are the SSE client's concern, not the core's.
type Stream struct {
	base     string
	motor    string
	auth     string
	handlers Handlers

	// logs is the local mirror of the log collection, rebuilt from put and
	// patch events. Mutated only by the logs subscription goroutine.
	logs map[string]twin.RawRecord
}

// NewStream prepares subscriptions against the database URL. auth, when
// non-empty, is passed through as the RTDB auth query parameter.
func NewStream(databaseURL, motor, auth string, h Handlers) *Stream {
	return &Stream{
		base:     strings.TrimRight(databaseURL, "/"),
		motor:    motor,
		auth:     auth,
		handlers: h,
		logs:     make(map[string]twin.RawRecord),
	}
}

// streamEvent is the envelope of every RTDB put/patch event: the path the
// write applies to, relative to the subscribed ref, and its data.
type streamEvent struct {
	Path string          `json:"path"`
	Data json.RawMessage `json:"data"`
}

// Run starts the three subscriptions and blocks until ctx is cancelled.
func (s *Stream) Run(ctx context.Context) error {
	go s.subscribe(ctx, "logs", s.onLogsEvent)
	go s.subscribe(ctx, "live_reading", s.onLiveEvent)
	go s.subscribe(ctx, "predictions", s.onPredictiveEvent)
	<-ctx.Done()
	return ctx.Err()
}

func (s *Stream) url(path string) string {
	u := fmt.Sprintf("%s/%s/%s.json", s.base, s.motor, path)
	if s.auth != "" {
		u += "?auth=" + s.auth
	}
	return u
}

func (s *Stream) subscribe(ctx context.Context, path string, onEvent func(event string, data []byte)) {
	client := sse.NewClient(s.url(path))
	client.Headers["Accept"] = "text/event-stream"

	err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		event := string(msg.Event)
		switch event {
		case "put", "patch":
			onEvent(event, msg.Data)
		case "keep-alive":
		case "cancel", "auth_revoked":
			s.handlers.Err(fmt.Sprintf("subscription to %s revoked: %s", path, event))
		default:
			logrus.Debugf("rtdb: ignoring %q event on %s", event, path)
		}
	})
	if err != nil && ctx.Err() == nil {
		s.handlers.Err(fmt.Sprintf("subscription to %s failed: %v", path, err))
	}
}

func (s *Stream) onLogsEvent(event string, data []byte) {
	next, err := applyLogsEvent(s.logs, event, data)
	if err != nil {
		logrus.Debugf("rtdb: discarding malformed logs event: %v", err)
		return
	}
	s.logs = next

	batch := make(map[string]twin.RawRecord, len(s.logs))
	for k, v := range s.logs {
		batch[k] = v
	}
	s.handlers.LogsBatch(batch)
}

// applyLogsEvent folds one put/patch event into the local log mirror,
// returning the updated map. A put at the root replaces the collection
// wholesale; a put at a child sets or (with null data) deletes that entry;
// a patch merges children. Malformed payloads return an error and leave the
// cache untouched.
func applyLogsEvent(cache map[string]twin.RawRecord, event string, data []byte) (map[string]twin.RawRecord, error) {
	var ev streamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return cache, fmt.Errorf("parse event: %w", err)
	}

	if ev.Path == "/" || ev.Path == "" {
		if event == "put" {
			next := make(map[string]twin.RawRecord)
			if isJSONNull(ev.Data) {
				return next, nil
			}
			if err := json.Unmarshal(ev.Data, &next); err != nil {
				return cache, fmt.Errorf("parse collection: %w", err)
			}
			return next, nil
		}
		// patch at root merges children.
		var merge map[string]twin.RawRecord
		if err := json.Unmarshal(ev.Data, &merge); err != nil {
			return cache, fmt.Errorf("parse patch: %w", err)
		}
		next := cloneLogs(cache)
		for k, v := range merge {
			next[k] = v
		}
		return next, nil
	}

	// Child path: "/entry_042" (nested writes below one entry are replaced
	// wholesale by re-reading the entry payload).
	key := strings.Trim(ev.Path, "/")
	if strings.Contains(key, "/") {
		return cache, fmt.Errorf("unsupported nested path %q", ev.Path)
	}
	next := cloneLogs(cache)
	if isJSONNull(ev.Data) {
		delete(next, key)
		return next, nil
	}
	var rec twin.RawRecord
	if err := json.Unmarshal(ev.Data, &rec); err != nil {
		return cache, fmt.Errorf("parse entry %q: %w", key, err)
	}
	next[key] = rec
	return next, nil
}

func cloneLogs(in map[string]twin.RawRecord) map[string]twin.RawRecord {
	out := make(map[string]twin.RawRecord, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// livePayload accepts both shapes seen on the live_reading path: the
// grouped dashboard form ({current:{I1..}, voltage:{..}, ...}) and the flat
// log-entry form.
type livePayload struct {
	twin.RawRecord
	Current     map[string]float64 `json:"current"`
	Voltage     map[string]float64 `json:"voltage"`
	Temperature map[string]float64 `json:"temperature"`
}

func (p *livePayload) record() *twin.RawRecord {
	rec := p.RawRecord
	group := func(m map[string]float64, key string, dst **float64) {
		if v, ok := m[key]; ok {
			value := v
			*dst = &value
		}
	}
	group(p.Current, "I1", &rec.I1)
	group(p.Current, "I2", &rec.I2)
	group(p.Current, "I3", &rec.I3)
	group(p.Voltage, "V1", &rec.V1)
	group(p.Voltage, "V2", &rec.V2)
	group(p.Voltage, "V3", &rec.V3)
	group(p.Temperature, "T1", &rec.T1)
	group(p.Temperature, "T2", &rec.T2)
	return &rec
}

func (s *Stream) onLiveEvent(event string, data []byte) {
	var ev streamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logrus.Debugf("rtdb: discarding malformed live event: %v", err)
		return
	}
	if isJSONNull(ev.Data) {
		return
	}
	var payload livePayload
	if err := json.Unmarshal(ev.Data, &payload); err != nil {
		logrus.Debugf("rtdb: discarding malformed live reading: %v", err)
		return
	}
	s.handlers.Live(payload.record())
}

func (s *Stream) onPredictiveEvent(event string, data []byte) {
	var ev streamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		logrus.Debugf("rtdb: discarding malformed predictions event: %v", err)
		return
	}
	var v any
	if err := json.Unmarshal(ev.Data, &v); err != nil {
		logrus.Debugf("rtdb: discarding malformed predictions payload: %v", err)
		return
	}
	s.handlers.Predictive(v)
}
