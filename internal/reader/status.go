package reader

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"

	"tinyskpub/internal/clock"
	"tinyskpub/internal/config"
	"tinyskpub/internal/frame"
	"tinyskpub/internal/logging"
	"tinyskpub/internal/schema"
)

// StatusMsgType is the config "type" tag for StatusReader (§3).
const StatusMsgType = "Status"

// TotalReadBytes is the process-wide counter the consumer increments on
// every successful enqueue (§3, §9: "fixes it to on successful enqueue").
// StatusReader atomically reads and zero-resets it on each sample.
var TotalReadBytes atomic.Uint64

// StatusReader invokes a configured shell command and parses its
// semicolon-separated stdout into a Status frame (§4.5, C5).
type StatusReader struct {
	sensorName string
	topic      string
	cmd        string
	maxSize    int
}

// NewStatusReader constructs a StatusReader. Missing the "cmd" key is a
// fatal construction error for this reader (§4.1, §7).
func NewStatusReader(sensorName string, cfg *config.Config) (Reader, error) {
	sp, ok := cfg.Sensor(sensorName)
	if !ok {
		return nil, fmt.Errorf("status reader %s: no config for sensor", sensorName)
	}
	command, ok := sp.String("cmd")
	if !ok || command == "" {
		return nil, fmt.Errorf("status reader %s: missing required key %q", sensorName, "cmd")
	}
	maxSize := cfg.App.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &StatusReader{
		sensorName: sensorName,
		topic:      sp.Topic,
		cmd:        command,
		maxSize:    maxSize,
	}, nil
}

// Read executes the configured command, splits stdout on ';', and
// returns a Status frame. Any field count other than 6 is a transient,
// non-fatal failure: Read returns (nil, nil) (§4.5, §7).
func (r *StatusReader) Read(ctx context.Context) (*frame.Frame, error) {
	out, err := exec.CommandContext(ctx, "sh", "-c", r.cmd).Output()
	if err != nil {
		logging.L().Debug("status %s: command failed: %v", r.sensorName, err)
		return nil, nil
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ";")
	if len(fields) != 6 {
		logging.L().Debug("status %s: expected 6 fields, got %d", r.sensorName, len(fields))
		return nil, nil
	}

	cpuUsage, e1 := strconv.ParseFloat(fields[0], 64)
	cpuTemp, e2 := strconv.ParseFloat(fields[1], 64)
	memUsage, e3 := strconv.ParseFloat(fields[2], 64)
	battV, e4 := strconv.ParseFloat(fields[3], 64)
	battI, e5 := strconv.ParseFloat(fields[4], 64)
	ip := fields[5]
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil {
		logging.L().Debug("status %s: non-numeric field in %q", r.sensorName, string(out))
		return nil, nil
	}

	st, msg, err := schema.NewRootStatus()
	if err != nil {
		return nil, err
	}
	ts := clock.WallNowNs()
	if err := st.SetTopic(r.topic); err != nil {
		return nil, err
	}
	st.SetTimestamp(ts)
	st.SetCpuUsage(cpuUsage)
	st.SetCpuTemp(cpuTemp)
	st.SetMemUsage(memUsage)
	st.SetBatteryVoltage(battV)
	st.SetBatteryCurrent(battI)
	if err := st.SetIp(ip); err != nil {
		return nil, err
	}
	st.SetTotalReadBytes(TotalReadBytes.Swap(0))

	body, err := schema.MarshalPacked(msg)
	if err != nil {
		return nil, err
	}

	if len(body) > r.maxSize {
		return nil, fmt.Errorf("status %s: encoded body %d bytes exceeds max_message_size %d", r.sensorName, len(body), r.maxSize)
	}

	return &frame.Frame{
		SensorName:  r.sensorName,
		Topic:       r.topic,
		TimestampNs: ts,
		Body:        body,
	}, nil
}

// Close is a no-op: StatusReader owns no device handles or goroutines.
func (r *StatusReader) Close() error { return nil }
