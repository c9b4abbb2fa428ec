package reader

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"tinyskpub/internal/config"
	"tinyskpub/internal/frame"
	"tinyskpub/internal/logging"
	"tinyskpub/internal/schema"
	"tinyskpub/internal/vendor/lidarsdk"
)

// PointCloudMsgType is the config "type" tag for LidarReader (§3).
const PointCloudMsgType = "PointCloud"

// kalmanWindow is the SDK's fixed Kalman filter window (§4.8: "fixed
// window 2000").
const kalmanWindow = 2000

// cloud is one filtered point cloud swapped through the latest slot.
type cloud struct {
	points []lidarsdk.Point
	tsNs   uint64
}

// LidarReader lazily opens a vendor SDK session, filters incoming point
// clouds, and exposes the freshest one via read() (§4.8, C8).
type LidarReader struct {
	sensorName string
	topic      string
	cloudSize  int
	maxSize    int
	device     lidarsdk.DeviceConfig
	filter     filterParams

	mu      sync.Mutex
	sdk     lidarsdk.SDK
	started bool
	latest  *cloud
	prev    *cloud

	openSDK func(port string) (lidarsdk.SDK, error)
	port    string
}

type filterParams struct {
	medianSize      int
	kalmanEnable    bool
	kalmanFactor    float64
	kalmanThreshold int
	edgeEnable      bool
	edgeThreshold   int
	dustEnable      bool
	dustThreshold   int
	dustFrames      int
}

// NewLidarReader constructs a LidarReader. The SDK session itself is not
// opened until the first Read (§4.8).
func NewLidarReader(sensorName string, cfg *config.Config) (Reader, error) {
	sp, ok := cfg.Sensor(sensorName)
	if !ok {
		return nil, fmt.Errorf("lidar reader %s: no config for sensor", sensorName)
	}
	port, ok := sp.String("port")
	if !ok || port == "" {
		return nil, fmt.Errorf("lidar reader %s: missing required key %q", sensorName, "port")
	}
	cloudSize, ok := sp.Int("cloud_size")
	if !ok || cloudSize <= 0 {
		return nil, fmt.Errorf("lidar reader %s: missing required key %q", sensorName, "cloud_size")
	}
	devTree, ok := sp.Nested("device")
	if !ok {
		return nil, fmt.Errorf("lidar reader %s: missing required key %q", sensorName, "device")
	}
	fltTree, ok := sp.Nested("filter")
	if !ok {
		return nil, fmt.Errorf("lidar reader %s: missing required key %q", sensorName, "filter")
	}
	maxSize := cfg.App.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 256 * 1024
	}

	return &LidarReader{
		sensorName: sensorName,
		topic:      sp.Topic,
		cloudSize:  cloudSize,
		maxSize:    maxSize,
		device:     parseDeviceConfig(devTree),
		filter:     parseFilterParams(fltTree),
		openSDK:    lidarsdk.Open,
		port:       port,
	}, nil
}

func parseDeviceConfig(m map[string]any) lidarsdk.DeviceConfig {
	return lidarsdk.DeviceConfig{
		ModulationFrequency: nestedInt(m, "frequency_modulation"),
		HDR:                 nestedInt(m, "HDR"),
		Int1:                nestedInt(m, "int1"),
		Int2:                nestedInt(m, "int2"),
		Int3:                nestedInt(m, "int3"),
		IntegrationGroups:   nestedInt(m, "intgs"),
		MinAmplitude:        nestedInt(m, "minLSB"),
		MaxFps:              nestedInt(m, "maxfps"),
		CutCorner:           nestedInt(m, "cut_corner"),
		ImageType:           nestedInt(m, "imgType"),
	}
}

func parseFilterParams(m map[string]any) filterParams {
	return filterParams{
		medianSize:      nestedInt(m, "medianSize"),
		kalmanEnable:    nestedBool(m, "kalmanEnable"),
		kalmanFactor:    nestedFloat(m, "kalmanFactor"),
		kalmanThreshold: nestedInt(m, "kalmanThreshold"),
		edgeEnable:      nestedBool(m, "edgeEnable"),
		edgeThreshold:   nestedInt(m, "edgeThreshold"),
		dustEnable:      nestedBool(m, "dustEnable"),
		dustThreshold:   nestedInt(m, "dustThreshold"),
		dustFrames:      nestedInt(m, "dustFrames"),
	}
}

func nestedInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func nestedFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func nestedBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// ensureStarted opens the SDK session, wires filters and callbacks, and
// registers for the device-connected event (§4.8). Init-time filter
// application happens here, once.
func (r *LidarReader) ensureStarted() error {
	if r.started {
		return nil
	}
	sdk, err := r.openSDK(r.port)
	if err != nil {
		return fmt.Errorf("lidar %s: open sdk: %w", r.sensorName, err)
	}
	sdk.SetCallbacks(r.onEvent, r.onFrame)

	f := r.filter
	if f.edgeEnable {
		sdk.SetEdgeFilter(f.edgeThreshold)
	}
	if f.kalmanEnable {
		sdk.SetKalmanFilter(f.kalmanFactor*1000, f.kalmanThreshold, kalmanWindow)
	}
	if f.medianSize > 0 {
		sdk.SetMedianFilter(f.medianSize)
	}
	if f.dustEnable {
		sdk.SetDustFilter(f.dustThreshold, f.dustFrames)
	}

	if err := sdk.Startup(); err != nil {
		return fmt.Errorf("lidar %s: startup: %w", r.sensorName, err)
	}
	r.mu.Lock()
	r.sdk = sdk
	r.started = true
	r.mu.Unlock()
	return nil
}

// onEvent applies device config and issues start() on the device's
// first connect; everything else is logged only (§4.8).
func (r *LidarReader) onEvent(ev lidarsdk.Event) {
	logging.L().Debug("lidar %s: event %s cmd=%#x", r.sensorName, ev.EventStr, ev.CmdID)
	if ev.EventStr != "sdkState" || ev.CmdID != 0xFE {
		return
	}
	r.mu.Lock()
	sdk := r.sdk
	r.mu.Unlock()
	if sdk == nil || !sdk.IsConnected() {
		return
	}
	_ = sdk.Stop()
	if err := sdk.ApplyDeviceConfig(r.device); err != nil {
		logging.L().Warn("lidar %s: apply device config: %v", r.sensorName, err)
	}
	if err := sdk.Start(r.device.ImageType); err != nil {
		logging.L().Warn("lidar %s: start stream: %v", r.sensorName, err)
	}
}

// onFrame filters NaNs, random-subsamples to cloud_size, and swaps the
// result into the latest slot (§4.8).
func (r *LidarReader) onFrame(fr lidarsdk.Frame) {
	finite := make([]lidarsdk.Point, 0, len(fr.Points))
	for _, p := range fr.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) || math.IsNaN(p.Intensity) {
			continue
		}
		finite = append(finite, p)
	}
	sampled := randomSubsample(finite, r.cloudSize)
	ts := uint64(fr.TimeS*1e9 + fr.TimeNS)

	r.mu.Lock()
	r.latest = &cloud{points: sampled, tsNs: ts}
	r.mu.Unlock()
}

// randomSubsample returns a uniformly chosen subset of n points (or all
// of them if there are fewer than n), using math/rand (§9: no gonum
// dependency exists anywhere in the corpus, so this stays stdlib).
func randomSubsample(points []lidarsdk.Point, n int) []lidarsdk.Point {
	if len(points) <= n {
		return points
	}
	idx := rand.Perm(len(points))[:n]
	out := make([]lidarsdk.Point, n)
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}

// Read returns none if the latest slot has not advanced since the
// previous call, compared by pointer identity (§4.8).
func (r *LidarReader) Read(ctx context.Context) (*frame.Frame, error) {
	if err := r.ensureStarted(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	c := r.latest
	r.mu.Unlock()

	if c == nil || c == r.prev {
		return nil, nil
	}
	r.prev = c

	pc, msg, err := schema.NewRootPointCloud()
	if err != nil {
		return nil, err
	}
	if err := pc.SetTopic(r.topic); err != nil {
		return nil, err
	}
	pc.SetTimestamp(c.tsNs)
	list, err := pc.NewPoints(int32(len(c.points)))
	if err != nil {
		return nil, err
	}
	for i, p := range c.points {
		pt := list.At(i)
		pt.SetX(float32(p.X))
		pt.SetY(float32(p.Y))
		pt.SetZ(float32(p.Z))
		pt.SetIntensity(float32(p.Intensity))
	}

	body, err := schema.MarshalPacked(msg)
	if err != nil {
		return nil, err
	}
	if len(body) > r.maxSize {
		return nil, fmt.Errorf("lidar %s: encoded body %d bytes exceeds max_message_size %d", r.sensorName, len(body), r.maxSize)
	}

	return &frame.Frame{
		SensorName:  r.sensorName,
		Topic:       r.topic,
		TimestampNs: c.tsNs,
		Body:        body,
	}, nil
}

// Close stops the stream, clears callbacks, and shuts down the session
// (§4.8: "stop() -> clear callbacks -> shutdown()").
func (r *LidarReader) Close() error {
	r.mu.Lock()
	sdk := r.sdk
	r.mu.Unlock()
	if sdk == nil {
		return nil
	}
	if err := sdk.Stop(); err != nil {
		logging.L().Warn("lidar %s: stop: %v", r.sensorName, err)
	}
	sdk.SetCallbacks(nil, nil)
	return sdk.Shutdown()
}
