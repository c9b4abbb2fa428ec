package reader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"tinyskpub/internal/clock"
	"tinyskpub/internal/config"
	"tinyskpub/internal/frame"
	"tinyskpub/internal/logging"
	"tinyskpub/internal/schema"
	"tinyskpub/internal/vendor/gstcamera"
)

// ImageMsgType is the config "type" tag for CameraReader (§3).
const ImageMsgType = "Image"

const jpegSOI0, jpegSOI1 = 0xFF, 0xD8

// CameraReader runs a capture pipeline on a background goroutine and
// publishes the latest JPEG via a mutex-guarded slot (§4.7, C7).
type CameraReader struct {
	sensorName string
	topic      string
	width      int
	height     int
	fps        int
	maxSize    int

	mu     sync.Mutex
	latest *gstcamera.Sample
	stop   chan struct{}
	done   chan struct{}

	pipeline gstcamera.Pipeline
	stopped  atomic.Bool
}

// NewCameraReader constructs a CameraReader and starts its capture
// goroutine immediately (the capture thread runs for the reader's whole
// lifetime, independent of how often Read is called, per §4.7).
func NewCameraReader(sensorName string, cfg *config.Config) (Reader, error) {
	sp, ok := cfg.Sensor(sensorName)
	if !ok {
		return nil, fmt.Errorf("camera reader %s: no config for sensor", sensorName)
	}
	port, ok := sp.String("port")
	if !ok || port == "" {
		return nil, fmt.Errorf("camera reader %s: missing required key %q", sensorName, "port")
	}
	width, ok := sp.Int("width")
	if !ok {
		return nil, fmt.Errorf("camera reader %s: missing required key %q", sensorName, "width")
	}
	height, ok := sp.Int("height")
	if !ok {
		return nil, fmt.Errorf("camera reader %s: missing required key %q", sensorName, "height")
	}
	fps, ok := sp.Int("fps")
	if !ok {
		return nil, fmt.Errorf("camera reader %s: missing required key %q", sensorName, "fps")
	}
	maxSize := cfg.App.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 512 * 1024
	}

	pipelineStr := gstcamera.BuildPipelineString(port, width, height, fps)
	pipeline, err := gstcamera.Open(pipelineStr, fps, width, height)
	if err != nil {
		return nil, fmt.Errorf("camera reader %s: open pipeline: %w", sensorName, err)
	}

	r := &CameraReader{
		sensorName: sensorName,
		topic:      sp.Topic,
		width:      width,
		height:     height,
		fps:        fps,
		maxSize:    maxSize,
		pipeline:   pipeline,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go r.captureLoop()
	return r, nil
}

// captureLoop pulls raw samples and swaps the newest one into the
// mutex-guarded slot under a lock held only long enough to swap
// pointers (§4.7).
func (r *CameraReader) captureLoop() {
	defer close(r.done)
	for {
		sample, ok := r.pipeline.Pull()
		if !ok {
			return
		}
		if sample == nil {
			continue
		}
		r.mu.Lock()
		r.latest = sample
		r.mu.Unlock()

		select {
		case <-r.stop:
			return
		default:
		}
	}
}

// Read atomically takes and clears the latest slot; if empty it returns
// (nil, nil) (§4.7).
func (r *CameraReader) Read(ctx context.Context) (*frame.Frame, error) {
	r.mu.Lock()
	sample := r.latest
	r.latest = nil
	r.mu.Unlock()

	if sample == nil {
		return nil, nil
	}
	if len(sample.JPEG) < 2 || sample.JPEG[0] != jpegSOI0 || sample.JPEG[1] != jpegSOI1 {
		logging.L().Debug("camera %s: sample missing JPEG SOI marker, dropping", r.sensorName)
		return nil, nil
	}

	img, msg, err := schema.NewRootImage()
	if err != nil {
		return nil, err
	}
	ts := clock.WallNowNs()
	if err := img.SetTopic(r.topic); err != nil {
		return nil, err
	}
	img.SetTimestamp(ts)
	img.SetWidth(uint32(r.width))
	img.SetHeight(uint32(r.height))
	if err := img.SetEncoding("jpeg"); err != nil {
		return nil, err
	}
	img.SetFps(float32(r.fps))
	if err := img.SetData(sample.JPEG); err != nil {
		return nil, err
	}

	body, err := schema.MarshalPacked(msg)
	if err != nil {
		return nil, err
	}
	if len(body) > r.maxSize {
		return nil, fmt.Errorf("camera %s: encoded body %d bytes exceeds max_message_size %d", r.sensorName, len(body), r.maxSize)
	}

	return &frame.Frame{
		SensorName:  r.sensorName,
		Topic:       r.topic,
		TimestampNs: ts,
		Body:        body,
	}, nil
}

// Close signals the capture goroutine to stop, closes the pipeline, and
// waits for the goroutine to exit (§4.7).
func (r *CameraReader) Close() error {
	if !r.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(r.stop)
	err := r.pipeline.Close()
	<-r.done
	return err
}
