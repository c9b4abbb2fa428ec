package reader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"tinyskpub/internal/clock"
	"tinyskpub/internal/config"
	"tinyskpub/internal/frame"
	"tinyskpub/internal/logging"
	"tinyskpub/internal/schema"
	"tinyskpub/internal/vendor/imudecoder"
)

// ImuMsgType is the config "type" tag for IMUReader (§3).
const ImuMsgType = "Imu"

// gUnits converts the vendor's g-unit acceleration to m/s² (§4.6).
const gUnits = 9.8

// enableCmd is sent once the port is opened; the device echoes back
// "OK\r\n" within the timeout (§4.6).
const (
	enableCmd     = "AT+EOUT=1\r\n"
	enableReply   = "OK\r\n"
	enableTimeout = 200 * time.Millisecond
	readChunkSize = 1024
)

// serialPort is the narrow surface IMUReader needs from go.bug.st/serial,
// kept as an interface so tests can substitute an in-memory pipe.
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// IMUReader opens a serial port, decodes the vendor binary frame, and
// emits an Imu frame with only acceleration, angular velocity, and
// orientation populated (§4.6, C6).
type IMUReader struct {
	sensorName string
	topic      string
	portName   string
	baudRate   int
	maxSize    int

	mu      sync.Mutex
	port    serialPort
	decoder imudecoder.Decoder
	opened  bool
	openErr error

	openPort func(name string, baud int) (serialPort, error)
}

// NewIMUReader constructs an IMUReader. Missing port/baud_rate keys are
// fatal construction errors (§4.1, §7); the serial port itself is opened
// lazily on the first Read (§4.6).
func NewIMUReader(sensorName string, cfg *config.Config) (Reader, error) {
	sp, ok := cfg.Sensor(sensorName)
	if !ok {
		return nil, fmt.Errorf("imu reader %s: no config for sensor", sensorName)
	}
	port, ok := sp.String("port")
	if !ok || port == "" {
		return nil, fmt.Errorf("imu reader %s: missing required key %q", sensorName, "port")
	}
	baud, ok := sp.Int("baud_rate")
	if !ok || baud <= 0 {
		return nil, fmt.Errorf("imu reader %s: missing required key %q", sensorName, "baud_rate")
	}
	maxSize := cfg.App.MaxMessageSize
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &IMUReader{
		sensorName: sensorName,
		topic:      sp.Topic,
		portName:   port,
		baudRate:   baud,
		maxSize:    maxSize,
		decoder:    imudecoder.NewDecoder(),
		openPort:   openSerialPort,
	}, nil
}

func openSerialPort(name string, baud int) (serialPort, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ensureOpen lazily opens the port and performs the one-shot enable
// handshake on first use. Failure here is fatal for this reader (§4.6):
// the error is kept and every later Read returns it without reopening.
func (r *IMUReader) ensureOpen() error {
	if r.opened {
		return nil
	}
	if r.openErr != nil {
		return r.openErr
	}
	port, err := r.openPort(r.portName, r.baudRate)
	if err != nil {
		r.openErr = fmt.Errorf("imu %s: open port %s: %w", r.sensorName, r.portName, err)
		return r.openErr
	}
	if err := port.SetReadTimeout(enableTimeout); err != nil {
		_ = port.Close()
		r.openErr = fmt.Errorf("imu %s: set timeout: %w", r.sensorName, err)
		return r.openErr
	}
	if _, err := port.Write([]byte(enableCmd)); err != nil {
		_ = port.Close()
		r.openErr = fmt.Errorf("imu %s: send enable cmd: %w", r.sensorName, err)
		return r.openErr
	}
	reply := make([]byte, len(enableReply))
	_, _ = port.Read(reply) // best-effort; a missing/garbled reply is logged, not fatal
	if string(reply) != enableReply {
		logging.L().Warn("imu %s: unexpected enable reply %q", r.sensorName, reply)
	}

	r.port = port
	r.opened = true
	return nil
}

// Read performs a single port read into a 1 KiB buffer and feeds bytes
// to the vendor decoder until a complete frame is reported or the chunk
// is exhausted (§4.6, §9: "one-chunk-per-call contract").
func (r *IMUReader) Read(ctx context.Context) (*frame.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureOpen(); err != nil {
		return nil, err
	}

	buf := make([]byte, readChunkSize)
	n, err := r.port.Read(buf)
	if err != nil {
		logging.L().Debug("imu %s: read error: %v", r.sensorName, err)
		return nil, nil
	}

	var complete bool
	for i := 0; i < n; i++ {
		if r.decoder.Feed(buf[i]) {
			complete = true
			break
		}
	}
	if !complete {
		return nil, nil
	}

	vf := r.decoder.Frame()
	st, msg, err := schema.NewRootImu()
	if err != nil {
		return nil, err
	}
	ts := clock.WallNowNs()
	if err := st.SetTopic(r.topic); err != nil {
		return nil, err
	}
	st.SetTimestamp(ts)
	st.SetAccX(vf.Acc[0] * gUnits)
	st.SetAccY(vf.Acc[1] * gUnits)
	st.SetAccZ(vf.Acc[2] * gUnits)
	st.SetGyrX(vf.Gyr[0])
	st.SetGyrY(vf.Gyr[1])
	st.SetGyrZ(vf.Gyr[2])
	st.SetQuatW(vf.Quat[0])
	st.SetQuatX(vf.Quat[1])
	st.SetQuatY(vf.Quat[2])
	st.SetQuatZ(vf.Quat[3])

	body, err := schema.MarshalPacked(msg)
	if err != nil {
		return nil, err
	}
	if len(body) > r.maxSize {
		return nil, fmt.Errorf("imu %s: encoded body %d bytes exceeds max_message_size %d", r.sensorName, len(body), r.maxSize)
	}

	return &frame.Frame{
		SensorName:  r.sensorName,
		Topic:       r.topic,
		TimestampNs: ts,
		Body:        body,
	}, nil
}

// Close releases the serial port, if opened.
func (r *IMUReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.port != nil {
		return r.port.Close()
	}
	return nil
}
