// Package pipeline wires sensor readers, the rate controller, and the
// zeromq transport together into the producer/consumer fabric described
// in §4.10 and §5: one goroutine per sensor pushes framed samples onto
// an in-process queue; a single consumer goroutine drains that queue
// onto the network publish socket. Structurally this generalizes the
// teacher's SensorsController/goroutine-per-reader pattern
// (_examples/lkumar3-iitr-Sensor-Logger/controller/sensors_controller.go)
// from typed Go channels to a zeromq inproc PUSH/PULL pair, since the
// spec requires a real broker-style queue the consumer can drain
// non-blockingly and the producers can observe closing (§4.10's
// shutdown ordering).
package pipeline

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pebbe/zmq4"

	"tinyskpub/internal/config"
	"tinyskpub/internal/logging"
	"tinyskpub/internal/metrics"
	"tinyskpub/internal/rate"
	"tinyskpub/internal/reader"
)

// inprocAddr is the in-process queue endpoint every producer connects
// to and the consumer binds (§4.10).
const inprocAddr = "inproc://tinysk"

// TotalReadBytes is incremented by the consumer on every successful
// enqueue and swapped to zero by StatusReader on emission (§5, §8
// property 3; design note §9: "on enqueue, not on send").
var TotalReadBytes = &reader.TotalReadBytes

// unit pairs one sensor's reader with its own rate controller and push
// socket.
type unit struct {
	name string
	rd   reader.Reader
	rc   *rate.Controller
	push *zmq4.Socket
}

// Pipeline owns the zeromq context, the publish and pull sockets, and
// every sensor's producer goroutine (C10).
type Pipeline struct {
	zctx *zmq4.Context
	pub  *zmq4.Socket
	pull *zmq4.Socket

	units          []*unit
	sensorNames    []string // longest-first, for prefix matching in runConsumer
	checkingRateHz int
	metrics        *metrics.Registry

	stop chan struct{}
	wg   sync.WaitGroup

	consumerDone chan struct{}
	closeOnce    sync.Once
}

// New assembles a Pipeline: one unit per configured sensor with a
// reader successfully constructed via reg, a bound publish socket, and
// the in-process pull endpoint. A reader that fails to construct is
// logged critical and skipped; the pipeline continues with the
// remaining sensors (§7).
func New(cfg *config.Config, reg *reader.Registry, m *metrics.Registry) (*Pipeline, error) {
	zctx, err := zmq4.NewContext()
	if err != nil {
		return nil, err
	}

	pub, err := zctx.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, err
	}
	if err := pub.SetConflate(true); err != nil {
		return nil, err
	}
	addr := cfg.App.Address
	if addr == "" {
		addr = "*"
	}
	bindAddr := "tcp://" + addr + ":" + portString(cfg.App.Port)
	if err := pub.Bind(bindAddr); err != nil {
		return nil, err
	}

	pull, err := zctx.NewSocket(zmq4.PULL)
	if err != nil {
		return nil, err
	}
	if err := pull.Bind(inprocAddr); err != nil {
		return nil, err
	}

	p := &Pipeline{
		zctx:           zctx,
		pub:            pub,
		pull:           pull,
		checkingRateHz: cfg.App.CheckingRateHz,
		metrics:        m,
		stop:           make(chan struct{}),
		consumerDone:   make(chan struct{}),
	}
	if p.checkingRateHz <= 0 {
		p.checkingRateHz = 100
	}

	for _, name := range cfg.Sensors {
		sp, ok := cfg.Sensor(name)
		if !ok {
			logging.L().Critical("pipeline: sensor %q listed but has no config subtree, skipping", name)
			continue
		}
		rd, err := reg.Create(sp.Type, name, cfg)
		if err != nil {
			logging.L().Critical("pipeline: construct reader %q (%s): %v", name, sp.Type, err)
			continue
		}
		push, err := zctx.NewSocket(zmq4.PUSH)
		if err != nil {
			logging.L().Critical("pipeline: open push socket for %q: %v", name, err)
			continue
		}
		if err := push.Connect(inprocAddr); err != nil {
			logging.L().Critical("pipeline: connect push socket for %q: %v", name, err)
			continue
		}
		hz := sp.Rate
		if hz <= 0 {
			hz = 1
		}
		p.units = append(p.units, &unit{
			name: name,
			rd:   rd,
			rc:   rateNew(hz),
			push: push,
		})
		p.sensorNames = append(p.sensorNames, name)
	}
	sort.Slice(p.sensorNames, func(i, j int) bool {
		return len(p.sensorNames[i]) > len(p.sensorNames[j])
	})

	return p, nil
}

// sensorFor returns the configured sensor name whose frame prefix
// matches msg (§4.3's framing contract has no length delimiter, so the
// consumer identifies the source sensor the same way a downstream
// subscriber would: by matching the known name prefixes).
func (p *Pipeline) sensorFor(msg []byte) (string, bool) {
	for _, name := range p.sensorNames {
		if strings.HasPrefix(string(msg), name) {
			return name, true
		}
	}
	return "", false
}

// rateNew is a seam so tests can swap in a deterministic controller if
// ever needed; today it always builds the real monotonic-clock one.
var rateNew = rate.New

// Start launches the consumer and every producer goroutine.
func (p *Pipeline) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.runConsumer()

	for _, u := range p.units {
		p.wg.Add(1)
		go p.runProducer(ctx, u)
	}
}

// runProducer loops: read a sample, push its framed bytes, rate-sleep,
// until stop is signaled or the push peer is closed (§4.10).
func (p *Pipeline) runProducer(ctx context.Context, u *unit) {
	defer p.wg.Done()
	defer u.push.Close()
	defer u.rd.Close()

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		f, err := u.rd.Read(ctx)
		if err != nil {
			logging.L().Warn("producer %s: read error: %v", u.name, err)
		} else if f == nil {
			logging.L().Debug("producer %s: no frame this period", u.name)
		} else {
			if _, err := u.push.SendBytes(f.Bytes(), 0); err != nil {
				logging.L().Debug("producer %s: push failed, peer likely closed: %v", u.name, err)
				if p.metrics != nil {
					p.metrics.Dropped(u.name)
				}
				return
			}
			if p.metrics != nil {
				p.metrics.Produced(u.name)
			}
		}

		u.rc.Sleep(p.stop)
	}
}

// runConsumer non-blockingly drains the pull socket and republishes
// each message on the publish socket, rate-limited by
// app.checking_rate when the queue is empty (§4.10).
func (p *Pipeline) runConsumer() {
	defer p.wg.Done()
	defer close(p.consumerDone)

	checkRc := rate.New(p.checkingRateHz)
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		msg, err := p.pull.RecvBytes(zmq4.DONTWAIT)
		if err != nil {
			checkRc.Sleep(p.stop)
			continue
		}

		TotalReadBytes.Add(uint64(len(msg)))
		if p.metrics != nil {
			p.metrics.SetTotalBytes(TotalReadBytes.Load())
			if name, ok := p.sensorFor(msg); ok {
				p.metrics.Enqueued(name)
			}
		}
		if _, err := p.pub.SendBytes(msg, 0); err != nil {
			logging.L().Warn("consumer: publish failed: %v", err)
		}
	}
}

// Stop performs the exact shutdown ordering §4.10 requires: the
// consumer is torn down first (closing the pull endpoint so producers
// observe a closed peer on their next push), producers are then
// joined, and the zeromq context is released last. Safe to call more
// than once.
func (p *Pipeline) Stop() {
	p.closeOnce.Do(func() {
		close(p.stop)
		p.pull.Close()
		<-p.consumerDone
		p.wg.Wait()

		p.pub.Close()
		_ = p.zctx.Term()
	})
}

func portString(port int) string {
	if port <= 0 {
		port = 5555
	}
	return strconv.Itoa(port)
}
