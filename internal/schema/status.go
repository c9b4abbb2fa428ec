package schema

import "capnproto.org/go/capnp/v3"

// Status is the root message StatusReader emits (§3, §4.5).
//
// Data section layout (offsets in bytes):
//
//	0  timestamp   uint64
//	8  cpuUsage    float64
//	16 cpuTemp     float64
//	24 memUsage    float64
//	32 batteryV    float64
//	40 batteryI    float64
//	48 totalBytes  uint64
//
// Pointer section: 0=topic (text), 1=ip (text).
type Status capnp.Struct

var statusSize = capnp.ObjectSize{DataSize: 56, PointerCount: 2}

// NewRootStatus allocates a Status as the root of a fresh message.
func NewRootStatus() (Status, *capnp.Message, error) {
	msg, seg, err := newMessage()
	if err != nil {
		return Status{}, nil, err
	}
	st, err := capnp.NewRootStruct(seg, statusSize)
	if err != nil {
		return Status{}, nil, err
	}
	return Status(st), msg, nil
}

// ReadRootStatus reads a Status out of an already-parsed message.
func ReadRootStatus(msg *capnp.Message) (Status, error) {
	root, err := msg.Root()
	if err != nil {
		return Status{}, err
	}
	return Status(root.Struct()), nil
}

func (s Status) Timestamp() uint64     { return capnp.Struct(s).Uint64(0) }
func (s Status) SetTimestamp(v uint64) { capnp.Struct(s).SetUint64(0, v) }

func (s Status) CpuUsage() float64     { return capnp.Struct(s).Float64(8) }
func (s Status) SetCpuUsage(v float64) { capnp.Struct(s).SetFloat64(8, v) }

func (s Status) CpuTemp() float64     { return capnp.Struct(s).Float64(16) }
func (s Status) SetCpuTemp(v float64) { capnp.Struct(s).SetFloat64(16, v) }

func (s Status) MemUsage() float64     { return capnp.Struct(s).Float64(24) }
func (s Status) SetMemUsage(v float64) { capnp.Struct(s).SetFloat64(24, v) }

func (s Status) BatteryVoltage() float64     { return capnp.Struct(s).Float64(32) }
func (s Status) SetBatteryVoltage(v float64) { capnp.Struct(s).SetFloat64(32, v) }

func (s Status) BatteryCurrent() float64     { return capnp.Struct(s).Float64(40) }
func (s Status) SetBatteryCurrent(v float64) { capnp.Struct(s).SetFloat64(40, v) }

func (s Status) TotalReadBytes() uint64     { return capnp.Struct(s).Uint64(48) }
func (s Status) SetTotalReadBytes(v uint64) { capnp.Struct(s).SetUint64(48, v) }

func (s Status) Topic() (string, error) { return capnp.Struct(s).Text(0) }
func (s Status) SetTopic(v string) error { return capnp.Struct(s).SetText(0, v) }

func (s Status) Ip() (string, error)  { return capnp.Struct(s).Text(1) }
func (s Status) SetIp(v string) error { return capnp.Struct(s).SetText(1, v) }
